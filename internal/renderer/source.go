package renderer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dpshade/pocket-embed/internal/errors"
	"github.com/dpshade/pocket-embed/internal/wire"
)

// node is an ordered value tree; exactly one of the fields is meaningful
// according to kind.
type node struct {
	kind   nodeKind
	str    string
	num    int
	flag   bool
	keys   []string
	values []node
}

type nodeKind int

const (
	kindString nodeKind = iota
	kindNumber
	kindBool
	kindObject
	kindArray
)

func strNode(s string) node { return node{kind: kindString, str: s} }

type object struct{ n node }

func newObject() *object { return &object{n: node{kind: kindObject}} }

func (o *object) set(key string, v node) *object {
	o.n.keys = append(o.n.keys, key)
	o.n.values = append(o.n.values, v)
	return o
}

func (o *object) setString(key, s string) *object {
	if s != "" {
		o.set(key, strNode(s))
	}
	return o
}

// documentNode lays the document out in wire key order
func documentNode(doc *wire.Document) node {
	embeds := node{kind: kindArray}
	for _, e := range doc.Embeds {
		o := newObject().
			setString("title", e.Title).
			setString("description", e.Description).
			setString("url", e.URL)
		if e.Color != nil {
			o.set("color", node{kind: kindNumber, num: *e.Color})
		}
		if e.Author != nil {
			o.set("author", newObject().
				setString("name", e.Author.Name).
				setString("url", e.Author.URL).
				setString("icon_url", e.Author.IconURL).n)
		}
		if e.Footer != nil {
			o.set("footer", newObject().
				setString("text", e.Footer.Text).
				setString("icon_url", e.Footer.IconURL).n)
		}
		if e.Thumbnail != nil {
			o.set("thumbnail", newObject().setString("url", e.Thumbnail.URL).n)
		}
		if e.Image != nil {
			o.set("image", newObject().setString("url", e.Image.URL).n)
		}
		fields := node{kind: kindArray}
		for _, f := range e.Fields {
			fields.values = append(fields.values, newObject().
				set("name", strNode(f.Name)).
				set("value", strNode(f.Value)).
				set("inline", node{kind: kindBool, flag: f.Inline}).n)
		}
		o.set("fields", fields)
		o.setString("timestamp", e.Timestamp)
		embeds.values = append(embeds.values, o.n)
	}

	return newObject().
		set("embeds", embeds).
		setString("username", doc.Username).
		setString("avatar_url", doc.AvatarURL).n
}

// dialect describes how a language spells literals
type dialect struct {
	indent      string
	trueLit     string
	falseLit    string
	objectOpen  string
	arrayOpen   string
	objectClose string
	arrayClose  string
	keySep      string
	trailing    bool
}

var dialects = map[string]dialect{
	FormatPython: {
		indent: "    ", trueLit: "True", falseLit: "False",
		objectOpen: "{", objectClose: "}", arrayOpen: "[", arrayClose: "]",
		keySep: ": ",
	},
	FormatJavaScript: {
		indent: "  ", trueLit: "true", falseLit: "false",
		objectOpen: "{", objectClose: "}", arrayOpen: "[", arrayClose: "]",
		keySep: ": ",
	},
	FormatGo: {
		indent: "\t", trueLit: "true", falseLit: "false",
		objectOpen: "map[string]any{", objectClose: "}", arrayOpen: "[]any{", arrayClose: "}",
		keySep: ": ", trailing: true,
	},
}

func (d dialect) write(b *strings.Builder, n node, depth int) {
	switch n.kind {
	case kindString:
		b.WriteString(quote(n.str))
	case kindNumber:
		b.WriteString(strconv.Itoa(n.num))
	case kindBool:
		if n.flag {
			b.WriteString(d.trueLit)
		} else {
			b.WriteString(d.falseLit)
		}
	case kindObject, kindArray:
		opener, closer := d.arrayOpen, d.arrayClose
		if n.kind == kindObject {
			opener, closer = d.objectOpen, d.objectClose
		}
		b.WriteString(opener)
		if len(n.values) == 0 {
			b.WriteString(closer)
			return
		}
		b.WriteString("\n")
		pad := strings.Repeat(d.indent, depth+1)
		for i, v := range n.values {
			b.WriteString(pad)
			if n.kind == kindObject {
				b.WriteString(quote(n.keys[i]))
				b.WriteString(d.keySep)
			}
			d.write(b, v, depth+1)
			if i < len(n.values)-1 || d.trailing {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		b.WriteString(strings.Repeat(d.indent, depth))
		b.WriteString(closer)
	}
}

// quote produces a double-quoted literal that Python, JavaScript and Go all
// read back as the same string
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\u2028', '\u2029':
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// RenderSource renders a ready-to-run program in the given language that
// posts the embed. Identical input always yields identical output.
func (r *Renderer) RenderSource(lang, webhookURL string) (string, error) {
	switch lang {
	case "py":
		lang = FormatPython
	case "js", "node", "nodejs":
		lang = FormatJavaScript
	case "golang":
		lang = FormatGo
	}
	d, ok := dialects[lang]
	if !ok {
		return "", errors.InvalidInputError(fmt.Sprintf("unsupported export format '%s'", lang)).
			WithDetails("Supported formats: " + strings.Join(Formats(), ", "))
	}
	if webhookURL == "" {
		webhookURL = PlaceholderURL
	}

	var payload strings.Builder
	root := documentNode(r.doc)

	var b strings.Builder
	switch lang {
	case FormatPython:
		d.write(&payload, root, 0)
		b.WriteString("import requests\n\n")
		fmt.Fprintf(&b, "WEBHOOK_URL = %s\n\n", quote(webhookURL))
		fmt.Fprintf(&b, "payload = %s\n\n", payload.String())
		b.WriteString("response = requests.post(WEBHOOK_URL, json=payload, timeout=10)\n")
		b.WriteString("if response.status_code in (200, 204):\n")
		b.WriteString("    print(\"Embed sent\")\n")
		b.WriteString("else:\n")
		b.WriteString("    print(f\"Failed: {response.status_code} {response.text}\")\n")

	case FormatJavaScript:
		d.write(&payload, root, 0)
		fmt.Fprintf(&b, "const WEBHOOK_URL = %s;\n\n", quote(webhookURL))
		fmt.Fprintf(&b, "const payload = %s;\n\n", payload.String())
		b.WriteString("fetch(WEBHOOK_URL, {\n")
		b.WriteString("  method: \"POST\",\n")
		b.WriteString("  headers: { \"Content-Type\": \"application/json\" },\n")
		b.WriteString("  body: JSON.stringify(payload),\n")
		b.WriteString("})\n")
		b.WriteString("  .then(async (res) => {\n")
		b.WriteString("    if (res.ok) {\n")
		b.WriteString("      console.log(\"Embed sent\");\n")
		b.WriteString("    } else {\n")
		b.WriteString("      console.error(`Failed: ${res.status} ${await res.text()}`);\n")
		b.WriteString("    }\n")
		b.WriteString("  })\n")
		b.WriteString("  .catch((err) => console.error(err));\n")

	case FormatGo:
		d.write(&payload, root, 1)
		b.WriteString("package main\n\n")
		b.WriteString("import (\n\t\"bytes\"\n\t\"encoding/json\"\n\t\"fmt\"\n\t\"io\"\n\t\"log\"\n\t\"net/http\"\n\t\"time\"\n)\n\n")
		fmt.Fprintf(&b, "const webhookURL = %s\n\n", quote(webhookURL))
		b.WriteString("func main() {\n")
		fmt.Fprintf(&b, "\tpayload := %s\n\n", payload.String())
		b.WriteString("\tbody, err := json.Marshal(payload)\n")
		b.WriteString("\tif err != nil {\n\t\tlog.Fatal(err)\n\t}\n\n")
		b.WriteString("\tclient := &http.Client{Timeout: 10 * time.Second}\n")
		b.WriteString("\tresp, err := client.Post(webhookURL, \"application/json\", bytes.NewReader(body))\n")
		b.WriteString("\tif err != nil {\n\t\tlog.Fatal(err)\n\t}\n")
		b.WriteString("\tdefer resp.Body.Close()\n\n")
		b.WriteString("\tif resp.StatusCode >= 200 && resp.StatusCode < 300 {\n")
		b.WriteString("\t\tfmt.Println(\"Embed sent\")\n")
		b.WriteString("\t\treturn\n\t}\n")
		b.WriteString("\tmsg, _ := io.ReadAll(resp.Body)\n")
		b.WriteString("\tlog.Fatalf(\"Failed: %d %s\", resp.StatusCode, msg)\n")
		b.WriteString("}\n")
	}

	return b.String(), nil
}
