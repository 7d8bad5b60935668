package storage

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dpshade/pocket-embed/internal/errors"
	"github.com/dpshade/pocket-embed/internal/models"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "pocket-embed-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	s, err := NewStorage(tmpDir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	if err := s.InitLibrary(); err != nil {
		t.Fatalf("Failed to init library: %v", err)
	}
	return s
}

func TestLoadMissingAndCorrupted(t *testing.T) {
	s := newTestStorage(t)

	var v map[string]interface{}
	if err := s.Load("missing.json", &v); !errors.IsCode(err, errors.ErrCodeNotFound) {
		t.Errorf("Expected NOT_FOUND, got %v", err)
	}

	if err := os.WriteFile(filepath.Join(s.GetBaseDir(), "bad.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := s.Load("bad.json", &v); !errors.IsCode(err, errors.ErrCodeFileCorrupted) {
		t.Errorf("Expected FILE_CORRUPTED, got %v", err)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	s := newTestStorage(t)

	for i := 0; i < 3; i++ {
		if err := s.Save("thing.json", map[string]int{"n": i}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	var v map[string]int
	if err := s.Load("thing.json", &v); err != nil {
		t.Fatal(err)
	}
	if v["n"] != 2 {
		t.Errorf("Expected last write to win, got %d", v["n"])
	}

	entries, _ := os.ReadDir(s.GetBaseDir())
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Errorf("Temp file left behind: %s", e.Name())
		}
	}
}

func TestTemplatesSeedDefaults(t *testing.T) {
	s := newTestStorage(t)
	store := NewTemplateStore(s)

	templates, err := store.LoadTemplates()
	if err != nil {
		t.Fatalf("LoadTemplates failed: %v", err)
	}
	if len(templates) != 3 {
		t.Fatalf("Expected 3 default templates, got %d", len(templates))
	}
	if !s.Exists(TemplatesCollection) {
		t.Error("Defaults should be written to disk")
	}

	welcome, err := store.GetTemplate("welcome message")
	if err != nil {
		t.Fatalf("GetTemplate by label failed: %v", err)
	}
	if len(welcome.Embed.Fields) != 3 || *welcome.Embed.Color != 0x3BA55C {
		t.Errorf("Unexpected welcome template: %+v", welcome.Embed)
	}
}

func TestTemplateRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	store := NewTemplateStore(s)

	e := models.NewEmbed()
	e.Title = "Release notes"
	_ = e.AddField("Version", "1.2.0", true)

	saved, err := store.AddTemplate(models.Template{Label: "Release", Summary: "weekly", Embed: *e})
	if err != nil {
		t.Fatalf("AddTemplate failed: %v", err)
	}
	if saved.ID == "" || saved.CreatedAt.IsZero() {
		t.Error("AddTemplate should assign id and created_at")
	}

	// same label replaces, keeps id
	e.Title = "Release notes v2"
	again, err := store.AddTemplate(models.Template{Label: "release", Embed: *e})
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != saved.ID {
		t.Errorf("Expected id %s to be kept, got %s", saved.ID, again.ID)
	}

	got, err := store.GetTemplate(saved.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Embed.Title != "Release notes v2" || got.Embed.Fields[0].Value != "1.2.0" || *got.Embed.Color != models.DefaultColor {
		t.Errorf("Template did not round-trip: %+v", got.Embed)
	}

	all, _ := store.LoadTemplates()
	if len(all) != 4 {
		t.Errorf("Expected 4 templates, got %d", len(all))
	}

	if err := store.DeleteTemplate("Release"); err != nil {
		t.Fatalf("DeleteTemplate failed: %v", err)
	}
	if _, err := store.GetTemplate(saved.ID); !errors.IsCode(err, errors.ErrCodeNotFound) {
		t.Errorf("Expected NOT_FOUND after delete, got %v", err)
	}
	if err := store.DeleteTemplate("nope"); !errors.IsCode(err, errors.ErrCodeNotFound) {
		t.Errorf("Expected NOT_FOUND, got %v", err)
	}
}

func TestCorruptedTemplatesAreNotOverwritten(t *testing.T) {
	s := newTestStorage(t)
	path := filepath.Join(s.GetBaseDir(), TemplatesCollection)
	if err := os.WriteFile(path, []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewTemplateStore(s).LoadTemplates(); !errors.IsCode(err, errors.ErrCodeFileCorrupted) {
		t.Errorf("Expected FILE_CORRUPTED, got %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "garbage" {
		t.Error("Corrupted document must be left in place")
	}
}

func TestHistoryCap(t *testing.T) {
	s := newTestStorage(t)
	store := NewHistoryStore(s, 5)

	for i := 0; i < 8; i++ {
		entry := models.HistoryEntry{
			Embed:   models.Embed{Title: fmt.Sprintf("msg %d", i)},
			Outcome: models.DeliveryOutcome{Status: models.OutcomeSuccess},
		}
		if _, err := store.Append(entry); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	entries, err := store.LoadHistory()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 5 {
		t.Fatalf("Expected 5 entries, got %d", len(entries))
	}
	if entries[0].Embed.Title != "msg 3" || entries[4].Embed.Title != "msg 7" {
		t.Errorf("Expected oldest entries dropped in order, got %s..%s", entries[0].Embed.Title, entries[4].Embed.Title)
	}
	if entries[0].ID == "" || entries[0].SentAt.IsZero() {
		t.Error("Append should assign id and sent_at")
	}

	if err := store.Clear(); err != nil {
		t.Fatal(err)
	}
	entries, _ = store.LoadHistory()
	if len(entries) != 0 {
		t.Errorf("Expected empty history after clear, got %d", len(entries))
	}
}

func TestSettingsAndDraft(t *testing.T) {
	s := newTestStorage(t)

	settings := NewSettingsStore(s)
	empty, err := settings.LoadSettings()
	if err != nil || empty.URL != "" {
		t.Fatalf("Expected zero settings, got %+v, %v", empty, err)
	}
	want := models.WebhookSettings{URL: "https://discord.com/api/webhooks/1/x", Username: "Bot"}
	if err := settings.SaveSettings(want); err != nil {
		t.Fatal(err)
	}
	got, _ := settings.LoadSettings()
	if got != want {
		t.Errorf("Settings did not round-trip: %+v", got)
	}

	drafts := NewDraftStore(s)
	fresh, err := drafts.LoadDraft()
	if err != nil || *fresh.Color != models.DefaultColor {
		t.Fatalf("Expected fresh draft, got %+v, %v", fresh, err)
	}
	fresh.Title = "draft"
	if err := drafts.SaveDraft(fresh); err != nil {
		t.Fatal(err)
	}
	loaded, _ := drafts.LoadDraft()
	if loaded.Title != "draft" {
		t.Errorf("Draft did not round-trip: %+v", loaded)
	}
	if err := drafts.ClearDraft(); err != nil {
		t.Fatal(err)
	}
	if s.Exists(DraftCollection) {
		t.Error("ClearDraft should remove the document")
	}
}

func TestWriteExport(t *testing.T) {
	s := newTestStorage(t)
	path, err := s.WriteExport("embed.py", []byte("print(1)"))
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(path) != filepath.Join(s.GetBaseDir(), "exports") {
		t.Errorf("Relative export should land in exports dir, got %s", path)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "print(1)\n" {
		t.Errorf("Unexpected export content %q", data)
	}

	path, err = s.WriteExport("sub/../nested/embed.json", []byte("{}"))
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(s.GetBaseDir(), "exports", "nested", "embed.json") {
		t.Errorf("Unexpected export path %s", path)
	}
}

func TestWriteExportRejectsEscapingNames(t *testing.T) {
	s := newTestStorage(t)
	for _, name := range []string{"../x.json", "../../x.json", "a/../../x.json", "..", ""} {
		_, err := s.WriteExport(name, []byte("{}"))
		if !errors.IsCode(err, errors.ErrCodeInvalidInput) {
			t.Errorf("WriteExport(%q): expected INVALID_INPUT, got %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(s.GetBaseDir()), "x.json")); !os.IsNotExist(err) {
		t.Error("Export escaped the library directory")
	}
}
