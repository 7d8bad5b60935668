package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/dpshade/pocket-embed/internal/cli"
	"github.com/dpshade/pocket-embed/internal/config"
	"github.com/dpshade/pocket-embed/internal/errors"
	"github.com/dpshade/pocket-embed/internal/service"
	"github.com/dpshade/pocket-embed/internal/ui"
)

var version = "0.1.0"

func printHelp() {
	fmt.Printf(`pocket-embed - Terminal webhook embed designer

USAGE:
    pocket-embed [OPTIONS] [COMMAND]

OPTIONS:
    --help          Show this help information
    --version       Print version information
    --init          Initialize a new embed library with a default config.yaml
    --dir <path>    Use a different library directory
    --verbose       Log debug output to stderr

COMMANDS:
    (no command)       Pick a template interactively
    show               Show the draft embed
    new                Start a new empty draft
    set <attr> <value> Set a draft attribute
    field              Field operations (add, edit, move, rm)
    validate           Check the draft against platform limits
    preview            Render the draft in the terminal
    send               Send the draft to the webhook
    template           Template management (list, save, load, show, delete, search)
    history            Sent embeds (list, restore, clear)
    export <format>    Export as json, python, javascript, go or yaml
    copy [format]      Copy an export to the clipboard
    import <file>      Replace the draft with an embed from a JSON file
    settings           Show or change the webhook settings
    pick               Pick a template or history entry interactively
    help               Show CLI command help

EXAMPLES:
    pocket-embed settings set url https://discord.com/api/webhooks/<id>/<token>
    pocket-embed template load Announcement
    pocket-embed set title "Server maintenance tonight"
    pocket-embed field add Start "22:00 UTC" --inline
    pocket-embed preview
    pocket-embed send --username "Status Bot"
    pocket-embed export python -o announce.py
    pocket-embed history restore 1
    pocket-embed help set

STORAGE:
    Default directory: ~/.pocket-embed
    Override with: %s=<path>
`, config.EnvLibraryDir)
}

func main() {
	var showVersion bool
	var initLib bool
	var showHelp bool
	var verbose bool
	var dir string

	flag.BoolVar(&showVersion, "version", false, "Print version information")
	flag.BoolVar(&initLib, "init", false, "Initialize a new embed library")
	flag.BoolVar(&showHelp, "help", false, "Show help information")
	flag.BoolVar(&verbose, "verbose", false, "Log debug output to stderr")
	flag.StringVar(&dir, "dir", "", "Library directory")
	flag.Parse()

	if showHelp {
		printHelp()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("pocket-embed version %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		exitWithError(err, verbose, slog.Default())
	}

	level := cfg.Level()
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	svc, err := service.NewService(cfg, logger, version)
	if err != nil {
		exitWithError(err, verbose, logger)
	}

	if initLib {
		if err := svc.InitLibrary(); err != nil {
			exitWithError(err, verbose, logger)
		}
		if _, err := os.Stat(filepath.Join(cfg.LibraryDir, config.FileName)); os.IsNotExist(err) {
			if err := cfg.Save(); err != nil {
				exitWithError(err, verbose, logger)
			}
		}
		fmt.Printf("Initialized Pocket Embed library in %s\n", cfg.LibraryDir)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cliHandler := cli.NewCLI(ctx, svc)
	interactive := isatty.IsTerminal(os.Stdout.Fd()) && isatty.IsTerminal(os.Stdin.Fd())
	if interactive {
		cliHandler.SetPicker(func(kind string) error {
			return ui.RunPicker(svc, kind, os.Stdout)
		})
	}

	args := flag.Args()
	if len(args) == 0 {
		if interactive {
			args = []string{"pick", string(ui.KindTemplates)}
		} else {
			args = []string{"help"}
		}
	}

	if err := cliHandler.ExecuteCommand(args); err != nil {
		stop()
		exitWithError(err, verbose, logger)
	}
}

func exitWithError(err error, verbose bool, logger *slog.Logger) {
	handler := errors.NewCLIErrorHandler(verbose, logger)
	fmt.Fprintln(os.Stderr, handler.HandleError(err))
	os.Exit(1)
}
