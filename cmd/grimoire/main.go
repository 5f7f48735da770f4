package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/DaanHessen/grimoire-tui/internal/engine"
	"github.com/DaanHessen/grimoire-tui/internal/script"
	"github.com/DaanHessen/grimoire-tui/internal/store"
	"github.com/DaanHessen/grimoire-tui/internal/text"
	"github.com/DaanHessen/grimoire-tui/internal/ui"
	"github.com/DaanHessen/grimoire-tui/internal/util"
)

var version = "0.1.0-alpha"

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg util.Config
	if err := newRootCmd(&cfg).ExecuteContext(ctx); err != nil {
		log.Fatal(err)
	}
}

func newRootCmd(cfg *util.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "grimoire",
		Short:         "Storyteller's grimoire for Blood on the Clocktower",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), *cfg)
		},
	}
	bindFlags(root, cfg)
	root.CompletionOptions.HiddenDefaultCmd = true

	root.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Println("grimoire", version)
			},
		},
		newMigrateCmd(cfg),
		&cobra.Command{
			Use:   "sync-scripts",
			Short: "Copy built-in scripts into the remote store",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return syncScripts(cmd.Context(), *cfg)
			},
		},
		newScriptCmd(cfg),
		&cobra.Command{
			Use:   "ocr <image>",
			Short: "Recognize a photographed script sheet and print the matched roles",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return recognizeFile(cmd.Context(), *cfg, args[0], cmd.OutOrStdout())
			},
		},
	)
	return root
}

func newMigrateCmd(cfg *util.Config) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate up|down|version",
		Short:     "Apply, roll back or inspect the remote schema",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"up", "down", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			migrator, err := store.NewMigrator(cfg.DSN)
			if err != nil {
				return err
			}
			switch args[0] {
			case "up":
				if err := migrator.Up(ctx); err != nil && err != store.ErrNoChange {
					return err
				}
				fmt.Println("Migrations applied")
			case "down":
				if err := migrator.Down(ctx); err != nil && err != store.ErrNoChange {
					return err
				}
				fmt.Println("Migrations rolled back")
			case "version":
				v, dirty, err := migrator.Version(ctx)
				if err != nil {
					return err
				}
				if dirty {
					fmt.Printf("Schema version %d (dirty)\n", v)
				} else {
					fmt.Printf("Schema version %d\n", v)
				}
			default:
				return fmt.Errorf("unknown migrate action %q; use up|down|version", args[0])
			}
			return nil
		},
	}
}

func newScriptCmd(cfg *util.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "script",
		Short: "List, export and import scripts",
	}
	var qrPath string
	export := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a script as JSON to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLibrary(cmd.Context(), *cfg, func(ctx context.Context, lib *script.Library) error {
				s, ok := lib.Get(args[0])
				if !ok {
					return fmt.Errorf("%w: %s", script.ErrNotFound, args[0])
				}
				data, err := script.Encode(s)
				if err != nil {
					return err
				}
				if _, err := cmd.OutOrStdout().Write(append(data, '\n')); err != nil {
					return err
				}
				if qrPath == "" {
					return nil
				}
				png, err := script.QR(s, 512)
				if err != nil {
					return err
				}
				return os.WriteFile(qrPath, png, 0o644)
			})
		},
	}
	export.Flags().StringVar(&qrPath, "qr", "", "also write a QR code PNG of the script")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List script ids and titles",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withLibrary(cmd.Context(), *cfg, func(ctx context.Context, lib *script.Library) error {
					for _, s := range lib.Scripts() {
						kind := "built-in"
						if s.Custom() {
							kind = "custom"
						}
						fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%d roles\n", s.ID, kind, s.Title, len(s.Roles))
					}
					return nil
				})
			},
		},
		export,
		&cobra.Command{
			Use:   "import <file>",
			Short: "Add a script from a JSON file as a custom script",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				s, err := script.Decode(data, time.Now())
				if err != nil {
					return err
				}
				return withLibrary(cmd.Context(), *cfg, func(ctx context.Context, lib *script.Library) error {
					added, res := lib.Add(ctx, s)
					fmt.Fprintf(cmd.OutOrStdout(), "%s (%s): %s\n", added.Title, added.ID, res.Status())
					return nil
				})
			},
		},
	)
	return cmd
}

func runTUI(ctx context.Context, cfg util.Config) error {
	if cfg.LogFile != "" {
		f, err := tea.LogToFile(cfg.LogFile, "grimoire")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	kv, err := store.OpenKV(cfg.StatePath)
	if err != nil {
		return err
	}
	defer kv.Close()
	state, err := kv.LoadState(ctx)
	if err != nil {
		return err
	}
	game := engine.NewGame(state, kv)

	lib, closeRemote, err := openLibrary(ctx, cfg, kv)
	if err != nil {
		return err
	}
	defer closeRemote()
	res, err := lib.Load(ctx)
	if err != nil {
		return err
	}

	var importer *script.Importer
	if rec := newRecognizer(cfg); rec != nil {
		importer = script.NewImporter(rec, lib.Catalog())
	}
	return ui.Run(ctx, ui.Deps{Game: game, Library: lib, Importer: importer, Sync: res}, cfg, version)
}

// openLibrary builds the script library over local. The remote store is used
// only when a DSN is configured and reachable; otherwise the library runs
// local-only.
func openLibrary(ctx context.Context, cfg util.Config, local script.LocalStore) (*script.Library, func(), error) {
	builtin, err := script.Builtin()
	if err != nil {
		return nil, nil, err
	}
	db, err := openRemote(ctx, cfg)
	if err != nil {
		log.Printf("remote store unavailable, running local-only: %v", err)
	}
	if db == nil {
		return script.NewLibrary(builtin, local, nil), func() {}, nil
	}
	return script.NewLibrary(builtin, local, store.NewScriptRepo(db)), func() { db.Close() }, nil
}

// openRemote applies pending migrations and connects. A nil DB with a nil
// error means no DSN is configured.
func openRemote(ctx context.Context, cfg util.Config) (*store.DB, error) {
	if cfg.DSN == "" {
		return nil, nil
	}
	mig, err := store.NewMigrator(cfg.DSN)
	if err != nil {
		return nil, err
	}
	migCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := mig.Up(migCtx); err != nil && err != store.ErrNoChange {
		return nil, fmt.Errorf("migrations failed: %w", err)
	}
	return store.Open(ctx, cfg)
}

func withLibrary(ctx context.Context, cfg util.Config, fn func(context.Context, *script.Library) error) error {
	kv, err := store.OpenKV(cfg.StatePath)
	if err != nil {
		return err
	}
	defer kv.Close()
	lib, closeRemote, err := openLibrary(ctx, cfg, kv)
	if err != nil {
		return err
	}
	defer closeRemote()
	res, err := lib.Load(ctx)
	if err != nil {
		return err
	}
	if res.Err != nil {
		log.Printf("remote scripts not loaded: %v", res.Err)
	}
	return fn(ctx, lib)
}

func syncScripts(ctx context.Context, cfg util.Config) error {
	db, err := openRemote(ctx, cfg)
	if err != nil {
		return err
	}
	if db == nil {
		return script.ErrNoRemote
	}
	defer db.Close()
	builtin, err := script.Builtin()
	if err != nil {
		return err
	}
	lib := script.NewLibrary(builtin, nil, store.NewScriptRepo(db))
	n, err := lib.SyncBuiltins(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Synced %d of %d built-in scripts\n", n, len(builtin))
	return nil
}

// newRecognizer prefers the configured languages and retries English-only,
// caching results per image. It returns nil when tesseract is missing.
func newRecognizer(cfg util.Config) script.Recognizer {
	primary, err := text.NewTesseract(cfg.Tesseract, cfg.OCRLanguages)
	if err != nil {
		log.Printf("script import disabled: %v", err)
		return nil
	}
	var fallback text.Recognizer
	if cfg.OCRLanguages != "eng" {
		fallback = &text.Tesseract{Bin: primary.Bin, Languages: "eng", Tick: primary.Tick}
	}
	return text.Cached(text.WithFallback(primary, fallback))
}

func recognizeFile(ctx context.Context, cfg util.Config, path string, out io.Writer) error {
	image, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	rec := newRecognizer(cfg)
	if rec == nil {
		return text.ErrUnavailable
	}
	builtin, err := script.Builtin()
	if err != nil {
		return err
	}
	raw, err := rec.Recognize(ctx, image, func(p float64) {
		fmt.Fprintf(os.Stderr, "\rrecognizing %3.0f%%", p*100)
	})
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return err
	}
	s := script.NewImporter(rec, script.Catalog(builtin)).FromText(raw)
	if script.IsPlaceholder(s.Roles) {
		return errors.New("no roles recognized")
	}
	names := make([]string, 0, len(s.Roles))
	for _, r := range s.Roles {
		names = append(names, fmt.Sprintf("%s (%s)", r.Name, r.Team.Label()))
	}
	fmt.Fprintln(out, strings.Join(names, "\n"))
	return nil
}
