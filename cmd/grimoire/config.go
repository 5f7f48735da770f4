package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/DaanHessen/grimoire-tui/internal/util"
)

// bindFlags registers the persistent settings on cmd and lets GRIMOIRE_*
// environment variables fill any flag that was not given.
func bindFlags(cmd *cobra.Command, cfg *util.Config) {
	v := viper.New()
	v.SetEnvPrefix("GRIMOIRE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs := cmd.PersistentFlags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVar(&cfg.DSN, "dsn", "", "PostgreSQL DSN for script sync; empty runs local-only (env: GRIMOIRE_DSN, DATABASE_URL)")
	fs.StringVar(&cfg.StatePath, "state", util.DefaultStatePath(), "sqlite file for game state (env: GRIMOIRE_STATE)")
	fs.StringVar(&cfg.Tesseract, "tesseract", "tesseract", "tesseract binary used for script import (env: GRIMOIRE_TESSERACT)")
	fs.StringVar(&cfg.OCRLanguages, "ocr-languages", "chi_sim+eng", "tesseract language list (env: GRIMOIRE_OCR_LANGUAGES)")
	fs.StringVar(&cfg.Theme, "theme", "catppuccin", "colour theme (env: GRIMOIRE_THEME)")
	fs.StringVar(&cfg.LogFile, "log-file", "", "write logs here while the TUI runs (env: GRIMOIRE_LOG_FILE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		if f.Name == "dsn" {
			_ = v.BindEnv(f.Name, "GRIMOIRE_DSN", "DATABASE_URL")
		} else {
			_ = v.BindEnv(f.Name)
		}
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
}
