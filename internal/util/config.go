package util

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds runtime settings and flags.
type Config struct {
	DSN          string // optional PostgreSQL DSN for script replication
	StatePath    string // sqlite file holding game state and custom scripts
	Tesseract    string // tesseract binary, looked up on PATH when bare
	OCRLanguages string
	Theme        string
	LogFile      string
}

// DefaultStatePath is ~/.grimoire/state.db, or a relative path when the home
// directory is unknown.
func DefaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".grimoire", "state.db")
	}
	return filepath.Join(home, ".grimoire", "state.db")
}

// Validate fills defaults and rejects settings that cannot work.
func (c *Config) Validate() error {
	c.DSN = strings.TrimSpace(c.DSN)
	if c.StatePath == "" {
		c.StatePath = DefaultStatePath()
	}
	if c.Tesseract == "" {
		c.Tesseract = "tesseract"
	}
	if c.OCRLanguages == "" {
		c.OCRLanguages = "chi_sim+eng"
	}
	if strings.ContainsAny(c.OCRLanguages, " \t") {
		return errors.New("ocr languages must be joined with '+', not spaces")
	}
	return nil
}
