package text

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultLanguages covers simplified Chinese script sheets with English ids.
const DefaultLanguages = "chi_sim+eng"

// Tesseract recognizes text by running the tesseract binary.
type Tesseract struct {
	Bin       string
	Languages string
	// Tick is how often progress is reported while the binary runs.
	Tick time.Duration
}

// NewTesseract returns a recognizer using bin (looked up on PATH when empty).
func NewTesseract(bin, languages string) (*Tesseract, error) {
	if bin == "" {
		bin = "tesseract"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("tesseract not found: %w", err)
	}
	if languages == "" {
		languages = DefaultLanguages
	}
	return &Tesseract{Bin: path, Languages: languages, Tick: 200 * time.Millisecond}, nil
}

// Recognize binarizes image and returns the recognized text. progress gets
// monotonically increasing values ending at 1 on success.
func (t *Tesseract) Recognize(ctx context.Context, image []byte, progress func(float64)) (string, error) {
	report := func(p float64) {
		if progress != nil {
			progress(p)
		}
	}
	report(0)
	prepared, err := Preprocess(image)
	if err != nil {
		return "", err
	}
	report(0.1)

	f, err := os.CreateTemp("", "grimoire-ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("temp image: %w", err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(prepared); err != nil {
		f.Close()
		return "", fmt.Errorf("write temp image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write temp image: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.Bin, f.Name(), "stdout", "-l", t.Languages)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("start tesseract: %w", err)
	}
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	tick := t.Tick
	if tick <= 0 {
		tick = 200 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	p := 0.1
	for {
		select {
		case err := <-done:
			if err != nil {
				return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
			}
			report(1)
			return stdout.String(), nil
		case <-ticker.C:
			// Approach 0.95 without reaching it; tesseract gives no real progress.
			p += (0.95 - p) * 0.15
			report(p)
		}
	}
}
