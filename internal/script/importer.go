package script

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

var (
	// ErrRecognition wraps any failure of the recognition collaborator.
	ErrRecognition = errors.New("recognition failed")
	// ErrSuperseded is returned by an import that finished after a newer one
	// had started. Its result must be discarded.
	ErrSuperseded = errors.New("import superseded")
)

// Recognizer turns an image into raw text, reporting progress in [0,1].
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, progress func(float64)) (string, error)
}

// Importer builds scripts from photographed script sheets. Only the most
// recently started import may report progress or deliver a result.
type Importer struct {
	rec     Recognizer
	matcher *Matcher
	gen     atomic.Uint64
	now     func() time.Time
}

// NewImporter returns an importer matching against catalog.
func NewImporter(rec Recognizer, catalog []Role) *Importer {
	return &Importer{rec: rec, matcher: NewMatcher(catalog), now: time.Now}
}

// Import recognizes image and returns a new custom script. progress may be
// nil; it is silenced as soon as a newer import starts.
func (im *Importer) Import(ctx context.Context, image []byte, progress func(float64)) (Script, error) {
	gen := im.gen.Add(1)
	current := func() bool { return im.gen.Load() == gen }
	report := func(p float64) {
		if progress == nil || !current() {
			return
		}
		progress(clamp01(p))
	}
	text, err := im.rec.Recognize(ctx, image, report)
	if !current() {
		return Script{}, ErrSuperseded
	}
	if err != nil {
		return Script{}, fmt.Errorf("%w: %v", ErrRecognition, err)
	}
	return im.FromText(text), nil
}

// FromText builds the imported script from already recognized text.
func (im *Importer) FromText(text string) Script {
	roles := im.matcher.Match(text)
	n := len(roles)
	if IsPlaceholder(roles) {
		n = 0
	}
	ts := im.now().UnixMilli()
	return Script{
		ID:          fmt.Sprintf("imported_%d", ts),
		Title:       "导入的剧本 (OCR)",
		Author:      "OCR Import",
		Description: fmt.Sprintf("通过图片识别导入。已自动识别 %d 个角色。", n),
		Type:        TypeCustom,
		Roles:       roles,
	}
}

func clamp01(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
