package script

import (
	"context"
	"errors"
	"testing"
	"time"
)

type recognizeFunc func(ctx context.Context, image []byte, progress func(float64)) (string, error)

func (f recognizeFunc) Recognize(ctx context.Context, image []byte, progress func(float64)) (string, error) {
	return f(ctx, image, progress)
}

func TestImportBuildsCustomScript(t *testing.T) {
	rec := recognizeFunc(func(_ context.Context, _ []byte, progress func(float64)) (string, error) {
		progress(0.5)
		progress(1.5)
		return "洗衣妇 调查员", nil
	})
	im := NewImporter(rec, testCatalog())
	im.now = func() time.Time { return time.UnixMilli(1700000000000) }
	var seen []float64
	s, err := im.Import(context.Background(), []byte("img"), func(p float64) { seen = append(seen, p) })
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if s.ID != "imported_1700000000000" || !s.Custom() {
		t.Fatalf("unexpected script header: %+v", s)
	}
	if s.Title != "导入的剧本 (OCR)" || s.Author != "OCR Import" {
		t.Fatalf("unexpected title/author %q %q", s.Title, s.Author)
	}
	if s.Description != "通过图片识别导入。已自动识别 2 个角色。" {
		t.Fatalf("unexpected description %q", s.Description)
	}
	if len(seen) != 2 || seen[0] != 0.5 || seen[1] != 1 {
		t.Fatalf("expected clamped progress, got %v", seen)
	}
}

func TestImportPlaceholderCountsZero(t *testing.T) {
	rec := recognizeFunc(func(context.Context, []byte, func(float64)) (string, error) { return "???", nil })
	s, err := NewImporter(rec, testCatalog()).Import(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !IsPlaceholder(s.Roles) {
		t.Fatalf("expected placeholder role")
	}
	if s.Description != "通过图片识别导入。已自动识别 0 个角色。" {
		t.Fatalf("unexpected description %q", s.Description)
	}
}

func TestImportRecognitionError(t *testing.T) {
	boom := errors.New("engine crashed")
	rec := recognizeFunc(func(context.Context, []byte, func(float64)) (string, error) { return "", boom })
	_, err := NewImporter(rec, testCatalog()).Import(context.Background(), nil, nil)
	if !errors.Is(err, ErrRecognition) {
		t.Fatalf("expected ErrRecognition, got %v", err)
	}
}

func TestImportSupersededIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var im *Importer
	calls := 0
	rec := recognizeFunc(func(_ context.Context, _ []byte, progress func(float64)) (string, error) {
		calls++
		if calls == 1 {
			close(started)
			<-release
			progress(0.9)
			return "洗衣妇", nil
		}
		return "调查员", nil
	})
	im = NewImporter(rec, testCatalog())

	var stale []float64
	done := make(chan error, 1)
	go func() {
		_, err := im.Import(context.Background(), nil, func(p float64) { stale = append(stale, p) })
		done <- err
	}()
	<-started
	s, err := im.Import(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if s.Roles[0].Name != "调查员" {
		t.Fatalf("unexpected second result %+v", s.Roles)
	}
	close(release)
	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected first import superseded, got %v", err)
	}
	if len(stale) != 0 {
		t.Fatalf("stale import reported progress %v", stale)
	}
}
