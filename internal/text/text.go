// Package text turns photographed script sheets into raw text.
package text

import (
	"context"
	"crypto/sha256"
	"errors"
	"sync"
)

// Recognizer is the recognition collaborator used by the script importer.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, progress func(float64)) (string, error)
}

// ErrUnavailable is returned when no recognition engine is configured.
var ErrUnavailable = errors.New("text recognition unavailable")

// WithFallback returns a recognizer that prefers primary and falls back to
// backup on error. Either may be nil.
func WithFallback(primary, fallback Recognizer) Recognizer {
	return &fallbackRecognizer{p: primary, f: fallback}
}

type fallbackRecognizer struct{ p, f Recognizer }

func (r *fallbackRecognizer) Recognize(ctx context.Context, image []byte, progress func(float64)) (string, error) {
	if r.p == nil && r.f == nil {
		return "", ErrUnavailable
	}
	if r.p == nil {
		return r.f.Recognize(ctx, image, progress)
	}
	s, err := r.p.Recognize(ctx, image, progress)
	if err == nil || r.f == nil || ctx.Err() != nil {
		return s, err
	}
	return r.f.Recognize(ctx, image, progress)
}

// CacheKey identifies an image payload.
func CacheKey(image []byte) [sha256.Size]byte { return sha256.Sum256(image) }

// Cached remembers successful results per image so re-importing the same
// photo skips recognition.
func Cached(r Recognizer) Recognizer {
	return &cachedRecognizer{r: r, results: map[[sha256.Size]byte]string{}}
}

type cachedRecognizer struct {
	r       Recognizer
	mu      sync.Mutex
	results map[[sha256.Size]byte]string
}

func (c *cachedRecognizer) Recognize(ctx context.Context, image []byte, progress func(float64)) (string, error) {
	key := CacheKey(image)
	c.mu.Lock()
	s, ok := c.results[key]
	c.mu.Unlock()
	if ok {
		if progress != nil {
			progress(1)
		}
		return s, nil
	}
	s, err := c.r.Recognize(ctx, image, progress)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.results[key] = s
	c.mu.Unlock()
	return s, nil
}
