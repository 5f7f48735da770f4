package script

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
)

// ErrBuiltin is returned when trying to edit or delete a built-in script.
var ErrBuiltin = errors.New("built-in scripts are read-only")

// ErrNotFound is returned for an unknown script id.
var ErrNotFound = errors.New("script not found")

// ErrNoRemote is returned by operations that need a remote store.
var ErrNoRemote = errors.New("no remote store configured")

// Remote is the optional replicated store for reference data.
type Remote interface {
	ListScripts(ctx context.Context) ([]Script, error)
	// CreateScript stores s with its roles and returns the remote key.
	CreateScript(ctx context.Context, s Script) (string, error)
	UpdateScript(ctx context.Context, s Script) error
	DeleteScript(ctx context.Context, remoteID string) error
	HasTitle(ctx context.Context, title string) (bool, error)
}

// LocalStore persists custom scripts on this device.
type LocalStore interface {
	LoadCustomScripts(ctx context.Context) ([]Script, error)
	SaveCustomScripts(ctx context.Context, scripts []Script) error
}

// SyncResult reports how far a change got. Local state is always committed
// before the remote is tried.
type SyncResult struct {
	Synced bool
	Err    error
}

// Status is the line shown to the user after a save.
func (r SyncResult) Status() string {
	switch {
	case r.Synced:
		return "已同步"
	case r.Err != nil:
		return "仅保存在本地: " + r.Err.Error()
	default:
		return "已保存到本地"
	}
}

// Library is the session's list of scripts: built-ins, local customs and
// whatever the remote store adds.
type Library struct {
	mu      sync.Mutex
	builtin []Script
	local   LocalStore
	remote  Remote
	scripts []Script
}

// NewLibrary returns a library seeded with builtin. local and remote may be nil.
func NewLibrary(builtin []Script, local LocalStore, remote Remote) *Library {
	l := &Library{builtin: builtin, local: local, remote: remote}
	l.scripts = cloneScripts(builtin)
	return l
}

// HasRemote reports whether a remote store is configured.
func (l *Library) HasRemote() bool { return l.remote != nil }

// Load rebuilds the list from built-ins, local customs and the remote store.
// A remote failure leaves the local list in place and is returned as a
// warning in SyncResult.
func (l *Library) Load(ctx context.Context) (SyncResult, error) {
	scripts := cloneScripts(l.builtin)
	if l.local != nil {
		custom, err := l.local.LoadCustomScripts(ctx)
		if err != nil {
			return SyncResult{}, fmt.Errorf("load custom scripts: %w", err)
		}
		scripts = Merge(scripts, custom)
	}
	res := SyncResult{}
	if l.remote != nil {
		remote, err := l.remote.ListScripts(ctx)
		if err != nil {
			log.Printf("remote script list failed: %v", err)
			res.Err = err
		} else {
			scripts = Merge(scripts, remote)
			res.Synced = true
		}
	}
	l.mu.Lock()
	l.scripts = scripts
	l.mu.Unlock()
	return res, nil
}

// Scripts returns a snapshot of every script.
func (l *Library) Scripts() []Script {
	l.mu.Lock()
	defer l.mu.Unlock()
	return cloneScripts(l.scripts)
}

// Get returns the script with id.
func (l *Library) Get(id string) (Script, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.index(id); i >= 0 {
		return l.scripts[i].Clone(), true
	}
	return Script{}, false
}

// Catalog lists the distinct roles of every official script, the set OCR
// imports are matched against.
func (l *Library) Catalog() []Role {
	l.mu.Lock()
	defer l.mu.Unlock()
	var official []Script
	for _, s := range l.scripts {
		if !s.Custom() {
			official = append(official, s)
		}
	}
	return Catalog(official)
}

// Add stores s as a new custom script, then replicates it.
func (l *Library) Add(ctx context.Context, s Script) (Script, SyncResult) {
	s = s.Clone()
	s.Type = TypeCustom
	s.RemoteID = ""
	if s.ID == "" {
		s.ID = "custom_" + newSuffix()
	}
	l.mu.Lock()
	l.scripts = append(l.scripts, s)
	l.mu.Unlock()
	res := l.saveLocal(ctx)
	if res.Err != nil || l.remote == nil {
		return s, res
	}
	remoteID, err := l.remote.CreateScript(ctx, s)
	if err != nil {
		log.Printf("remote create %q failed: %v", s.Title, err)
		return s, SyncResult{Err: err}
	}
	s.RemoteID = remoteID
	l.replace(s)
	if res := l.saveLocal(ctx); res.Err != nil {
		return s, res
	}
	return s, SyncResult{Synced: true}
}

// Update replaces a custom script and replicates the edit.
func (l *Library) Update(ctx context.Context, s Script) (SyncResult, error) {
	cur, ok := l.Get(s.ID)
	if !ok {
		return SyncResult{}, ErrNotFound
	}
	if !cur.Custom() {
		return SyncResult{}, ErrBuiltin
	}
	s = s.Clone()
	s.Type = TypeCustom
	s.RemoteID = cur.RemoteID
	l.replace(s)
	res := l.saveLocal(ctx)
	if res.Err != nil || l.remote == nil {
		return res, nil
	}
	if s.RemoteID == "" {
		remoteID, err := l.remote.CreateScript(ctx, s)
		if err != nil {
			log.Printf("remote create %q failed: %v", s.Title, err)
			return SyncResult{Err: err}, nil
		}
		s.RemoteID = remoteID
		l.replace(s)
		if res := l.saveLocal(ctx); res.Err != nil {
			return res, nil
		}
		return SyncResult{Synced: true}, nil
	}
	if err := l.remote.UpdateScript(ctx, s); err != nil {
		log.Printf("remote update %q failed: %v", s.Title, err)
		return SyncResult{Err: err}, nil
	}
	return SyncResult{Synced: true}, nil
}

// Delete removes a custom script. When the remote delete fails the whole
// library is reloaded so the local view does not drift from the remote one.
func (l *Library) Delete(ctx context.Context, id string) (SyncResult, error) {
	cur, ok := l.Get(id)
	if !ok {
		return SyncResult{}, ErrNotFound
	}
	if !cur.Custom() {
		return SyncResult{}, ErrBuiltin
	}
	l.mu.Lock()
	if i := l.index(id); i >= 0 {
		l.scripts = append(l.scripts[:i], l.scripts[i+1:]...)
	}
	l.mu.Unlock()
	res := l.saveLocal(ctx)
	if res.Err != nil || l.remote == nil || cur.RemoteID == "" {
		return res, nil
	}
	if err := l.remote.DeleteScript(ctx, cur.RemoteID); err != nil {
		log.Printf("remote delete %q failed: %v", cur.Title, err)
		if _, lerr := l.Load(ctx); lerr != nil {
			return SyncResult{Err: err}, lerr
		}
		return SyncResult{Err: err}, nil
	}
	return SyncResult{Synced: true}, nil
}

// SyncBuiltins pushes every built-in script whose title the remote store does
// not have yet. It returns how many were created.
func (l *Library) SyncBuiltins(ctx context.Context) (int, error) {
	if l.remote == nil {
		return 0, ErrNoRemote
	}
	created := 0
	for _, s := range l.builtin {
		exists, err := l.remote.HasTitle(ctx, s.Title)
		if err != nil {
			return created, fmt.Errorf("look up %q: %w", s.Title, err)
		}
		if exists {
			log.Printf("script %q already present, skipping", s.Title)
			continue
		}
		if _, err := l.remote.CreateScript(ctx, s); err != nil {
			return created, fmt.Errorf("create %q: %w", s.Title, err)
		}
		log.Printf("script %q synced with %d roles", s.Title, len(s.Roles))
		created++
	}
	return created, nil
}

func (l *Library) saveLocal(ctx context.Context) SyncResult {
	if l.local == nil {
		return SyncResult{}
	}
	l.mu.Lock()
	var custom []Script
	for _, s := range l.scripts {
		if s.Custom() {
			custom = append(custom, s.Clone())
		}
	}
	l.mu.Unlock()
	if err := l.local.SaveCustomScripts(ctx, custom); err != nil {
		return SyncResult{Err: fmt.Errorf("save custom scripts: %w", err)}
	}
	return SyncResult{}
}

func (l *Library) replace(s Script) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.index(s.ID); i >= 0 {
		l.scripts[i] = s
	}
}

// index must be called with mu held.
func (l *Library) index(id string) int {
	for i, s := range l.scripts {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func cloneScripts(in []Script) []Script {
	out := make([]Script, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}
