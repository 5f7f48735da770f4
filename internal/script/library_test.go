package script

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type fakeRemote struct {
	scripts   map[string]Script
	next      int
	failWrite error
	failList  error
}

func newFakeRemote() *fakeRemote { return &fakeRemote{scripts: map[string]Script{}} }

func (f *fakeRemote) ListScripts(context.Context) ([]Script, error) {
	if f.failList != nil {
		return nil, f.failList
	}
	var out []Script
	for _, s := range f.scripts {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeRemote) CreateScript(_ context.Context, s Script) (string, error) {
	if f.failWrite != nil {
		return "", f.failWrite
	}
	f.next++
	id := fmt.Sprintf("remote-%d", f.next)
	s.ID, s.RemoteID = id, id
	f.scripts[id] = s
	return id, nil
}

func (f *fakeRemote) UpdateScript(_ context.Context, s Script) error {
	if f.failWrite != nil {
		return f.failWrite
	}
	if _, ok := f.scripts[s.RemoteID]; !ok {
		return errors.New("no such row")
	}
	s.ID = s.RemoteID
	f.scripts[s.RemoteID] = s
	return nil
}

func (f *fakeRemote) DeleteScript(_ context.Context, remoteID string) error {
	if f.failWrite != nil {
		return f.failWrite
	}
	delete(f.scripts, remoteID)
	return nil
}

func (f *fakeRemote) HasTitle(_ context.Context, title string) (bool, error) {
	for _, s := range f.scripts {
		if s.Title == title {
			return true, nil
		}
	}
	return false, nil
}

type memLocal struct{ saved []Script }

func (m *memLocal) LoadCustomScripts(context.Context) ([]Script, error) { return m.saved, nil }
func (m *memLocal) SaveCustomScripts(_ context.Context, s []Script) error {
	m.saved = s
	return nil
}

func custom(title string) Script {
	return Script{ID: "c-" + title, Title: title, Type: TypeCustom, Roles: []Role{{ID: "r", Name: "厨师", Team: TeamTownsfolk}}}
}

func TestLibraryAddSyncs(t *testing.T) {
	ctx := context.Background()
	remote, local := newFakeRemote(), &memLocal{}
	lib := NewLibrary(MustBuiltin(), local, remote)
	s, res := lib.Add(ctx, custom("Mine"))
	if !res.Synced || res.Err != nil {
		t.Fatalf("expected synced add, got %+v", res)
	}
	if s.RemoteID == "" {
		t.Fatalf("expected remote id assigned")
	}
	if len(local.saved) != 1 || local.saved[0].RemoteID != s.RemoteID {
		t.Fatalf("expected local copy with remote id, got %+v", local.saved)
	}
	if _, err := lib.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	n := 0
	for _, got := range lib.Scripts() {
		if got.Title == "Mine" {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("expected remote copy deduplicated, found %d", n)
	}
}

func TestLibraryAddKeepsLocalOnRemoteFailure(t *testing.T) {
	ctx := context.Background()
	remote, local := newFakeRemote(), &memLocal{}
	remote.failWrite = errors.New("offline")
	lib := NewLibrary(MustBuiltin(), local, remote)
	s, res := lib.Add(ctx, custom("Mine"))
	if res.Synced || res.Err == nil {
		t.Fatalf("expected local-only result with warning, got %+v", res)
	}
	if _, ok := lib.Get(s.ID); !ok {
		t.Fatalf("expected script kept locally")
	}
	if len(local.saved) != 1 {
		t.Fatalf("expected local persistence, got %d", len(local.saved))
	}
}

func TestLibraryWithoutRemote(t *testing.T) {
	lib := NewLibrary(MustBuiltin(), nil, nil)
	_, res := lib.Add(context.Background(), custom("Mine"))
	if res.Synced || res.Err != nil {
		t.Fatalf("expected plain local save, got %+v", res)
	}
	if res.Status() != "已保存到本地" {
		t.Fatalf("unexpected status %q", res.Status())
	}
	if _, err := lib.SyncBuiltins(context.Background()); !errors.Is(err, ErrNoRemote) {
		t.Fatalf("expected sync to need a remote")
	}
}

func TestLibraryBuiltinsReadOnly(t *testing.T) {
	lib := NewLibrary(MustBuiltin(), nil, nil)
	b := lib.Scripts()[0]
	if _, err := lib.Update(context.Background(), b); !errors.Is(err, ErrBuiltin) {
		t.Fatalf("expected ErrBuiltin on update, got %v", err)
	}
	if _, err := lib.Delete(context.Background(), b.ID); !errors.Is(err, ErrBuiltin) {
		t.Fatalf("expected ErrBuiltin on delete, got %v", err)
	}
	if _, err := lib.Delete(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLibraryUpdate(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	lib := NewLibrary(nil, &memLocal{}, remote)
	s, _ := lib.Add(ctx, custom("Mine"))
	s.Title = "Renamed"
	res, err := lib.Update(ctx, s)
	if err != nil || !res.Synced {
		t.Fatalf("update: %v %+v", err, res)
	}
	if remote.scripts[s.RemoteID].Title != "Renamed" {
		t.Fatalf("remote not updated: %+v", remote.scripts)
	}
	got, _ := lib.Get(s.ID)
	if got.Title != "Renamed" {
		t.Fatalf("local not updated: %q", got.Title)
	}
}

func TestLibraryDeleteFailureReloads(t *testing.T) {
	ctx := context.Background()
	remote, local := newFakeRemote(), &memLocal{}
	lib := NewLibrary(nil, local, remote)
	s, _ := lib.Add(ctx, custom("Mine"))
	remote.failWrite = errors.New("offline")
	res, err := lib.Delete(ctx, s.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if res.Synced || res.Err == nil {
		t.Fatalf("expected warning, got %+v", res)
	}
	// The remote still has the row, so the reload brings it back.
	found := false
	for _, got := range lib.Scripts() {
		if got.RemoteID == s.RemoteID {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected reload to restore remote copy, got %+v", lib.Scripts())
	}
}

func TestLibraryLoadRemoteFailureKeepsLocal(t *testing.T) {
	remote := newFakeRemote()
	remote.failList = errors.New("offline")
	local := &memLocal{saved: []Script{custom("Mine")}}
	lib := NewLibrary(MustBuiltin(), local, remote)
	res, err := lib.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Err == nil {
		t.Fatalf("expected remote warning")
	}
	if _, ok := lib.Get("c-Mine"); !ok {
		t.Fatalf("expected local custom script loaded")
	}
}

func TestSyncBuiltinsSkipsExisting(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemote()
	lib := NewLibrary(MustBuiltin(), nil, remote)
	n, err := lib.SyncBuiltins(ctx)
	if err != nil || n != len(MustBuiltin()) {
		t.Fatalf("first sync: n=%d err=%v", n, err)
	}
	n, err = lib.SyncBuiltins(ctx)
	if err != nil || n != 0 {
		t.Fatalf("second sync should skip everything: n=%d err=%v", n, err)
	}
}

func TestCatalogExcludesCustom(t *testing.T) {
	lib := NewLibrary(MustBuiltin(), nil, nil)
	lib.Add(context.Background(), Script{Title: "x", Roles: []Role{{ID: "only_custom", Name: "怪"}}})
	for _, r := range lib.Catalog() {
		if r.ID == "only_custom" {
			t.Fatalf("custom role leaked into catalog")
		}
	}
}
