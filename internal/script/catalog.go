package script

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed data/scripts.json
var builtinJSON []byte

// Builtin returns the scripts bundled with the binary. Each call returns a
// fresh copy.
func Builtin() ([]Script, error) {
	var scripts []Script
	if err := json.Unmarshal(builtinJSON, &scripts); err != nil {
		return nil, fmt.Errorf("decode built-in scripts: %w", err)
	}
	for i := range scripts {
		if scripts[i].Type == "" {
			scripts[i].Type = TypeOfficial
		}
	}
	return scripts, nil
}

// MustBuiltin is Builtin for package initialisation and tests.
func MustBuiltin() []Script {
	s, err := Builtin()
	if err != nil {
		panic(err)
	}
	return s
}

// Catalog flattens the roles of every script into one list, keeping the
// first occurrence of each role id.
func Catalog(scripts []Script) []Role {
	seen := make(map[string]bool)
	var roles []Role
	for _, s := range scripts {
		for _, r := range s.Roles {
			if r.ID == "" || seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			roles = append(roles, r)
		}
	}
	return roles
}

// Merge appends the scripts in extra that are not already present in base,
// matching by id or replicated id. Official scripts also match by title.
func Merge(base, extra []Script) []Script {
	keys := make(map[string]bool, 2*len(base))
	titles := make(map[string]bool, len(base))
	out := make([]Script, 0, len(base)+len(extra))
	add := func(s Script) {
		keys[s.ID] = true
		if s.RemoteID != "" {
			keys[s.RemoteID] = true
		}
		titles[s.Title] = true
		out = append(out, s)
	}
	for _, s := range base {
		add(s)
	}
	for _, s := range extra {
		if keys[s.ID] || (!s.Custom() && titles[s.Title]) || (s.RemoteID != "" && keys[s.RemoteID]) {
			continue
		}
		add(s)
	}
	return out
}
