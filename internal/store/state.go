package store

import (
	"context"
	"encoding/json"
	"log"
	"strconv"

	"github.com/DaanHessen/grimoire-tui/internal/engine"
	"github.com/DaanHessen/grimoire-tui/internal/gamelog"
	"github.com/DaanHessen/grimoire-tui/internal/script"
	"github.com/pkg/errors"
)

// Keys of the persisted game state.
const (
	KeyPlayers            = "botc_players"
	KeyLogs               = "botc_logs"
	KeyDayCount           = "botc_dayCount"
	KeyIsNight            = "botc_isNight"
	KeyCustomDistribution = "botc_customDistribution"
	KeyCustomScripts      = "botc_customScripts"
)

var (
	_ engine.Observer   = (*KV)(nil)
	_ script.LocalStore = (*KV)(nil)
)

// LoadState reads the saved game. Missing or unreadable keys fall back to
// their defaults; only storage errors are returned.
func (k *KV) LoadState(ctx context.Context) (engine.State, error) {
	s := engine.NewState()

	var players []engine.Player
	if ok, err := k.getJSON(ctx, KeyPlayers, &players); err != nil {
		return s, err
	} else if ok && len(players) > 0 {
		s.Players = players
	}

	var entries []gamelog.Entry
	if ok, err := k.getJSON(ctx, KeyLogs, &entries); err != nil {
		return s, err
	} else if ok {
		s.Log.Entries = entries
	}

	raw, ok, err := k.Get(ctx, KeyDayCount)
	if err != nil {
		return s, err
	}
	if ok {
		if n, perr := strconv.Atoi(raw); perr == nil && n >= 1 {
			s.Log.Phase.DayCount = n
		} else {
			log.Printf("ignoring saved %s %q", KeyDayCount, raw)
		}
	}

	var night bool
	if ok, err := k.getJSON(ctx, KeyIsNight, &night); err != nil {
		return s, err
	} else if ok {
		s.Log.Phase.IsNight = night
	}

	var dist engine.Distribution
	if ok, err := k.getJSON(ctx, KeyCustomDistribution, &dist); err != nil {
		return s, err
	} else if ok {
		s.CustomDistribution = &dist
	}
	return s, nil
}

// Observe persists the parts of s named by changed. It is the game's
// persistence observer.
func (k *KV) Observe(ctx context.Context, s engine.State, changed engine.Change) error {
	sets := map[string]string{}
	var deletes []string
	if changed.Has(engine.ChangePlayers) {
		b, err := json.Marshal(s.Players)
		if err != nil {
			return errors.Wrap(err, "encode players")
		}
		sets[KeyPlayers] = string(b)
	}
	if changed.Has(engine.ChangeLog) {
		entries := s.Log.Entries
		if entries == nil {
			entries = []gamelog.Entry{}
		}
		b, err := json.Marshal(entries)
		if err != nil {
			return errors.Wrap(err, "encode log")
		}
		sets[KeyLogs] = string(b)
	}
	if changed.Has(engine.ChangePhase) {
		sets[KeyDayCount] = strconv.Itoa(s.Log.Phase.DayCount)
		sets[KeyIsNight] = strconv.FormatBool(s.Log.Phase.IsNight)
	}
	if changed.Has(engine.ChangeDistribution) {
		if s.CustomDistribution == nil {
			deletes = append(deletes, KeyCustomDistribution)
		} else {
			b, err := json.Marshal(s.CustomDistribution)
			if err != nil {
				return errors.Wrap(err, "encode distribution")
			}
			sets[KeyCustomDistribution] = string(b)
		}
	}
	if len(sets) == 0 && len(deletes) == 0 {
		return nil
	}
	return k.Apply(ctx, sets, deletes)
}

// LoadCustomScripts implements script.LocalStore.
func (k *KV) LoadCustomScripts(ctx context.Context) ([]script.Script, error) {
	var scripts []script.Script
	if _, err := k.getJSON(ctx, KeyCustomScripts, &scripts); err != nil {
		return nil, err
	}
	for i := range scripts {
		scripts[i].Type = script.TypeCustom
	}
	return scripts, nil
}

// SaveCustomScripts implements script.LocalStore.
func (k *KV) SaveCustomScripts(ctx context.Context, scripts []script.Script) error {
	if scripts == nil {
		scripts = []script.Script{}
	}
	b, err := json.Marshal(scripts)
	if err != nil {
		return errors.Wrap(err, "encode custom scripts")
	}
	return k.Set(ctx, KeyCustomScripts, string(b))
}

// getJSON decodes key into v. A value that does not parse is logged and
// treated as absent.
func (k *KV) getJSON(ctx context.Context, key string, v any) (bool, error) {
	raw, ok, err := k.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		log.Printf("ignoring unreadable %s: %v", key, err)
		return false, nil
	}
	return true, nil
}
