// Package gamelog keeps the storyteller's narrative log: ordered entries
// interleaved with night/day phase markers.
package gamelog

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Type classifies a log entry.
type Type string

const (
	TypeInfo  Type = "info"
	TypeUser  Type = "user"
	TypePhase Type = "phase"
)

var AllTypes = []Type{TypeInfo, TypeUser, TypePhase}

// Valid reports whether t is one of the known entry types.
func (t Type) Valid() bool { return slices.Contains(AllTypes, t) }

// Marker words looked up in phase entries to tell night from day.
const (
	NightWord = "夜"
	DayWord   = "天"
)

// TimeLayout is the hour:minute stamp shown next to each entry.
const TimeLayout = "15:04"

// Entry is one line of the log. ID is the creation time in milliseconds and is
// kept unique within a log.
type Entry struct {
	ID   int64  `json:"id"`
	Time string `json:"time"`
	Text string `json:"text"`
	Type Type   `json:"type"`
}

// Phase is the running day counter and night flag.
type Phase struct {
	DayCount int  `json:"dayCount"`
	IsNight  bool `json:"isNight"`
}

// StartPhase is the phase of a fresh game: night of day 1.
func StartPhase() Phase { return Phase{DayCount: 1, IsNight: true} }

// Label renders the phase the way the header shows it, e.g. "第 2 夜".
func (p Phase) Label() string {
	word := DayWord
	if p.IsNight {
		word = NightWord
	}
	return fmt.Sprintf("第 %d %s", p.DayCount, word)
}

// NightMarker and DayMarker are the texts of phase entries.
func NightMarker(n int) string { return fmt.Sprintf("=== 第 %d %s ===", n, NightWord) }
func DayMarker(n int) string   { return fmt.Sprintf("=== 第 %d %s ===", n, DayWord) }

// MarkerTitle strips the "===" decoration from a phase entry text.
func MarkerTitle(text string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, "===", ""))
}

// Log is the ordered entry sequence plus the phase it was last toggled to.
type Log struct {
	Entries []Entry
	Phase   Phase
	// Now supplies wall-clock time; nil means time.Now.
	Now func() time.Time
}

// New returns an empty log at the start phase.
func New() *Log { return &Log{Phase: StartPhase()} }

// Clone returns a deep copy that shares nothing mutable with l.
func (l *Log) Clone() *Log {
	c := *l
	c.Entries = append([]Entry(nil), l.Entries...)
	return &c
}

func (l *Log) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// stamp mints an id strictly greater than every id already present.
func (l *Log) stamp() (int64, string) {
	t := l.now()
	id := t.UnixMilli()
	for _, e := range l.Entries {
		if e.ID >= id {
			id = e.ID + 1
		}
	}
	return id, t.Format(TimeLayout)
}

func (l *Log) newEntry(text string, typ Type) Entry {
	id, hm := l.stamp()
	return Entry{ID: id, Time: hm, Text: text, Type: typ}
}

func (l *Log) index(id int64) int {
	for i, e := range l.Entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Len returns the number of entries.
func (l *Log) Len() int { return len(l.Entries) }

// Get returns the entry with the given id.
func (l *Log) Get(id int64) (Entry, bool) {
	if i := l.index(id); i >= 0 {
		return l.Entries[i], true
	}
	return Entry{}, false
}

// Append adds an entry at the end and returns its id. Blank text is ignored.
func (l *Log) Append(text string, typ Type) (int64, bool) {
	if strings.TrimSpace(text) == "" {
		return 0, false
	}
	if !typ.Valid() {
		typ = TypeInfo
	}
	e := l.newEntry(text, typ)
	l.Entries = append(l.Entries, e)
	return e.ID, true
}

// InsertAfter places a user entry right after the entry with id after. It does
// nothing when that entry is gone or text is blank.
func (l *Log) InsertAfter(after int64, text string) (int64, bool) {
	if strings.TrimSpace(text) == "" {
		return 0, false
	}
	i := l.index(after)
	if i < 0 {
		return 0, false
	}
	e := l.newEntry(text, TypeUser)
	l.Entries = append(l.Entries, Entry{})
	copy(l.Entries[i+2:], l.Entries[i+1:])
	l.Entries[i+1] = e
	return e.ID, true
}

// Edit replaces the text of an entry in place.
func (l *Log) Edit(id int64, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	i := l.index(id)
	if i < 0 {
		return false
	}
	l.Entries[i].Text = text
	return true
}

// Remove deletes an entry.
func (l *Log) Remove(id int64) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	l.Entries = append(l.Entries[:i], l.Entries[i+1:]...)
	return true
}

// TogglePhase advances night to day or day to the next night and appends the
// matching marker. On an empty log it only writes the first-night marker.
func (l *Log) TogglePhase() int64 {
	var text string
	switch {
	case len(l.Entries) == 0:
		text = NightMarker(1)
	case l.Phase.IsNight:
		l.Phase.IsNight = false
		text = DayMarker(l.Phase.DayCount)
	default:
		l.Phase.IsNight = true
		l.Phase.DayCount++
		text = NightMarker(l.Phase.DayCount)
	}
	e := l.newEntry(text, TypePhase)
	l.Entries = append(l.Entries, e)
	return e.ID
}

// NextPhaseLabel is the caption of the phase toggle button.
func (l *Log) NextPhaseLabel() string {
	switch {
	case len(l.Entries) == 0:
		return "进入首夜"
	case l.Phase.IsNight:
		return "进入白天"
	default:
		return "进入夜晚"
	}
}

// Contexts maps every entry id to whether it falls in a night span. Entries
// before the first marker count as night.
func (l *Log) Contexts() map[int64]bool {
	out := make(map[int64]bool, len(l.Entries))
	night := true
	for _, e := range l.Entries {
		if e.Type == TypePhase {
			if strings.Contains(e.Text, NightWord) {
				night = true
			} else if strings.Contains(e.Text, DayWord) {
				night = false
			}
		}
		out[e.ID] = night
	}
	return out
}

// ContextOf reports whether the entry with id falls in a night span.
func (l *Log) ContextOf(id int64) (night bool, ok bool) {
	night, ok = l.Contexts()[id]
	return night, ok
}

// Reset clears all entries and returns to the start phase.
func (l *Log) Reset() {
	l.Entries = nil
	l.Phase = StartPhase()
}
