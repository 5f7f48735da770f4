package engine

import "github.com/DaanHessen/grimoire-tui/internal/gamelog"

// State is everything a running game keeps between actions.
type State struct {
	Players []Player
	Log     *gamelog.Log
	// CustomDistribution overrides Recommended until the player count changes.
	CustomDistribution *Distribution
}

// NewState is a fresh game with the default roster.
func NewState() State {
	return State{Players: DefaultPlayers(DefaultPlayerCount), Log: gamelog.New()}
}

// Clone deep-copies s.
func (s State) Clone() State {
	c := State{Players: clonePlayers(s.Players)}
	if s.Log != nil {
		c.Log = s.Log.Clone()
	} else {
		c.Log = gamelog.New()
	}
	if s.CustomDistribution != nil {
		d := *s.CustomDistribution
		c.CustomDistribution = &d
	}
	return c
}

// Distribution is the override if set, else the recommendation for the
// current roster.
func (s State) Distribution() (Distribution, bool) {
	if s.CustomDistribution != nil {
		return *s.CustomDistribution, true
	}
	return Recommended(len(s.Players))
}

// Player returns the player with id.
func (s State) Player(id int) (Player, bool) {
	if i := PlayerIndex(s.Players, id); i >= 0 {
		return s.Players[i], true
	}
	return Player{}, false
}

// Change is a bit set naming the parts of State an action touched.
type Change uint8

const (
	ChangePlayers Change = 1 << iota
	ChangeLog
	ChangePhase
	ChangeDistribution
)

// Has reports whether every bit of o is set in c.
func (c Change) Has(o Change) bool { return c&o == o && o != 0 }
