package engine

import (
	"strings"

	"github.com/DaanHessen/grimoire-tui/internal/gamelog"
	"github.com/DaanHessen/grimoire-tui/internal/script"
	"github.com/DaanHessen/grimoire-tui/internal/seating"
)

// Action is one user-level mutation of State. The set is closed.
type Action interface {
	apply(s *State) Change
}

type (
	AddPlayer    struct{}
	RemovePlayer struct{ ID int }
	RenamePlayer struct {
		ID   int
		Name string
	}
	ToggleDead struct{ ID int }
	// ReorderPlayer moves a player to a gap index as produced by the drag
	// controller. Gap len(Players) means after the last seat.
	ReorderPlayer struct {
		ID  int
		Gap int
	}
	// AssignRole sets or, with a nil Role, clears the player's role.
	AssignRole struct {
		ID   int
		Role *script.Role
	}

	// ResetGame restores the default roster and clears the log.
	ResetGame struct{}
	// NextGame keeps the roster but clears deaths, roles and the log.
	NextGame struct{}

	AppendLog struct {
		Text string
		Type gamelog.Type
	}
	InsertLog struct {
		After int64
		Text  string
	}
	EditLog struct {
		ID   int64
		Text string
	}
	DeleteLog   struct{ ID int64 }
	TogglePhase struct{}

	SetDistribution   struct{ Distribution Distribution }
	ResetDistribution struct{}
)

func (AddPlayer) apply(s *State) Change {
	id := NextPlayerID(s.Players)
	s.Players = append(s.Players, Player{ID: id, Name: DefaultName(id)})
	return rosterChanged(s, len(s.Players)-1)
}

func (a RemovePlayer) apply(s *State) Change {
	i := PlayerIndex(s.Players, a.ID)
	if i < 0 {
		return 0
	}
	before := len(s.Players)
	s.Players = append(s.Players[:i], s.Players[i+1:]...)
	if len(s.Players) == 0 {
		s.Players = DefaultPlayers(DefaultPlayerCount)
	}
	return rosterChanged(s, before)
}

func (a RenamePlayer) apply(s *State) Change {
	name := strings.TrimSpace(a.Name)
	i := PlayerIndex(s.Players, a.ID)
	if name == "" || i < 0 || s.Players[i].Name == name {
		return 0
	}
	s.Players[i].Name = name
	return ChangePlayers
}

func (a ToggleDead) apply(s *State) Change {
	i := PlayerIndex(s.Players, a.ID)
	if i < 0 {
		return 0
	}
	p := &s.Players[i]
	p.IsDead = !p.IsDead
	text := p.Name + " 复活"
	if p.IsDead {
		text = p.Name + " 死亡"
	}
	s.Log.Append(text, gamelog.TypeUser)
	return ChangePlayers | ChangeLog
}

func (a ReorderPlayer) apply(s *State) Change {
	from := PlayerIndex(s.Players, a.ID)
	if from < 0 || a.Gap < 0 || a.Gap > len(s.Players) || from == a.Gap {
		return 0
	}
	s.Players = seating.Reorder(s.Players, from, a.Gap)
	return ChangePlayers
}

func (a AssignRole) apply(s *State) Change {
	i := PlayerIndex(s.Players, a.ID)
	if i < 0 {
		return 0
	}
	if a.Role == nil {
		if s.Players[i].Role == nil {
			return 0
		}
		s.Players[i].Role = nil
		return ChangePlayers
	}
	r := *a.Role
	s.Players[i].Role = &r
	return ChangePlayers
}

func (ResetGame) apply(s *State) Change {
	before := len(s.Players)
	s.Players = DefaultPlayers(DefaultPlayerCount)
	s.Log.Reset()
	return rosterChanged(s, before) | ChangeLog | ChangePhase
}

func (NextGame) apply(s *State) Change {
	for i := range s.Players {
		s.Players[i].IsDead = false
		s.Players[i].Role = nil
	}
	s.Log.Reset()
	return ChangePlayers | ChangeLog | ChangePhase
}

func (a AppendLog) apply(s *State) Change {
	typ := a.Type
	if typ == "" {
		typ = gamelog.TypeUser
	}
	if _, ok := s.Log.Append(a.Text, typ); !ok {
		return 0
	}
	return ChangeLog
}

func (a InsertLog) apply(s *State) Change {
	if _, ok := s.Log.InsertAfter(a.After, a.Text); !ok {
		return 0
	}
	return ChangeLog
}

func (a EditLog) apply(s *State) Change {
	if !s.Log.Edit(a.ID, a.Text) {
		return 0
	}
	return ChangeLog
}

func (a DeleteLog) apply(s *State) Change {
	if !s.Log.Remove(a.ID) {
		return 0
	}
	return ChangeLog
}

func (TogglePhase) apply(s *State) Change {
	before := s.Log.Phase
	s.Log.TogglePhase()
	if s.Log.Phase == before {
		return ChangeLog
	}
	return ChangeLog | ChangePhase
}

func (a SetDistribution) apply(s *State) Change {
	d := a.Distribution
	s.CustomDistribution = &d
	return ChangeDistribution
}

func (ResetDistribution) apply(s *State) Change {
	if s.CustomDistribution == nil {
		return 0
	}
	s.CustomDistribution = nil
	return ChangeDistribution
}

// rosterChanged clears the distribution override when the player count moved
// away from before.
func rosterChanged(s *State, before int) Change {
	c := ChangePlayers
	if len(s.Players) != before && s.CustomDistribution != nil {
		s.CustomDistribution = nil
		c |= ChangeDistribution
	}
	return c
}
