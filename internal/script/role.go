// Package script holds role and script reference data: the built-in catalog,
// user-authored scripts, and the OCR importer that turns recognized text back
// into roles.
package script

import "strings"

// Team is a role's alignment group.
type Team string

const (
	TeamTownsfolk Team = "townsfolk"
	TeamOutsider  Team = "outsider"
	TeamMinion    Team = "minion"
	TeamDemon     Team = "demon"
)

// AllTeams is the display order used when grouping roles.
var AllTeams = []Team{TeamTownsfolk, TeamOutsider, TeamMinion, TeamDemon}

// Valid reports whether t is a known team.
func (t Team) Valid() bool {
	switch t {
	case TeamTownsfolk, TeamOutsider, TeamMinion, TeamDemon:
		return true
	default:
		return false
	}
}

// Label is the localized team name.
func (t Team) Label() string {
	switch t {
	case TeamTownsfolk:
		return "镇民"
	case TeamOutsider:
		return "外来者"
	case TeamMinion:
		return "爪牙"
	case TeamDemon:
		return "恶魔"
	default:
		return string(t)
	}
}

// Next cycles through the teams in display order.
func (t Team) Next() Team {
	for i, team := range AllTeams {
		if team == t {
			return AllTeams[(i+1)%len(AllTeams)]
		}
	}
	return TeamTownsfolk
}

// Type tells built-in scripts from user-authored ones.
type Type string

const (
	TypeOfficial Type = "official"
	TypeCustom   Type = "custom"
)

// Role is one character definition.
type Role struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Team       Team   `json:"team"`
	Ability    string `json:"ability"`
	FirstNight bool   `json:"firstNight"`
	OtherNight bool   `json:"otherNight"`
}

// Script is an authored collection of roles for one game variant.
type Script struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	Type        Type   `json:"type"`
	Roles       []Role `json:"roles"`
	// RemoteID is the key of the replicated copy, empty until synced.
	RemoteID string `json:"remoteId,omitempty"`
}

// Custom reports whether the script may be edited, synced and deleted.
func (s Script) Custom() bool { return s.Type == TypeCustom }

// Clone deep-copies the role list.
func (s Script) Clone() Script {
	s.Roles = append([]Role(nil), s.Roles...)
	return s
}

// ByTeam groups roles by team in display order, keeping roles whose name
// contains query. An empty query keeps everything.
func (s Script) ByTeam(query string) map[Team][]Role {
	out := make(map[Team][]Role, len(AllTeams))
	for _, r := range s.Roles {
		if query != "" && !strings.Contains(r.Name, query) {
			continue
		}
		out[r.Team] = append(out[r.Team], r)
	}
	return out
}

// Role looks a role up by id.
func (s Script) Role(id string) (Role, bool) {
	for _, r := range s.Roles {
		if r.ID == id {
			return r, true
		}
	}
	return Role{}, false
}
