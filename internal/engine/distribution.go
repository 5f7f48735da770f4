package engine

import (
	"strconv"
	"strings"

	"github.com/DaanHessen/grimoire-tui/internal/script"
)

// Distribution is the number of roles to deal per team.
type Distribution struct {
	Townsfolk int `json:"townsfolk"`
	Outsider  int `json:"outsider"`
	Minion    int `json:"minion"`
	Demon     int `json:"demon"`
}

// MinPlayers is the smallest table with a recommended distribution.
const MinPlayers = 5

var distributionTable = [...]Distribution{
	{3, 0, 1, 1}, // 5
	{3, 1, 1, 1},
	{5, 0, 1, 1},
	{5, 1, 1, 1},
	{5, 2, 1, 1},
	{7, 0, 2, 1}, // 10
	{7, 1, 2, 1},
	{7, 2, 2, 1},
	{9, 0, 3, 1},
	{9, 1, 3, 1},
	{9, 2, 3, 1}, // 15+
}

// Recommended returns the standard distribution for a table of players.
// Tables under five players have none.
func Recommended(players int) (Distribution, bool) {
	if players < MinPlayers {
		return Distribution{}, false
	}
	i := players - MinPlayers
	if i >= len(distributionTable) {
		i = len(distributionTable) - 1
	}
	return distributionTable[i], true
}

// Count returns the count for team.
func (d Distribution) Count(team script.Team) int {
	switch team {
	case script.TeamTownsfolk:
		return d.Townsfolk
	case script.TeamOutsider:
		return d.Outsider
	case script.TeamMinion:
		return d.Minion
	case script.TeamDemon:
		return d.Demon
	default:
		return 0
	}
}

// WithCount returns d with the count for team replaced.
func (d Distribution) WithCount(team script.Team, n int) Distribution {
	if n < 0 {
		n = 0
	}
	switch team {
	case script.TeamTownsfolk:
		d.Townsfolk = n
	case script.TeamOutsider:
		d.Outsider = n
	case script.TeamMinion:
		d.Minion = n
	case script.TeamDemon:
		d.Demon = n
	}
	return d
}

// Total is the number of roles dealt.
func (d Distribution) Total() int { return d.Townsfolk + d.Outsider + d.Minion + d.Demon }

// ParseCount reads a distribution field. Anything that is not a
// non-negative integer counts as zero.
func ParseCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
