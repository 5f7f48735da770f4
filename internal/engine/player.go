// Package engine is the game-state container: the seating roster, the log and
// the role distribution, changed only through Actions.
package engine

import (
	"fmt"

	"github.com/DaanHessen/grimoire-tui/internal/script"
)

// DefaultPlayerCount is how many seats a fresh game starts with.
const DefaultPlayerCount = 5

// Player is one seat. Slice order is seating order, clockwise from the top.
type Player struct {
	ID     int          `json:"id"`
	Name   string       `json:"name"`
	IsDead bool         `json:"isDead"`
	Role   *script.Role `json:"role"`
}

// DefaultName is the placeholder name of the player with id.
func DefaultName(id int) string { return fmt.Sprintf("玩家 %d", id) }

// DefaultPlayers returns n players with ids 1..n.
func DefaultPlayers(n int) []Player {
	out := make([]Player, n)
	for i := range out {
		out[i] = Player{ID: i + 1, Name: DefaultName(i + 1)}
	}
	return out
}

// NextPlayerID is one more than the highest id in players.
func NextPlayerID(players []Player) int {
	max := 0
	for _, p := range players {
		if p.ID > max {
			max = p.ID
		}
	}
	return max + 1
}

// PlayerIndex returns the seat index of id, or -1.
func PlayerIndex(players []Player, id int) int {
	for i, p := range players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func clonePlayers(in []Player) []Player {
	out := make([]Player, len(in))
	for i, p := range in {
		if p.Role != nil {
			r := *p.Role
			p.Role = &r
		}
		out[i] = p
	}
	return out
}
