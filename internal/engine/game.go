package engine

import (
	"context"
	"errors"
)

// Observer is told about every committed change. A failing observer does not
// undo the change.
type Observer interface {
	Observe(ctx context.Context, s State, changed Change) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, s State, changed Change) error

func (f ObserverFunc) Observe(ctx context.Context, s State, changed Change) error {
	return f(ctx, s, changed)
}

// Game owns the current State. Every mutation is computed on a fresh copy
// of the committed state and then swapped in.
type Game struct {
	state     State
	observers []Observer
}

// NewGame starts from s.
func NewGame(s State, observers ...Observer) *Game {
	if s.Players == nil {
		s.Players = DefaultPlayers(DefaultPlayerCount)
	}
	return &Game{state: s.Clone(), observers: observers}
}

// State returns a copy of the committed state.
func (g *Game) State() State { return g.state.Clone() }

// Observe registers another observer.
func (g *Game) Observe(o Observer) { g.observers = append(g.observers, o) }

// Dispatch applies a, commits the result and notifies observers. No-op
// actions return a zero Change and notify nobody. The returned error only
// ever carries observer failures.
func (g *Game) Dispatch(ctx context.Context, a Action) (Change, error) {
	next := g.state.Clone()
	changed := a.apply(&next)
	if changed == 0 {
		return 0, nil
	}
	g.state = next
	var errs []error
	for _, o := range g.observers {
		if err := o.Observe(ctx, g.state.Clone(), changed); err != nil {
			errs = append(errs, err)
		}
	}
	return changed, errors.Join(errs...)
}

// Confirmation returns the prompt an action needs before it may be
// dispatched.
func Confirmation(a Action) (string, bool) {
	switch a.(type) {
	case ResetGame:
		return "确定要结束当前游戏并重置所有内容吗？", true
	case NextGame:
		return "确定要开始下一局吗？这将重置玩家状态和记录，但保留玩家名单。", true
	case DeleteLog:
		return "确定要删除这条记录吗？", true
	default:
		return "", false
	}
}
