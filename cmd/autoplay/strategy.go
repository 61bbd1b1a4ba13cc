package main

import (
	"fmt"

	"github.com/wricardo/tengame/game/engine"
)

// preference keeps tiles packed towards the bottom-left corner when two
// moves score the same.
var preference = []engine.Direction{engine.Left, engine.Down, engine.Right, engine.Up}

// firstEmpty always spawns in the first free cell, so a simulated move is
// scored the same way every time.
type firstEmpty struct{}

func (firstEmpty) IntN(int) int { return 0 }

// Choice is a direction and the heuristic value it was picked with
type Choice struct {
	Direction engine.Direction
	Value     int
}

// evaluate scores a board after a simulated move. Winning beats
// everything, losing is avoided unless it is the only move left.
func evaluate(out engine.MoveOutcome, g *engine.Grid) int {
	switch out.Result {
	case engine.Won:
		return 1 << 30
	case engine.Lost:
		return -(1 << 30)
	}
	return out.ScoreDelta*4 + g.EmptyCount()*16 + int(g.MaxRank())
}

// BestMove returns the greedy choice for cells. ok is false when no
// direction changes the board.
func BestMove(cells engine.Cells) (choice Choice, ok bool, err error) {
	base, err := engine.GridFromCells(cells, firstEmpty{})
	if err != nil {
		return Choice{}, false, fmt.Errorf("load board: %w", err)
	}

	for _, dir := range preference {
		g := base.Clone()
		out := g.Move(dir)
		if !out.Moved {
			continue
		}
		v := evaluate(out, g)
		if !ok || v > choice.Value {
			choice = Choice{Direction: dir, Value: v}
			ok = true
		}
	}
	return choice, ok, nil
}
