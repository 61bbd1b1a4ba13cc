package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Size is the width and height of the board.
const Size = 4

// Rank is the level of a tile. Rank 0 is the first tile that spawns,
// each merge raises the rank by one, and WinningRank ends the game.
type Rank int8

const (
	Empty       Rank = -1
	WinningRank Rank = 10
)

// IsEmpty reports whether the cell holds no tile
func (r Rank) IsEmpty() bool {
	return r == Empty
}

// Value returns the classic 2048 face value of the tile (rank 0 is 2)
func (r Rank) Value() int {
	if r == Empty {
		return 0
	}
	return 1 << (int(r) + 1)
}

func (r Rank) valid() bool {
	return r == Empty || (r >= 0 && r <= WinningRank)
}

// Cells is the board in row-major order, indexed [y][x]
type Cells [Size][Size]Rank

// EmptyCells returns a board with no tiles
func EmptyCells() Cells {
	var c Cells
	for y := range c {
		for x := range c[y] {
			c[y][x] = Empty
		}
	}
	return c
}

// Position represents x,y coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Direction is the wall every tile slides toward during a move
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

var ErrInvalidDirection = errors.New("invalid direction")

// Directions lists every direction in a stable order
var Directions = []Direction{Up, Down, Left, Right}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// ParseDirection accepts up, down, left or right in any case
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Result is the state of the board after a move
type Result int

const (
	Continue Result = iota
	Won
	Lost
)

func (r Result) String() string {
	switch r {
	case Won:
		return "won"
	case Lost:
		return "lost"
	}
	return "continue"
}

// MoveOutcome is everything a move produced. The caller applies score and
// terminal transitions; the grid never reaches outside itself.
type MoveOutcome struct {
	Moved      bool
	ScoreDelta int
	Result     Result
}

// InvariantError reports a broken board rule. It is only ever raised with
// panic and indicates a programming defect.
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("engine invariant violated in %s: %s", e.Op, e.Detail)
}

func invariant(op, format string, args ...any) *InvariantError {
	return &InvariantError{Op: op, Detail: fmt.Sprintf(format, args...)}
}
