package engine

import (
	"errors"
	"fmt"
)

var ErrInvalidGrid = errors.New("invalid grid")

// spawnRankOneOdds is the 1-in-N chance that a spawned tile starts at rank 1
const spawnRankOneOdds = 10

// Grid is a 4x4 board. It is not safe for concurrent use; the owning
// session serialises access.
type Grid struct {
	cells Cells
	src   Source
}

// NewGrid creates a board seeded with two spawned tiles
func NewGrid(src Source) *Grid {
	if src == nil {
		src = NewRandomSource()
	}
	g := &Grid{cells: EmptyCells(), src: src}
	g.spawn()
	g.spawn()
	return g
}

// GridFromCells builds a board from a fixed layout. The layout must hold at
// least two tiles, every rank must be in range, and at most one tile may
// already be at WinningRank.
func GridFromCells(cells Cells, src Source) (*Grid, error) {
	if src == nil {
		src = NewRandomSource()
	}

	tiles, winners := 0, 0
	for y := range cells {
		for x, r := range cells[y] {
			if !r.valid() {
				return nil, fmt.Errorf("%w: rank %d at (%d,%d)", ErrInvalidGrid, r, x, y)
			}
			if r.IsEmpty() {
				continue
			}
			tiles++
			if r == WinningRank {
				winners++
			}
		}
	}
	if tiles < 2 {
		return nil, fmt.Errorf("%w: need at least 2 tiles, got %d", ErrInvalidGrid, tiles)
	}
	if winners > 1 {
		return nil, fmt.Errorf("%w: %d tiles at winning rank", ErrInvalidGrid, winners)
	}

	return &Grid{cells: cells, src: src}, nil
}

// Cells returns a copy of the board
func (g *Grid) Cells() Cells {
	return g.cells
}

// At returns the rank at x,y
func (g *Grid) At(x, y int) Rank {
	return g.cells[y][x]
}

// Clone copies the board. The copy shares the random source.
func (g *Grid) Clone() *Grid {
	return &Grid{cells: g.cells, src: g.src}
}

// EmptyCount returns the number of empty cells
func (g *Grid) EmptyCount() int {
	return len(g.emptyPositions())
}

// MaxRank returns the highest rank on the board
func (g *Grid) MaxRank() Rank {
	highest := Empty
	for y := range g.cells {
		for _, r := range g.cells[y] {
			if r > highest {
				highest = r
			}
		}
	}
	return highest
}

// CanMove reports whether any direction would change the board
func (g *Grid) CanMove() bool {
	return g.EmptyCount() > 0 || g.hasAdjacentPair()
}

// Move slides every line toward the wall named by dir, then applies the
// post-move policy: a winning tile ends the game before any spawn; otherwise
// one tile spawns and a full board with no equal neighbours is lost. A move
// that changes nothing is a no-op.
func (g *Grid) Move(dir Direction) MoveOutcome {
	var out MoveOutcome
	for line := 0; line < Size; line++ {
		moved, delta := g.slideLine(dir, line)
		out.Moved = out.Moved || moved
		out.ScoreDelta += delta
	}

	if !out.Moved {
		return MoveOutcome{Result: Continue}
	}

	if g.MaxRank() >= WinningRank {
		out.Result = Won
		return out
	}

	g.spawn()

	if g.EmptyCount() == 0 && !g.hasAdjacentPair() {
		out.Result = Lost
	}
	return out
}

// spawn places a rank 0 tile (rank 1 one time in ten) in a uniformly chosen
// empty cell
func (g *Grid) spawn() Position {
	empty := g.emptyPositions()
	if len(empty) == 0 {
		panic(invariant("spawn", "no empty cell"))
	}

	pos := empty[g.src.IntN(len(empty))]
	rank := Rank(0)
	if g.src.IntN(spawnRankOneOdds) == 0 {
		rank = 1
	}
	g.cells[pos.Y][pos.X] = rank
	return pos
}

func (g *Grid) emptyPositions() []Position {
	var out []Position
	for y := range g.cells {
		for x, r := range g.cells[y] {
			if r.IsEmpty() {
				out = append(out, Position{X: x, Y: y})
			}
		}
	}
	return out
}

func (g *Grid) hasAdjacentPair() bool {
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			r := g.cells[y][x]
			if r.IsEmpty() {
				continue
			}
			if x+1 < Size && g.cells[y][x+1] == r {
				return true
			}
			if y+1 < Size && g.cells[y+1][x] == r {
				return true
			}
		}
	}
	return false
}
