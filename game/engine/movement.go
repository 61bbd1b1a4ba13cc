package engine

// linePosition maps the k-th cell of a line, counted from the wall the
// tiles slide toward, to board coordinates.
func linePosition(dir Direction, line, k int) Position {
	switch dir {
	case Left:
		return Position{X: k, Y: line}
	case Right:
		return Position{X: Size - 1 - k, Y: line}
	case Up:
		return Position{X: line, Y: k}
	case Down:
		return Position{X: line, Y: Size - 1 - k}
	}
	panic(invariant("move", "unknown direction %d", int(dir)))
}

// slideLine compacts one line toward the wall. A tile that reaches an equal
// tile which has not merged yet during this pass combines with it; the
// merged cell is then closed for the rest of the pass.
func (g *Grid) slideLine(dir Direction, line int) (moved bool, delta int) {
	var merged [Size]bool
	target := 0

	for k := 0; k < Size; k++ {
		src := linePosition(dir, line, k)
		r := g.cells[src.Y][src.X]
		if r.IsEmpty() {
			continue
		}

		if target > 0 && !merged[target-1] {
			dst := linePosition(dir, line, target-1)
			if g.cells[dst.Y][dst.X] == r {
				newRank := g.merge(dst, src)
				merged[target-1] = true
				delta += 1 << (int(newRank) + 1)
				moved = true
				continue
			}
		}

		if target != k {
			dst := linePosition(dir, line, target)
			g.cells[dst.Y][dst.X] = r
			g.cells[src.Y][src.X] = Empty
			moved = true
		}
		target++
	}

	return moved, delta
}

// merge combines the tile at src into dst and returns the new rank
func (g *Grid) merge(dst, src Position) Rank {
	a, b := g.cells[dst.Y][dst.X], g.cells[src.Y][src.X]
	if a != b || a.IsEmpty() {
		panic(invariant("merge", "cannot merge rank %d at %v with rank %d at %v", a, dst, b, src))
	}
	if a >= WinningRank {
		panic(invariant("merge", "rank %d at %v is already the winning rank", a, dst))
	}

	g.cells[dst.Y][dst.X] = a + 1
	g.cells[src.Y][src.X] = Empty
	return a + 1
}
