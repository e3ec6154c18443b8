// Package pathfind implements C2: A* search over a room's dynamic
// walkability. It has no knowledge of furniture or avatars directly — the
// caller supplies a Walkable predicate, so furniture changes invalidate
// paths implicitly on the next query.
package pathfind

import "container/heap"

// Point is an integer grid coordinate.
type Point struct {
	X, Y int
}

// Walkable reports whether (x,y) may be entered by a path.
type Walkable func(x, y int) bool

var neighborOffsets = [4]Point{{0, -1}, {0, 1}, {-1, 0}, {1, 0}} // N, S, W, E

// nodeCapFactor bounds worst-case search work at 2*cols*rows nodes expanded
// worst case; exceeding it returns "no path" rather than running unbounded.
const nodeCapFactor = 2

type openEntry struct {
	pos      Point
	priority int // g + h
	g        int
	index    int
}

type openHeap []*openEntry

func (h openHeap) Len() int            { return len(h) }
func (h openHeap) Less(i, j int) bool  { return h[i].priority < h[j].priority }
func (h openHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *openHeap) Push(x interface{}) {
	e := x.(*openEntry)
	e.index = len(*h)
	*h = append(*h, e)
}
func (h *openHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

func manhattan(a, b Point) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// FindPath runs a 4-connected, uniform-cost A* from start to goal, filtered
// by walkable. It returns the path from start to goal inclusive, or
// (nil, false) if no path exists or the node cap is exceeded. cols/rows
// size the node cap; they need not be exact, just the room's dimensions.
func FindPath(start, goal Point, cols, rows int, walkable Walkable) ([]Point, bool) {
	if start == goal {
		return []Point{start}, true
	}
	if !walkable(goal.X, goal.Y) {
		return nil, false
	}

	nodeCap := nodeCapFactor * cols * rows
	if nodeCap <= 0 {
		nodeCap = nodeCapFactor
	}

	cameFrom := make(map[Point]Point)
	gScore := map[Point]int{start: 0}
	closed := make(map[Point]bool)

	open := &openHeap{}
	heap.Init(open)
	heap.Push(open, &openEntry{pos: start, priority: manhattan(start, goal), g: 0})

	expanded := 0
	for open.Len() > 0 {
		current := heap.Pop(open).(*openEntry)
		if closed[current.pos] {
			continue
		}
		if current.pos == goal {
			return reconstruct(cameFrom, start, goal), true
		}
		closed[current.pos] = true

		expanded++
		if expanded > nodeCap {
			return nil, false
		}

		for _, off := range neighborOffsets {
			next := Point{X: current.pos.X + off.X, Y: current.pos.Y + off.Y}
			if closed[next] {
				continue
			}
			if !walkable(next.X, next.Y) {
				continue
			}
			tentativeG := current.g + 1
			if existing, ok := gScore[next]; ok && tentativeG >= existing {
				continue
			}
			gScore[next] = tentativeG
			cameFrom[next] = current.pos
			heap.Push(open, &openEntry{pos: next, priority: tentativeG + manhattan(next, goal), g: tentativeG})
		}
	}

	return nil, false
}

func reconstruct(cameFrom map[Point]Point, start, goal Point) []Point {
	path := []Point{goal}
	cur := goal
	for cur != start {
		prev, ok := cameFrom[cur]
		if !ok {
			break
		}
		path = append(path, prev)
		cur = prev
	}
	// reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
