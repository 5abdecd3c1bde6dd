package simulation

import (
	"math"

	"github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/geometry"
)

type gridKey struct {
	x, z int
}

// grid is a spatial hash of the agents on the ground plane, rebuilt after
// every commit.
type grid struct {
	cellSize float64
	cells    map[gridKey][]*Agent
}

func newGrid(cellSize float64) *grid {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &grid{cellSize: cellSize, cells: make(map[gridKey][]*Agent)}
}

func (g *grid) keyOf(p geometry.Vector3D) gridKey {
	return gridKey{x: int(math.Floor(p.X / g.cellSize)), z: int(math.Floor(p.Z / g.cellSize))}
}

func (g *grid) rebuild(agents []*Agent) {
	// Reset slices to length 0 but keep their capacity, so a steady
	// population rebuilds without allocating.
	for k := range g.cells {
		g.cells[k] = g.cells[k][:0]
	}
	for _, a := range agents {
		key := g.keyOf(a.State.Position)
		g.cells[key] = append(g.cells[key], a)
	}
}

// inRadius returns the agents closer than radius to p.
func (g *grid) inRadius(p geometry.Vector3D, radius float64) []*Agent {
	radiusSq := radius * radius
	lo := g.keyOf(p.Sub(geometry.NewVector(radius, 0, radius)))
	hi := g.keyOf(p.Add(geometry.NewVector(radius, 0, radius)))

	var result []*Agent
	for gx := lo.x; gx <= hi.x; gx++ {
		for gz := lo.z; gz <= hi.z; gz++ {
			for _, a := range g.cells[gridKey{x: gx, z: gz}] {
				if a.State.Position.Flat().DistanceSquaredTo(p.Flat()) < radiusSq {
					result = append(result, a)
				}
			}
		}
	}
	return result
}
