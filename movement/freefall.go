package movement

import "github.com/jakecoffman/cp"

// Drop moves an actor that has nothing under it down to where it lands.
type Drop struct {
	Index int // into the positions passed to Freefall
	From  Coord
	Goal  cp.Vector
}

// Freefall reclassifies the grid and returns a drop for every position that
// sits in a Fall cell. Ladders do not catch a falling actor.
func (b *Builder) Freefall(positions []cp.Vector) []Drop {
	b.Classify(nil)

	var drops []Drop
	for i, p := range positions {
		pos := b.xf.WorldToGrid(p)
		cell, ok := b.cells[pos]
		if !ok || cell.State != Fall {
			continue
		}
		drops = append(drops, Drop{
			Index: i,
			From:  pos,
			Goal:  b.xf.GridToWorld(pos.Add(0, -cell.HeightNoLadder)),
		})
	}
	return drops
}
