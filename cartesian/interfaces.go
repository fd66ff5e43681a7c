package cartesian

import (
	"fmt"

	"github.com/notargets/ddmesh/mesh"
	"github.com/notargets/ddmesh/types"
)

type edgeClaim struct {
	rank, owner, cell int
}

// CheckInterfaces pairs the ghost edges of a complete set of 2D descriptions
// by their global node numbers. Every shared edge must be declared by exactly
// two ranks, each naming the other as owner.
func CheckInterfaces(descs []*mesh.Description) error {
	claims := make(map[types.EdgeKey][]edgeClaim)
	for r, d := range descs {
		if d.Dimension != 2 {
			return fmt.Errorf("rank %d: interface check needs 2D descriptions", r)
		}
		offset := 0
		for g, nn := range d.GhostCellType {
			if nn != 2 {
				return fmt.Errorf("rank %d ghost %d: edge with %d nodes", r, g, nn)
			}
			n0, n1 := d.GhostCellToNode[offset], d.GhostCellToNode[offset+1]
			offset += nn
			key := types.NewEdgeKey([2]int{
				int(d.GlobalNodeNumber[n0]), int(d.GlobalNodeNumber[n1]),
			})
			claims[key] = append(claims[key], edgeClaim{
				rank:  r,
				owner: d.GhostCellRank[g],
				cell:  d.GhostCellNumber[g],
			})
		}
	}
	for key, cl := range claims {
		v := key.GetVertices(false)
		if len(cl) != 2 {
			return fmt.Errorf("edge %v declared by %d ranks", v, len(cl))
		}
		if cl[0].owner != cl[1].rank || cl[1].owner != cl[0].rank {
			return fmt.Errorf("edge %v: rank %d names %d, rank %d names %d",
				v, cl[0].rank, cl[0].owner, cl[1].rank, cl[1].owner)
		}
		if n := descs[cl[1].rank].NumCells(); cl[0].cell >= n {
			return fmt.Errorf("edge %v: rank %d names cell %d of rank %d, which has %d cells",
				v, cl[0].rank, cl[0].cell, cl[1].rank, n)
		}
		if n := descs[cl[0].rank].NumCells(); cl[1].cell >= n {
			return fmt.Errorf("edge %v: rank %d names cell %d of rank %d, which has %d cells",
				v, cl[1].rank, cl[1].cell, cl[0].rank, n)
		}
	}
	return nil
}
