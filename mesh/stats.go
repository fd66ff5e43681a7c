package mesh

import (
	"fmt"
	"io"
	"sort"
)

// Stats summarizes a constructed partition
type Stats struct {
	Rank          int
	Cells         int
	Nodes         int
	InteriorFaces int // Local faces shared by two cells, counted once
	BoundaryFaces int
	GhostFaces    int
	SharedNodes   int         // Nodes on an inter-rank boundary
	Neighbors     map[int]int // Remote rank -> shared node count
	CellShapes    map[CellShape]int
}

func (m *Mesh) Stats() Stats {
	s := Stats{
		Rank:          m.rank,
		Cells:         len(m.cells),
		Nodes:         len(m.coordinates),
		InteriorFaces: m.cc.Count() / 2,
		BoundaryFaces: m.cs.Count(),
		GhostFaces:    m.cg.Count(),
		SharedNodes:   len(m.ngc),
		Neighbors:     make(map[int]int),
		CellShapes:    make(map[CellShape]int),
	}
	for _, entries := range m.ngc {
		for _, e := range entries {
			s.Neighbors[e.Rank]++
		}
	}
	for _, sh := range m.shapes {
		s.CellShapes[sh]++
	}
	return s
}

// PrintStatistics writes a human readable partition summary
func (m *Mesh) PrintStatistics(w io.Writer) {
	s := m.Stats()
	fmt.Fprintf(w, "Partition %d Statistics:\n", s.Rank)
	fmt.Fprintf(w, "  Dimension: %d (%s)\n", m.dimension, m.geometry)
	fmt.Fprintf(w, "  Nodes: %d\n", s.Nodes)
	fmt.Fprintf(w, "  Cells: %d\n", s.Cells)
	fmt.Fprintf(w, "  Cell shapes:\n")
	shapes := make([]CellShape, 0, len(s.CellShapes))
	for sh := range s.CellShapes {
		shapes = append(shapes, sh)
	}
	sort.Slice(shapes, func(i, j int) bool { return shapes[i] < shapes[j] })
	for _, sh := range shapes {
		fmt.Fprintf(w, "    %s: %d\n", sh, s.CellShapes[sh])
	}
	fmt.Fprintf(w, "  Interior faces: %d\n", s.InteriorFaces)
	fmt.Fprintf(w, "  Boundary faces: %d\n", s.BoundaryFaces)
	fmt.Fprintf(w, "  Ghost faces: %d\n", s.GhostFaces)
	fmt.Fprintf(w, "  Shared nodes: %d\n", s.SharedNodes)
	ranks := make([]int, 0, len(s.Neighbors))
	for r := range s.Neighbors {
		ranks = append(ranks, r)
	}
	sort.Ints(ranks)
	for _, r := range ranks {
		fmt.Fprintf(w, "    rank %d: %d nodes\n", r, s.Neighbors[r])
	}
	if lo, hi := m.BoundingBox(); len(m.coordinates) != 0 {
		fmt.Fprintf(w, "  Bounds: %v - %v\n", lo, hi)
	}
}
