package mesh

import (
	"fmt"
	"sort"
	"strings"
)

// Geometry identifies the coordinate system of a partition
type Geometry uint8

const (
	Cartesian Geometry = iota
	AxiRZ
	Spherical
)

func (g Geometry) String() string {
	if g > Spherical {
		return fmt.Sprintf("Geometry(%d)", uint8(g))
	}
	return [...]string{"Cartesian", "AxiRZ", "Spherical"}[g]
}

// ParseGeometry converts a case-insensitive name into a Geometry
func ParseGeometry(name string) (Geometry, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "cartesian":
		return Cartesian, nil
	case "axirz", "axi_rz", "rz":
		return AxiRZ, nil
	case "spherical":
		return Spherical, nil
	}
	return Cartesian, fmt.Errorf("unknown geometry: %q", name)
}

// NeighborKind identifies what lies across a cell face
type NeighborKind uint8

const (
	Interior NeighborKind = iota // Another cell on this rank
	Boundary                     // A declared side on the problem boundary
	Ghost                        // A cell owned by another rank
)

func (k NeighborKind) String() string {
	return [...]string{"Interior", "Boundary", "Ghost"}[k]
}

// Neighbor is the record stored for one face of a cell
type Neighbor struct {
	Kind  NeighborKind
	Index int   // Local cell, side index or ghost index, depending on Kind
	Face  int   // Face number within the owning cell
	Nodes []int // Shared face nodes in the owning cell's winding
	Flag  int   // Boundary condition tag, Boundary only
}

// Layout maps a local cell to the records of one neighbor kind
type Layout map[int][]Neighbor

// Size returns the number of cells that have at least one record
func (l Layout) Size() int { return len(l) }

// Count returns the total number of records
func (l Layout) Count() (n int) {
	for _, recs := range l {
		n += len(recs)
	}
	return
}

// Cells returns the keys of the layout in ascending order
func (l Layout) Cells() (cells []int) {
	cells = make([]int, 0, len(l))
	for c := range l {
		cells = append(cells, c)
	}
	sort.Ints(cells)
	return
}

func (l Layout) add(cell int, nb Neighbor) {
	l[cell] = append(l[cell], nb)
}

// Clone returns a deep copy
func (l Layout) Clone() Layout {
	out := make(Layout, len(l))
	for c, recs := range l {
		cp := make([]Neighbor, len(recs))
		for i, r := range recs {
			r.Nodes = append([]int(nil), r.Nodes...)
			cp[i] = r
		}
		out[c] = cp
	}
	return out
}

// RemoteCell references a cell on another rank in that rank's local numbering
type RemoteCell struct {
	Cell  int
	Nodes []int // Remote-local nodes adjacent to the shared node inside Cell
}

// GhostNeighbor is one dual ghost layout entry
type GhostNeighbor struct {
	Remote RemoteCell
	Rank   int
}

// DualGhostLayout maps a local node on an inter-rank boundary to every remote
// rank sharing it, one entry per rank
type DualGhostLayout map[int][]GhostNeighbor

// Nodes returns the keys in ascending order
func (d DualGhostLayout) Nodes() (nodes []int) {
	nodes = make([]int, 0, len(d))
	for n := range d {
		nodes = append(nodes, n)
	}
	sort.Ints(nodes)
	return
}

func (d DualGhostLayout) hasRank(node, rank int) bool {
	for _, e := range d[node] {
		if e.Rank == rank {
			return true
		}
	}
	return false
}

// Clone returns a deep copy
func (d DualGhostLayout) Clone() DualGhostLayout {
	out := make(DualGhostLayout, len(d))
	for n, entries := range d {
		cp := make([]GhostNeighbor, len(entries))
		for i, e := range entries {
			e.Remote.Nodes = append([]int(nil), e.Remote.Nodes...)
			cp[i] = e
		}
		out[n] = cp
	}
	return out
}

// CellNodes is one node-to-cell entry: a local cell and the nodes adjacent to
// the keyed node inside it
type CellNodes struct {
	Cell  int
	Nodes []int
}

// DualLayout maps a local node to the local cells incident on it
type DualLayout map[int][]CellNodes

// Clone returns a deep copy
func (d DualLayout) Clone() DualLayout {
	out := make(DualLayout, len(d))
	for n, entries := range d {
		cp := make([]CellNodes, len(entries))
		for i, e := range entries {
			e.Nodes = append([]int(nil), e.Nodes...)
			cp[i] = e
		}
		out[n] = cp
	}
	return out
}
