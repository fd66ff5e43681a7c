package mesh

import (
	"sort"
	"strconv"
	"strings"
)

// CellShape is the face-enumeration rule applied to a cell
type CellShape uint8

const (
	Polygon CellShape = iota
	Tet
	Pyramid
	Prism
	Hex
)

func (s CellShape) String() string {
	return [...]string{"Polygon", "Tet", "Pyramid", "Prism", "Hex"}[s]
}

// ShapeOf returns the shape of a cell with numNodes nodes in the given dimension
func ShapeOf(dim, numNodes int) (CellShape, bool) {
	if dim == 2 {
		return Polygon, numNodes >= 3
	}
	switch numNodes {
	case 4:
		return Tet, true
	case 5:
		return Pyramid, true
	case 6:
		return Prism, true
	case 8:
		return Hex, true
	}
	return Polygon, false
}

// NumFaces is the face (edge in 2D) count for a cell of this shape
func (s CellShape) NumFaces(numNodes int) int {
	switch s {
	case Tet:
		return 4
	case Pyramid, Prism:
		return 5
	case Hex:
		return 6
	}
	return numNodes
}

// CellFaces returns the faces of a cell in enumeration order. Each face lists
// its nodes outward-wound relative to the cell's own node order.
func CellFaces(s CellShape, v []int) [][]int {
	switch s {
	case Tet:
		return [][]int{
			{v[0], v[2], v[1]},
			{v[0], v[1], v[3]},
			{v[1], v[2], v[3]},
			{v[0], v[3], v[2]},
		}
	case Pyramid:
		return [][]int{
			{v[0], v[3], v[2], v[1]}, // base quad
			{v[0], v[1], v[4]},
			{v[1], v[2], v[4]},
			{v[2], v[3], v[4]},
			{v[3], v[0], v[4]},
		}
	case Prism:
		return [][]int{
			{v[0], v[2], v[1]}, // bottom tri
			{v[3], v[4], v[5]}, // top tri
			{v[0], v[1], v[4], v[3]},
			{v[1], v[2], v[5], v[4]},
			{v[2], v[0], v[3], v[5]},
		}
	case Hex:
		return [][]int{
			{v[0], v[3], v[2], v[1]}, // bottom
			{v[4], v[5], v[6], v[7]}, // top
			{v[0], v[1], v[5], v[4]},
			{v[1], v[2], v[6], v[5]},
			{v[2], v[3], v[7], v[6]},
			{v[3], v[0], v[4], v[7]},
		}
	}
	k := len(v)
	faces := make([][]int, k)
	for i := 0; i < k; i++ {
		faces[i] = []int{v[i], v[(i+1)%k]}
	}
	return faces
}

// AdjacentNodes returns the nodes of cell v that share an edge with node n.
// Polygons give [next, prev] in the winding; solids walk the faces containing
// n and take face-next then face-prev, skipping repeats.
func AdjacentNodes(s CellShape, v []int, n int) (adj []int) {
	if s == Polygon {
		k := len(v)
		for p, node := range v {
			if node == n {
				return []int{v[(p+1)%k], v[(p+k-1)%k]}
			}
		}
		return nil
	}
	seen := make(map[int]bool)
	for _, face := range CellFaces(s, v) {
		k := len(face)
		for p, node := range face {
			if node != n {
				continue
			}
			for _, nb := range []int{face[(p+1)%k], face[(p+k-1)%k]} {
				if !seen[nb] {
					seen[nb] = true
					adj = append(adj, nb)
				}
			}
		}
	}
	return
}

// cellFace is one enumerated face of a local cell
type cellFace struct {
	cell, local int
	nodes       []int // in the cell's winding
	sorted      []int
}

func newCellFace(cell, local int, nodes []int) cellFace {
	return cellFace{cell: cell, local: local, nodes: nodes, sorted: sortedCopy(nodes)}
}

func (f cellFace) key() string { return faceKey(f.sorted) }

func sortedCopy(nodes []int) []int {
	s := append([]int(nil), nodes...)
	sort.Ints(s)
	return s
}

// faceKey encodes a sorted node set so it can be used as a map key
func faceKey(sorted []int) string {
	var b strings.Builder
	for i, n := range sorted {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}

func sameNodes(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
