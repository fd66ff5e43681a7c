package mesh

import (
	"gonum.org/v1/gonum/floats"
)

// CellCentroid is the arithmetic mean of the cell's node coordinates
func (m *Mesh) CellCentroid(cell int) []float64 {
	c := make([]float64, m.dimension)
	nodes := m.cells[cell]
	for _, n := range nodes {
		floats.Add(c, m.coordinates[n])
	}
	floats.Scale(1/float64(len(nodes)), c)
	return c
}

// BoundingBox returns the per-axis minimum and maximum node coordinates
func (m *Mesh) BoundingBox() (lo, hi []float64) {
	lo, hi = make([]float64, m.dimension), make([]float64, m.dimension)
	if len(m.coordinates) == 0 {
		return
	}
	axis := make([]float64, len(m.coordinates))
	for d := 0; d < m.dimension; d++ {
		for n, x := range m.coordinates {
			axis[n] = x[d]
		}
		lo[d], hi[d] = floats.Min(axis), floats.Max(axis)
	}
	return
}

// FaceCentroid is the mean of the coordinates of a face's nodes
func (m *Mesh) FaceCentroid(nodes []int) []float64 {
	c := make([]float64, m.dimension)
	for _, n := range nodes {
		floats.Add(c, m.coordinates[n])
	}
	floats.Scale(1/float64(len(nodes)), c)
	return c
}
