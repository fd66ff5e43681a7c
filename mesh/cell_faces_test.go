package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShapeOf(t *testing.T) {
	type tc struct {
		dim, nn int
		shape   CellShape
		ok      bool
		faces   int
	}
	for _, c := range []tc{
		{2, 3, Polygon, true, 3},
		{2, 4, Polygon, true, 4},
		{2, 7, Polygon, true, 7},
		{2, 2, Polygon, false, 0},
		{3, 4, Tet, true, 4},
		{3, 5, Pyramid, true, 5},
		{3, 6, Prism, true, 5},
		{3, 8, Hex, true, 6},
		{3, 7, Polygon, false, 0},
	} {
		shape, ok := ShapeOf(c.dim, c.nn)
		assert.Equal(t, c.ok, ok, "dim %d nodes %d", c.dim, c.nn)
		if ok {
			assert.Equal(t, c.shape, shape)
			assert.Equal(t, c.faces, shape.NumFaces(c.nn))
			assert.Len(t, CellFaces(shape, seq(c.nn)), c.faces)
		}
	}
}

func seq(n int) (s []int) {
	for i := 0; i < n; i++ {
		s = append(s, i)
	}
	return
}

func TestCellFaces(t *testing.T) {
	assert.Equal(t, [][]int{{0, 1}, {1, 3}, {3, 2}, {2, 0}}, CellFaces(Polygon, []int{0, 1, 3, 2}))
	// Every edge of a closed solid is shared by exactly two of its faces
	for _, shape := range []CellShape{Tet, Pyramid, Prism, Hex} {
		nn := map[CellShape]int{Tet: 4, Pyramid: 5, Prism: 6, Hex: 8}[shape]
		edges := make(map[[2]int]int)
		for _, f := range CellFaces(shape, seq(nn)) {
			for i := range f {
				a, b := f[i], f[(i+1)%len(f)]
				if a > b {
					a, b = b, a
				}
				edges[[2]int{a, b}]++
			}
		}
		for e, n := range edges {
			assert.Equal(t, 2, n, "%s edge %v", shape, e)
		}
	}
}

func TestAdjacentNodes(t *testing.T) {
	quad := []int{0, 1, 3, 2}
	assert.Equal(t, []int{1, 2}, AdjacentNodes(Polygon, quad, 0))
	assert.Equal(t, []int{3, 0}, AdjacentNodes(Polygon, quad, 1))
	assert.Equal(t, []int{0, 3}, AdjacentNodes(Polygon, quad, 2))
	assert.Equal(t, []int{2, 1}, AdjacentNodes(Polygon, quad, 3))
	assert.Nil(t, AdjacentNodes(Polygon, quad, 9))

	assert.Equal(t, []int{3, 1, 4}, AdjacentNodes(Hex, seq(8), 0))
	assert.Equal(t, []int{2, 1, 3}, AdjacentNodes(Tet, seq(4), 0))
	assert.Len(t, AdjacentNodes(Pyramid, seq(5), 4), 4)
}

func TestFaceKey(t *testing.T) {
	f := newCellFace(2, 1, []int{7, 3, 12})
	assert.Equal(t, []int{3, 7, 12}, f.sorted)
	assert.Equal(t, "3,7,12", f.key())
	assert.True(t, sameNodes([]int{1, 2}, []int{1, 2}))
	assert.False(t, sameNodes([]int{1, 2}, []int{1, 2, 3}))
	assert.False(t, sameNodes([]int{1, 2}, []int{2, 1}))
}
