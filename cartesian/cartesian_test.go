package cartesian

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/ddmesh/mesh"
	"github.com/notargets/ddmesh/types"
)

func TestCartesian_TwoRanks(t *testing.T) {
	d, err := New([]int{2, 1}, []int{2, 1})
	require.NoError(t, err)
	d.Flags[YMin] = types.BC_Wall
	assert.Equal(t, 2, d.NumRanks())

	r0, err := d.Rank(0)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 1, 3, 4}, r0.GlobalNodeNumber)
	assert.Equal(t, []int{0, 1, 3, 2}, r0.CellToNode)
	assert.Equal(t, [][]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}}, r0.Coordinates)
	assert.Equal(t, []int{1, 3}, r0.GhostCellToNode)
	assert.Equal(t, []int{1}, r0.GhostCellRank)
	assert.Equal(t, []int{0}, r0.GhostCellNumber)
	assert.Equal(t, []int{0, 1, 3, 2, 2, 0}, r0.SideToNode)
	assert.Equal(t, []int{int(types.BC_Wall), 0, 0}, r0.SideFlag)
	require.NoError(t, r0.Validate(0, 2))

	r1, err := d.Rank(1)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2, 4, 5}, r1.GlobalNodeNumber)
	assert.Equal(t, [][]float64{{1, 0}, {2, 0}, {1, 1}, {2, 1}}, r1.Coordinates)
	assert.Equal(t, []int{2, 0}, r1.GhostCellToNode)
	assert.Equal(t, []int{0}, r1.GhostCellRank)
	require.NoError(t, r1.Validate(1, 2))

	_, err = d.Rank(2)
	assert.Error(t, err)
}

func TestCartesian_Blocks(t *testing.T) {
	d, err := New([]int{5, 3}, []int{2, 2})
	require.NoError(t, err)
	descs, err := d.All()
	require.NoError(t, err)
	require.Len(t, descs, 4)

	var cells, sides int
	for r, desc := range descs {
		require.NoError(t, desc.Validate(r, 4))
		cells += desc.NumCells()
		sides += desc.NumSides()
		for _, gr := range desc.GhostCellRank {
			assert.NotEqual(t, r, gr)
		}
	}
	assert.Equal(t, 15, cells)
	assert.Equal(t, 2*(5+3), sides)
	// Partition map puts the extra column on the first block
	assert.Equal(t, 6, descs[0].NumCells())
	assert.Equal(t, 2, descs[3].NumCells())
	// Blocks past the first start at their global offset
	assert.Equal(t, []float64{3, 0}, descs[1].Coordinates[0])
	assert.Equal(t, uint64(3), descs[1].GlobalNodeNumber[0])
	assert.Equal(t, []float64{0, 2}, descs[2].Coordinates[0])
	assert.Equal(t, uint64(12), descs[2].GlobalNodeNumber[0])
	// Ghost numbers are cells local to the neighboring block
	assert.Equal(t, []int{1, 2, 2, 1, 2}, descs[0].GhostCellRank)
	assert.Equal(t, []int{0, 0, 1, 2, 2}, descs[0].GhostCellNumber)
	require.NoError(t, CheckInterfaces(descs))
}

func TestCartesian_Hex(t *testing.T) {
	d, err := New([]int{2, 2, 2}, []int{2, 1, 1})
	require.NoError(t, err)
	d.Extent = []float64{1, 1, 1}
	descs, err := d.All()
	require.NoError(t, err)
	for r, desc := range descs {
		require.NoError(t, desc.Validate(r, 2))
		assert.Equal(t, 4, desc.NumCells())
		assert.Equal(t, 18, desc.NumNodes())
		assert.Equal(t, 4, desc.NumGhosts())
		assert.Equal(t, 16-4, desc.NumSides())
		for _, ft := range desc.FaceType {
			assert.Equal(t, 6, ft)
		}
	}
	assert.Equal(t, []float64{0.5, 0, 0}, descs[1].Coordinates[0])
	// Interface check is edge based
	assert.Error(t, CheckInterfaces(descs))
}

func TestCartesian_Errors(t *testing.T) {
	_, err := New([]int{4}, []int{1})
	assert.Error(t, err)
	_, err = New([]int{4, 4}, []int{1})
	assert.Error(t, err)
	_, err = New([]int{2, 4}, []int{3, 1})
	assert.Error(t, err)
	_, err = New([]int{2, 4}, []int{0, 1})
	assert.Error(t, err)
	d := &Decomposition{Cells: []int{2, 2}, Ranks: []int{1, 1}, Origin: []float64{0}}
	_, err = d.Rank(0)
	assert.Error(t, err)
}

func TestCheckInterfaces(t *testing.T) {
	d, err := New([]int{2, 1}, []int{2, 1})
	require.NoError(t, err)
	descs, err := d.All()
	require.NoError(t, err)
	require.NoError(t, CheckInterfaces(descs))

	// Drop rank 1's ghost: the shared edge is now one sided
	descs[1].GhostCellType, descs[1].GhostCellToNode = nil, nil
	descs[1].GhostCellNumber, descs[1].GhostCellRank = nil, nil
	assert.Error(t, CheckInterfaces(descs))

	descs, _ = d.All()
	descs[0].GhostCellNumber[0] = 7
	assert.Error(t, CheckInterfaces(descs))

	descs = []*mesh.Description{{Dimension: 3}}
	assert.Error(t, CheckInterfaces(descs))
}

func TestCartesian_Box(t *testing.T) {
	d, err := New([]int{2, 2}, []int{1, 1})
	require.NoError(t, err)
	d.Origin, d.Extent = []float64{-1, -1}, []float64{1, 1, 1}
	_, err = d.Rank(0)
	assert.Error(t, err)
	d.Extent = []float64{4, 2}
	desc, err := d.Rank(0)
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, -1}, desc.Coordinates[0])
	assert.Equal(t, []float64{3, 1}, desc.Coordinates[8])
}
