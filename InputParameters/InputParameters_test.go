package InputParameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/ddmesh/cartesian"
	"github.com/notargets/ddmesh/mesh"
	"github.com/notargets/ddmesh/types"
)

func TestCaseParameters(t *testing.T) {
	fileInput := []byte(`
Title: Channel
Geometry: AxiRZ
Cells: [8, 4]
Ranks: [2, 2]
Extent: [2., 1.]
BCs:
  xmin: Inflow
  XMax: Out
  ymin: Wall
  ymax: Symmetry
Transport: nats
NatsURL: nats://localhost:4222
Timeout: 30
`)
	var input CaseParameters
	require.NoError(t, input.Parse(fileInput))
	assert.Equal(t, "Channel", input.Title)
	assert.Equal(t, []int{8, 4}, input.Cells)
	assert.Equal(t, "Out", input.BCs["XMax"])
	assert.Equal(t, 30., input.Timeout)
	input.Print()

	d, err := input.Decomposition()
	require.NoError(t, err)
	assert.Equal(t, 4, d.NumRanks())
	assert.Equal(t, mesh.AxiRZ, d.Geometry)
	assert.Equal(t, types.BC_In, d.Flags[cartesian.XMin])
	assert.Equal(t, types.BC_Out, d.Flags[cartesian.XMax])
	assert.Equal(t, types.BC_Wall, d.Flags[cartesian.YMin])
	assert.Equal(t, types.BC_Symmetry, d.Flags[cartesian.YMax])
	desc, err := d.Rank(3)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0.5}, desc.Coordinates[0])
	assert.Equal(t, mesh.AxiRZ, desc.Geometry)

	for _, bad := range []string{
		"Cells: [4, 4]\nRanks: [2, 2]\nBCs: {top: Wall}",
		"Cells: [4, 4]\nRanks: [2, 2]\nBCs: {xmin: Plasma}",
		"Cells: [4, 4]\nRanks: [2, 2]\nGeometry: Toroidal",
		"Cells: [4]\nRanks: [2]",
	} {
		var cp CaseParameters
		require.NoError(t, cp.Parse([]byte(bad)))
		_, err = cp.Decomposition()
		assert.Error(t, err, bad)
	}
}
