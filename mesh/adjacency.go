package mesh

import (
	"github.com/james-bowman/sparse"
)

// CellAdjacency returns the local cell graph as a NumCells x NumCells CSR
// matrix; entry (i,j) is the number of faces cells i and j share. A
// partition without cells has no matrix.
func (m *Mesh) CellAdjacency() *sparse.CSR {
	k := len(m.cells)
	if k == 0 {
		return nil
	}
	dok := sparse.NewDOK(k, k)
	for _, c := range m.cc.Cells() {
		for _, nb := range m.cc[c] {
			dok.Set(c, nb.Index, dok.At(c, nb.Index)+1)
		}
	}
	return dok.ToCSR()
}
