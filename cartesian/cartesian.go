// Package cartesian generates block decomposed structured meshes as per-rank
// partition descriptions. It is the mesh source for the build command and a
// fixture generator for the connectivity tests.
package cartesian

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/ddmesh/mesh"
	"github.com/notargets/ddmesh/types"
	"github.com/notargets/ddmesh/utils"
)

// Wall names one side of the box domain
type Wall uint8

const (
	XMin Wall = iota
	XMax
	YMin
	YMax
	ZMin
	ZMax
)

func (w Wall) String() string {
	return [...]string{"xmin", "xmax", "ymin", "ymax", "zmin", "zmax"}[w]
}

// Decomposition is a box of Cells[d] cells per axis split into Ranks[d] blocks
// per axis. Rank r owns block (px, py, pz) with r = px + PX*(py + PY*pz).
type Decomposition struct {
	Cells  []int
	Ranks  []int
	Origin []float64 // Defaults to zero
	Extent []float64 // Domain length per axis, defaults to one per cell
	Flags  [6]types.BCFLAG

	Geometry mesh.Geometry

	parts []*utils.PartitionMap
}

// New checks the decomposition and prepares the per-axis partition maps
func New(cells, ranks []int) (*Decomposition, error) {
	d := &Decomposition{Cells: cells, Ranks: ranks}
	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Decomposition) init() error {
	dim := len(d.Cells)
	if dim != 2 && dim != 3 {
		return fmt.Errorf("decomposition needs 2 or 3 axes, have %d", dim)
	}
	if len(d.Ranks) != dim {
		return fmt.Errorf("%d rank counts for %d axes", len(d.Ranks), dim)
	}
	if err := d.checkBox(); err != nil {
		return err
	}
	d.parts = make([]*utils.PartitionMap, dim)
	for a := 0; a < dim; a++ {
		if d.Ranks[a] < 1 || d.Cells[a] < d.Ranks[a] {
			return fmt.Errorf("axis %d: cannot split %d cells over %d ranks", a, d.Cells[a], d.Ranks[a])
		}
		d.parts[a] = utils.NewPartitionMap(d.Ranks[a], d.Cells[a])
	}
	return nil
}

func (d *Decomposition) checkBox() error {
	dim := len(d.Cells)
	if d.Origin != nil && len(d.Origin) != dim {
		return fmt.Errorf("origin has %d components, want %d", len(d.Origin), dim)
	}
	if d.Extent != nil && len(d.Extent) != dim {
		return fmt.Errorf("extent has %d components, want %d", len(d.Extent), dim)
	}
	return nil
}

func (d *Decomposition) Dimension() int { return len(d.Cells) }

// NumRanks is the product of the per-axis rank counts
func (d *Decomposition) NumRanks() (n int) {
	n = 1
	for _, r := range d.Ranks {
		n *= r
	}
	return
}

// block returns the per-axis block coordinates of rank
func (d *Decomposition) block(rank int) (p [3]int) {
	for a, r := range d.Ranks {
		p[a] = rank % r
		rank /= r
	}
	return
}

func (d *Decomposition) rankOf(p [3]int) (rank int) {
	for a := len(d.Ranks) - 1; a >= 0; a-- {
		rank = rank*d.Ranks[a] + p[a]
	}
	return
}

// Face directions, in the face enumeration order of mesh.CellFaces
var (
	quadDirs = [][3]int{{0, -1, 0}, {1, 0, 0}, {0, 1, 0}, {-1, 0, 0}}
	hexDirs  = [][3]int{{0, 0, -1}, {0, 0, 1}, {0, -1, 0}, {1, 0, 0}, {0, 1, 0}, {-1, 0, 0}}
)

func wallOf(dir [3]int) Wall {
	for a := 0; a < 3; a++ {
		switch dir[a] {
		case -1:
			return Wall(2 * a)
		case 1:
			return Wall(2*a + 1)
		}
	}
	panic("zero direction")
}

// block-local structured indexing
type box struct {
	n [3]int // Cell count per axis, 1 on unused axes
}

func (b box) cell(i [3]int) int { return i[0] + b.n[0]*(i[1]+b.n[1]*i[2]) }

func (b box) node(i [3]int, dim int) int {
	nx, ny := b.n[0]+1, b.n[1]+1
	if dim == 2 {
		return i[0] + nx*i[1]
	}
	return i[0] + nx*(i[1]+ny*i[2])
}

func (d *Decomposition) boxOf(p [3]int) (b box) {
	b.n = [3]int{1, 1, 1}
	for a, pm := range d.parts {
		b.n[a] = pm.GetBucketDimension(p[a])
	}
	return
}

// globalK maps block-local index i along axis to the global one
func (d *Decomposition) globalK(axis, i int, p [3]int) int {
	if axis >= len(d.parts) {
		return i
	}
	return d.parts[axis].GetGlobalK(i, p[axis])
}

// Rank builds the partition description owned by rank
func (d *Decomposition) Rank(rank int) (*mesh.Description, error) {
	if d.parts == nil {
		if err := d.init(); err != nil {
			return nil, err
		}
	} else if err := d.checkBox(); err != nil {
		return nil, err
	}
	if rank < 0 || rank >= d.NumRanks() {
		return nil, fmt.Errorf("rank %d outside [0,%d)", rank, d.NumRanks())
	}
	var (
		dim   = d.Dimension()
		p     = d.block(rank)
		b     = d.boxOf(p)
		desc  = &mesh.Description{Dimension: dim, Geometry: d.Geometry}
		nn    = [3]int{b.n[0] + 1, b.n[1] + 1, 1}
		dirs  = quadDirs
		shape = mesh.Polygon
		axes  = d.axes()
	)
	if dim == 3 {
		nn[2] = b.n[2] + 1
		dirs, shape = hexDirs, mesh.Hex
	}

	// Nodes
	for k := 0; k < nn[2]; k++ {
		for j := 0; j < nn[1]; j++ {
			for i := 0; i < nn[0]; i++ {
				var g [3]int
				for a, l := range [3]int{i, j, k} {
					g[a] = d.globalK(a, l, p)
				}
				x := make([]float64, dim)
				for a := 0; a < dim; a++ {
					x[a] = axes[a][g[a]]
				}
				desc.Coordinates = append(desc.Coordinates, x)
				desc.GlobalNodeNumber = append(desc.GlobalNodeNumber, d.globalNode(g))
			}
		}
	}

	// Cells, then each cell's faces in enumeration order
	for k := 0; k < b.n[2]; k++ {
		for j := 0; j < b.n[1]; j++ {
			for i := 0; i < b.n[0]; i++ {
				ix := [3]int{i, j, k}
				v := b.cellNodes(ix, dim)
				desc.CellType = append(desc.CellType, len(v))
				desc.FaceType = append(desc.FaceType, len(dirs))
				desc.CellToNode = append(desc.CellToNode, v...)
				for f, face := range mesh.CellFaces(shape, v) {
					d.classify(desc, p, ix, dirs[f], face)
				}
			}
		}
	}
	return desc, nil
}

// cellNodes lists the nodes of cell ix counterclockwise, bottom layer first
func (b box) cellNodes(ix [3]int, dim int) []int {
	at := func(di, dj, dk int) int {
		return b.node([3]int{ix[0] + di, ix[1] + dj, ix[2] + dk}, dim)
	}
	if dim == 2 {
		return []int{at(0, 0, 0), at(1, 0, 0), at(1, 1, 0), at(0, 1, 0)}
	}
	return []int{
		at(0, 0, 0), at(1, 0, 0), at(1, 1, 0), at(0, 1, 0),
		at(0, 0, 1), at(1, 0, 1), at(1, 1, 1), at(0, 1, 1),
	}
}

// classify records face as a side, a ghost or nothing (interior)
func (d *Decomposition) classify(desc *mesh.Description, p [3]int, ix, dir [3]int, face []int) {
	var (
		across [3]int // global cell across the face
		local  = ix   // its index within the owning block
		q      = p
	)
	for a := 0; a < 3; a++ {
		across[a] = d.globalK(a, ix[a], p) + dir[a]
	}
	for a := range d.Cells {
		if across[a] < 0 || across[a] >= d.Cells[a] {
			desc.SideFlag = append(desc.SideFlag, int(d.Flags[wallOf(dir)]))
			desc.SideNodeCount = append(desc.SideNodeCount, len(face))
			desc.SideToNode = append(desc.SideToNode, face...)
			return
		}
		if dir[a] != 0 {
			local[a], _, q[a] = d.parts[a].GetLocalK(across[a])
		}
	}
	if q == p {
		return
	}
	nb := d.boxOf(q)
	desc.GhostCellType = append(desc.GhostCellType, len(face))
	desc.GhostCellToNode = append(desc.GhostCellToNode, face...)
	desc.GhostCellNumber = append(desc.GhostCellNumber, nb.cell(local))
	desc.GhostCellRank = append(desc.GhostCellRank, d.rankOf(q))
}

// axes lists the evenly spaced node positions along each axis
func (d *Decomposition) axes() [][]float64 {
	axes := make([][]float64, d.Dimension())
	for a, n := range d.Cells {
		lo, length := 0., float64(n)
		if d.Origin != nil {
			lo = d.Origin[a]
		}
		if d.Extent != nil {
			length = d.Extent[a]
		}
		axes[a] = floats.Span(make([]float64, n+1), lo, lo+length)
	}
	return axes
}

func (d *Decomposition) globalNode(g [3]int) uint64 {
	nx, ny := d.Cells[0]+1, d.Cells[1]+1
	return uint64(g[0] + nx*(g[1]+ny*g[2]))
}

// All builds every rank's description in rank order
func (d *Decomposition) All() (descs []*mesh.Description, err error) {
	descs = make([]*mesh.Description, d.NumRanks())
	for r := range descs {
		if descs[r], err = d.Rank(r); err != nil {
			return nil, err
		}
	}
	return
}
