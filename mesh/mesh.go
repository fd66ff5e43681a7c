// Package mesh builds the connectivity of one rank's partition of a
// domain-decomposed unstructured mesh: local cell-cell, cell-side and
// cell-ghost layouts, and the node-to-remote-cell dual ghost layout that
// every pair of neighboring ranks agrees on through global node numbers.
package mesh

import (
	"context"
	"io"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/notargets/ddmesh/transport"
)

// Mesh is an immutable, fully connected partition
type Mesh struct {
	rank      int
	dimension int
	geometry  Geometry

	shapes      []CellShape
	cells       [][]int
	coordinates [][]float64
	globals     []uint64
	sideFlags   []int

	ghostCellNumber []int
	ghostCellRank   []int

	cc, cs, cg Layout
	ngc        DualGhostLayout
	nc         DualLayout
}

type options struct {
	log     logrus.FieldLogger
	metrics *Metrics
	tag     string
}

// Option configures NewMesh
type Option func(*options)

// WithLogger sets the logger used during construction
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics records construction outcomes into m
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTag labels the ghost exchange messages of this construction. Every rank
// of one mesh must use the same tag, and concurrent constructions sharing a
// transport must use different ones.
func WithTag(tag string) Option {
	return func(o *options) { o.tag = tag }
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// NewMesh validates d and builds every layout. It blocks in the ghost
// exchange until a message from each other rank of tp has arrived. The
// construction either fully succeeds or returns an error whose Kind tells the
// failure apart.
func NewMesh(ctx context.Context, d *Description, tp transport.Transport, opts ...Option) (m *Mesh, err error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = discardLogger()
	}
	if tp == nil {
		tp = transport.Serial{}
	}
	log := o.log.WithField("rank", tp.Rank())
	defer func() {
		o.metrics.observeBuild(err)
		if err != nil {
			log.WithField("kind", KindOf(err)).WithError(err).Error("mesh construction failed")
		}
	}()

	if d == nil {
		return nil, newError(InvalidTopology, "no partition description")
	}
	if err = d.Validate(tp.Rank(), tp.Size()); err != nil {
		return nil, err
	}
	m = &Mesh{
		rank:            tp.Rank(),
		dimension:       d.Dimension,
		geometry:        d.Geometry,
		cells:           split(d.CellType, append([]int(nil), d.CellToNode...)),
		coordinates:     cloneCoordinates(d.Coordinates),
		globals:         append([]uint64(nil), d.GlobalNodeNumber...),
		sideFlags:       append([]int(nil), d.SideFlag...),
		ghostCellNumber: append([]int(nil), d.GhostCellNumber...),
		ghostCellRank:   append([]int(nil), d.GhostCellRank...),
	}
	m.shapes = make([]CellShape, len(m.cells))
	for c, nodes := range m.cells {
		m.shapes[c], _ = ShapeOf(d.Dimension, len(nodes))
	}

	// Local Topology Index
	ni, err := NewNodeIndex(d.NumNodes(), d.CellType, d.CellToNode)
	if err != nil {
		return nil, err
	}
	m.nc = ni.dual(m.shapes, m.cells)

	// Face Matcher
	fm, err := matchFaces(ni, m.shapes, m.cells)
	if err != nil {
		return nil, err
	}
	m.cc = fm.cc
	log.WithFields(logrus.Fields{"cells": len(m.cells), "interior": fm.cc.Count() / 2,
		"open": len(fm.open)}).Debug("local faces matched")

	// Boundary Classifier
	of := newOpenFaces(fm.open)
	if m.cs, err = classifyBoundary(of, split(d.SideNodeCount, d.SideToNode), d.SideFlag); err != nil {
		return nil, err
	}

	// Ghost Stitcher
	var rels []*ghostRelation
	if m.cg, rels, err = stitchLocal(of, split(d.GhostCellType, d.GhostCellToNode),
		d.GhostCellNumber, d.GhostCellRank); err != nil {
		return nil, err
	}
	st := &stitcher{
		tp:      tp,
		log:     log,
		metrics: o.metrics,
		tag:     o.tag,
		shapes:  m.shapes,
		cells:   m.cells,
		globals: m.globals,
		g2l:     make(map[uint64]int, len(m.globals)),
		rels:    rels,
	}
	for n, g := range m.globals {
		st.g2l[g] = n
	}
	if m.ngc, err = st.exchange(ctx); err != nil {
		return nil, err
	}

	o.metrics.observeFaces(Interior, m.cc.Count())
	o.metrics.observeFaces(Boundary, m.cs.Count())
	o.metrics.observeFaces(Ghost, m.cg.Count())
	log.WithFields(logrus.Fields{"sides": m.cs.Count(), "ghosts": m.cg.Count(),
		"shared_nodes": len(m.ngc)}).Info("mesh constructed")
	return m, nil
}

func cloneCoordinates(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, p := range x {
		out[i] = append([]float64(nil), p...)
	}
	return out
}

func (m *Mesh) Rank() int          { return m.rank }
func (m *Mesh) Dimension() int     { return m.dimension }
func (m *Mesh) Geometry() Geometry { return m.geometry }
func (m *Mesh) NumCells() int      { return len(m.cells) }
func (m *Mesh) NumNodes() int      { return len(m.coordinates) }
func (m *Mesh) NumSides() int      { return len(m.sideFlags) }

func (m *Mesh) GhostCellNumbers() []int { return append([]int(nil), m.ghostCellNumber...) }
func (m *Mesh) GhostCellRanks() []int   { return append([]int(nil), m.ghostCellRank...) }
func (m *Mesh) SideFlags() []int        { return append([]int(nil), m.sideFlags...) }
func (m *Mesh) GlobalNodeNumbers() []uint64 {
	return append([]uint64(nil), m.globals...)
}
func (m *Mesh) Coordinates() [][]float64 { return cloneCoordinates(m.coordinates) }

// CellToCell is the local cell-cell layout
func (m *Mesh) CellToCell() Layout { return m.cc.Clone() }

// CellToSide is the cell to boundary side layout
func (m *Mesh) CellToSide() Layout { return m.cs.Clone() }

// CellToGhost is the cell to ghost cell layout
func (m *Mesh) CellToGhost() Layout { return m.cg.Clone() }

// NodeToGhostCell is the dual ghost layout
func (m *Mesh) NodeToGhostCell() DualGhostLayout { return m.ngc.Clone() }

// NodeToCell is the local node to cell dual layout
func (m *Mesh) NodeToCell() DualLayout { return m.nc.Clone() }

// CellShape returns the face-enumeration shape of cell
func (m *Mesh) CellShape(cell int) CellShape { return m.shapes[cell] }

// CellNodes returns the nodes of cell in the winding used by the layouts
func (m *Mesh) CellNodes(cell int) []int {
	return append([]int(nil), m.cells[cell]...)
}

// CellFaces returns every neighbor record of cell, whatever its kind,
// ordered by face number
func (m *Mesh) CellFaces(cell int) []Neighbor {
	out := make([]Neighbor, 0, m.shapes[cell].NumFaces(len(m.cells[cell])))
	for _, l := range []Layout{m.cc, m.cs, m.cg} {
		for _, nb := range l[cell] {
			nb.Nodes = append([]int(nil), nb.Nodes...)
			out = append(out, nb)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Face < out[j].Face })
	return out
}

// FlattenCellToNode rebuilds the flattened cell-to-node linkage from the
// three cell layouts: each cell's nodes are the union of its face nodes, in
// order of first appearance by face number.
func (m *Mesh) FlattenCellToNode() (linkage []int) {
	for c := range m.cells {
		seen := make(map[int]bool)
		for _, nb := range m.CellFaces(c) {
			for _, n := range nb.Nodes {
				if !seen[n] {
					seen[n] = true
					linkage = append(linkage, n)
				}
			}
		}
	}
	return
}
