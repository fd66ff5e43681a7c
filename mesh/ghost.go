package mesh

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/notargets/ddmesh/transport"
)

// ghostRelation is a ghost descriptor resolved to the local face it covers
type ghostRelation struct {
	index      int // Position in the ghost tables
	face       cellFace
	remoteCell int
	rank       int
	confirmed  bool
}

// stitchLocal attaches each ghost descriptor to a remaining open face and
// checks that nothing is left open afterwards.
func stitchLocal(of *openFaces, ghosts [][]int, numbers, ranks []int) (Layout, []*ghostRelation, error) {
	cg := make(Layout)
	rels := make([]*ghostRelation, len(ghosts))
	for g, nodes := range ghosts {
		face, ok := of.claim(nodes)
		if !ok {
			return nil, nil, newError(GhostMismatch,
				"ghost %d (rank %d cell %d, nodes %v) matches no open face",
				g, ranks[g], numbers[g], nodes)
		}
		rels[g] = &ghostRelation{index: g, face: face, remoteCell: numbers[g], rank: ranks[g]}
		cg.add(face.cell, Neighbor{Kind: Ghost, Index: g, Face: face.local, Nodes: face.nodes})
	}
	if left := of.remaining(); len(left) != 0 {
		return nil, nil, newError(UnclosedMesh,
			"%d open faces are neither sides nor ghosts, first is cell %d face %d nodes %v",
			len(left), left[0].cell, left[0].local, left[0].nodes)
	}
	return cg, rels, nil
}

// stitcher runs the cross-rank half of ghost stitching for one partition
type stitcher struct {
	tp      transport.Transport
	log     logrus.FieldLogger
	metrics *Metrics
	tag     string

	shapes  []CellShape
	cells   [][]int
	globals []uint64
	g2l     map[uint64]int
	rels    []*ghostRelation
}

// boundaryRecords describes each local node on a ghost face once, represented
// by the first ghost relation (in descriptor order) that touches it.
func (s *stitcher) boundaryRecords() (recs []transport.NodeRecord) {
	seen := make(map[int]bool)
	for _, rel := range s.rels {
		c := rel.face.cell
		for _, n := range rel.face.nodes {
			if seen[n] {
				continue
			}
			seen[n] = true
			recs = append(recs, transport.NodeRecord{
				GlobalNode: s.globals[n],
				Cell:       c,
				Adjacent:   AdjacentNodes(s.shapes[c], s.cells[c], n),
			})
		}
	}
	return
}

func (s *stitcher) outgoing(nodes []transport.NodeRecord) map[int]*transport.Message {
	me := s.tp.Rank()
	out := make(map[int]*transport.Message, s.tp.Size()-1)
	for r := 0; r < s.tp.Size(); r++ {
		if r != me {
			out[r] = &transport.Message{Source: me, Tag: s.tag, Nodes: nodes}
		}
	}
	for _, rel := range s.rels {
		gn := make([]uint64, len(rel.face.nodes))
		for i, n := range rel.face.nodes {
			gn[i] = s.globals[n]
		}
		msg := out[rel.rank]
		msg.Faces = append(msg.Faces, transport.GhostFace{
			RemoteCell:  rel.remoteCell,
			Cell:        rel.face.cell,
			GlobalNodes: gn,
		})
	}
	return out
}

// exchange sends one message to every other rank, then resolves one message
// from every other rank in ascending rank order.
func (s *stitcher) exchange(ctx context.Context) (DualGhostLayout, error) {
	ngc := make(DualGhostLayout)
	me, size := s.tp.Rank(), s.tp.Size()
	if size == 1 {
		return ngc, nil
	}
	start := time.Now()
	out := s.outgoing(s.boundaryRecords())
	for r := 0; r < size; r++ {
		if r == me {
			continue
		}
		if err := s.tp.Send(ctx, r, out[r]); err != nil {
			return nil, wrapTransport("send to", r, err)
		}
	}
	for r := 0; r < size; r++ {
		if r == me {
			continue
		}
		msg, err := s.tp.Receive(ctx, r, s.tag)
		if err != nil {
			return nil, wrapTransport("receive from", r, err)
		}
		s.log.WithFields(logrus.Fields{"peer": r, "faces": len(msg.Faces), "nodes": len(msg.Nodes)}).
			Debug("ghost exchange message")
		if err = s.resolveFaces(r, msg.Faces); err != nil {
			return nil, err
		}
		if err = s.resolveNodes(r, msg.Nodes, ngc); err != nil {
			return nil, err
		}
	}
	for _, rel := range s.rels {
		if !rel.confirmed {
			return nil, newError(GhostMismatch,
				"ghost %d (rank %d cell %d) was not confirmed by its owner",
				rel.index, rel.rank, rel.remoteCell)
		}
	}
	s.metrics.observeExchange(time.Since(start))
	return ngc, nil
}

// resolveFaces checks every face announced by source against a reciprocal
// local ghost relation
func (s *stitcher) resolveFaces(source int, faces []transport.GhostFace) error {
	for _, gf := range faces {
		if gf.RemoteCell < 0 || gf.RemoteCell >= len(s.cells) {
			return newError(GhostMismatch, "rank %d names local cell %d, have %d cells",
				source, gf.RemoteCell, len(s.cells))
		}
		local := make([]int, len(gf.GlobalNodes))
		for i, g := range gf.GlobalNodes {
			n, ok := s.g2l[g]
			if !ok {
				return newError(GhostMismatch, "rank %d cell %d: global node %d not on this rank",
					source, gf.Cell, g)
			}
			local[i] = n
		}
		sorted := sortedCopy(local)
		var rel *ghostRelation
		for _, cand := range s.rels {
			if cand.rank == source && cand.remoteCell == gf.Cell && !cand.confirmed &&
				cand.face.cell == gf.RemoteCell && sameNodes(cand.face.sorted, sorted) {
				rel = cand
				break
			}
		}
		if rel == nil {
			return newError(GhostMismatch,
				"rank %d cell %d shares nodes %v with local cell %d, no matching ghost declared",
				source, gf.Cell, local, gf.RemoteCell)
		}
		rel.confirmed = true
	}
	return nil
}

// resolveNodes adds one dual layout entry per shared node announced by source
func (s *stitcher) resolveNodes(source int, recs []transport.NodeRecord, ngc DualGhostLayout) error {
	for _, rec := range recs {
		n, ok := s.g2l[rec.GlobalNode]
		if !ok {
			continue
		}
		if ngc.hasRank(n, source) {
			return newError(DuplicateGhostRelation, "node %d (global %d) paired with rank %d twice",
				n, rec.GlobalNode, source)
		}
		ngc[n] = append(ngc[n], GhostNeighbor{
			Remote: RemoteCell{Cell: rec.Cell, Nodes: append([]int(nil), rec.Adjacent...)},
			Rank:   source,
		})
	}
	return nil
}
