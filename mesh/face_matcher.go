package mesh

// faceMatch is the result of pairing local faces
type faceMatch struct {
	faces [][]cellFace // [cell][local face]
	cc    Layout
	open  []cellFace // Faces without a local partner, in discovery order
}

// enumerateFaces lists every face of every cell
func enumerateFaces(shapes []CellShape, cells [][]int) [][]cellFace {
	faces := make([][]cellFace, len(cells))
	for c, nodes := range cells {
		fv := CellFaces(shapes[c], nodes)
		faces[c] = make([]cellFace, len(fv))
		for f, fn := range fv {
			faces[c][f] = newCellFace(c, f, fn)
		}
	}
	return faces
}

// matchFaces pairs faces of distinct cells with identical node sets. Only
// cells incident on a face's lowest node are candidates, so the work is
// proportional to the face count times the local node valence.
func matchFaces(ni *NodeIndex, shapes []CellShape, cells [][]int) (*faceMatch, error) {
	fm := &faceMatch{
		faces: enumerateFaces(shapes, cells),
		cc:    make(Layout),
	}
	matched := make([][]bool, len(cells))
	for c := range cells {
		matched[c] = make([]bool, len(fm.faces[c]))
	}

	type ref struct{ cell, local int }
	for c := range fm.faces {
		for f, face := range fm.faces[c] {
			if matched[c][f] {
				continue
			}
			var hits []ref
			for _, occ := range ni.Occurrences(face.sorted[0]) {
				if occ.Cell == c {
					continue
				}
				for f2, other := range fm.faces[occ.Cell] {
					if sameNodes(face.sorted, other.sorted) {
						hits = append(hits, ref{occ.Cell, f2})
					}
				}
			}
			switch len(hits) {
			case 0:
				fm.open = append(fm.open, face)
			case 1:
				h := hits[0]
				if matched[h.cell][h.local] {
					return nil, newError(AmbiguousTopology,
						"face %v of cell %d matches cell %d face %d, which is already paired",
						face.nodes, c, h.cell, h.local)
				}
				matched[c][f], matched[h.cell][h.local] = true, true
				other := fm.faces[h.cell][h.local]
				fm.cc.add(c, Neighbor{Kind: Interior, Index: h.cell, Face: f, Nodes: face.nodes})
				fm.cc.add(h.cell, Neighbor{Kind: Interior, Index: c, Face: h.local, Nodes: other.nodes})
			default:
				return nil, newError(AmbiguousTopology,
					"face %v of cell %d matches %d other faces", face.nodes, c, len(hits))
			}
		}
	}
	return fm, nil
}
