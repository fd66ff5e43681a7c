package mesh

// openFaces tracks faces not yet claimed by a side or a ghost relation
type openFaces struct {
	faces    []cellFace
	byKey    map[string]int
	consumed []bool
}

func newOpenFaces(faces []cellFace) *openFaces {
	of := &openFaces{
		faces:    faces,
		byKey:    make(map[string]int, len(faces)),
		consumed: make([]bool, len(faces)),
	}
	for i, f := range faces {
		of.byKey[f.key()] = i
	}
	return of
}

// claim consumes the open face with the node set of nodes
func (of *openFaces) claim(nodes []int) (cellFace, bool) {
	i, ok := of.byKey[faceKey(sortedCopy(nodes))]
	if !ok || of.consumed[i] {
		return cellFace{}, false
	}
	of.consumed[i] = true
	return of.faces[i], true
}

func (of *openFaces) remaining() (left []cellFace) {
	for i, f := range of.faces {
		if !of.consumed[i] {
			left = append(left, f)
		}
	}
	return
}

// classifyBoundary attaches every declared side to exactly one open face
func classifyBoundary(of *openFaces, sides [][]int, flags []int) (Layout, error) {
	cs := make(Layout)
	for s, nodes := range sides {
		face, ok := of.claim(nodes)
		if !ok {
			return nil, newError(UnmatchedBoundary, "side %d (flag %d, nodes %v) matches no open face",
				s, flags[s], nodes)
		}
		cs.add(face.cell, Neighbor{
			Kind:  Boundary,
			Index: s,
			Face:  face.local,
			Nodes: face.nodes,
			Flag:  flags[s],
		})
	}
	return cs, nil
}
