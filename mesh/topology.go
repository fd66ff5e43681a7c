package mesh

// Occurrence is one appearance of a node inside a cell
type Occurrence struct {
	Cell     int
	Position int // Index of the node within the cell's node list
}

// NodeIndex is the node -> incident cells index of a partition. Occurrences
// for a node are ordered by cell, then position.
type NodeIndex struct {
	occurrences [][]Occurrence
}

// NewNodeIndex builds the index from a flattened cell-to-node linkage
func NewNodeIndex(numNodes int, cellType, cellToNode []int) (*NodeIndex, error) {
	ni := &NodeIndex{occurrences: make([][]Occurrence, numNodes)}
	offset := 0
	for cell, nn := range cellType {
		if offset+nn > len(cellToNode) {
			return nil, newError(InvalidTopology, "cell %d runs past the end of the linkage", cell)
		}
		for pos, node := range cellToNode[offset : offset+nn] {
			if node < 0 || node >= numNodes {
				return nil, newError(InvalidTopology, "cell %d position %d: node %d outside [0,%d)",
					cell, pos, node, numNodes)
			}
			ni.occurrences[node] = append(ni.occurrences[node], Occurrence{cell, pos})
		}
		offset += nn
	}
	if offset != len(cellToNode) {
		return nil, newError(InvalidTopology, "linkage has %d entries, cell types sum to %d",
			len(cellToNode), offset)
	}
	return ni, nil
}

// NumNodes is the size of the indexed node range
func (ni *NodeIndex) NumNodes() int { return len(ni.occurrences) }

// Occurrences returns the cells touching node
func (ni *NodeIndex) Occurrences(node int) []Occurrence {
	return ni.occurrences[node]
}

// dual converts the index into the node-to-cell dual layout
func (ni *NodeIndex) dual(shapes []CellShape, cells [][]int) DualLayout {
	dl := make(DualLayout)
	for node, occs := range ni.occurrences {
		for _, o := range occs {
			dl[node] = append(dl[node], CellNodes{
				Cell:  o.Cell,
				Nodes: AdjacentNodes(shapes[o.Cell], cells[o.Cell], node),
			})
		}
	}
	return dl
}
