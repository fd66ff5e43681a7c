package mesh

// Description is one rank's raw partition: flattened cell, side and ghost
// linkages with explicit counts, plus node coordinates and global node ids.
type Description struct {
	Dimension int
	Geometry  Geometry

	// Cells
	CellType   []int // Node count per cell
	CellToNode []int // Flattened local node indices, len == sum(CellType)
	FaceType   []int // Face count per cell, checked against the cell shape

	// Sides on the problem boundary
	SideFlag      []int // Boundary condition tag per side
	SideNodeCount []int
	SideToNode    []int

	// Nodes
	Coordinates      [][]float64 // [numNodes][Dimension]
	GlobalNodeNumber []uint64    // Partition independent node id

	// Ghost relations, one per face shared with a remote cell
	GhostCellType   []int // Node count of the shared face
	GhostCellToNode []int // This rank's local nodes of the shared face
	GhostCellNumber []int // Cell index on the owning rank
	GhostCellRank   []int // Owning rank
}

func (d *Description) NumCells() int { return len(d.CellType) }
func (d *Description) NumNodes() int { return len(d.Coordinates) }
func (d *Description) NumSides() int { return len(d.SideNodeCount) }
func (d *Description) NumGhosts() int {
	return len(d.GhostCellType)
}

// Validate checks the description for the given rank of size ranks. Every
// failure is an InvalidTopology error.
func (d *Description) Validate(rank, size int) error {
	if d.Dimension != 2 && d.Dimension != 3 {
		return newError(InvalidTopology, "dimension %d not in {2,3}", d.Dimension)
	}
	if d.Geometry > Spherical {
		return newError(InvalidTopology, "unknown geometry %v", d.Geometry)
	}
	numNodes := d.NumNodes()
	if len(d.GlobalNodeNumber) != numNodes {
		return newError(InvalidTopology, "%d global node numbers for %d nodes",
			len(d.GlobalNodeNumber), numNodes)
	}
	for n, x := range d.Coordinates {
		if len(x) != d.Dimension {
			return newError(InvalidTopology, "node %d has %d coordinates, want %d",
				n, len(x), d.Dimension)
		}
	}
	seen := make(map[uint64]int, numNodes)
	for n, g := range d.GlobalNodeNumber {
		if prev, ok := seen[g]; ok {
			return newError(InvalidTopology, "global node %d used by local nodes %d and %d",
				g, prev, n)
		}
		seen[g] = n
	}

	// Cells
	if len(d.FaceType) != len(d.CellType) {
		return newError(InvalidTopology, "%d face types for %d cells",
			len(d.FaceType), len(d.CellType))
	}
	if err := checkLinkage("cell", d.CellType, d.CellToNode, numNodes); err != nil {
		return err
	}
	offset := 0
	for c, nn := range d.CellType {
		shape, ok := ShapeOf(d.Dimension, nn)
		if !ok {
			return newError(InvalidTopology, "cell %d: no %dD cell with %d nodes",
				c, d.Dimension, nn)
		}
		if want := shape.NumFaces(nn); d.FaceType[c] != want {
			return newError(InvalidTopology, "cell %d: %s has %d faces, face type says %d",
				c, shape, want, d.FaceType[c])
		}
		nodes := d.CellToNode[offset : offset+nn]
		used := make(map[int]bool, nn)
		for _, n := range nodes {
			if used[n] {
				return newError(InvalidTopology, "cell %d repeats node %d", c, n)
			}
			used[n] = true
		}
		offset += nn
	}

	// Sides
	if len(d.SideFlag) != len(d.SideNodeCount) {
		return newError(InvalidTopology, "%d side flags for %d sides",
			len(d.SideFlag), len(d.SideNodeCount))
	}
	if err := checkLinkage("side", d.SideNodeCount, d.SideToNode, numNodes); err != nil {
		return err
	}

	// Ghosts
	ng := len(d.GhostCellType)
	if len(d.GhostCellNumber) != ng || len(d.GhostCellRank) != ng {
		return newError(InvalidTopology, "ghost tables disagree: %d types, %d numbers, %d ranks",
			ng, len(d.GhostCellNumber), len(d.GhostCellRank))
	}
	if err := checkLinkage("ghost cell", d.GhostCellType, d.GhostCellToNode, numNodes); err != nil {
		return err
	}
	for g, r := range d.GhostCellRank {
		if r < 0 || r >= size || r == rank {
			return newError(InvalidTopology, "ghost %d: owning rank %d invalid on rank %d of %d",
				g, r, rank, size)
		}
		if d.GhostCellNumber[g] < 0 {
			return newError(InvalidTopology, "ghost %d: negative cell number %d",
				g, d.GhostCellNumber[g])
		}
	}
	return nil
}

func checkLinkage(what string, counts, linkage []int, numNodes int) error {
	total := 0
	for i, c := range counts {
		if c <= 0 {
			return newError(InvalidTopology, "%s %d has %d nodes", what, i, c)
		}
		total += c
	}
	if total != len(linkage) {
		return newError(InvalidTopology, "%s linkage has %d entries, counts sum to %d",
			what, len(linkage), total)
	}
	for i, n := range linkage {
		if n < 0 || n >= numNodes {
			return newError(InvalidTopology, "%s linkage entry %d: node %d outside [0,%d)",
				what, i, n, numNodes)
		}
	}
	return nil
}

// split cuts a flattened linkage into per-entity slices (sharing storage)
func split(counts, linkage []int) [][]int {
	out := make([][]int, len(counts))
	offset := 0
	for i, c := range counts {
		out[i] = linkage[offset : offset+c : offset+c]
		offset += c
	}
	return out
}
