package InputParameters

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ghodss/yaml"

	"github.com/notargets/ddmesh/cartesian"
	"github.com/notargets/ddmesh/mesh"
	"github.com/notargets/ddmesh/types"
)

// Parameters obtained from the YAML case file
type CaseParameters struct {
	Title         string            `json:"Title"`
	Geometry      string            `json:"Geometry"`
	Cells         []int             `json:"Cells"`  // Global cells per axis, 2 or 3 entries
	Ranks         []int             `json:"Ranks"`  // Ranks per axis
	Origin        []float64         `json:"Origin"` // Optional
	Extent        []float64         `json:"Extent"` // Optional
	BCs           map[string]string `json:"BCs"`    // Wall name (xmin ... zmax) -> boundary condition
	Transport     string            `json:"Transport"`
	NatsURL       string            `json:"NatsURL"`
	SubjectPrefix string            `json:"SubjectPrefix"`
	Timeout       float64           `json:"Timeout"` // Seconds, zero waits forever
}

func (cp *CaseParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, cp)
}

func (cp *CaseParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", cp.Title)
	fmt.Printf("[%s]\t\t= Geometry\n", cp.Geometry)
	fmt.Printf("%v\t\t\t= Cells\n", cp.Cells)
	fmt.Printf("%v\t\t\t= Ranks\n", cp.Ranks)
	fmt.Printf("[%s]\t\t\t= Transport\n", cp.Transport)
	keys := make([]string, len(cp.BCs))
	i := 0
	for k := range cp.BCs {
		keys[i] = k
		i++
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("BCs[%s] = %v\n", key, cp.BCs[key])
	}
}

// Decomposition converts the case into a block decomposition
func (cp *CaseParameters) Decomposition() (d *cartesian.Decomposition, err error) {
	if d, err = cartesian.New(cp.Cells, cp.Ranks); err != nil {
		return
	}
	d.Origin, d.Extent = cp.Origin, cp.Extent
	if d.Geometry, err = mesh.ParseGeometry(cp.Geometry); err != nil {
		return nil, err
	}
	walls := make(map[string]cartesian.Wall)
	for w := cartesian.XMin; w <= cartesian.ZMax; w++ {
		walls[w.String()] = w
	}
	for name, bc := range cp.BCs {
		w, ok := walls[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown wall %q, want one of xmin, xmax, ymin, ymax, zmin, zmax", name)
		}
		if d.Flags[w], err = types.NewBCFLAG(bc); err != nil {
			return nil, err
		}
	}
	return
}
