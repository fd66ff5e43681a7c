package types

import (
	"fmt"
	"strings"
)

// BCFLAG is the boundary condition tag carried by a mesh side
type BCFLAG uint8

const (
	BC_None BCFLAG = iota
	BC_In
	BC_Dirichlet
	BC_Slip
	BC_Far
	BC_Wall
	BC_Cyl
	BC_Neuman
	BC_Out
	BC_Periodic
	BC_Symmetry
)

var BCNameMap = map[string]BCFLAG{
	"none":      BC_None,
	"inflow":    BC_In,
	"in":        BC_In,
	"out":       BC_Out,
	"outflow":   BC_Out,
	"wall":      BC_Wall,
	"far":       BC_Far,
	"cyl":       BC_Cyl,
	"dirichlet": BC_Dirichlet,
	"neuman":    BC_Neuman,
	"slip":      BC_Slip,
	"periodic":  BC_Periodic,
	"symmetry":  BC_Symmetry,
}

func (f BCFLAG) String() string {
	names := [...]string{"None", "In", "Dirichlet", "Slip", "Far", "Wall", "Cyl",
		"Neuman", "Out", "Periodic", "Symmetry"}
	if int(f) < len(names) {
		return names[f]
	}
	return fmt.Sprintf("BCFLAG(%d)", uint8(f))
}

// NewBCFLAG looks up a boundary condition by name, ignoring case
func NewBCFLAG(name string) (BCFLAG, error) {
	if f, ok := BCNameMap[strings.ToLower(strings.TrimSpace(name))]; ok {
		return f, nil
	}
	return BC_None, fmt.Errorf("unknown boundary condition: %q", name)
}
