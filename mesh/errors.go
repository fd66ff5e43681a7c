package mesh

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

// Kind classifies a construction failure.
type Kind uint8

const (
	KindNone Kind = iota
	InvalidTopology
	AmbiguousTopology
	UnmatchedBoundary
	UnclosedMesh
	GhostMismatch
	DuplicateGhostRelation
	TransportFailure
)

func (k Kind) String() string {
	return [...]string{"None", "InvalidTopology", "AmbiguousTopology",
		"UnmatchedBoundary", "UnclosedMesh", "GhostMismatch",
		"DuplicateGhostRelation", "TransportFailure"}[k]
}

var (
	ErrInvalidTopology        = stderrors.New("invalid topology")
	ErrAmbiguousTopology      = stderrors.New("ambiguous topology")
	ErrUnmatchedBoundary      = stderrors.New("unmatched boundary")
	ErrUnclosedMesh           = stderrors.New("unclosed mesh")
	ErrGhostMismatch          = stderrors.New("ghost mismatch")
	ErrDuplicateGhostRelation = stderrors.New("duplicate ghost relation")
	ErrTransport              = stderrors.New("transport failure")
)

var kindErrors = map[Kind]error{
	InvalidTopology:        ErrInvalidTopology,
	AmbiguousTopology:      ErrAmbiguousTopology,
	UnmatchedBoundary:      ErrUnmatchedBoundary,
	UnclosedMesh:           ErrUnclosedMesh,
	GhostMismatch:          ErrGhostMismatch,
	DuplicateGhostRelation: ErrDuplicateGhostRelation,
	TransportFailure:       ErrTransport,
}

// KindOf reports which construction failure err carries, or KindNone.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	for k := InvalidTopology; k <= TransportFailure; k++ {
		if stderrors.Is(err, kindErrors[k]) {
			return k
		}
	}
	return KindNone
}

func newError(kind Kind, format string, args ...interface{}) error {
	return errors.Wrapf(kindErrors[kind], format, args...)
}

// transportError keeps both ErrTransport and the transport's own cause
// reachable through errors.Is / errors.As.
type transportError struct {
	peer int
	op   string
	err  error
}

func (e *transportError) Error() string {
	return errors.Wrapf(e.err, "%s: %s rank %d", ErrTransport, e.op, e.peer).Error()
}

func (e *transportError) Unwrap() []error { return []error{ErrTransport, e.err} }

func wrapTransport(op string, peer int, err error) error {
	return &transportError{peer: peer, op: op, err: err}
}
