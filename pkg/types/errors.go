package types

import "golang.org/x/xerrors"

var (
	// ErrInvalidArgument is returned when a required input is missing.
	ErrInvalidArgument = xerrors.New("invalid argument")
	// ErrIncompatibleComparison is returned when descriptors of different software are ordered.
	ErrIncompatibleComparison = xerrors.New("software name does not match")
	// ErrUnsupportedFormat is returned for an unknown rendering format.
	ErrUnsupportedFormat = xerrors.New("unsupported format")
)
