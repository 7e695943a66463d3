// Package source supplies attributes and identities to the extractor.
package source

import (
	"golang.org/x/xerrors"

	"github.com/cave-go/versioninfo/pkg/attribute"
	"github.com/cave-go/versioninfo/pkg/types"
	"github.com/cave-go/versioninfo/pkg/versioninfo"
)

type Source interface {
	Attributes() ([]attribute.Attribute, error)
	// Identity may return nil when the source knows nothing about the module identity.
	Identity() (*versioninfo.Identity, error)
}

// Extract reads src and runs the extractor on it.
func Extract(src Source) (versioninfo.VersionInfo, error) {
	if src == nil {
		return versioninfo.VersionInfo{}, xerrors.Errorf("source is nil: %w", types.ErrInvalidArgument)
	}

	attrs, err := src.Attributes()
	if err != nil {
		return versioninfo.VersionInfo{}, xerrors.Errorf("attribute error: %w", err)
	}
	id, err := src.Identity()
	if err != nil {
		return versioninfo.VersionInfo{}, xerrors.Errorf("identity error: %w", err)
	}
	return versioninfo.Extract(attribute.List(attrs), id)
}

type merged []Source

// Merge combines sources. Attributes of later sources override earlier ones
// and the identity comes from the last source that has one.
func Merge(sources ...Source) Source {
	return merged(sources)
}

func (m merged) Attributes() ([]attribute.Attribute, error) {
	var attrs []attribute.Attribute
	for _, src := range m {
		a, err := src.Attributes()
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, a...)
	}
	return attrs, nil
}

func (m merged) Identity() (*versioninfo.Identity, error) {
	var id *versioninfo.Identity
	for _, src := range m {
		i, err := src.Identity()
		if err != nil {
			return nil, err
		}
		if i != nil {
			id = i
		}
	}
	return id, nil
}
