package source

import (
	"encoding/hex"
	"net/url"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/xerrors"

	"github.com/cave-go/versioninfo/pkg/attribute"
	"github.com/cave-go/versioninfo/pkg/log"
	"github.com/cave-go/versioninfo/pkg/source/buildvars"
	"github.com/cave-go/versioninfo/pkg/types"
	"github.com/cave-go/versioninfo/pkg/versioninfo"
)

const (
	develVersion = "(devel)"

	settingVCSTime = "vcs.time"
	settingGCFlags = "-gcflags"

	configurationDebug   = "debug"
	configurationRelease = "release"
)

// BuildInfo derives attributes from the build info embedded by the Go toolchain
// and from the link-time variables in package buildvars. Link-time values win.
type BuildInfo struct {
	info   *debug.BuildInfo
	vars   buildvars.Vars
	logger *log.Logger
}

func NewBuildInfo(info *debug.BuildInfo, vars buildvars.Vars) BuildInfo {
	return BuildInfo{
		info:   info,
		vars:   vars,
		logger: log.WithPrefix("buildinfo"),
	}
}

// ReadBuildInfo returns the source for the running binary.
func ReadBuildInfo() (BuildInfo, error) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return BuildInfo{}, xerrors.New("build info is not available")
	}
	return NewBuildInfo(info, buildvars.Current()), nil
}

func (b BuildInfo) Attributes() ([]attribute.Attribute, error) {
	var attrs []attribute.Attribute
	if b.info != nil {
		attrs = append(attrs, b.fromBuildInfo()...)
	}
	attrs = append(attrs, b.fromVars()...)
	return attrs, nil
}

func (b BuildInfo) fromBuildInfo() []attribute.Attribute {
	var attrs []attribute.Attribute
	if v := b.info.Main.Version; v != "" && v != develVersion {
		attrs = append(attrs, attribute.InformationalVersion(strings.TrimPrefix(v, "v")))
	}

	configuration := configurationRelease
	for _, s := range b.info.Settings {
		switch s.Key {
		case settingVCSTime:
			t, err := time.Parse(time.RFC3339, s.Value)
			if err != nil {
				b.logger.Warn("Invalid VCS time", log.String("value", s.Value), log.Err(err))
				continue
			}
			attrs = append(attrs, attribute.FileVersion(EncodeFileVersion(t)))
		case settingGCFlags:
			if strings.Contains(s.Value, "-N") {
				configuration = configurationDebug
			}
		}
	}
	return append(attrs, attribute.Configuration(configuration))
}

func (b BuildInfo) fromVars() []attribute.Attribute {
	v := b.vars
	var attrs []attribute.Attribute

	texts := []struct {
		value string
		attr  func(string) attribute.Attribute
	}{
		{v.Title, attribute.Title},
		{v.Product, attribute.Product},
		{v.Company, attribute.Company},
		{v.Copyright, attribute.Copyright},
		{v.Description, attribute.Description},
		{v.Trademark, attribute.Trademark},
		{v.Configuration, attribute.Configuration},
		{v.InformationalVersion, attribute.InformationalVersion},
	}
	for _, t := range texts {
		if t.value != "" {
			attrs = append(attrs, t.attr(t.value))
		}
	}

	if v.FileVersion != "" {
		if ver, err := types.ParseVersion(v.FileVersion); err != nil {
			b.skip("fileVersion", v.FileVersion, err)
		} else {
			attrs = append(attrs, attribute.FileVersion(ver))
		}
	}
	if v.SetupVersion != "" {
		if ver, err := types.ParseVersion(v.SetupVersion); err != nil {
			b.skip("setupVersion", v.SetupVersion, err)
		} else {
			attrs = append(attrs, attribute.SetupVersion(ver))
		}
	}
	if v.SetupPackage != "" || v.SetupArguments != "" {
		attrs = append(attrs, attribute.SetupPackage(v.SetupPackage, v.SetupArguments))
	}
	if v.Identifier != "" {
		if id, err := uuid.Parse(v.Identifier); err != nil {
			b.skip("identifier", v.Identifier, err)
		} else {
			attrs = append(attrs, attribute.Identifier(id))
		}
	}
	if v.UpdateURI != "" {
		if u, err := url.Parse(v.UpdateURI); err != nil {
			b.skip("updateURI", v.UpdateURI, err)
		} else {
			attrs = append(attrs, attribute.UpdateURI(u))
		}
	}
	if v.Channel != "" {
		if f, err := types.ParseChannelFlags(v.Channel); err != nil {
			b.skip("channel", v.Channel, err)
		} else {
			attrs = append(attrs, attribute.ChannelFlags(f))
		}
	}
	return attrs
}

func (b BuildInfo) skip(name, value string, err error) {
	b.logger.Warn("Ignoring invalid build variable", log.String("name", name), log.String("value", value), log.Err(err))
}

func (b BuildInfo) Identity() (*versioninfo.Identity, error) {
	id := &versioninfo.Identity{}
	if b.info != nil {
		id.Version = ModuleVersion(b.info.Main.Version)
	}

	if b.vars.CultureID != "" {
		n, err := strconv.Atoi(b.vars.CultureID)
		if err != nil {
			return nil, xerrors.Errorf("invalid culture id %q: %w", b.vars.CultureID, err)
		}
		id.CultureID = n
	}
	if b.vars.PublicKey != "" {
		key, err := hex.DecodeString(b.vars.PublicKey)
		if err != nil {
			return nil, xerrors.Errorf("invalid public key: %w", err)
		}
		id.PublicKey = key
	}
	if b.vars.PublicKeyToken != "" {
		token, err := hex.DecodeString(b.vars.PublicKeyToken)
		if err != nil {
			return nil, xerrors.Errorf("invalid public key token: %w", err)
		}
		id.PublicKeyToken = token
	}
	return id, nil
}

// EncodeFileVersion encodes t as year.MMDD.HHMM, the layout VersionInfo.ReleaseDate decodes.
func EncodeFileVersion(t time.Time) types.Version {
	t = t.UTC()
	return types.NewVersion(t.Year(), int(t.Month())*100+t.Day(), t.Hour()*100+t.Minute())
}

// ModuleVersion turns a module version such as "v1.2.3" or a pseudo-version into a numeric
// version. Anything else, including "(devel)", yields the zero version.
func ModuleVersion(s string) types.Version {
	if s == "" || s == develVersion {
		return types.Version{}
	}
	core := strings.TrimPrefix(s, "v")
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}
	v, err := types.ParseVersion(core)
	if err != nil {
		return types.Version{}
	}
	return v
}
