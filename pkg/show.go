package pkg

import (
	"fmt"

	"github.com/urfave/cli"
	"golang.org/x/xerrors"

	"github.com/cave-go/versioninfo/pkg/latest"
)

func (ac *AppConfig) show(c *cli.Context) error {
	info, err := ac.loadInfo(c)
	if err != nil {
		return xerrors.Errorf("version info error: %w", err)
	}

	out, err := info.Render(c.String("format"))
	if err != nil {
		return xerrors.Errorf("render error: %w", err)
	}
	fmt.Fprint(c.App.Writer, out)
	return nil
}

func (ac *AppConfig) latest(c *cli.Context) error {
	info, err := ac.loadInfo(c)
	if err != nil {
		return xerrors.Errorf("version info error: %w", err)
	}
	return latest.Encode(c.App.Writer, info.ToLatestVersion())
}
