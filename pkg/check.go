package pkg

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli"
	"golang.org/x/xerrors"

	"github.com/cave-go/versioninfo/pkg/latest"
	"github.com/cave-go/versioninfo/pkg/log"
	"github.com/cave-go/versioninfo/pkg/metadata"
	"github.com/cave-go/versioninfo/pkg/update"
)

func (ac *AppConfig) check(c *cli.Context) error {
	info, err := ac.loadInfo(c)
	if err != nil {
		return xerrors.Errorf("version info error: %w", err)
	}

	location := c.String("latest")
	if location == "" && info.UpdateURI != nil {
		location = info.UpdateURI.String()
	}
	if location == "" {
		return xerrors.New("no LATESTVERSION location: pass --latest or set an update URI")
	}

	var opts []update.Option
	if !c.Bool("no-cache") {
		opts = append(opts, update.WithState(metadata.NewClient(c.String("cache-dir")), c.Duration("interval")))
	}
	log.Debug("Checking for updates", log.String("location", location))

	checker := update.NewChecker(update.NewFetcher(location), opts...)
	if c.Bool("reset") {
		if err = checker.Reset(); err != nil {
			return xerrors.Errorf("update state error: %w", err)
		}
	}

	res, err := checker.Check(context.Background(), info)
	if err != nil {
		return xerrors.Errorf("update check error: %w", err)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Current: %s\n", describe(res.Current))
	fmt.Fprintf(w, "Latest:  %s\n", describe(res.Latest))
	if !res.Latest.ReleaseDate.IsZero() {
		fmt.Fprintf(w, "Released: %s\n", res.Latest.ReleaseDate.Format("2006-01-02 15:04 MST"))
	}
	if !res.Available {
		fmt.Fprintln(w, color.GreenString("Up to date"))
		return nil
	}

	fmt.Fprintln(w, color.YellowString("Update available"))
	if res.Latest.SetupPackage != "" {
		fmt.Fprintf(w, "Package: %s %s\n", res.Latest.SetupPackage, res.Latest.SetupArguments)
	}
	if res.Latest.UpdateURI != nil {
		fmt.Fprintf(w, "Download: %s\n", res.Latest.UpdateURI)
	}
	return nil
}

func describe(d latest.Descriptor) string {
	return fmt.Sprintf("%s setup %s [%s]", d.SoftwareName, d.SetupVersion, d.ChannelFlags.Colorize())
}
