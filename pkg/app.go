package pkg

import (
	"io"
	"time"

	"github.com/urfave/cli"

	"github.com/cave-go/versioninfo/pkg/locator"
	"github.com/cave-go/versioninfo/pkg/log"
	"github.com/cave-go/versioninfo/pkg/program"
	"github.com/cave-go/versioninfo/pkg/utils"
	"github.com/cave-go/versioninfo/pkg/versioninfo"
)

type AppConfig struct {
	// Resolver finds the program module. Defaults to the process-wide locator.
	Resolver program.Resolver
	// SourceFunc overrides the build info source.
	SourceFunc program.SourceFunc
	Writer     io.Writer
}

var manifestFlag = cli.StringFlag{
	Name:  "manifest",
	Usage: "YAML manifest layered over the embedded build info",
}

func (ac *AppConfig) NewApp(version string) *cli.App {
	app := cli.NewApp()
	app.Name = "versioninfo"
	app.Version = version
	app.Usage = "Show version metadata of the running program and check for updates"
	if ac.Writer != nil {
		app.Writer = ac.Writer
	}

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug logging",
		},
	}
	app.Before = func(c *cli.Context) error {
		log.SetDebug(c.GlobalBool("debug"))
		return nil
	}

	app.Commands = []cli.Command{
		{
			Name:   "show",
			Usage:  "print every version field",
			Action: ac.show,
			Flags: []cli.Flag{
				manifestFlag,
				cli.StringFlag{
					Name:  "format",
					Usage: "output format",
					Value: versioninfo.FormatFields,
				},
			},
		},
		{
			Name:   "latest",
			Usage:  "print the LATESTVERSION document describing this program",
			Action: ac.latest,
			Flags:  []cli.Flag{manifestFlag},
		},
		{
			Name:   "check",
			Usage:  "compare this program against a published LATESTVERSION document",
			Action: ac.check,
			Flags: []cli.Flag{
				manifestFlag,
				cli.StringFlag{
					Name:  "latest",
					Usage: "URL or file path of the LATESTVERSION document (defaults to the update URI)",
				},
				cli.StringFlag{
					Name:  "cache-dir",
					Usage: "cache directory path",
					Value: utils.CacheDir(),
				},
				cli.DurationFlag{
					Name:  "interval",
					Usage: "minimum time between two remote checks",
					Value: 24 * time.Hour,
				},
				cli.BoolFlag{
					Name:  "no-cache",
					Usage: "always fetch the latest version",
				},
				cli.BoolFlag{
					Name:  "reset",
					Usage: "forget the stored update state before checking",
				},
			},
		},
	}

	return app
}

func (ac *AppConfig) loadInfo(c *cli.Context) (versioninfo.VersionInfo, error) {
	resolver := ac.Resolver
	if resolver == nil {
		resolver = locator.New(locator.RuntimeHost{})
	}

	var opts []program.Option
	if ac.SourceFunc != nil {
		opts = append(opts, program.WithSourceFunc(ac.SourceFunc))
	}
	if manifest := c.String("manifest"); manifest != "" {
		opts = append(opts, program.WithManifest(manifest))
	}
	return program.NewLoader(resolver, opts...).Load()
}
