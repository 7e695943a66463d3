package main

import (
	"os"

	"github.com/cave-go/versioninfo/pkg"
	"github.com/cave-go/versioninfo/pkg/log"
	"github.com/cave-go/versioninfo/pkg/program"
)

var (
	version = "0.0.1"
)

func main() {
	if info, err := program.Info(); err == nil && info.InformalVersion != nil {
		version = info.InformalVersion.String()
	}

	ac := pkg.AppConfig{}
	app := ac.NewApp(version)
	if err := app.Run(os.Args); err != nil {
		log.Error("Fatal error", log.Err(err))
		os.Exit(1)
	}
}
