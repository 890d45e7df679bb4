package main

import (
	"github.com/urfave/cli"

	"rayshade/internal/log"
)

var logger = log.New("rayshade")

func setupLogging(ctx *cli.Context) {
	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}

// fail logs err and turns it into a non-zero exit.
func fail(err error) error {
	logger.Error(err)
	return cli.NewExitError(err.Error(), 1)
}
