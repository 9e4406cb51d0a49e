package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container
)

const version = "0.1.0"

func main() {
	app := &cli.App{
		Name:    "threadpanel",
		Usage:   "Read and moderate CKAN comment threads from the terminal",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
				EnvVars: []string{"THREADPANEL_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			tuiCommand(),
			showCommand(),
			commentCommand(),
			approveCommand(),
			draftCommand(),
			deleteCommand(),
			blockCommand(),
			unblockCommand(),
			flashCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
