package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/cobia-platform/cidlgen/internal/commands"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	short := commit
	if len(commit) > 7 {
		short = commit[:7]
	}

	return fmt.Sprintf("%s (%s) %s", version, short, date)
}

// generateFlags are shared by generate and watch. Repeating an option is
// a usage error, not a last-one-wins.
func generateFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "output",
			Aliases:  []string{"o"},
			Usage:    "output file name (default: stdout)",
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:     "cobia-module",
			Aliases:  []string{"c"},
			Usage:    "module name under which the binding runtime is referenced",
			Value:    "cobia",
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:     "module-name",
			Aliases:  []string{"m"},
			Usage:    "module name as referred to in example code",
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:     "native-module",
			Aliases:  []string{"n"},
			Usage:    "native module name for raw interface types",
			Value:    "C",
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:     "native-namespace",
			Aliases:  []string{"s"},
			Usage:    "native namespace prefix for raw interface types (default: library name)",
			OnlyOnce: true,
		},
		&cli.StringFlag{
			Name:     "language",
			Usage:    "target language for the generated bindings",
			Value:    "rust",
			OnlyOnce: true,
		},
	}
}

func flagsFromCommand(c *cli.Command) commands.GenerateFlags {
	return commands.GenerateFlags{
		Output:          c.String("output"),
		Language:        c.String("language"),
		CobiaModule:     c.String("cobia-module"),
		ModuleName:      c.String("module-name"),
		NativeModule:    c.String("native-module"),
		NativeNamespace: c.String("native-namespace"),
	}
}

func newRootCommand(ctrl *commands.Controller) *cli.Command {
	return &cli.Command{
		Name:    "cidlgen",
		Usage:   "Generate Rust bindings for CAPE-OPEN CIDL component interface definitions.",
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error, fatal, panic)",
				Sources: cli.EnvVars("CIDLGEN_LOG_LEVEL"),
				Value:   "error",
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			level, err := zerolog.ParseLevel(c.String("log-level"))
			if err != nil {
				return ctx, fmt.Errorf("failed to parse log level: %w", err)
			}

			log.Logger = log.Level(level)
			ctrl.Logger = log.Logger

			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:      "generate",
				Usage:     "Generate bindings from one or more cidl files",
				ArgsUsage: "<cidl-file> [<cidl-file> ...]",
				Flags:     generateFlags(),
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Generate(ctx, flagsFromCommand(c), c.Args().Slice())
				},
			},
			{
				Name:      "watch",
				Usage:     "Regenerate bindings whenever an input file changes",
				ArgsUsage: "<cidl-file> [<cidl-file> ...]",
				Flags:     generateFlags(),
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Watch(ctx, flagsFromCommand(c), c.Args().Slice())
				},
			},
		},
	}
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ctrl := &commands.Controller{Logger: log.Logger}
	app := newRootCommand(ctrl)

	ctx := context.Background()

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("failed to run cidlgen")
	}
}
