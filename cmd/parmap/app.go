package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

const (
	flagThreads     = "threads"
	flagShared      = "shared"
	flagInput       = "input"
	flagMetricsAddr = "metrics-addr"
	flagLogLevel    = "log-level"
	flagEnvFile     = "env-file"
)

// envBindings maps global flags to the variables that may set them.
var envBindings = map[string]string{
	flagThreads:     "PARMAP_THREADS",
	flagShared:      "PARMAP_SHARED",
	flagMetricsAddr: "PARMAP_METRICS_ADDR",
	flagLogLevel:    "PARMAP_LOG_LEVEL",
}

// NewApp builds the parmap CLI writing results to out.
func NewApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "parmap",
		Usage:     "run partitioned parallel operations over integers",
		ArgsUsage: "[ints...]",
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    flagThreads,
				Aliases: []string{"t"},
				Value:   4,
				EnvVars: []string{envBindings[flagThreads]},
				Usage:   "maximum number of blocks computed in parallel",
			},
			&cli.BoolFlag{
				Name:    flagShared,
				EnvVars: []string{envBindings[flagShared]},
				Usage:   "run on one long-lived pool instead of a pool per operation",
			},
			&cli.StringFlag{
				Name:    flagInput,
				Aliases: []string{"i"},
				Usage:   "read integers from `FILE`, one per line, before positional arguments",
			},
			&cli.StringFlag{
				Name:    flagMetricsAddr,
				EnvVars: []string{envBindings[flagMetricsAddr]},
				Usage:   "serve Prometheus metrics on `ADDR` while the command runs",
			},
			&cli.StringFlag{
				Name:    flagLogLevel,
				Value:   "warn",
				EnvVars: []string{envBindings[flagLogLevel]},
				Usage:   "debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  flagEnvFile,
				Value: ".env",
				Usage: "dotenv `FILE` loaded before flags are resolved; missing files are ignored",
			},
		},
		Before: loadEnv,
		// Exit codes are applied by main so tests can run the app in-process.
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			joinCommand(),
			mapCommand(),
			filterCommand(),
			countCommand(),
			allCommand(),
			anyCommand(),
			maxCommand(),
			minCommand(),
		},
	}
}

// loadEnv loads the dotenv file and applies its values to global flags
// that were not set on the command line or in the process environment.
func loadEnv(c *cli.Context) error {
	path := c.String(flagEnvFile)
	if _, err := os.Stat(path); err != nil {
		if c.IsSet(flagEnvFile) {
			return cli.Exit(fmt.Sprintf("env file: %v", err), 1)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return cli.Exit(fmt.Sprintf("env file %s: %v", path, err), 1)
	}

	for flag, key := range envBindings {
		if c.IsSet(flag) {
			continue
		}
		if v, ok := os.LookupEnv(key); ok && v != "" {
			if err := c.Set(flag, v); err != nil {
				return cli.Exit(fmt.Sprintf("%s=%q: %v", key, v, err), 1)
			}
		}
	}
	return nil
}
