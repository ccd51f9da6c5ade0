package main

import (
	"cmp"
	"context"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	parallel "github.com/Swind/go-parallel"
)

const (
	flagWhere = "where"
	flagOp    = "op"
)

func whereFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     flagWhere,
		Aliases:  []string{"w"},
		Required: true,
		Usage:    "predicate: even, odd, gt:N, lt:N, eq:N or mod:K",
	}
}

func joinCommand() *cli.Command {
	return &cli.Command{
		Name:      "join",
		Usage:     "concatenate the values in order",
		ArgsUsage: "[ints...]",
		Action: func(c *cli.Context) error {
			return runOperation(c, func(ctx context.Context, ip *parallel.IterativeParallelism, threads int, values []int) (string, error) {
				return parallel.Join(ctx, ip, threads, values)
			})
		},
	}
}

func mapCommand() *cli.Command {
	return &cli.Command{
		Name:      "map",
		Usage:     "apply a transform to every value",
		ArgsUsage: "[ints...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     flagOp,
				Required: true,
				Usage:    "transform: mul:K, add:K, square or neg",
			},
		},
		Action: func(c *cli.Context) error {
			f, err := parseTransform(c.String(flagOp))
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			return runOperation(c, func(ctx context.Context, ip *parallel.IterativeParallelism, threads int, values []int) (string, error) {
				mapped, err := parallel.Map(ctx, ip, threads, values, f)
				return formatInts(mapped), err
			})
		},
	}
}

func filterCommand() *cli.Command {
	return &cli.Command{
		Name:      "filter",
		Usage:     "keep the values matching a predicate",
		ArgsUsage: "[ints...]",
		Flags:     []cli.Flag{whereFlag()},
		Action: predicateAction(func(ctx context.Context, ip *parallel.IterativeParallelism, threads int, values []int, p func(int) bool) (string, error) {
			kept, err := parallel.Filter(ctx, ip, threads, values, p)
			return formatInts(kept), err
		}),
	}
}

func countCommand() *cli.Command {
	return &cli.Command{
		Name:      "count",
		Usage:     "count the values matching a predicate",
		ArgsUsage: "[ints...]",
		Flags:     []cli.Flag{whereFlag()},
		Action: predicateAction(func(ctx context.Context, ip *parallel.IterativeParallelism, threads int, values []int, p func(int) bool) (string, error) {
			n, err := parallel.Count(ctx, ip, threads, values, p)
			return strconv.Itoa(n), err
		}),
	}
}

func allCommand() *cli.Command {
	return &cli.Command{
		Name:      "all",
		Usage:     "report whether every value matches a predicate",
		ArgsUsage: "[ints...]",
		Flags:     []cli.Flag{whereFlag()},
		Action: predicateAction(func(ctx context.Context, ip *parallel.IterativeParallelism, threads int, values []int, p func(int) bool) (string, error) {
			ok, err := parallel.All(ctx, ip, threads, values, p)
			return strconv.FormatBool(ok), err
		}),
	}
}

func anyCommand() *cli.Command {
	return &cli.Command{
		Name:      "any",
		Usage:     "report whether some value matches a predicate",
		ArgsUsage: "[ints...]",
		Flags:     []cli.Flag{whereFlag()},
		Action: predicateAction(func(ctx context.Context, ip *parallel.IterativeParallelism, threads int, values []int, p func(int) bool) (string, error) {
			ok, err := parallel.Any(ctx, ip, threads, values, p)
			return strconv.FormatBool(ok), err
		}),
	}
}

func maxCommand() *cli.Command {
	return &cli.Command{
		Name:      "max",
		Usage:     "print the greatest value",
		ArgsUsage: "[ints...]",
		Action: func(c *cli.Context) error {
			return runOperation(c, func(ctx context.Context, ip *parallel.IterativeParallelism, threads int, values []int) (string, error) {
				v, err := parallel.Maximum(ctx, ip, threads, values, cmp.Compare[int])
				return strconv.Itoa(v), err
			})
		},
	}
}

func minCommand() *cli.Command {
	return &cli.Command{
		Name:      "min",
		Usage:     "print the smallest value",
		ArgsUsage: "[ints...]",
		Action: func(c *cli.Context) error {
			return runOperation(c, func(ctx context.Context, ip *parallel.IterativeParallelism, threads int, values []int) (string, error) {
				v, err := parallel.Minimum(ctx, ip, threads, values, cmp.Compare[int])
				return strconv.Itoa(v), err
			})
		},
	}
}

type predicateOperation func(ctx context.Context, ip *parallel.IterativeParallelism, threads int, values []int, p func(int) bool) (string, error)

func predicateAction(op predicateOperation) cli.ActionFunc {
	return func(c *cli.Context) error {
		p, err := parsePredicate(c.String(flagWhere))
		if err != nil {
			return cli.Exit(err.Error(), 2)
		}
		return runOperation(c, func(ctx context.Context, ip *parallel.IterativeParallelism, threads int, values []int) (string, error) {
			return op(ctx, ip, threads, values, p)
		})
	}
}

func formatInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}
