package main

import (
	"fmt"
	"strconv"
	"strings"
)

// parsePredicate turns expressions like "even" or "gt:10" into predicates.
func parsePredicate(expr string) (func(int) bool, error) {
	name, arg, hasArg := strings.Cut(strings.TrimSpace(expr), ":")

	switch name {
	case "even":
		return func(v int) bool { return v%2 == 0 }, noArg(expr, hasArg)
	case "odd":
		return func(v int) bool { return v%2 != 0 }, noArg(expr, hasArg)
	case "gt", "lt", "eq", "mod":
	default:
		return nil, fmt.Errorf("unknown predicate %q", expr)
	}

	n, err := intArg(expr, arg, hasArg)
	if err != nil {
		return nil, err
	}
	switch name {
	case "gt":
		return func(v int) bool { return v > n }, nil
	case "lt":
		return func(v int) bool { return v < n }, nil
	case "mod":
		if n == 0 {
			return nil, fmt.Errorf("predicate %q: modulus must not be zero", expr)
		}
		return func(v int) bool { return v%n == 0 }, nil
	default:
		return func(v int) bool { return v == n }, nil
	}
}

// parseTransform turns expressions like "mul:3" or "square" into transforms.
func parseTransform(expr string) (func(int) int, error) {
	name, arg, hasArg := strings.Cut(strings.TrimSpace(expr), ":")

	switch name {
	case "square":
		return func(v int) int { return v * v }, noArg(expr, hasArg)
	case "neg":
		return func(v int) int { return -v }, noArg(expr, hasArg)
	case "mul", "add":
	default:
		return nil, fmt.Errorf("unknown transform %q", expr)
	}

	n, err := intArg(expr, arg, hasArg)
	if err != nil {
		return nil, err
	}
	if name == "mul" {
		return func(v int) int { return v * n }, nil
	}
	return func(v int) int { return v + n }, nil
}

func noArg(expr string, hasArg bool) error {
	if hasArg {
		return fmt.Errorf("%q takes no argument", expr)
	}
	return nil
}

func intArg(expr, arg string, hasArg bool) (int, error) {
	if !hasArg {
		return 0, fmt.Errorf("%q: missing argument", expr)
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", expr, err)
	}
	return n, nil
}
