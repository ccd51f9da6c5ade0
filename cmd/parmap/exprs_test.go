package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePredicate(t *testing.T) {
	tests := []struct {
		expr   string
		accept []int
		reject []int
	}{
		{expr: "even", accept: []int{0, 2, -4}, reject: []int{1, -3}},
		{expr: "odd", accept: []int{1, -3}, reject: []int{0, 2}},
		{expr: "gt:5", accept: []int{6, 100}, reject: []int{5, -1}},
		{expr: "lt:0", accept: []int{-1}, reject: []int{0, 1}},
		{expr: "eq:7", accept: []int{7}, reject: []int{6, 8}},
		{expr: " mod:3 ", accept: []int{0, 3, -9}, reject: []int{1, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			p, err := parsePredicate(tt.expr)
			require.NoError(t, err)
			for _, v := range tt.accept {
				assert.True(t, p(v), "%s(%d)", tt.expr, v)
			}
			for _, v := range tt.reject {
				assert.False(t, p(v), "%s(%d)", tt.expr, v)
			}
		})
	}
}

func TestParsePredicate_Invalid(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{expr: "", want: `unknown predicate ""`},
		{expr: "prime", want: `unknown predicate "prime"`},
		{expr: "prime:3", want: `unknown predicate "prime:3"`},
		{expr: "gt", want: `"gt": missing argument`},
		{expr: "gt:x", want: `"gt:x"`},
		{expr: "mod:0", want: "modulus must not be zero"},
		{expr: "even:2", want: "takes no argument"},
	}

	for _, tt := range tests {
		_, err := parsePredicate(tt.expr)
		require.Error(t, err, tt.expr)
		assert.Contains(t, err.Error(), tt.want, tt.expr)
	}
}

func TestParseTransform(t *testing.T) {
	tests := []struct {
		expr string
		in   int
		want int
	}{
		{expr: "mul:3", in: 4, want: 12},
		{expr: "add:-2", in: 4, want: 2},
		{expr: "square", in: -5, want: 25},
		{expr: "neg", in: 9, want: -9},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			f, err := parseTransform(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f(tt.in))
		})
	}
}

func TestParseTransform_Invalid(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{expr: "", want: `unknown transform ""`},
		{expr: "cube", want: `unknown transform "cube"`},
		{expr: "cube:2", want: `unknown transform "cube:2"`},
		{expr: "mul", want: `"mul": missing argument`},
		{expr: "add:1.5", want: `"add:1.5"`},
		{expr: "neg:1", want: "takes no argument"},
	}

	for _, tt := range tests {
		_, err := parseTransform(tt.expr)
		require.Error(t, err, tt.expr)
		assert.Contains(t, err.Error(), tt.want, tt.expr)
	}
}
