//go:build tools
// +build tools

// Package tools tracks code generators used with go generate.
package tools

import (
	_ "go.uber.org/mock/mockgen"
)
