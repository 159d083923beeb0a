package config

import (
	_ "embed"

	"go.trai.ch/runbook/internal/core/domain"
)

// BuiltinSource names the embedded table in diagnostics.
const BuiltinSource = "built-in"

//go:embed builtin.yaml
var builtinYAML []byte

// Builtin returns the table used when no runbook.yaml exists.
func Builtin() (*domain.Table, error) {
	return Parse(builtinYAML, BuiltinSource)
}
