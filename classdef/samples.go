package classdef

import (
	"embed"
	"path"
	"sort"
	"strings"

	"github.com/wippyai/classfile/errors"
)

//go:embed samples/*.toml
var samples embed.FS

// SampleNames lists the built-in definitions.
func SampleNames() []string {
	entries, err := samples.ReadDir("samples")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".toml"))
	}
	sort.Strings(names)
	return names
}

// Sample returns a built-in definition by name.
func Sample(name string) (*Class, error) {
	data, err := samples.ReadFile(path.Join("samples", name+".toml"))
	if err != nil {
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Value(name).
			Detail("unknown sample %q, have %s", name, strings.Join(SampleNames(), ", ")).
			Build()
	}
	return Parse(data)
}
