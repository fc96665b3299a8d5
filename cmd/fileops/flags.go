package main

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/bamsammich/fileops/internal/engine"
	"github.com/bamsammich/fileops/internal/pathres"
)

var (
	_ pflag.Value = copyOptionsFlag{}
	_ pflag.Value = moveOptionsFlag{}
	_ pflag.Value = verifyFlag{}
	_ pflag.Value = pathFormatFlag{}
)

// copyOptionsFlag is a pflag.Value accepting a comma-separated list of copy
// option names. Repeated use accumulates.
type copyOptionsFlag struct{ opts *engine.CopyOptions }

func (f copyOptionsFlag) String() string {
	if f.opts == nil {
		return "none"
	}
	return f.opts.String()
}
func (copyOptionsFlag) Type() string { return "options" }

func (f copyOptionsFlag) Set(val string) error {
	o, err := engine.ParseCopyOptions(val)
	if err != nil {
		return err
	}
	*f.opts |= o
	return nil
}

// moveOptionsFlag is copyOptionsFlag for move options.
type moveOptionsFlag struct{ opts *engine.MoveOptions }

func (f moveOptionsFlag) String() string {
	if f.opts == nil {
		return "none"
	}
	return f.opts.String()
}
func (moveOptionsFlag) Type() string { return "options" }

func (f moveOptionsFlag) Set(val string) error {
	o, err := engine.ParseMoveOptions(val)
	if err != nil {
		return err
	}
	*f.opts |= o
	return nil
}

// verifyFlag selects the verification digest. A bare --verify means blake3.
type verifyFlag struct{ algo *engine.Algorithm }

func (f verifyFlag) String() string {
	if f.algo == nil {
		return "none"
	}
	return f.algo.String()
}
func (verifyFlag) Type() string { return "algorithm" }

func (f verifyFlag) Set(val string) error {
	a, err := engine.ParseAlgorithm(val)
	if err != nil {
		return err
	}
	*f.algo = a
	return nil
}

// pathFormatFlag selects how paths are resolved before the native call.
type pathFormatFlag struct{ format *pathres.Format }

func (f pathFormatFlag) String() string {
	if f.format == nil {
		return pathres.RelativePath.String()
	}
	return f.format.String()
}
func (pathFormatFlag) Type() string { return "format" }

func (f pathFormatFlag) Set(val string) error {
	p, err := pathres.ParseFormat(strings.TrimSpace(val))
	if err != nil {
		return err
	}
	*f.format = p
	return nil
}
