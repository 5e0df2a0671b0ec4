package buildconfig

import "errors"

// Sentinel errors for build config loading.
var (
	ErrNoBuildConfig  = errors.New("build config not found")
	ErrDuplicateName  = errors.New("duplicate module name")
	ErrUnnamedModule  = errors.New("module has neither name nor path")
	ErrReservedOption = errors.New("optimizer option is generated")
)
