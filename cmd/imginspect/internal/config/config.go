// Package config defines the imginspect CLI's global flags, grounded
// on cmd/radx/internal/cli/cli.go's use of a shared config.GlobalConfig
// embedded in the root CLI struct.
package config

import "github.com/go-playground/validator/v10"

// GlobalConfig holds flags shared across every imginspect subcommand.
type GlobalConfig struct {
	LogLevel string `name:"log-level" enum:"debug,info,warn,error" default:"info" help:"Logging verbosity" validate:"oneof=debug info warn error"`
	Pretty   bool   `name:"pretty" default:"true" help:"Use human-readable console logging instead of JSON"`
	Debug    bool   `name:"debug" help:"Report caller location in log output"`
}

// Validate runs struct-tag validation over the parsed flags, surfacing
// a combined error if any constraint fails.
func (c *GlobalConfig) Validate() error {
	return validator.New().Struct(c)
}
