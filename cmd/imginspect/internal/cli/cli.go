// Package cli wires the imginspect CLI's kong root command, grounded
// on cmd/radx/internal/cli/cli.go's Parse/setupLogger/Run shape.
package cli

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/imgcodec-core/imgcodec/cmd/imginspect/internal/build"
	"github.com/imgcodec-core/imgcodec/cmd/imginspect/internal/config"
	"github.com/imgcodec-core/imgcodec/cmd/imginspect/internal/inspect"
)

const (
	appName        = "imginspect"
	appDescription = "PNG/JPEG codec inspection and conversion CLI"
)

// CLI is the root command structure.
type CLI struct {
	config.GlobalConfig

	Inspect inspect.Cmd        `cmd:"" name:"inspect" help:"Decode headers (and optionally pixels) of one or more images"`
	Convert inspect.ConvertCmd `cmd:"" name:"convert" help:"Decode an image and re-encode it as PNG"`
}

// Run parses arguments and executes the selected subcommand.
func Run(version, commit, date string) error {
	build.SetBuildInfo(version, commit, date)

	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name(appName),
		kong.Description(appDescription),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": version, "commit": commit, "date": date},
	)

	if err := cli.GlobalConfig.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := setupLogger(&cli.GlobalConfig)
	logger.Debug("imginspect starting", "version", version, "commit", commit, "build_date", date)

	if err := ctx.Run(); err != nil {
		logger.Error("command failed", "error", err)
		return err
	}
	return nil
}

func setupLogger(cfg *config.GlobalConfig) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})

	switch cfg.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	if !cfg.Pretty {
		logger.SetFormatter(log.JSONFormatter)
	}

	log.SetDefault(logger)
	return logger
}
