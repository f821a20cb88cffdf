package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/site"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output           string `short:"o" help:"Override paths.build" type:"path"`
	RelativizeStatic bool   `name:"relativize-static" help:"Rewrite static URLs as relative paths"`
	Report           bool   `help:"Write build-report.json into the build folder"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if b.Output != "" {
		out, absErr := filepath.Abs(b.Output)
		if absErr != nil {
			return errors.WrapError(absErr, errors.CategoryValidation, "invalid output folder").UserAction().Build()
		}
		cfg.Paths.Build = out
	}
	cfg.Build.RelativizeStatic = cfg.Build.RelativizeStatic || b.RelativizeStatic
	cfg.Build.Report = cfg.Build.Report || b.Report

	ctx := contextOf(g)
	logger := loggerOf(g)
	st, err := site.New(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	report, err := st.Build(ctx)
	if err != nil {
		return abortOnCancel(ctx, err)
	}
	logger.Info("Build complete",
		logfields.BuildID(report.BuildID),
		logfields.Count(len(report.Pages)),
		logfields.Duration(report.Duration),
		logfields.Path(cfg.Paths.Build))
	for _, u := range report.Missing {
		logger.Warn("Static file not found", logfields.URL(u))
	}
	fmt.Printf("Built %d pages into %s\n", len(report.Pages), cfg.Paths.Build)
	return nil
}
