package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/warp/pay-structure/logging"
	"go.uber.org/zap"
)

// Output formats.
const (
	formatJSON  = "json"
	formatTable = "table"
	formatXLSX  = "xlsx"
)

type options struct {
	template    string
	jobsFile    string
	factorsFile string
	method      string
	baseWage    int64
	format      string
	out         string
	logLevel    string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:          "gradectl",
		Short:        "Build compensation grade structures from evaluated jobs",
		SilenceUsage: true,
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.template, "template", "", "start from a template (startup, corporate)")
	f.StringVar(&opts.jobsFile, "jobs", "", "jobs file (YAML or JSON)")
	f.StringVar(&opts.factorsFile, "factors", "", "factor map file (YAML or JSON)")
	f.StringVar(&opts.method, "method", "", "override the evaluation method (point, ranking)")
	f.Int64Var(&opts.baseWage, "base-wage", 0, "base wage for seeding and diagnostics (default 5729876)")
	f.StringVar(&opts.format, "format", formatJSON, "output format: json, table or xlsx")
	f.StringVar(&opts.out, "out", "", "write output to this file instead of stdout")
	f.StringVar(&opts.logLevel, "log-level", "warn", "log level for stderr")

	cmd.AddCommand(
		newTemplatesCmd(opts),
		newPreviewCmd(opts),
		newGenerateCmd(opts),
		newScoreCmd(opts),
	)
	return cmd
}

func (o *options) logger() *zap.Logger {
	log, err := logging.New(o.logLevel, "console")
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func (o *options) validateFormat(allowed ...string) error {
	for _, a := range allowed {
		if o.format == a {
			return nil
		}
	}
	return fmt.Errorf("unsupported --format %q, want one of %v", o.format, allowed)
}
