package main

import (
	"os"

	"github.com/lodthe/fromcheck/internal/render"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var auditOpts struct {
	format       string
	save         bool
	failOutdated bool
	concurrency  int
}

var auditCmd = &cobra.Command{
	Use:   "audit [dir...]",
	Short: "Audit base images of every Dockerfile in the directories",
	Long: `Walks the directories (audit.roots from the config, or the current directory)
and reports the latest tag of every base image that follows the scheme of its pin.`,
	RunE: runAudit,
}

func init() {
	auditCmd.Flags().StringVarP(&auditOpts.format, "format", "f", "table", "output format: table, json or yaml")
	auditCmd.Flags().BoolVar(&auditOpts.save, "save", false, "store the report in DynamoDB")
	auditCmd.Flags().BoolVar(&auditOpts.failOutdated, "fail-outdated", false, "exit with status 2 when any image is outdated")
	auditCmd.Flags().IntVar(&auditOpts.concurrency, "concurrency", 0, "how many images are checked at the same time")

	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	format, err := render.ParseFormat(auditOpts.format)
	if err != nil {
		return err
	}

	roots := config.Audit.Roots
	if len(args) > 0 {
		roots = args
	}
	if auditOpts.concurrency > 0 {
		config.Audit.Concurrency = auditOpts.concurrency
	}
	if auditOpts.save && !config.PersistenceEnabled() {
		return errors.New("--save requires aws.region in the config")
	}

	tags, err := newTagCache(ctx, config)
	if err != nil {
		return err
	}

	report, err := newAuditor(config, tags).Run(ctx, roots...)
	if err != nil {
		return errors.Wrap(err, "audit failed")
	}

	err = render.New(os.Stdout, format, render.ColorEnabled(os.Stdout)).Report(report)
	if err != nil {
		return err
	}

	if auditOpts.save {
		repo, err := newReportRepository(ctx, config)
		if err != nil {
			return err
		}

		err = repo.Create(ctx, report)
		if err != nil {
			return errors.Wrap(err, "failed to save the report")
		}

		logger.Info().Str("id", report.ID).Str("table", config.AWS.ReportsTableName).Msg("report has been saved")
	}

	if auditOpts.failOutdated && len(report.Outdated()) > 0 {
		return &ExitError{Code: 2}
	}

	return nil
}
