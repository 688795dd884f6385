package main

import (
	"os"

	"github.com/lodthe/fromcheck/internal/audit"
	"github.com/lodthe/fromcheck/internal/dockerfile"
	"github.com/lodthe/fromcheck/internal/render"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var latestFormat string

var latestCmd = &cobra.Command{
	Use:     "latest <image:tag>",
	Short:   "Find the latest tag sharing the version scheme of the given one",
	Example: "  fromcheck latest ubuntu:16.04\n  fromcheck latest python:3.9-alpine -f json",
	Args:    cobra.ExactArgs(1),
	RunE:    runLatest,
}

func init() {
	latestCmd.Flags().StringVarP(&latestFormat, "format", "f", "table", "output format: table, json or yaml")

	rootCmd.AddCommand(latestCmd)
}

func runLatest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	format, err := render.ParseFormat(latestFormat)
	if err != nil {
		return err
	}

	img := dockerfile.ParseReference(args[0])
	if img.Err != nil {
		return errors.Wrapf(img.Err, "%s", args[0])
	}

	tags, err := newTagCache(ctx, config)
	if err != nil {
		return err
	}

	entry := newAuditor(config, tags).Check(ctx, img)

	err = render.New(os.Stdout, format, render.ColorEnabled(os.Stdout)).Entry(entry)
	if err != nil {
		return err
	}

	if entry.Status == audit.StatusFailed {
		return errors.New(entry.Error)
	}

	return nil
}
