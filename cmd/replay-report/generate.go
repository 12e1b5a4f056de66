package main

import (
	"replay_report/internal/service"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newGenerateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Write <name>.html (and optionally <name>.xlsx) for one replay",
		RunE:  runGenerate,
	}
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	svc, err := service.NewReportServiceFromConfig(cfg, logger)
	if err != nil {
		return err
	}

	artifacts, err := svc.Generate(cmd.Context(), cfg.Report.Prefix)
	if err != nil {
		return err
	}

	for _, a := range artifacts {
		logger.WithFields(logrus.Fields{
			"file":        a.Key,
			"url":         a.URL,
			"size":        a.Size,
			"overwritten": a.Overwritten,
		}).Info("report written")
	}
	return nil
}
