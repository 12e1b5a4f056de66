package main

import (
	"time"

	"replay_report/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "replay-report",
		Short: "Render a before/after latency comparison of a SQL replay as HTML",
		Long: `replay-report runs a fixed set of aggregate queries against the replay
comparison table, buckets statements by their original latency and writes
<name>.html with one section per bucket.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runGenerate,
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(newGenerateCommand(), newServeCommand())
	return root
}

// loadConfig reads configuration for cmd and builds the logger from it.
func loadConfig(cmd *cobra.Command) (config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}
	logger := newLogger(cfg)

	if cfg.Report.TableName != "" {
		logger.WithFields(logrus.Fields{
			"tablename": cfg.Report.TableName,
			"catalog":   cfg.Report.Catalog,
		}).Warn("--tablename is ignored, the catalog queries a fixed table")
	}
	return cfg, logger, nil
}

// newLogger создает и настраивает логгер на основе конфигурации
func newLogger(cfg config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
		logger.WithError(err).Warn("invalid log level, using info")
	}
	logger.SetLevel(level)

	switch cfg.Logging.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	logger.WithField("config", cfg.String()).Debug("configuration loaded")
	return logger
}
