package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"replay_report/internal/config"

	"github.com/sirupsen/logrus"
)

const (
	// Типы хранилищ
	StorageTypeLocal = "local"
	StorageTypeS3    = "s3"
)

// Storage defines the interface for report artifact storage
type Storage interface {
	// Save writes the artifact, replacing any previous content under key
	Save(ctx context.Context, key string, reader io.Reader) error

	// Exists reports whether an artifact is present
	Exists(ctx context.Context, key string) (bool, error)

	// GetURL returns a location the artifact can be opened from
	GetURL(ctx context.Context, key string) (string, error)

	// ValidateKey checks the key before any operation
	ValidateKey(key string) error
}

// NewOutputStorage создает локальное хранилище для каталога вывода отчёта.
func NewOutputStorage(cfg config.Config, logger *logrus.Logger) (Storage, error) {
	dir := cfg.Report.OutputDir
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("ошибка определения каталога вывода: %w", err)
	}

	local, err := NewLocalStorage(LocalConfig{
		BasePath:    abs,
		Permissions: 0o644,
		CreateDirs:  true,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания локального хранилища: %w", err)
	}
	return wrapWithMiddleware(local, logger), nil
}

// NewPublisher создает S3 хранилище для публикации отчёта. Если публикация
// выключена, возвращает nil.
func NewPublisher(cfg config.Config, logger *logrus.Logger) (Storage, error) {
	if !cfg.Storage.S3.Enabled {
		return nil, nil
	}

	s3Storage, err := NewS3Storage(S3Config{
		Region:         cfg.Storage.S3.Region,
		Bucket:         cfg.Storage.S3.Bucket,
		Prefix:         cfg.Storage.S3.Prefix,
		Endpoint:       cfg.Storage.S3.Endpoint,
		AccessKey:      cfg.Storage.S3.AccessKey,
		SecretKey:      cfg.Storage.S3.SecretKey,
		ForcePathStyle: cfg.Storage.S3.Endpoint != "",
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания S3 хранилища: %w", err)
	}
	return wrapWithMiddleware(s3Storage, logger), nil
}

// wrapWithMiddleware оборачивает хранилище в middleware
func wrapWithMiddleware(storage Storage, logger *logrus.Logger) Storage {
	if logger != nil {
		storage = NewLoggingMiddleware(storage, logger)
	}
	return NewValidationMiddleware(storage)
}

// dirPermissions derives directory permissions from file permissions.
func dirPermissions(perm os.FileMode) os.FileMode {
	return perm | (perm&0o444)>>2
}
