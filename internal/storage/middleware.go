package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// LoggingMiddleware добавляет логирование к операциям хранилища
type LoggingMiddleware struct {
	storage Storage
	logger  *logrus.Logger
}

// NewLoggingMiddleware создает новый logging middleware
func NewLoggingMiddleware(storage Storage, logger *logrus.Logger) Storage {
	return &LoggingMiddleware{
		storage: storage,
		logger:  logger,
	}
}

// Save логирует операцию сохранения
func (m *LoggingMiddleware) Save(ctx context.Context, key string, reader io.Reader) error {
	start := time.Now()
	logger := m.logger.WithFields(logrus.Fields{
		"operation": "save",
		"key":       key,
	})

	logger.Debug("saving file")

	err := m.storage.Save(ctx, key, reader)

	duration := time.Since(start)
	if err != nil {
		logger.WithError(err).WithField("duration", duration).Error("failed to save file")
	} else {
		logger.WithField("duration", duration).Info("file saved")
	}

	return err
}

// Exists логирует проверку существования
func (m *LoggingMiddleware) Exists(ctx context.Context, key string) (bool, error) {
	logger := m.logger.WithFields(logrus.Fields{
		"operation": "exists",
		"key":       key,
	})

	exists, err := m.storage.Exists(ctx, key)
	if err != nil {
		logger.WithError(err).Warn("failed to check file")
	} else {
		logger.WithField("exists", exists).Debug("file checked")
	}

	return exists, err
}

// Остальные методы просто делегируют вызовы
func (m *LoggingMiddleware) GetURL(ctx context.Context, key string) (string, error) {
	return m.storage.GetURL(ctx, key)
}

func (m *LoggingMiddleware) ValidateKey(key string) error {
	return m.storage.ValidateKey(key)
}

// ValidationMiddleware проверяет ключ перед каждой операцией хранилища
type ValidationMiddleware struct {
	storage Storage
}

// NewValidationMiddleware создает новый validation middleware
func NewValidationMiddleware(storage Storage) Storage {
	return &ValidationMiddleware{storage: storage}
}

// Save выполняет валидацию перед сохранением
func (m *ValidationMiddleware) Save(ctx context.Context, key string, reader io.Reader) error {
	if err := m.validateKey(key); err != nil {
		return err
	}
	return m.storage.Save(ctx, key, reader)
}

func (m *ValidationMiddleware) Exists(ctx context.Context, key string) (bool, error) {
	if err := m.validateKey(key); err != nil {
		return false, err
	}
	return m.storage.Exists(ctx, key)
}

func (m *ValidationMiddleware) GetURL(ctx context.Context, key string) (string, error) {
	if err := m.validateKey(key); err != nil {
		return "", err
	}
	return m.storage.GetURL(ctx, key)
}

func (m *ValidationMiddleware) ValidateKey(key string) error {
	return m.validateKey(key)
}

// validateKey применяет проверку конкретного хранилища
func (m *ValidationMiddleware) validateKey(key string) error {
	if err := m.storage.ValidateKey(key); err != nil {
		return fmt.Errorf("invalid key %q: %w", key, err)
	}
	return nil
}
