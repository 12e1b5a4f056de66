package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockStorage is a mock implementation of the Storage interface
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Save(ctx context.Context, key string, reader io.Reader) error {
	args := m.Called(ctx, key, reader)
	return args.Error(0)
}

func (m *MockStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) GetURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) ValidateKey(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func TestValidationMiddlewareBlocksInvalidKeys(t *testing.T) {
	inner := new(MockStorage)
	inner.On("ValidateKey", "bad").Return(errors.New("nope"))

	s := NewValidationMiddleware(inner)
	ctx := context.Background()

	err := s.Save(ctx, "bad", strings.NewReader("x"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `invalid key "bad"`)

	_, err = s.Exists(ctx, "bad")
	assert.Error(t, err)
	_, err = s.GetURL(ctx, "bad")
	assert.Error(t, err)

	inner.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	inner.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything)
	inner.AssertExpectations(t)
}

func TestValidationMiddlewarePassesValidKeys(t *testing.T) {
	inner := new(MockStorage)
	inner.On("ValidateKey", "run42.html").Return(nil)
	inner.On("Save", mock.Anything, "run42.html", mock.Anything).Return(nil)
	inner.On("GetURL", mock.Anything, "run42.html").Return("file:///tmp/run42.html", nil)

	s := NewValidationMiddleware(inner)
	ctx := context.Background()

	assert.NoError(t, s.Save(ctx, "run42.html", strings.NewReader("x")))
	url, err := s.GetURL(ctx, "run42.html")
	assert.NoError(t, err)
	assert.Equal(t, "file:///tmp/run42.html", url)

	inner.AssertExpectations(t)
}

func TestLoggingMiddlewareDelegates(t *testing.T) {
	inner := new(MockStorage)
	saveErr := errors.New("disk full")
	inner.On("Save", mock.Anything, "run42.html", mock.Anything).Return(saveErr)
	inner.On("Exists", mock.Anything, "run42.html").Return(true, nil)
	inner.On("Exists", mock.Anything, "broken.html").Return(false, errors.New("permission denied"))
	inner.On("ValidateKey", "run42.html").Return(nil)

	s := NewLoggingMiddleware(inner, setupTestLogger())
	ctx := context.Background()

	assert.ErrorIs(t, s.Save(ctx, "run42.html", strings.NewReader("x")), saveErr)
	ok, err := s.Exists(ctx, "run42.html")
	assert.NoError(t, err)
	assert.True(t, ok)
	_, err = s.Exists(ctx, "broken.html")
	assert.Error(t, err)
	assert.NoError(t, s.ValidateKey("run42.html"))

	inner.AssertExpectations(t)
}
