package hma

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	o := defaultOptions()
	assert.Equal(t, DefaultClientSlots, o.clientSlots)
	assert.Equal(t, DefaultPageLockSlots, o.pageLockSlots)
	assert.NotNil(t, o.logger)
}

func TestOptionsApply(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	o := defaultOptions()
	for _, opt := range []Option{
		WithClientSlots(4),
		WithPageLockSlots(16),
		WithLogger(logger),
	} {
		opt(o)
	}

	assert.Equal(t, 4, o.clientSlots)
	assert.Equal(t, 16, o.pageLockSlots)
	assert.Same(t, logger, o.logger)
}

func TestWithLoggerIgnoresNil(t *testing.T) {
	t.Parallel()

	o := defaultOptions()
	original := o.logger
	WithLogger(nil)(o)
	assert.Same(t, original, o.logger)
}
