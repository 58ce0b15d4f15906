package hma

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodeRoundTrip(t *testing.T) {
	t.Parallel()

	err := NewError(ErrBusy)
	require.Error(t, err)
	assert.Equal(t, ErrBusy, Code(err))
	assert.True(t, IsBusy(err))
	assert.False(t, IsBusyDeadlock(err))
}

func TestWrapErrorUnwraps(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("underlying failure")
	err := WrapError(ErrCantOpen, cause)

	assert.True(t, IsCantOpen(err))
	assert.True(t, errors.Is(err, cause))
	assert.ErrorContains(t, err, "underlying failure")
}

func TestCodeOnNilAndForeignErrors(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ErrorCode(0), Code(nil))
	assert.Equal(t, ErrGeneric, Code(errors.New("not an hma error")))
}
