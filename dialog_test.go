package main

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailedNamesTheAction(t *testing.T) {
	assert.NoError(t, Failed("switch program", nil))

	err := Failed("reload shaders", fs.ErrNotExist)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.EqualError(t, err, "could not reload shaders: file does not exist")

	primary, secondary := errorDialogText(err)
	assert.Equal(t, "Could not reload shaders", primary)
	assert.Equal(t, "file does not exist", secondary)

	// the innermost action is the one reported
	outer := Failed("save image", err)
	primary, _ = errorDialogText(outer)
	assert.Equal(t, "Could not reload shaders", primary)
}

func TestErrorDialogTextWithoutAction(t *testing.T) {
	primary, secondary := errorDialogText(errors.New("boom"))
	assert.Equal(t, "Something went wrong", primary)
	assert.Equal(t, "boom", secondary)
}

func TestProgressText(t *testing.T) {
	_, _, known := progressText(nil)
	assert.False(t, known)

	text, value, known := progressText(func() float64 { return 0.42 })
	assert.True(t, known)
	assert.Equal(t, "42%", text)
	assert.Equal(t, 0.42, value)

	text, value, _ = progressText(func() float64 { return 1.5 })
	assert.Equal(t, "100%", text)
	assert.Equal(t, 1.0, value)
}

func TestCatchPanicToContext(t *testing.T) {
	ctx, cancel := context.WithCancelCause(context.Background())

	func() {
		defer CatchPanicToContext(cancel)
		panic("shader table corrupt")
	}()

	require.Error(t, ctx.Err())
	assert.Contains(t, context.Cause(ctx).Error(), "panic: shader table corrupt")

	ctx, cancel = context.WithCancelCause(context.Background())
	func() {
		defer CatchPanicToContext(cancel)
	}()
	assert.NoError(t, ctx.Err(), "no panic leaves the context alone")
	cancel(nil)
}
