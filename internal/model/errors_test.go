package model

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatAndUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewError(KindOutput, "export.result", cause)

	assert.Equal(t, "output error in export.result: disk full", err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.True(t, IsKind(fmt.Errorf("wrapped: %w", err), KindOutput))
	assert.False(t, IsKind(err, KindSetup))
	assert.False(t, IsKind(cause, KindOutput))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitSetup, ExitCode(NewError(KindSetup, "transport.open", errors.New("x"))))
	assert.Equal(t, ExitConfiguration, ExitCode(NewError(KindConfiguration, "validate", errors.New("x"))))
	assert.Equal(t, ExitOutput, ExitCode(NewError(KindOutput, "export", errors.New("x"))))
	assert.Equal(t, ExitCancelled, ExitCode(NewError(KindCancelled, "run", context.Canceled)))
	assert.Equal(t, ExitSetup, ExitCode(errors.New("plain")))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "setup", KindSetup.String())
	assert.Equal(t, "transport", KindTransport.String())
	assert.Equal(t, "configuration", KindConfiguration.String())
	assert.Equal(t, "output", KindOutput.String())
	assert.Equal(t, "cancelled", KindCancelled.String())
	assert.Equal(t, "unknown", Kind(0).String())
}

func TestKindText(t *testing.T) {
	text, err := KindCancelled.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "cancelled", string(text))

	var k Kind
	assert.NoError(t, k.UnmarshalText([]byte("transport")))
	assert.Equal(t, KindTransport, k)
	assert.Error(t, k.UnmarshalText([]byte("nope")))
}
