package ctrlerr

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorMessageIncludesOpCommandAndKind(t *testing.T) {
	err := New(KindTimeout, "request", "SCAN", os.ErrDeadlineExceeded)
	require.Equal(t, `wpactrl: request "SCAN": timeout: i/o timeout`, err.Error())

	bare := New(KindPeerGone, "close", "", nil)
	require.Equal(t, "wpactrl: close: peer gone", bare.Error())
}

func TestErrorsIsMatchesKindSentinelThroughWrapping(t *testing.T) {
	err := fmt.Errorf("status: %w", New(KindTimeout, "request", "STATUS", nil))

	require.ErrorIs(t, err, ErrTimeout)
	require.NotErrorIs(t, err, ErrPeerGone)
	require.Equal(t, KindTimeout, KindOf(err))
}

func TestErrorUnwrapsCause(t *testing.T) {
	err := New(KindTimeout, "receive", "", os.ErrDeadlineExceeded)
	require.ErrorIs(t, err, os.ErrDeadlineExceeded)
}

func TestKindOfUnknownForForeignErrors(t *testing.T) {
	require.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	require.Equal(t, KindUnknown, KindOf(nil))
}

func TestWithCommandFillsMissingFields(t *testing.T) {
	low := New(KindPeerGone, "send", "", nil)

	got := WithCommand(low, "request", "PING")
	require.Equal(t, `wpactrl: request "PING": peer gone`, got.Error())
	require.Equal(t, "send", low.Op, "original error must not be mutated")

	foreign := errors.New("plain")
	require.Same(t, foreign, WithCommand(foreign, "request", "PING"))
}

func TestKindString(t *testing.T) {
	tests := map[Kind]string{
		KindNoSuchPeer:        "no such peer",
		KindAddressInUse:      "address in use",
		KindResourceExhausted: "resource exhausted",
		KindTimeout:           "timeout",
		KindPeerGone:          "peer gone",
		KindProtocolViolation: "protocol violation",
		KindWouldBlock:        "would block",
		Kind(99):              "unknown error kind 99",
	}
	for kind, want := range tests {
		require.Equal(t, want, kind.String())
	}
}
