package wpactrl

import (
	"context"
	"strings"
	"time"

	"github.com/rbright/wpactrl/internal/ctrlerr"
)

const (
	cmdPing   = "PING"
	replyPong = "PONG"
)

// Ping sends one PING and requires PONG back within timeout. A zero timeout uses
// DefaultPingTimeout; a negative one waits for the context alone. Ping never retries.
func (c *Client) Ping(ctx context.Context, timeout time.Duration) error {
	if timeout == 0 {
		timeout = DefaultPingTimeout
	}
	buf := make([]byte, 16)
	n, _, err := c.exchange(ctx, "ping", cmdPing, buf, timeout, nil)
	if err != nil {
		return err
	}
	if got := string(buf[:n]); strings.TrimRight(got, "\n") != replyPong {
		return ctrlerr.Errorf(ctrlerr.KindProtocolViolation, "ping", cmdPing, "unexpected reply %q", got)
	}
	return nil
}
