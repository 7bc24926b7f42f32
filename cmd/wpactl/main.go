// Command wpactl talks to wpa_supplicant and hostapd through their control sockets.
//
// Run `wpactl --help` for the command list. Exit status is 0 on success, 1 when the
// daemon or the environment fails, and 2 on a usage error.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rbright/wpactrl/internal/app"
)

func main() {
	// SIGINT or SIGTERM ends `wpactl monitor` cleanly, detaching before exit.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := app.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
