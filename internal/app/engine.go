package app

import (
	"log/slog"
	"os"
	"strings"

	"github.com/rbright/wpactrl/internal/config"
	"github.com/rbright/wpactrl/internal/ctrlsock"
	"github.com/rbright/wpactrl/internal/wpactrl"
)

// engineOptions maps config onto engine options.
func engineOptions(cfg config.Config, logger *slog.Logger, observer wpactrl.Observer) wpactrl.Options {
	var namer ctrlsock.Namer
	if strings.EqualFold(strings.TrimSpace(cfg.Open.Naming), config.NamingRandom) {
		namer = ctrlsock.RandomNamer{}
	} else {
		namer = ctrlsock.NewSequenceNamer(os.Getpid())
	}
	return wpactrl.Options{
		ClientDir:       cfg.ClientDir,
		Namer:           namer,
		Attempts:        cfg.Open.Attempts,
		RequestTimeout:  cfg.Timeouts.Request(),
		EventQueueLimit: cfg.Events.QueueLimit,
		Logger:          logger,
		Observer:        observer,
	}
}

func openClient(cfg config.Config, logger *slog.Logger, observer wpactrl.Observer) (*wpactrl.Client, error) {
	return wpactrl.OpenInterface(cfg.CtrlDir, cfg.Interface, engineOptions(cfg, logger, observer))
}
