package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zlillymp/forgeline"
	"github.com/zlillymp/forgeline/internal/appconfig"
	"github.com/zlillymp/forgeline/internal/format"
	"github.com/zlillymp/forgeline/internal/persist"
	"github.com/zlillymp/forgeline/schema"
	"github.com/zlillymp/forgeline/session"
	"pkt.systems/pslog"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "forgeline",
		Short:         "Observe and drive forge app-generation sessions",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newAttachCmd())
	root.AddCommand(newStopCmd())
	root.AddCommand(newDeployCmd())
	root.AddCommand(newPreviewCmd())
	root.AddCommand(newSessionsCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// appEnv bundles everything a session command needs.
type appEnv struct {
	cfg    appconfig.Config
	store  *persist.Store
	client *forgeline.Client
}

// buildEnv loads config, constructs the client, and wires console rendering.
// Commands that need to follow progress subscribe to the client's update
// feed after attaching.
func buildEnv(cmd *cobra.Command, cfgPath, serverOverride string) (*appEnv, error) {
	cfg, err := appconfig.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if serverOverride != "" {
		cfg.Server.URL = serverOverride
	}
	if strings.TrimSpace(cfg.Server.URL) == "" {
		return nil, errors.New("no server configured; pass --server or set server.url in the config")
	}
	logger := pslog.Ctx(cmd.Context())

	store, err := persist.NewStoreWithLogger(cfg.StateDir, logger)
	if err != nil {
		return nil, err
	}
	client, err := forgeline.NewClient(forgeline.ClientConfig{
		ServerURL:      cfg.Server.URL,
		ConnectTimeout: cfg.Server.ConnectTimeout(),
		BackoffBase:    cfg.Retry.Base(),
		BackoffCap:     cfg.Retry.Cap(),
		MaxRetries:     cfg.Retry.MaxRetries,
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}

	client.Subscribe(consoleSink{out: cmd.OutOrStdout(), renderer: format.NewPlainRenderer()})

	return &appEnv{cfg: cfg, store: store, client: client}, nil
}

// consoleSink renders updates as plain lines on the command's stdout.
type consoleSink struct {
	out      io.Writer
	renderer *format.PlainRenderer
}

func (s consoleSink) OnUpdate(update session.Update) {
	for _, line := range s.renderer.FormatUpdate(update) {
		_, _ = fmt.Fprintln(s.out, line)
	}
}

// waitUntil consumes updates until done matches one, the connection fails
// terminally, or ctx ends. Subscribing happens after the connection starts,
// so a failure that already happened is read from the client, not the feed.
func waitUntil(ctx context.Context, client *forgeline.Client, updates <-chan session.Update, done func(session.Update) bool) error {
	if client.ConnStatus() == schema.ConnFailed {
		return schema.ErrRetriesExhausted
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			if update.Kind == session.UpdateConn && update.Conn == schema.ConnFailed {
				return schema.ErrRetriesExhausted
			}
			if done != nil && done(update) {
				return nil
			}
		}
	}
}

// waitConnected blocks until the live connection opens.
func waitConnected(ctx context.Context, client *forgeline.Client, updates <-chan session.Update) error {
	if client.ConnStatus() == schema.ConnConnected {
		return nil
	}
	return waitUntil(ctx, client, updates, func(update session.Update) bool {
		return update.Kind == session.UpdateConn && update.Conn == schema.ConnConnected
	})
}

// saveRecord persists the session for later attach. Attach re-fetches the
// live endpoint from the server, so the id and query are enough. Failures
// are not fatal to the running command.
func saveRecord(env *appEnv, logger pslog.Logger, id schema.SessionID, query string) {
	record := persist.SessionRecord{
		SessionID: id,
		Query:     query,
	}
	if err := env.store.Save(record); err != nil {
		logger.Warn("session record not saved", "session", id, "err", err)
	}
}
