package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/zlillymp/forgeline/schema"
	"github.com/zlillymp/forgeline/session"
)

func newPreviewCmd() *cobra.Command {
	var cfgPath string
	var server string
	cmd := &cobra.Command{
		Use:   "preview <session-id>",
		Short: "Deploy an ephemeral preview of the generated app",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			env, err := buildEnv(cmd, cfgPath, server)
			if err != nil {
				return err
			}
			if err := env.client.Attach(ctx, schema.SessionID(args[0])); err != nil {
				return err
			}
			defer env.client.Stop("command finished")
			updates, cancel, err := env.client.Updates()
			if err != nil {
				return err
			}
			defer cancel()
			if err := waitConnected(ctx, env.client, updates); err != nil {
				return err
			}
			if err := env.client.DeployPreview(); err != nil {
				return err
			}
			var failed bool
			if err := waitUntil(ctx, env.client, updates, func(update session.Update) bool {
				if update.Kind != session.UpdateEvent {
					return false
				}
				switch update.Event.Type {
				case schema.EventPreviewDeployCompleted:
					return true
				case schema.EventPreviewDeployFailed:
					failed = true
					return true
				}
				return false
			}); err != nil {
				return err
			}
			if failed {
				return errors.New("preview deployment failed")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "Path to config file")
	cmd.Flags().StringVar(&server, "server", "", "Forge server URL (overrides config)")
	return cmd
}
