package main

import (
	"github.com/spf13/cobra"

	"github.com/zlillymp/forgeline/schema"
	"github.com/zlillymp/forgeline/session"
)

func newAttachCmd() *cobra.Command {
	var cfgPath string
	var server string
	cmd := &cobra.Command{
		Use:   "attach <session-id>",
		Short: "Reattach to a running session and follow its progress",
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
			return waitUntil(ctx, env.client, updates, func(update session.Update) bool {
				return update.Kind == session.UpdateEvent && update.Event.Type == schema.EventGenerationComplete
			})
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "Path to config file")
	cmd.Flags().StringVar(&server, "server", "", "Forge server URL (overrides config)")
	return cmd
}
