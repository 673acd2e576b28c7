package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zlillymp/forgeline/schema"
	"github.com/zlillymp/forgeline/session"
)

func newStopCmd() *cobra.Command {
	var cfgPath string
	var server string
	var resume bool
	cmd := &cobra.Command{
		Use:   "stop <session-id>",
		Short: "Pause generation in a running session",
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
			want := schema.EventGenerationStopped
			if resume {
				if err := env.client.ResumeGeneration(); err != nil {
					return err
				}
				want = schema.EventGenerationResumed
			} else if err := env.client.StopGeneration(); err != nil {
				return err
			}
			if err := waitUntil(ctx, env.client, updates, func(update session.Update) bool {
				return update.Kind == session.UpdateEvent && update.Event.Type == want
			}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "Path to config file")
	cmd.Flags().StringVar(&server, "server", "", "Forge server URL (overrides config)")
	cmd.Flags().BoolVar(&resume, "resume", false, "Resume a paused generation instead of stopping")
	return cmd
}
