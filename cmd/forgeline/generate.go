package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zlillymp/forgeline/schema"
	"github.com/zlillymp/forgeline/session"
	"pkt.systems/pslog"
)

func newGenerateCmd() *cobra.Command {
	var cfgPath string
	var server string
	var detach bool
	cmd := &cobra.Command{
		Use:   "generate <query>",
		Short: "Start a new generation session from a natural-language query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := pslog.Ctx(ctx)
			env, err := buildEnv(cmd, cfgPath, server)
			if err != nil {
				return err
			}

			query := strings.TrimSpace(strings.Join(args, " "))
			id, err := env.client.Start(ctx, query, func(blueprint schema.Blueprint) {
				if blueprint.Title != "" {
					logger.Debug("blueprint updated", "title", blueprint.Title)
				}
			})
			if err != nil {
				return err
			}
			defer env.client.Stop("command finished")
			fmt.Fprintf(cmd.OutOrStdout(), "session %s\n", id)
			saveRecord(env, logger, id, query)

			updates, cancel, err := env.client.Updates()
			if err != nil {
				return err
			}
			defer cancel()
			if err := waitConnected(ctx, env.client, updates); err != nil {
				return err
			}
			if err := env.client.Generate(); err != nil {
				return err
			}
			if detach {
				fmt.Fprintf(cmd.OutOrStdout(), "generation running, reattach with: forgeline attach %s\n", id)
				return nil
			}
			return waitUntil(ctx, env.client, updates, func(update session.Update) bool {
				return update.Kind == session.UpdateEvent && update.Event.Type == schema.EventGenerationComplete
			})
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "Path to config file")
	cmd.Flags().StringVar(&server, "server", "", "Forge server URL (overrides config)")
	cmd.Flags().BoolVar(&detach, "detach", false, "Return after generation starts instead of following it")
	return cmd
}
