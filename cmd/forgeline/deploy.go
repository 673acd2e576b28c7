package main

import (
	"errors"
	"fmt"

	"github.com/mdp/qrterminal/v3"
	"github.com/spf13/cobra"

	"github.com/zlillymp/forgeline/schema"
	"github.com/zlillymp/forgeline/session"
)

func newDeployCmd() *cobra.Command {
	var cfgPath string
	var server string
	var target string
	var noQR bool
	cmd := &cobra.Command{
		Use:   "deploy <session-id>",
		Short: "Deploy the generated app permanently",
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
			if err := env.client.Deploy(schema.DeploymentTarget(target)); err != nil {
				return err
			}

			var outcome schema.Event
			if err := waitUntil(ctx, env.client, updates, func(update session.Update) bool {
				if update.Kind != session.UpdateEvent {
					return false
				}
				switch update.Event.Type {
				case schema.EventDeployCompleted, schema.EventDeployError:
					outcome = update.Event
					return true
				}
				return false
			}); err != nil {
				return err
			}
			if outcome.Type == schema.EventDeployError {
				return errors.New("deployment failed")
			}
			if outcome.Deployment != nil && outcome.Deployment.URL != "" && !noQR {
				qrterminal.GenerateHalfBlock(outcome.Deployment.URL, qrterminal.L, cmd.OutOrStdout())
				fmt.Fprintln(cmd.OutOrStdout(), outcome.Deployment.URL)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "Path to config file")
	cmd.Flags().StringVar(&server, "server", "", "Forge server URL (overrides config)")
	cmd.Flags().StringVar(&target, "target", "", "Deployment target")
	cmd.Flags().BoolVar(&noQR, "no-qr", false, "Skip the QR code for the deployed URL")
	return cmd
}
