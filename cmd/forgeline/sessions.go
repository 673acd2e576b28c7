package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zlillymp/forgeline/internal/appconfig"
	"github.com/zlillymp/forgeline/internal/persist"
	"github.com/zlillymp/forgeline/schema"
	"pkt.systems/pslog"
)

func newSessionsCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List locally known sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			store, err := persist.NewStoreWithLogger(cfg.StateDir, pslog.Ctx(cmd.Context()))
			if err != nil {
				return err
			}
			records, err := store.List()
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
				return nil
			}
			for _, record := range records {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n",
					record.SessionID,
					record.CreatedAt.Format("2006-01-02 15:04"),
					record.Query)
			}
			return nil
		},
	}
	cmd.AddCommand(newSessionsForgetCmd())
	cmd.Flags().StringVar(&cfgPath, "config", "", "Path to config file")
	return cmd
}

func newSessionsForgetCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "forget <session-id>",
		Short: "Remove a session from the local list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			store, err := persist.NewStore(cfg.StateDir)
			if err != nil {
				return err
			}
			return store.Delete(schema.SessionID(args[0]))
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "Path to config file")
	return cmd
}
