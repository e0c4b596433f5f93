package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(remindersCmd)
	rootCmd.AddCommand(restoreRegistryCmd)
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(pushCmd)

	remindersCmd.Flags().Bool("watch", false, "Keep running and check on the configured cron schedule")
	remindersCmd.Flags().String("cron", "", "Cron spec with seconds; overrides REMINDERS_CRON")
}

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Send due deadline and payment reminders",
	Long: `Checks every project for approaching deadlines and unpaid balances and
sends each reminder to Telegram at most once per day.`,
	Args: cobra.NoArgs,
	RunE: runReminders,
}

func runReminders(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	watch, _ := cmd.Flags().GetBool("watch")
	if !watch {
		n, err := e.ws.Scheduler.RunOnce(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "sent %d reminder(s)\n", n)
		return nil
	}

	spec, _ := cmd.Flags().GetString("cron")
	if spec == "" {
		spec = e.cfg.Reminders.Cron
	}
	if err := e.ws.Scheduler.Start(ctx, spec); err != nil {
		return err
	}
	e.log.Info("reminders scheduled", "cron", spec)
	<-ctx.Done()
	return nil
}

var restoreRegistryCmd = &cobra.Command{
	Use:   "restore-registry",
	Short: "Create missing clients and employees from project data",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := e.ws.Service.RestoreRegistry(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "restored %d client(s), %d employee(s)\n", len(res.Clients), len(res.Employees))
		return nil
	},
}

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Replace local projects with the project server's list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := e.ws.Service.LoadFromServer(cmd.Context())
		if err != nil {
			return err
		}
		if res.Warning != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "warning:", res.Warning)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "loaded %d project(s)\n", res.Loaded)
		return nil
	},
}

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload every local project to the project server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		// Close waits for the queued syncs.
		defer e.Close()

		n := e.ws.Service.PushAll(cmd.Context())
		fmt.Fprintf(cmd.OutOrStdout(), "queued %d project(s)\n", n)
		return nil
	},
}
