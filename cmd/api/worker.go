package main

import (
	"os/signal"
	"syscall"
	"time"

	"child-immunization-history/internal/worker/cleanup"
	"child-immunization-history/internal/worker/sweep"

	"github.com/spf13/cobra"
)

var runOnce bool

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Barrido periódico de notificaciones y purga de aplicadas",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		sched := sweep.NewScheduler(a.svcs.Children, a.svcs.Notifications, a.log, a.opts.Metrics, a.cfg.SweepConcurrency)
		purge := cleanup.NewJob(a.svcs.Notifications, a.log, a.cfg.Retention())

		if runOnce {
			if _, err := sched.RunOnce(ctx); err != nil {
				return err
			}
			_, err := purge.Run(ctx)
			return err
		}

		go purge.Start(ctx, 24*time.Hour)
		sched.Start(ctx, a.cfg.SweepInterval)
		return nil
	},
}

func init() {
	workerCmd.Flags().BoolVar(&runOnce, "once", false, "un solo barrido y purga, luego salir")
}

