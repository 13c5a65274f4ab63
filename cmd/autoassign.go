package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mjoly/fieldops/app"
	"github.com/mjoly/fieldops/config"
	"github.com/mjoly/fieldops/infra/logger"
)

var autoAssignDate string

var autoAssignCmd = &cobra.Command{
	Use:   "autoassign",
	Short: "Run one auto-assign batch over the unassigned jobs of a day",
	RunE:  autoAssign,
}

func init() {
	autoAssignCmd.Flags().StringVar(&autoAssignDate, "date", "", "day to assign, YYYY-MM-DD (default today)")
	rootCmd.AddCommand(autoAssignCmd)
}

func autoAssign(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	date := time.Now()
	if autoAssignDate != "" {
		date, err = time.Parse("2006-01-02", autoAssignDate)
		if err != nil {
			return fmt.Errorf("parse date: %w", err)
		}
	}

	logg := logger.New("autoassign-command")
	svc, err := app.New(cfg, date)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logg.Errorf("service close: %v", err)
		}
	}()

	res, err := svc.Engine.AutoAssign(ctx, date)
	if err != nil {
		return fmt.Errorf("auto-assign: %w", err)
	}
	fmt.Printf("assigned %d of %d jobs\n", res.Assigned, res.Total)
	return nil
}
