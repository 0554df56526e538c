package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/loadplan/config"
	"github.com/kilianp07/loadplan/core/planning"
	"github.com/kilianp07/loadplan/infra/logger"
	"github.com/kilianp07/loadplan/infra/mqtt"
	"github.com/kilianp07/loadplan/pkg/export"
)

type solveOptions struct {
	orders   string
	capacity float64
	scale    float64
	vehicle  string
	workers  int
	bound    bool
	publish  bool
	format   string
}

func newSolveCmd() *cobra.Command {
	var o solveOptions
	c := &cobra.Command{
		Use:   "solve",
		Short: "Plan a load from an order file and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, o)
		},
	}
	f := c.Flags()
	f.StringVar(&o.orders, "orders", "", "order file (yaml or json)")
	f.Float64Var(&o.capacity, "capacity", 0, "vehicle capacity in kg, overrides the file")
	f.Float64Var(&o.scale, "scale", 0, "weight granularity in kg, overrides solver.scale")
	f.StringVar(&o.vehicle, "vehicle", "", "vehicle identifier, overrides the file")
	f.IntVar(&o.workers, "workers", 0, "goroutines per table column, overrides solver.workers")
	f.BoolVar(&o.bound, "bound", false, "report the linear relaxation bound")
	f.BoolVar(&o.publish, "publish", false, "publish the plan to the configured MQTT broker")
	f.StringVar(&o.format, "format", "json", "output format (json, csv or html)")
	_ = c.MarkFlagRequired("orders")
	return c
}

func init() {
	rootCmd.AddCommand(newSolveCmd())
}

func runSolve(cmd *cobra.Command, o solveOptions) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	req, err := planning.LoadOrders(o.orders)
	if err != nil {
		return fmt.Errorf("load orders: %w", err)
	}
	if o.capacity > 0 {
		req.Capacity = o.capacity
	}
	if o.vehicle != "" {
		req.VehicleID = o.vehicle
	}
	req.Scale = o.scale
	solverCfg := cfg.Solver
	if o.workers > 0 {
		solverCfg.Workers = o.workers
	}
	solverCfg.ReportBound = solverCfg.ReportBound || o.bound

	planner, err := planning.NewPlanner(solverCfg, nil, logger.New("planner"))
	if err != nil {
		return err
	}
	plan, err := planner.Optimize(ctx, req)
	if err != nil {
		return err
	}

	if o.publish {
		if !cfg.MQTT.Enabled() {
			return fmt.Errorf("--publish requires mqtt.broker in the configuration")
		}
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("mqtt client: %w", err)
		}
		defer client.Disconnect()
		if _, err := client.PublishPlan(plan); err != nil {
			return err
		}
	}

	return export.Write(cmd.OutOrStdout(), o.format, plan)
}
