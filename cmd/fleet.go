package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/loadplan/config"
	"github.com/kilianp07/loadplan/core/planning"
	"github.com/kilianp07/loadplan/core/scheduler"
	"github.com/kilianp07/loadplan/infra/logger"
	"github.com/kilianp07/loadplan/infra/mqtt"
	"github.com/kilianp07/loadplan/pkg/export"
)

type fleetOptions struct {
	orders       string
	fleet        string
	largestFirst bool
	format       string
	publish      bool
}

func newFleetCmd() *cobra.Command {
	var o fleetOptions
	c := &cobra.Command{
		Use:   "fleet",
		Short: "Spread an order file over the vehicles of a fleet file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFleet(cmd, o)
		},
	}
	f := c.Flags()
	f.StringVar(&o.orders, "orders", "", "order file (yaml or json)")
	f.StringVar(&o.fleet, "fleet", "", "fleet file (yaml or json)")
	f.BoolVar(&o.largestFirst, "largest-first", false, "fill vehicles by decreasing capacity")
	f.StringVar(&o.format, "format", "json", "output format (json, csv or html)")
	f.BoolVar(&o.publish, "publish", false, "publish every plan to the configured MQTT broker")
	_ = c.MarkFlagRequired("orders")
	_ = c.MarkFlagRequired("fleet")
	return c
}

func init() {
	rootCmd.AddCommand(newFleetCmd())
}

func runFleet(cmd *cobra.Command, o fleetOptions) error {
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
	fleet, err := scheduler.LoadConfig(o.fleet)
	if err != nil {
		return fmt.Errorf("load fleet: %w", err)
	}
	fleet.LargestFirst = fleet.LargestFirst || o.largestFirst
	if o.publish && !cfg.MQTT.Enabled() {
		return fmt.Errorf("--publish requires mqtt.broker in the configuration")
	}

	planner, err := planning.NewPlanner(cfg.Solver, nil, logger.New("planner"))
	if err != nil {
		return err
	}
	fp, err := scheduler.New(planner, logger.New("scheduler")).PlanFleet(ctx, fleet, req.Orders)
	if err != nil {
		return err
	}

	if o.publish {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("mqtt client: %w", err)
		}
		defer client.Disconnect()
		for _, p := range fp.Plans {
			if _, err := client.PublishPlan(p); err != nil {
				return err
			}
		}
	}

	switch o.format {
	case "csv", "html":
		return export.Write(cmd.OutOrStdout(), o.format, fp.Plans...)
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(fp)
	default:
		return fmt.Errorf("unsupported format %q", o.format)
	}
}
