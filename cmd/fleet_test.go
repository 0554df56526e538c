package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/kilianp07/loadplan/core/scheduler"
)

func TestFleetCommand(t *testing.T) {
	dir := t.TempDir()
	orders := filepath.Join(dir, "orders.yaml")
	fleet := filepath.Join(dir, "fleet.yaml")
	if err := os.WriteFile(orders, []byte(`- {id: a, weight_kg: 600}
- {id: b, weight_kg: 400}
- {id: c, weight_kg: 500}
- {id: d, weight_kg: 2000}
`), 0o644); err != nil {
		t.Fatalf("write orders: %v", err)
	}
	if err := os.WriteFile(fleet, []byte(`vehicles:
  - {id: t1, capacity_kg: 1000}
  - {id: t2, capacity_kg: 500}
`), 0o644); err != nil {
		t.Fatalf("write fleet: %v", err)
	}
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"fleet", "--orders", orders, "--fleet", fleet})
	defer rootCmd.SetArgs(nil)
	if err := Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	var fp scheduler.FleetPlan
	if err := json.Unmarshal(out.Bytes(), &fp); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out.String())
	}
	if len(fp.Plans) != 2 {
		t.Fatalf("expected two plans, got %+v", fp)
	}
	if fp.Plans[0].Stats.TotalWeight != 1000 || fp.Plans[1].Stats.TotalWeight != 500 {
		t.Fatalf("unexpected loads: %v / %v", fp.Plans[0].Stats.TotalWeight, fp.Plans[1].Stats.TotalWeight)
	}
	if len(fp.Unassigned) != 1 || fp.Unassigned[0].ID != "d" {
		t.Fatalf("unexpected unassigned orders: %+v", fp.Unassigned)
	}
}
