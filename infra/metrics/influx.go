package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	corelogger "github.com/kilianp07/loadplan/core/logger"
	coremetrics "github.com/kilianp07/loadplan/core/metrics"
	"github.com/kilianp07/loadplan/infra/logger"
)

// InfluxSink writes planning events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      corelogger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordPlan writes one load_plan point.
func (s *InfluxSink) RecordPlan(r coremetrics.PlanResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, planPoint(r))
}

// RecordPlanFailure writes one load_plan_failure point.
func (s *InfluxSink) RecordPlanFailure(f coremetrics.PlanFailure) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("load_plan_failure").
		AddTag("vehicle_id", f.VehicleID).
		AddTag("reason", f.Reason).
		AddField("error", f.Error).
		SetTime(f.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying HTTP client.
func (s *InfluxSink) Close() { s.client.Close() }

func planPoint(r coremetrics.PlanResult) *write.Point {
	return write.NewPointWithMeasurement("load_plan").
		AddTag("plan_id", r.PlanID).
		AddTag("vehicle_id", r.VehicleID).
		AddTag("component", "planner").
		AddField("orders", r.Orders).
		AddField("candidates", r.Candidates).
		AddField("capacity", round3(r.Capacity)).
		AddField("total_weight", round3(r.TotalWeight)).
		AddField("max_value", round3(r.MaxValue)).
		AddField("upper_bound", round3(r.UpperBound)).
		AddField("scale", round3(r.Scale)).
		AddField("utilization", round3(r.Utilization())).
		AddField("duration_ms", round3(float64(r.Duration)/float64(time.Millisecond))).
		SetTime(r.Time)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
