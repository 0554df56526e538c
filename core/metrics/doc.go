// Package metrics defines the sinks that record planning outcomes. Sinks
// like PromSink and InfluxSink live in infra/metrics and register themselves
// with the factory in this package; NewMetricsSink returns a MultiSink when
// several sinks are configured. The event collector in infra/metrics feeds
// sinks from the internal event bus.
package metrics
