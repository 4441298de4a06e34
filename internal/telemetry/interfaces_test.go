package telemetry

import (
	"bytes"
	"log"
	"testing"

	"newomega/server/logging"
)

func TestWrapLoggerForwardsAndToleratesNil(t *testing.T) {
	WrapLogger(nil).Printf("fight %s archived", "ignored")

	var buf bytes.Buffer
	WrapLogger(log.New(&buf, "", 0)).Printf("fight %s archived", "abc")
	if got := buf.String(); got != "fight abc archived\n" {
		t.Fatalf("expected forwarded line, got %q", got)
	}

	var nilFunc LoggerFunc
	nilFunc.Printf("ignored")
}

func TestWrapMetricsUpdatesCounters(t *testing.T) {
	metrics := &logging.Metrics{}
	adapter := WrapMetrics(metrics)

	adapter.Add("fights_total", 2)
	adapter.Store("replay_streams_open", 5)
	adapter.Add("fights_total", 3)

	snapshot := metrics.Snapshot()
	if snapshot["fights_total"] != 5 || snapshot["replay_streams_open"] != 5 {
		t.Fatalf("unexpected counters %v", snapshot)
	}
	if keys := metrics.Keys(); len(keys) != 2 || keys[0] != "fights_total" {
		t.Fatalf("expected sorted keys, got %v", keys)
	}

	nilAdapter := WrapMetrics(nil)
	nilAdapter.Add("ignored", 1)
	nilAdapter.Store("ignored", 1)
}
