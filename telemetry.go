package server

import (
	"sync/atomic"
	"time"
)

// telemetryCounters tracks coarse run-rate numbers for /diagnostics.
type telemetryCounters struct {
	commands           atomic.Uint64
	broadcasts         atomic.Uint64
	broadcastBytes     atomic.Uint64
	ticks              atomic.Uint64
	tickDurationMillis atomic.Int64
}

type telemetrySnapshot struct {
	Commands           uint64 `json:"commands"`
	Broadcasts         uint64 `json:"broadcasts"`
	BroadcastBytes     uint64 `json:"broadcastBytes"`
	Ticks              uint64 `json:"ticks"`
	TickDurationMillis int64  `json:"tickDurationMillis"`
}

func newTelemetryCounters() *telemetryCounters {
	return &telemetryCounters{}
}

func (t *telemetryCounters) RecordCommand() {
	t.commands.Add(1)
}

func (t *telemetryCounters) RecordBroadcast() {
	t.broadcasts.Add(1)
}

func (t *telemetryCounters) RecordBroadcastBytes(n int) {
	if n > 0 {
		t.broadcastBytes.Add(uint64(n))
	}
}

func (t *telemetryCounters) RecordTick(duration time.Duration) {
	t.ticks.Add(1)
	millis := duration.Milliseconds()
	if millis < 0 {
		millis = 0
	}
	t.tickDurationMillis.Store(millis)
}

func (t *telemetryCounters) Snapshot() telemetrySnapshot {
	return telemetrySnapshot{
		Commands:           t.commands.Load(),
		Broadcasts:         t.broadcasts.Load(),
		BroadcastBytes:     t.broadcastBytes.Load(),
		Ticks:              t.ticks.Load(),
		TickDurationMillis: t.tickDurationMillis.Load(),
	}
}
