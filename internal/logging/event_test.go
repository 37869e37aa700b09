// PropNest - Real Estate Marketplace Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/propnest

package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newBufferedEventLogger(t *testing.T) (*EventLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.TraceLevel)
	return NewEventLoggerWithLogger(logger, "nats"), &buf
}

func TestEventLogger_Fields(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	el, buf := newBufferedEventLogger(t)
	ctx := ContextWithCorrelationID(context.Background(), "corr-9")

	tests := []struct {
		name string
		log  func()
		want []string
	}{
		{
			"published",
			func() { el.LogInteractionPublished(ctx, "evt-1", "propnest.interactions") },
			[]string{`"event_id":"evt-1"`, `"topic":"propnest.interactions"`, `"correlation_id":"corr-9"`, `"level":"debug"`},
		},
		{
			"publish failed",
			func() { el.LogPublishFailed(ctx, "evt-2", errors.New("nats: timeout")) },
			[]string{`"level":"warn"`, `"error":"nats: timeout"`},
		},
		{
			"received",
			func() { el.LogInteractionReceived(ctx, "evt-3", "api-2", 17) },
			[]string{`"source_instance":"api-2"`, `"user_id":17`},
		},
		{
			"own event",
			func() { el.LogOwnEventSkipped(ctx, "evt-4") },
			[]string{`"level":"trace"`, `"event_id":"evt-4"`},
		},
		{
			"failed",
			func() { el.LogEventFailed(ctx, "evt-5", "parse", errors.New("bad json")) },
			[]string{`"level":"error"`, `"stage":"parse"`},
		},
		{
			"subscription",
			func() { el.LogSubscriptionStarted("propnest.interactions", "api-1") },
			[]string{`"group":"api-1"`, `"message":"subscription started"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.log()
			out := buf.String()
			for _, want := range append(tt.want, `"component":"events"`, `"backend":"nats"`) {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %s: %s", want, out)
				}
			}
		})
	}
}

func TestAddFieldPairs_OddCount(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	addFieldPairs(logger.Info(), []interface{}{"a", 1, 2, "b", "dangling"}).Msg("pairs")

	out := buf.String()
	if !strings.Contains(out, `"a":1`) || !strings.Contains(out, `"2":"b"`) {
		t.Errorf("unexpected output: %s", out)
	}
	if strings.Contains(out, "dangling") {
		t.Errorf("dangling key should be dropped: %s", out)
	}
}
