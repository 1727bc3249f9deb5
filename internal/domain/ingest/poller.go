package ingest

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/cirozov-cmyk/device-logs-tile/internal/domain/devicelog"
	"github.com/cirozov-cmyk/device-logs-tile/internal/infrastructure/monitoring"
)

// Device label used for warning entries produced by the poller.
const warningDevice = "ingest"

// Sink is the buffer surface the poller writes into.
type Sink interface {
	Ingest(records []devicelog.Record) int
	Record(message, device string, logType devicelog.Type) devicelog.Entry
	Size() int
}

// Options tunes the polling schedule.
type Options struct {
	Interval   time.Duration
	Timeout    time.Duration
	RetryDelay time.Duration
}

// Poller periodically fetches from a Source and merges the result into a Sink.
type Poller struct {
	source Source
	sink   Sink
	opts   Options
	logger *zap.Logger
}

// NewPoller builds a poller. Zero options fall back to 10s interval, 5s timeout, 10s retry.
func NewPoller(source Source, sink Sink, opts Options, logger *zap.Logger) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = 10 * time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{source: source, sink: sink, opts: opts, logger: logger}
}

// Run polls until ctx is cancelled. The first cycle runs immediately.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("log source polling started",
		zap.String("source", p.source.Name()),
		zap.Duration("interval", p.opts.Interval),
	)
	defer p.logger.Info("log source polling stopped", zap.String("source", p.source.Name()))

	for {
		if ctx.Err() != nil {
			return
		}
		delay := p.opts.Interval
		if err := p.Cycle(ctx); err != nil {
			delay = p.opts.RetryDelay
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// Cycle performs one fetch. A failed fetch records a single warning entry and
// returns the error; cancellation of ctx itself is returned without recording.
func (p *Poller) Cycle(ctx context.Context) error {
	name := p.source.Name()
	fetchCtx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	start := time.Now()
	records, err := p.source.Fetch(fetchCtx)
	cancel()
	elapsed := time.Since(start).Seconds()

	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		reason, message := p.describe(err)
		p.sink.Record(message, warningDevice, devicelog.TypeWarning)
		monitoring.ObserveFetchFailure(name, reason, elapsed)
		monitoring.CaptureError(err, name)
		monitoring.SetBufferSize(p.sink.Size())
		p.logger.Warn("log source fetch failed",
			zap.String("source", name),
			zap.String("reason", reason),
			zap.Error(err),
		)
		return err
	}

	added := p.sink.Ingest(records)
	size := p.sink.Size()
	monitoring.ObserveFetch(name, elapsed, added)
	monitoring.SetBufferSize(size)
	p.logger.Debug("log source fetched",
		zap.String("source", name),
		zap.Int("records", len(records)),
		zap.Int("added", added),
		zap.Int("size", size),
	)
	return nil
}

// describe classifies err into a metric reason and a user-facing warning text.
func (p *Poller) describe(err error) (string, string) {
	var statusErr *StatusError
	var decodeErr *DecodeError
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return "timeout", fmt.Sprintf("source timeout after %s", p.opts.Timeout)
	case errors.As(err, &statusErr):
		return "status", statusErr.Error()
	case errors.As(err, &decodeErr):
		return "decode", decodeErr.Error()
	default:
		return "connection", "connection error: " + err.Error()
	}
}
