package extractor

import (
	"context"
	"sync/atomic"
	"time"

	"botdl/internal/consts"
	"botdl/internal/entity"
)

// Mock is a configurable strategy for tests.
type Mock struct {
	// MockName overrides the strategy name when set.
	MockName string
	// Ext and Err are returned by Extract after Samples are emitted.
	Ext *entity.Extraction
	Err error
	// Samples are emitted to onProgress before returning.
	Samples []entity.ProgressSample
	// Simulate stretches the run over time in consts.DefaultSimulateTime
	// steps when set, for scheduling tests.
	Simulate bool
	// OnExtract runs at the start of every Extract call when set.
	OnExtract func(req *entity.Request)

	calls atomic.Int32
}

// Name implements Strategy.
func (m *Mock) Name() string {
	if m.MockName != "" {
		return m.MockName
	}

	return consts.StrategyMock
}

// Calls reports how many times Extract ran.
func (m *Mock) Calls() int {
	return int(m.calls.Load())
}

// Extract implements Strategy.
func (m *Mock) Extract(ctx context.Context, req *entity.Request, onProgress ProgressFunc) (*entity.Extraction, error) {
	m.calls.Add(1)

	if m.OnExtract != nil {
		m.OnExtract(req)
	}

	for _, s := range m.Samples {
		if m.Simulate {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(consts.DefaultSimulateTime / time.Duration(len(m.Samples))):
			}
		}

		if onProgress != nil {
			onProgress(s)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return m.Ext, m.Err
}
