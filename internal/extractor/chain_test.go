package extractor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"botdl/internal/entity"
	"botdl/internal/errs"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRequest(t *testing.T) *entity.Request {
	t.Helper()

	return &entity.Request{
		ID:       "test-request",
		URL:      "https://youtube.com/watch?v=abc",
		Platform: entity.PlatformYouTube,
		Dir:      t.TempDir(),
	}
}

func TestChainFirstSuccess(t *testing.T) {
	want := &entity.Extraction{Files: []string{"/tmp/a.mp4"}, Kind: entity.KindVideo}

	first := &Mock{MockName: "first", Ext: want}
	second := &Mock{MockName: "second"}

	chain := NewChain(testLogger(), nil)

	got, err := chain.Run(t.Context(), []Strategy{first, second}, testRequest(t), nil)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if got != want {
		t.Errorf("Run() = %+v, want %+v", got, want)
	}

	if first.Calls() != 1 || second.Calls() != 0 {
		t.Errorf("calls = %d/%d, want 1/0", first.Calls(), second.Calls())
	}
}

func TestChainFallsThroughOnRetryable(t *testing.T) {
	want := &entity.Extraction{Files: []string{"/tmp/a.mp4"}, Kind: entity.KindVideo}

	first := &Mock{MockName: "first", Err: errs.Retryable(errors.New("boom"))}
	second := &Mock{MockName: "second", Ext: want}

	chain := NewChain(testLogger(), nil)

	got, err := chain.Run(t.Context(), []Strategy{first, second}, testRequest(t), nil)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if got != want {
		t.Errorf("Run() = %+v, want %+v", got, want)
	}

	if first.Calls() != 1 || second.Calls() != 1 {
		t.Errorf("calls = %d/%d, want 1/1", first.Calls(), second.Calls())
	}
}

func TestChainStopsOnTerminal(t *testing.T) {
	first := &Mock{MockName: "first", Err: errs.ErrRateLimited}
	second := &Mock{MockName: "second", Ext: &entity.Extraction{}}

	chain := NewChain(testLogger(), nil)

	_, err := chain.Run(t.Context(), []Strategy{first, second}, testRequest(t), nil)
	if !errors.Is(err, errs.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	if second.Calls() != 0 {
		t.Error("terminal failure must not advance the chain")
	}
}

func TestChainExhaustion(t *testing.T) {
	lastErr := errors.New("last failure")

	first := &Mock{MockName: "first", Err: errs.Retryable(errors.New("first failure"))}
	second := &Mock{MockName: "second", Err: errs.Retryable(lastErr)}

	chain := NewChain(testLogger(), nil)

	_, err := chain.Run(t.Context(), []Strategy{first, second}, testRequest(t), nil)
	if err == nil {
		t.Fatal("expected an error after exhausting the chain")
	}

	if !errors.Is(err, lastErr) {
		t.Errorf("exhaustion error %v must wrap the last strategy error", err)
	}
}

func TestChainNoStrategies(t *testing.T) {
	chain := NewChain(testLogger(), nil)

	_, err := chain.Run(t.Context(), nil, testRequest(t), nil)
	if !errors.Is(err, errs.ErrNoStrategies) {
		t.Fatalf("expected ErrNoStrategies, got %v", err)
	}
}

func TestChainCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	first := &Mock{MockName: "first", Ext: &entity.Extraction{}}

	chain := NewChain(testLogger(), nil)

	_, err := chain.Run(ctx, []Strategy{first}, testRequest(t), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if first.Calls() != 0 {
		t.Error("no strategy should run after cancellation")
	}
}

func TestChainCancelDuringStrategy(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())

	first := &Mock{
		MockName:  "first",
		Err:       errs.Retryable(errors.New("boom")),
		OnExtract: func(*entity.Request) { cancel() },
	}
	second := &Mock{MockName: "second", Ext: &entity.Extraction{}}

	chain := NewChain(testLogger(), nil)

	_, err := chain.Run(ctx, []Strategy{first, second}, testRequest(t), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if second.Calls() != 0 {
		t.Error("cancellation must stop the fallback chain")
	}
}

func TestChainSameRequestForAll(t *testing.T) {
	req := testRequest(t)

	var seen []*entity.Request

	record := func(r *entity.Request) { seen = append(seen, r) }

	first := &Mock{MockName: "first", Err: errs.Retryable(errors.New("boom")), OnExtract: record}
	second := &Mock{MockName: "second", Ext: &entity.Extraction{}, OnExtract: record}

	chain := NewChain(testLogger(), nil)

	if _, err := chain.Run(t.Context(), []Strategy{first, second}, req, nil); err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	for i, r := range seen {
		if r != req {
			t.Errorf("strategy %d saw a different request", i)
		}
	}
}
