package progress_test

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"testing/synctest"
	"time"

	"botdl/internal/entity"
	"botdl/internal/progress"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRender(t *testing.T) {
	tests := []struct {
		name   string
		sample entity.ProgressSample
		want   string
	}{
		{
			name:   "half",
			sample: entity.ProgressSample{Downloaded: 50, Total: 100},
			want:   "[███████░░░░░░░░] 50.0%",
		},
		{
			name:   "zero",
			sample: entity.ProgressSample{Downloaded: 0, Total: 100},
			want:   "[░░░░░░░░░░░░░░░] 0.0%",
		},
		{
			name:   "full",
			sample: entity.ProgressSample{Downloaded: 100, Total: 100},
			want:   "[███████████████] 100.0%",
		},
		{
			name:   "overshootClamped",
			sample: entity.ProgressSample{Downloaded: 150, Total: 100},
			want:   "[███████████████] 100.0%",
		},
		{
			name:   "oneDecimal",
			sample: entity.ProgressSample{Downloaded: 333, Total: 1000},
			want:   "[████░░░░░░░░░░░] 33.3%",
		},
		{
			name:   "unknownTotal",
			sample: entity.ProgressSample{Downloaded: 1_000_000, Total: 0},
			want:   "1.00 MB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := progress.Render(tt.sample); got != tt.want {
				t.Fatalf("Render(%+v) = %q, want %q", tt.sample, got, tt.want)
			}
		})
	}
}

func TestReporterThrottle(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rep := progress.NewReporter(discardLogger(), 2*time.Second)

		ch := make(chan entity.ProgressSample)
		done := make(chan struct{})

		var got []string

		go func() {
			defer close(done)
			rep.Run(ch, func(s string) error {
				got = append(got, s)
				return nil
			})
		}()

		ch <- entity.ProgressSample{Downloaded: 10, Total: 100} // first sample, emitted
		synctest.Wait()

		ch <- entity.ProgressSample{Downloaded: 20, Total: 100} // inside throttle window, skipped
		synctest.Wait()

		time.Sleep(2 * time.Second)

		ch <- entity.ProgressSample{Downloaded: 50, Total: 100} // window passed, emitted
		synctest.Wait()

		ch <- entity.ProgressSample{Downloaded: 60, Total: 100} // inside window, but final
		close(ch)
		<-done

		if len(got) != 3 {
			t.Fatalf("expected 3 updates, got %d: %v", len(got), got)
		}

		for i, want := range []string{"10.0%", "50.0%", "60.0%"} {
			if !strings.Contains(got[i], want) {
				t.Errorf("update %d = %q, want it to contain %q", i, got[i], want)
			}
		}
	})
}

func TestReporterMonotonic(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rep := progress.NewReporter(discardLogger(), 2*time.Second)

		ch := make(chan entity.ProgressSample)
		done := make(chan struct{})

		var got []string

		go func() {
			defer close(done)
			rep.Run(ch, func(s string) error {
				got = append(got, s)
				return nil
			})
		}()

		ch <- entity.ProgressSample{Downloaded: 50, Total: 100}
		synctest.Wait()

		time.Sleep(2 * time.Second)

		// A strategy restarting its transfer must never walk the bar backwards.
		ch <- entity.ProgressSample{Downloaded: 30, Total: 100}
		close(ch)
		<-done

		for _, update := range got {
			if !strings.Contains(update, "50.0%") {
				t.Errorf("update %q dropped below the highest observed progress", update)
			}
		}
	})
}

func TestReporterSinkErrorSwallowed(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rep := progress.NewReporter(discardLogger(), time.Second)

		ch := make(chan entity.ProgressSample)
		done := make(chan struct{})

		calls := 0

		go func() {
			defer close(done)
			rep.Run(ch, func(s string) error {
				calls++
				return io.ErrClosedPipe
			})
		}()

		ch <- entity.ProgressSample{Downloaded: 10, Total: 100}
		synctest.Wait()

		time.Sleep(time.Second)

		ch <- entity.ProgressSample{Downloaded: 90, Total: 100}
		close(ch)
		<-done

		if calls != 2 {
			t.Fatalf("expected the reporter to keep emitting after sink errors, got %d calls", calls)
		}
	})
}
