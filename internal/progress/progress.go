// Package progress turns raw byte-count samples into rate-limited,
// user-facing status lines.
package progress

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"botdl/internal/consts"
	"botdl/internal/entity"
	"botdl/pkg/calc"
	"botdl/pkg/format"
)

const (
	cellFull  = "█"
	cellEmpty = "░"
)

// Render draws a bar with a one-decimal percentage for a known total, or
// just the downloaded byte count when the total is unknown.
func Render(s entity.ProgressSample) string {
	if s.Total <= 0 {
		return format.Size(s.Downloaded)
	}

	pct := calc.Percent(s.Downloaded, s.Total)
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}

	filled := int(pct / 100 * consts.ProgressBarWidth)
	if filled > consts.ProgressBarWidth {
		filled = consts.ProgressBarWidth
	}

	bar := strings.Repeat(cellFull, filled) + strings.Repeat(cellEmpty, consts.ProgressBarWidth-filled)

	return fmt.Sprintf("[%s] %.1f%%", bar, pct)
}

// Reporter consumes progress samples and pushes rendered updates to a sink
// at a bounded rate.
type Reporter struct {
	log  *slog.Logger
	freq time.Duration
}

// NewReporter creates a Reporter emitting at most one update per freq.
func NewReporter(log *slog.Logger, freq time.Duration) *Reporter {
	if freq <= 0 {
		freq = consts.DefaultProgressFreq
	}

	return &Reporter{
		log:  log.With(slog.String("package", "progress")),
		freq: freq,
	}
}

// Run consumes ch until it is closed, calling emit with a rendered status
// line. Displayed progress never decreases. Updates are spaced at least
// freq apart, except a final update for the last sample which is always
// sent. Emit errors are logged and swallowed; they never interrupt the
// download they describe.
func (r *Reporter) Run(ch <-chan entity.ProgressSample, emit func(string) error) {
	var (
		best     entity.ProgressSample
		seen     bool
		lastAt   time.Time
		lastText string
	)

	send := func() {
		text := "Downloading... " + Render(best)
		if text == lastText {
			return
		}
		lastText = text

		if err := emit(text); err != nil {
			r.log.Warn("progress update failed", "error", err)
		}
	}

	for s := range ch {
		seen = true

		if s.Downloaded > best.Downloaded {
			best.Downloaded = s.Downloaded
		}
		if s.Total > best.Total {
			best.Total = s.Total
		}

		if !lastAt.IsZero() && time.Since(lastAt) < r.freq {
			continue
		}
		lastAt = time.Now()

		send()
	}

	// The last observed sample always reaches the user.
	if seen {
		send()
	}
}
