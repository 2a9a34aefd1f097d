// Package summary renders a run report and posts it to chat sinks.
package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rickgao/kalshi-lagbot/internal/strategy"
)

// Summary limits.
const (
	DefaultMaxHighlights = 6
	MaxErrorLines        = 6
)

// Report is the outcome of one run.
type Report struct {
	DryRun bool
	Time   time.Time

	// Opportunities is only shown when the run reached the decision engine.
	Opportunities    int
	HasOpportunities bool

	Err    error
	Events []strategy.Event
}

// Render formats r as a Slack mrkdwn message.
func Render(r Report, maxHighlights int) string {
	if maxHighlights <= 0 {
		maxHighlights = DefaultMaxHighlights
	}

	mode := "LIVE"
	if r.DryRun {
		mode = "DRY_RUN"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*Kalshi 15m bot run* `%s` `%s`", mode, r.Time.UTC().Format(time.RFC3339))
	if r.HasOpportunities {
		fmt.Fprintf(&b, "\nOpportunities: %d", r.Opportunities)
	}

	if r.Err != nil {
		b.WriteString("\nResult: ERROR")
		if lines := ErrorLines(r.Err, MaxErrorLines); len(lines) > 0 {
			b.WriteString("\n\n*Error Details*")
			for _, line := range lines {
				b.WriteString("\n- ")
				b.WriteString(line)
			}
		}
	} else {
		b.WriteString("\nResult: OK")
	}

	if highlights := Highlights(r.Events, maxHighlights); highlights != "" {
		b.WriteString("\n\n*Highlights*")
		b.WriteString(highlights)
	}

	return b.String()
}

// ErrorLines flattens err into at most max lines. Joined errors contribute
// one line each; single errors contribute their message.
func ErrorLines(err error, max int) []string {
	if err == nil {
		return nil
	}

	var msgs []string
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			if e != nil {
				msgs = append(msgs, e.Error())
			}
		}
	} else {
		msgs = []string{err.Error()}
	}

	var lines []string
	for _, msg := range msgs {
		for _, line := range strings.Split(msg, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			lines = append(lines, line)
			if len(lines) >= max {
				return lines
			}
		}
	}
	return lines
}

// Highlights renders one line per skipped or qualified market, up to max.
func Highlights(events []strategy.Event, max int) string {
	var b strings.Builder
	count := 0

	for _, ev := range events {
		if count >= max {
			break
		}

		var reason string
		switch ev.Kind {
		case strategy.EventSkip:
			reason = ev.Message
			if ev.Skip == strategy.SkipNotQualified && ev.HasPrices {
				reason = fmt.Sprintf("combined %.4f", ev.Combined)
			}
		case strategy.EventQualify:
			reason = ev.Message
		default:
			continue
		}
		if ev.Ticker == "" {
			continue
		}

		parts := make([]string, 0, 2)
		if ev.YesAsk != "" && ev.NoAsk != "" {
			parts = append(parts, fmt.Sprintf("YES %s / NO %s", ev.YesAsk, ev.NoAsk))
		}
		parts = append(parts, FormatTTL(ev.SecondsToClose))

		fmt.Fprintf(&b, "\n- *%s* (%s) — %s — *%s*", ev.Title, ev.Ticker, strings.Join(parts, " — "), reason)
		count++
	}

	return b.String()
}

// FormatTTL renders seconds as "TTL XmYYs". Negative values render as zero.
func FormatTTL(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("TTL %dm%02ds", seconds/60, seconds%60)
}

// Poster delivers a rendered summary.
type Poster interface {
	Post(ctx context.Context, text string) error
}

// Publish posts text to every poster. Failures are logged and do not stop
// the remaining posters; the joined error is returned.
func Publish(ctx context.Context, text string, posters []Poster, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	var errs []error
	for _, p := range posters {
		if err := p.Post(ctx, text); err != nil {
			logger.Error("summary post failed", "sink", fmt.Sprintf("%T", p), "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
