package statement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ABagofRuffles/budget-pwa/internal/domain/categorize"
	"github.com/ABagofRuffles/budget-pwa/internal/domain/ledger"
)

// ErrTimeout reports that the document-to-candidates pipeline exceeded its
// wall-clock budget. Distinct from an empty result, which is a success.
var ErrTimeout = errors.New("statement: extraction timed out")

// DefaultBudget is the recommended wall-clock ceiling for one extraction.
const DefaultBudget = 30 * time.Second

// Result is the outcome of one extraction. Zero candidates with a nil error
// means "nothing recognized", not failure.
type Result struct {
	Candidates     []ledger.Candidate `json:"candidates"`
	PagesTruncated bool               `json:"pages_truncated"`
	LineCount      int                `json:"line_count"`
	PeriodDetected bool               `json:"period_detected"`
}

// Extractor runs the full document-to-candidates pipeline: layout
// reconstruction, both parser passes, category annotation and deduplication.
// It holds no state between calls.
type Extractor struct {
	engine *categorize.Engine
	logger *slog.Logger
	budget time.Duration
}

// NewExtractor wires an extractor. A zero budget falls back to DefaultBudget.
func NewExtractor(engine *categorize.Engine, logger *slog.Logger, budget time.Duration) *Extractor {
	if budget <= 0 {
		budget = DefaultBudget
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{engine: engine, logger: logger, budget: budget}
}

// Extract turns positioned fragments into reviewed candidates. The two parser
// passes both run unconditionally; the deduplicator reconciles their overlap
// with strict-pass results taking precedence.
func (e *Extractor) Extract(ctx context.Context, pages []Page) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, e.budget)
	defer cancel()

	now := time.Now()

	lines, truncated := ReconstructLines(pages)
	if truncated {
		e.logger.Warn("page cap reached, statement truncated",
			slog.Int("pages", len(pages)), slog.Int("cap", MaxPages))
	}
	if err := checkBudget(ctx); err != nil {
		return nil, err
	}

	period := DetectPeriod(lines)

	strict := StrictPass(lines, period, now)
	if err := checkBudget(ctx); err != nil {
		return nil, err
	}

	lenient := FallbackPass(lines, period, now)
	if err := checkBudget(ctx); err != nil {
		return nil, err
	}

	merged := Dedupe(strict, lenient)
	for i := range merged {
		if merged[i].Category == "" {
			merged[i].Category = e.engine.Infer(merged[i].Description)
		}
	}

	e.logger.Info("statement extracted",
		slog.Int("lines", len(lines)),
		slog.Int("strict_candidates", len(strict)),
		slog.Int("fallback_candidates", len(lenient)),
		slog.Int("merged_candidates", len(merged)),
		slog.Bool("period_detected", period != nil))

	return &Result{
		Candidates:     merged,
		PagesTruncated: truncated,
		LineCount:      len(lines),
		PeriodDetected: period != nil,
	}, nil
}

func checkBudget(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return fmt.Errorf("statement: extraction canceled: %w", err)
	}
	return nil
}
