// Package service orchestrates the ingestion paths: statement extraction to
// candidates, external bank files to candidates, interchange CSV to admitted
// records, and the confirm step that moves reviewed candidates into the
// ledger. Every record admitted here went through ledger.Normalize.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ABagofRuffles/budget-pwa/internal/domain/categorize"
	"github.com/ABagofRuffles/budget-pwa/internal/domain/csvio"
	"github.com/ABagofRuffles/budget-pwa/internal/domain/import/parser"
	"github.com/ABagofRuffles/budget-pwa/internal/domain/ledger"
	"github.com/ABagofRuffles/budget-pwa/internal/domain/statement"
)

var (
	rowsImported = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "budget_import_rows_total",
		Help: "Rows admitted to the ledger, by ingestion source.",
	}, []string{"source"})
	rowsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "budget_import_rows_skipped_total",
		Help: "Rows skipped during import, by ingestion source.",
	}, []string{"source"})
)

// ConfirmResult reports the outcome of admitting reviewed candidates.
type ConfirmResult struct {
	Admitted []ledger.Transaction `json:"admitted"`
	Skipped  int                  `json:"skipped"`
	Reasons  []string             `json:"reasons,omitempty"`
}

// Service wires the parsers, the extractor, the categorizer and the ledger
// repository into the ingestion flows.
type Service struct {
	repo      ledger.Repository
	extractor *statement.Extractor
	parser    *parser.Parser
	engine    *categorize.Engine
	logger    *slog.Logger
}

// New builds the import service.
func New(repo ledger.Repository, extractor *statement.Extractor, engine *categorize.Engine, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		extractor: extractor,
		parser:    parser.New(),
		engine:    engine,
		logger:    logger,
	}
}

// ExtractStatement runs the document-to-candidates pipeline.
func (s *Service) ExtractStatement(ctx context.Context, pages []statement.Page) (*statement.Result, error) {
	return s.extractor.Extract(ctx, pages)
}

// ParseBankFile parses an external CSV or XLSX export into annotated
// candidates. The format is chosen by file extension, defaulting to CSV.
func (s *Service) ParseBankFile(ctx context.Context, r io.Reader, filename string) (*parser.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		result *parser.Result
		err    error
	)
	if strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		result, err = s.parser.ParseExcel(r)
	} else {
		result, err = s.parser.ParseCSV(r)
	}
	if err != nil {
		return nil, err
	}

	for i := range result.Candidates {
		if result.Candidates[i].Category == "" {
			result.Candidates[i].Category = s.engine.Infer(result.Candidates[i].Description)
		}
	}

	s.logger.Info("bank file parsed",
		slog.String("file", filename),
		slog.Int("rows", result.TotalRows),
		slog.Int("candidates", len(result.Candidates)),
		slog.Int("skipped", result.SkippedRows))
	return result, nil
}

// ImportLedgerCSV decodes an interchange file and admits every valid row.
// Structural problems abort with nothing admitted; bad rows are counted in
// the returned result.
func (s *Service) ImportLedgerCSV(ctx context.Context, text string) (*csvio.DecodeResult, error) {
	result, err := csvio.Decode(text)
	if err != nil {
		return nil, err
	}

	for _, tx := range result.Records {
		if err := s.repo.Add(ctx, tx); err != nil {
			return nil, fmt.Errorf("failed to store imported row: %w", err)
		}
	}

	rowsImported.WithLabelValues("csv").Add(float64(len(result.Records)))
	rowsSkipped.WithLabelValues("csv").Add(float64(result.Skipped))
	s.logger.Info("ledger csv imported",
		slog.Int("admitted", len(result.Records)),
		slog.Int("skipped", result.Skipped))
	return result, nil
}

// ConfirmCandidates validates the selected candidates through the shared
// schema rules and admits the survivors. Rejections are counted, never fatal.
func (s *Service) ConfirmCandidates(ctx context.Context, candidates []ledger.Candidate) (*ConfirmResult, error) {
	result := &ConfirmResult{}

	for _, cand := range candidates {
		if !cand.Selected {
			continue
		}
		tx, err := ledger.Normalize(cand.Input(), ledger.SourceExtraction)
		if err != nil {
			result.Skipped++
			result.Reasons = append(result.Reasons, err.Error())
			continue
		}
		if err := s.repo.Add(ctx, tx); err != nil {
			return nil, fmt.Errorf("failed to store candidate: %w", err)
		}
		result.Admitted = append(result.Admitted, tx)
	}

	rowsImported.WithLabelValues("statement").Add(float64(len(result.Admitted)))
	rowsSkipped.WithLabelValues("statement").Add(float64(result.Skipped))
	s.logger.Info("candidates confirmed",
		slog.Int("admitted", len(result.Admitted)),
		slog.Int("skipped", result.Skipped))
	return result, nil
}

// AddManual validates one manually entered transaction with strict rules and
// admits it.
func (s *Service) AddManual(ctx context.Context, in ledger.Input) (ledger.Transaction, error) {
	tx, err := ledger.Normalize(in, ledger.SourceManual)
	if err != nil {
		return ledger.Transaction{}, err
	}
	if err := s.repo.Add(ctx, tx); err != nil {
		return ledger.Transaction{}, fmt.Errorf("failed to store transaction: %w", err)
	}
	rowsImported.WithLabelValues("manual").Inc()
	return tx, nil
}
