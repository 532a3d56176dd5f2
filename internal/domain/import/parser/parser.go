// Package parser reads external bank-export files (CSV and XLSX) and turns
// their rows into review candidates. Column naming out in the wild is loose,
// so rows are unmarshaled by flexible header tags and amounts may arrive as a
// single signed column or as separate debit/credit columns.
package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/ABagofRuffles/budget-pwa/internal/domain/ledger"
	"github.com/ABagofRuffles/budget-pwa/pkg/money"
)

// Row is a raw bank-export row; gocsv matches fields by header name, so one
// struct covers the common naming variants.
type Row struct {
	Date    string `csv:"date"`
	TxnDate string `csv:"transaction date"`
	Posted  string `csv:"posted date"`

	Description string `csv:"description"`
	Merchant    string `csv:"merchant"`
	Payee       string `csv:"payee"`
	Details     string `csv:"details"`
	Memo        string `csv:"memo"`

	Amount string `csv:"amount"`
	Value  string `csv:"value"`

	Debit  string `csv:"debit"`
	Credit string `csv:"credit"`

	Category string `csv:"category"`
	Type     string `csv:"type"`
}

// RowError reports one row that could not become a candidate.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d, column %s: %s", e.Row, e.Column, e.Message)
}

// Result carries parsed candidates and the skip accounting for one file.
type Result struct {
	Candidates  []ledger.Candidate `json:"candidates"`
	Errors      []RowError         `json:"errors,omitempty"`
	TotalRows   int                `json:"total_rows"`
	ParsedRows  int                `json:"parsed_rows"`
	SkippedRows int                `json:"skipped_rows"`
}

// dateLayouts tried in order when parsing external dates.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"2006/01/02",
	"01-02-2006",
	"Jan 2, 2006",
}

// Parser converts bank-export rows into candidates. It is stateless and safe
// for concurrent use.
type Parser struct{}

func New() *Parser {
	return &Parser{}
}

// ParseCSV reads a full CSV export. The delimiter is detected from the header
// line (comma, semicolon or tab).
func (p *Parser) ParseCSV(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	rows, err := unmarshalRows(data, detectDelimiter(data))
	if err != nil {
		return nil, err
	}
	return p.process(rows), nil
}

// gocsvMu guards gocsv's package-global reader factory, which carries the
// per-file delimiter between SetCSVReader and UnmarshalBytes.
var gocsvMu sync.Mutex

func unmarshalRows(data []byte, delim rune) ([]Row, error) {
	gocsvMu.Lock()
	defer gocsvMu.Unlock()

	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		cr := csv.NewReader(in)
		cr.Comma = delim
		cr.LazyQuotes = true
		cr.TrimLeadingSpace = true
		return cr
	})

	var rows []Row
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return rows, nil
}

// process converts raw rows to candidates, skipping and counting failures.
func (p *Parser) process(rows []Row) *Result {
	result := &Result{TotalRows: len(rows)}

	for i, row := range rows {
		rowNum := i + 2 // 1-indexed plus header

		cand, rowErr := p.candidate(row, rowNum)
		if rowErr != nil {
			result.Errors = append(result.Errors, *rowErr)
			result.SkippedRows++
			continue
		}
		if cand == nil {
			result.SkippedRows++
			continue
		}
		result.Candidates = append(result.Candidates, *cand)
		result.ParsedRows++
	}
	return result
}

func (p *Parser) candidate(row Row, rowNum int) (*ledger.Candidate, *RowError) {
	dateStr := coalesce(row.Date, row.TxnDate, row.Posted)
	if dateStr == "" {
		return nil, nil // blank/padding row
	}
	date, err := parseDate(dateStr)
	if err != nil {
		return nil, &RowError{Row: rowNum, Column: "date", Message: err.Error()}
	}

	desc := coalesce(row.Description, row.Merchant, row.Payee, row.Details, row.Memo)
	if desc == "" {
		return nil, &RowError{Row: rowNum, Column: "description", Message: "missing description"}
	}

	amount, kind, rowErr := p.amountAndKind(row, rowNum)
	if rowErr != nil {
		return nil, rowErr
	}

	return &ledger.Candidate{
		Description: collapseSpaces(desc),
		Amount:      amount,
		Kind:        kind,
		Category:    strings.TrimSpace(coalesce(row.Category, row.Type)),
		Date:        date.Format(ledger.DateLayout),
		Selected:    true,
	}, nil
}

// amountAndKind resolves the row's amount and direction. A single signed
// amount column maps negative to expense; separate debit/credit columns make
// the direction explicit.
func (p *Parser) amountAndKind(row Row, rowNum int) (decimal.Decimal, ledger.Kind, *RowError) {
	if s := coalesce(row.Amount, row.Value); s != "" {
		d, err := money.Parse(s)
		if err != nil {
			return decimal.Zero, "", &RowError{Row: rowNum, Column: "amount", Message: err.Error()}
		}
		kind := ledger.KindIncome
		if d.IsNegative() {
			kind = ledger.KindExpense
		}
		return d.Abs(), kind, nil
	}

	if s := strings.TrimSpace(row.Debit); s != "" {
		d, err := money.Parse(s)
		if err != nil {
			return decimal.Zero, "", &RowError{Row: rowNum, Column: "debit", Message: err.Error()}
		}
		return d.Abs(), ledger.KindExpense, nil
	}
	if s := strings.TrimSpace(row.Credit); s != "" {
		d, err := money.Parse(s)
		if err != nil {
			return decimal.Zero, "", &RowError{Row: rowNum, Column: "credit", Message: err.Error()}
		}
		return d.Abs(), ledger.KindIncome, nil
	}

	return decimal.Zero, "", &RowError{Row: rowNum, Column: "amount", Message: "no amount found"}
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}

// detectDelimiter inspects the first line for the delimiter that splits it
// into the most fields. Comma wins ties.
func detectDelimiter(data []byte) rune {
	header := string(data)
	if idx := strings.IndexByte(header, '\n'); idx >= 0 {
		header = header[:idx]
	}

	best, bestCount := ',', strings.Count(header, ",")
	if n := strings.Count(header, ";"); n > bestCount {
		best, bestCount = ';', n
	}
	if n := strings.Count(header, "\t"); n > bestCount {
		best = '\t'
	}
	return best
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
