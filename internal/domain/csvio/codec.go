// Package csvio encodes the ledger to its interchange CSV format and decodes
// such files back into validated records. The format is deliberately rigid:
// five fixed columns, every field quoted, and a formula-injection guard on
// fields a spreadsheet would otherwise execute.
package csvio

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ABagofRuffles/budget-pwa/internal/domain/ledger"
	"github.com/ABagofRuffles/budget-pwa/pkg/money"
)

// Columns is the fixed header, matched case-insensitively on decode.
var Columns = []string{"Date", "Type", "Description", "Category", "Amount"}

// MaxRows bounds one decode. Exceeding it aborts the whole import before any
// row is admitted; silent truncation would misreport completeness.
const MaxRows = 10000

var (
	// ErrRowLimit is the all-or-nothing row-cap abort.
	ErrRowLimit = fmt.Errorf("csvio: file exceeds %d rows", MaxRows)
	// ErrEmptyFile marks input with no content at all.
	ErrEmptyFile = errors.New("csvio: empty file")
)

// HeaderError reports a header row that does not match Columns.
type HeaderError struct {
	Got []string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("csvio: header must be %s, got %s",
		strings.Join(Columns, ","), strings.Join(e.Got, ","))
}

// QuoteError reports quoting the tokenizer could not make sense of.
type QuoteError struct {
	Line int
}

func (e *QuoteError) Error() string {
	return fmt.Sprintf("csvio: malformed quoting on line %d", e.Line)
}

// RowError records one skipped data row and why.
type RowError struct {
	Row    int    `json:"row"` // 1-based, counting the header as row 1
	Reason string `json:"reason"`
}

// DecodeResult carries the decoded records and the per-row skip accounting.
// Zero records with a nil error is a valid outcome ("nothing imported"),
// distinct from the structural errors Decode returns.
type DecodeResult struct {
	Records   []ledger.Transaction `json:"records"`
	Skipped   int                  `json:"skipped"`
	RowErrors []RowError           `json:"row_errors,omitempty"`
}

// injection-guard set: a field whose text begins with one of these would be
// executed as a formula by spreadsheet software on re-open.
func needsGuard(field string) bool {
	if field == "" {
		return false
	}
	switch field[0] {
	case '=', '+', '-', '@', '\t':
		return true
	}
	return false
}

// encodeField quotes a field, doubling interior quotes, with the invisible
// tab guard prepended when the field starts with a formula trigger.
func encodeField(field string) string {
	if needsGuard(field) {
		field = "\t" + field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// Encode renders the ledger as interchange CSV, one quoted row per record.
func Encode(txs []ledger.Transaction) string {
	var b strings.Builder

	header := make([]string, len(Columns))
	for i, c := range Columns {
		header[i] = encodeField(c)
	}
	b.WriteString(strings.Join(header, ","))
	b.WriteByte('\n')

	for _, tx := range txs {
		fields := []string{
			encodeField(tx.DateString()),
			encodeField(string(tx.Kind)),
			encodeField(tx.Description),
			encodeField(tx.Category),
			encodeField(money.Format(tx.Amount)),
		}
		b.WriteString(strings.Join(fields, ","))
		b.WriteByte('\n')
	}
	return b.String()
}

// Decode tokenizes interchange CSV and validates every data row through the
// shared schema rules. Structural problems (bad header, broken quoting, row
// cap) abort with an error; individual bad rows are skipped and counted.
func Decode(text string) (*DecodeResult, error) {
	rows, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	header := rows[0]
	if !headerMatches(header) {
		return nil, &HeaderError{Got: header}
	}

	dataRows := rows[1:]
	if len(dataRows) > MaxRows {
		return nil, ErrRowLimit
	}

	result := &DecodeResult{}
	for i, row := range dataRows {
		rowNum := i + 2 // 1-based, header is row 1

		if len(row) != len(Columns) {
			result.skip(rowNum, fmt.Sprintf("expected %d columns, got %d", len(Columns), len(row)))
			continue
		}

		for j := range row {
			row[j] = stripGuard(row[j])
		}

		tx, err := ledger.Normalize(ledger.Input{
			Date:        row[0],
			Kind:        row[1],
			Description: row[2],
			Category:    row[3],
			Amount:      row[4],
		}, ledger.SourceManual)
		if err != nil {
			result.skip(rowNum, err.Error())
			continue
		}
		result.Records = append(result.Records, tx)
	}
	return result, nil
}

func (r *DecodeResult) skip(row int, reason string) {
	r.Skipped++
	r.RowErrors = append(r.RowErrors, RowError{Row: row, Reason: reason})
}

// stripGuard removes a single leading injection-guard tab, the symmetric
// inverse of the encoder's prefix.
func stripGuard(field string) string {
	return strings.TrimPrefix(field, "\t")
}

func headerMatches(header []string) bool {
	if len(header) != len(Columns) {
		return false
	}
	for i, col := range Columns {
		if !strings.EqualFold(strings.TrimSpace(header[i]), col) {
			return false
		}
	}
	return true
}

// tokenize splits CSV text into rows of raw fields, tracking quote state per
// character. A doubled quote inside a quoted field is one literal quote;
// separators and newlines only split when unquoted. CRLF and LF both
// terminate rows.
func tokenize(text string) ([][]string, error) {
	var (
		rows     [][]string
		fields   []string
		field    strings.Builder
		inQuotes bool
		quoted   bool // current field was ever quoted
		line     = 1
	)

	endField := func() {
		fields = append(fields, field.String())
		field.Reset()
		quoted = false
	}
	endRow := func() {
		// Skip fully blank unquoted lines (trailing newline at EOF).
		if len(fields) == 0 && field.Len() == 0 && !quoted {
			return
		}
		endField()
		rows = append(rows, fields)
		fields = nil
	}

	for i := 0; i < len(text); i++ {
		ch := text[i]

		if inQuotes {
			switch ch {
			case '"':
				if i+1 < len(text) && text[i+1] == '"' {
					field.WriteByte('"')
					i++
				} else {
					inQuotes = false
				}
			case '\n':
				line++
				field.WriteByte(ch)
			default:
				field.WriteByte(ch)
			}
			continue
		}

		switch ch {
		case '"':
			// A quote may only open a field at its start; a quote in the
			// middle of unquoted text is malformed.
			if field.Len() > 0 || quoted {
				return nil, &QuoteError{Line: line}
			}
			inQuotes = true
			quoted = true
		case ',':
			endField()
		case '\r':
			// Consumed as part of CRLF; a stray CR is ignored.
		case '\n':
			endRow()
			line++
		default:
			// Text after a closing quote is malformed.
			if quoted {
				return nil, &QuoteError{Line: line}
			}
			field.WriteByte(ch)
		}
	}
	if inQuotes {
		return nil, &QuoteError{Line: line}
	}
	endRow()

	return rows, nil
}
