package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseExcel reads transactions from an XLSX export. The first sheet named
// like "transactions" is used, falling back to the first sheet in the book.
func (p *Parser) ParseExcel(r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheet := findSheet(f)
	if sheet == "" {
		return nil, fmt.Errorf("xlsx has no sheets")
	}

	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(cells) == 0 {
		return &Result{}, nil
	}

	setters := headerSetters(cells[0])
	rows := make([]Row, 0, len(cells)-1)
	for _, cellRow := range cells[1:] {
		var row Row
		for col, set := range setters {
			if set != nil && col < len(cellRow) {
				set(&row, cellRow[col])
			}
		}
		rows = append(rows, row)
	}
	return p.process(rows), nil
}

func findSheet(f *excelize.File) string {
	sheets := f.GetSheetList()
	for _, s := range sheets {
		if strings.Contains(strings.ToLower(s), "transaction") {
			return s
		}
	}
	if len(sheets) > 0 {
		return sheets[0]
	}
	return ""
}

// headerSetters maps each header cell to the Row field it feeds, using the
// same names the CSV tags accept.
func headerSetters(header []string) []func(*Row, string) {
	setters := make([]func(*Row, string), len(header))
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "date":
			setters[i] = func(r *Row, v string) { r.Date = v }
		case "transaction date":
			setters[i] = func(r *Row, v string) { r.TxnDate = v }
		case "posted date":
			setters[i] = func(r *Row, v string) { r.Posted = v }
		case "description":
			setters[i] = func(r *Row, v string) { r.Description = v }
		case "merchant":
			setters[i] = func(r *Row, v string) { r.Merchant = v }
		case "payee":
			setters[i] = func(r *Row, v string) { r.Payee = v }
		case "details":
			setters[i] = func(r *Row, v string) { r.Details = v }
		case "memo":
			setters[i] = func(r *Row, v string) { r.Memo = v }
		case "amount":
			setters[i] = func(r *Row, v string) { r.Amount = v }
		case "value":
			setters[i] = func(r *Row, v string) { r.Value = v }
		case "debit":
			setters[i] = func(r *Row, v string) { r.Debit = v }
		case "credit":
			setters[i] = func(r *Row, v string) { r.Credit = v }
		case "category":
			setters[i] = func(r *Row, v string) { r.Category = v }
		case "type":
			setters[i] = func(r *Row, v string) { r.Type = v }
		}
	}
	return setters
}
