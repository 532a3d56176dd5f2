package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/ABagofRuffles/budget-pwa/internal/domain/csvio"
	importservice "github.com/ABagofRuffles/budget-pwa/internal/domain/import/service"
	"github.com/ABagofRuffles/budget-pwa/internal/domain/ledger"
)

// LedgerHandler serves the transaction CRUD and export endpoints.
type LedgerHandler struct {
	svc    *importservice.Service
	repo   ledger.Repository
	logger *slog.Logger
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(svc *importservice.Service, repo ledger.Repository, logger *slog.Logger) *LedgerHandler {
	return &LedgerHandler{svc: svc, repo: repo, logger: logger}
}

// Register attaches the ledger routes to mux.
func (h *LedgerHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/transactions", h.List)
	mux.HandleFunc("POST /v1/transactions", h.Create)
	mux.HandleFunc("DELETE /v1/transactions/{id}", h.Delete)
	mux.HandleFunc("GET /v1/transactions/export", h.ExportCSV)
	mux.HandleFunc("GET /v1/transactions/export.xlsx", h.ExportExcel)
}

// List returns every stored transaction in insertion order.
func (h *LedgerHandler) List(w http.ResponseWriter, r *http.Request) {
	txs, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list transactions", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"transactions": txs})
}

type createRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Kind        string `json:"kind"`
	Category    string `json:"category"`
	Date        string `json:"date"`
}

// Create admits one manually entered transaction under the strict rules.
func (h *LedgerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := h.svc.AddManual(r.Context(), ledger.Input{
		Description: req.Description,
		Amount:      req.Amount,
		Kind:        req.Kind,
		Category:    req.Category,
		Date:        req.Date,
	})
	if err != nil {
		var rej *ledger.RejectionError
		if errors.As(err, &rej) {
			respondError(w, http.StatusUnprocessableEntity, rej.Error())
			return
		}
		h.logger.Error("failed to add transaction", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to add transaction")
		return
	}
	respondJSON(w, http.StatusCreated, tx)
}

// Delete removes one transaction by id.
func (h *LedgerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			respondError(w, http.StatusNotFound, "transaction not found")
			return
		}
		h.logger.Error("failed to delete transaction", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportCSV streams the ledger in the interchange format.
func (h *LedgerHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	txs, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to export transactions", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to export transactions")
		return
	}

	name := fmt.Sprintf("budget-export-%s.csv", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write([]byte(csvio.Encode(txs)))
}

// ExportExcel streams the ledger as a single-sheet workbook.
func (h *LedgerHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	txs, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to export transactions", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to export transactions")
		return
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Transactions"
	f.SetSheetName(f.GetSheetName(0), sheet)
	_ = f.SetSheetRow(sheet, "A1", &[]any{"Date", "Type", "Description", "Category", "Amount"})
	for i, tx := range txs {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		_ = f.SetSheetRow(sheet, cell, &[]any{
			tx.DateString(), string(tx.Kind), tx.Description, tx.Category, tx.Amount.StringFixed(2),
		})
	}

	name := fmt.Sprintf("budget-export-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := f.Write(w); err != nil {
		h.logger.Error("failed to write workbook", slog.Any("error", err))
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
