package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/ABagofRuffles/budget-pwa/internal/domain/csvio"
	importservice "github.com/ABagofRuffles/budget-pwa/internal/domain/import/service"
	"github.com/ABagofRuffles/budget-pwa/internal/domain/ledger"
	"github.com/ABagofRuffles/budget-pwa/internal/domain/statement"
)

// uploads larger than this are rejected before any parsing happens
const maxUploadBytes = 32 << 20

// ImportHandler serves the statement, bank-file and interchange import endpoints.
type ImportHandler struct {
	svc    *importservice.Service
	logger *slog.Logger
}

// NewImportHandler creates a new import handler.
func NewImportHandler(svc *importservice.Service, logger *slog.Logger) *ImportHandler {
	return &ImportHandler{svc: svc, logger: logger}
}

// Register attaches the import routes to mux.
func (h *ImportHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/import/statement", h.ExtractStatement)
	mux.HandleFunc("POST /v1/import/file", h.ParseBankFile)
	mux.HandleFunc("POST /v1/import/csv", h.ImportLedgerCSV)
	mux.HandleFunc("POST /v1/import/confirm", h.Confirm)
}

type extractRequest struct {
	Pages []statement.Page `json:"pages"`
}

// ExtractStatement runs the statement pipeline over positioned text fragments
// and returns review candidates.
func (h *ImportHandler) ExtractStatement(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.ExtractStatement(r.Context(), req.Pages)
	if err != nil {
		if errors.Is(err, statement.ErrTimeout) {
			respondError(w, http.StatusRequestTimeout, "statement extraction timed out")
			return
		}
		h.logger.Error("statement extraction failed", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "statement extraction failed")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ParseBankFile parses an uploaded bank CSV or workbook into candidates.
func (h *ImportHandler) ParseBankFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer func() { _ = file.Close() }()

	result, err := h.svc.ParseBankFile(r.Context(), file, header.Filename)
	if err != nil {
		h.logger.Error("bank file parse failed",
			slog.String("filename", header.Filename),
			slog.Any("error", err))
		respondError(w, http.StatusUnprocessableEntity, "could not parse file")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ImportLedgerCSV decodes an interchange export and admits every valid row.
// Structural problems reject the whole file.
func (h *ImportHandler) ImportLedgerCSV(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	result, err := h.svc.ImportLedgerCSV(r.Context(), string(body))
	if err != nil {
		var headerErr *csvio.HeaderError
		var quoteErr *csvio.QuoteError
		switch {
		case errors.Is(err, csvio.ErrEmptyFile), errors.As(err, &headerErr), errors.As(err, &quoteErr):
			respondError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, csvio.ErrRowLimit):
			respondError(w, http.StatusRequestEntityTooLarge, err.Error())
		default:
			h.logger.Error("ledger csv import failed", slog.Any("error", err))
			respondError(w, http.StatusInternalServerError, "import failed")
		}
		return
	}
	respondJSON(w, http.StatusOK, result)
}

type confirmRequest struct {
	Candidates []ledger.Candidate `json:"candidates"`
}

// Confirm admits the reviewed candidates that the user left selected.
func (h *ImportHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.ConfirmCandidates(r.Context(), req.Candidates)
	if err != nil {
		h.logger.Error("failed to confirm candidates", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "failed to confirm candidates")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
