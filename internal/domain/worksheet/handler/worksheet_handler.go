package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ABagofRuffles/budget-pwa/internal/domain/worksheet"
)

// WorksheetHandler serves the scratch calculation sheet.
type WorksheetHandler struct {
	sheet *worksheet.Sheet
}

// NewWorksheetHandler creates a new worksheet handler.
func NewWorksheetHandler(sheet *worksheet.Sheet) *WorksheetHandler {
	return &WorksheetHandler{sheet: sheet}
}

// Register attaches the worksheet routes to mux.
func (h *WorksheetHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/worksheet", h.List)
	mux.HandleFunc("PUT /v1/worksheet/{key}", h.Set)
	mux.HandleFunc("DELETE /v1/worksheet/{key}", h.Delete)
}

// List returns the sheet entries and their running total.
func (h *WorksheetHandler) List(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"entries": h.sheet.Entries(),
		"total":   h.sheet.Total(),
	})
}

type setRequest struct {
	Value string `json:"value"`
}

// Set stores one named value, overwriting any previous one.
func (h *WorksheetHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req setRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.sheet.Set(r.PathValue("key"), req.Value); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes one entry; deleting an absent key is not an error.
func (h *WorksheetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.sheet.Delete(r.PathValue("key"))
	w.WriteHeader(http.StatusNoContent)
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
