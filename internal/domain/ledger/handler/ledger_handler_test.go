package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ABagofRuffles/budget-pwa/internal/domain/categorize"
	importservice "github.com/ABagofRuffles/budget-pwa/internal/domain/import/service"
	"github.com/ABagofRuffles/budget-pwa/internal/domain/ledger"
)

func newTestServer(t *testing.T) (*httptest.Server, *ledger.InMemoryRepository) {
	t.Helper()
	repo := ledger.NewInMemoryRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := importservice.New(repo, nil, categorize.NewDefaultEngine(), logger)

	mux := http.NewServeMux()
	NewLedgerHandler(svc, repo, logger).Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, repo
}

func TestCreateAndList(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{"description":"Coffee","amount":"4.50","kind":"expense","date":"2024-03-14"}`
	resp, err := http.Post(srv.URL+"/v1/transactions", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created ledger.Transaction
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, "Coffee", created.Description)
	assert.Equal(t, ledger.KindExpense, created.Kind)

	listResp, err := http.Get(srv.URL + "/v1/transactions")
	require.NoError(t, err)
	defer listResp.Body.Close()
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var listed struct {
		Transactions []ledger.Transaction `json:"transactions"`
	}
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&listed))
	require.Len(t, listed.Transactions, 1)
	assert.Equal(t, created.ID, listed.Transactions[0].ID)
}

func TestCreateRejectsBadInput(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty description", `{"description":"","amount":"10","kind":"expense"}`},
		{"zero amount", `{"description":"Coffee","amount":"0","kind":"expense"}`},
		{"bad date", `{"description":"Coffee","amount":"10","kind":"expense","date":"2024-02-30"}`},
		{"unknown kind", `{"description":"Coffee","amount":"10","kind":"transfer"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/v1/transactions", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		})
	}
}

func TestDelete(t *testing.T) {
	srv, repo := newTestServer(t)

	tx, err := ledger.Normalize(ledger.Input{
		Description: "Rent", Amount: "1200", Kind: "expense", Date: "2024-03-01",
	}, ledger.SourceManual)
	require.NoError(t, err)
	require.NoError(t, repo.Add(context.Background(), tx))

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/v1/transactions/"+tx.ID.String(), nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	// deleting again reports not found
	resp2, err := http.DefaultClient.Do(req.Clone(context.Background()))
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestExportCSV(t *testing.T) {
	srv, repo := newTestServer(t)

	tx, err := ledger.Normalize(ledger.Input{
		Description: "=SUM(A1)", Amount: "10.00", Kind: "expense", Date: "2024-03-14",
	}, ledger.SourceManual)
	require.NoError(t, err)
	require.NoError(t, repo.Add(context.Background(), tx))

	resp, err := http.Get(srv.URL + "/v1/transactions/export")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"Date","Type","Description","Category","Amount"`)
	// formula description goes out guarded
	assert.Contains(t, string(body), "\"\t=SUM(A1)\"")
}
