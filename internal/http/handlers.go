package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"haushalt/internal/core"
)

// entryRequest is the write payload. The entry uses the same wire form
// as the export; amountText optionally carries a decimal string (comma
// or dot) that overrides the cent amount when present, matching what a
// form field submits.
type entryRequest struct {
	Category       core.Category   `json:"category"`
	SplitRequested bool            `json:"splitRequested"`
	Entry          json.RawMessage `json:"entry"`
	AmountText     string          `json:"amountText,omitempty"`
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ledger.ListEntries(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleUpsertEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	var draft core.Entry
	if len(req.Entry) > 0 {
		if err := json.Unmarshal(req.Entry, &draft); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed entry"})
			return
		}
	}
	if req.AmountText != "" {
		cents, err := core.ParseDecimalToCents(req.AmountText)
		if err != nil {
			writeError(w, r, fmt.Errorf("amount %q: %w", req.AmountText, err))
			return
		}
		draft.Amount = core.Money{Cents: cents}
	}

	// On PUT the path id wins over whatever the body carries.
	if id := r.PathValue("id"); id != "" {
		draft.ID = id
	}

	id, err := s.ledger.UpsertEntry(r.Context(), req.Category, draft, req.SplitRequested)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.summaryCache.Invalidate()
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteEntry(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	s.summaryCache.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.ledger.ListAccounts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]accountJSON, len(accounts))
	for i, a := range accounts {
		out[i] = toAccountJSON(a)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpsertAccount(w http.ResponseWriter, r *http.Request) {
	var j accountJSON
	if err := json.NewDecoder(r.Body).Decode(&j); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	if id := r.PathValue("id"); id != "" {
		j.ID = id
	}

	id, err := s.ledger.UpsertAccount(r.Context(), fromAccountJSON(j))
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.summaryCache.Invalidate()
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	reassign := r.URL.Query().Get("reassign") == "true"
	if err := s.ledger.DeleteAccount(r.Context(), r.PathValue("id"), reassign); err != nil {
		writeError(w, r, err)
		return
	}
	s.summaryCache.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	view, err := core.ParseView(r.URL.Query().Get("view"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if cached, ok := s.summaryCache.Get(view); ok {
		writeJSON(w, http.StatusOK, toSummaryResponse(view, cached))
		return
	}

	summary, err := s.ledger.Summary(r.Context(), view)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.summaryCache.Set(view, summary)
	writeJSON(w, http.StatusOK, toSummaryResponse(view, summary))
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	view, err := core.ParseView(r.URL.Query().Get("view"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	balances, err := s.ledger.Balances(r.Context(), view)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceResponses(balances))
}

func (s *Server) handleSettlement(w http.ResponseWriter, r *http.Request) {
	settlement, err := s.ledger.Settlement(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settlementResponse{
		Amount:    settlement.Amount.Cents,
		Direction: settlement.Direction,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ledger.Export(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="budget_data.json"`)
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var snap core.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed snapshot"})
		return
	}
	if err := s.ledger.Import(r.Context(), snap); err != nil {
		writeError(w, r, err)
		return
	}
	s.summaryCache.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}
