package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"haushalt/internal/core"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain errors onto HTTP statuses. Validation failures
// are the client's fault, conflicts mean the request fought an invariant,
// everything unrecognized is a 500 with the detail kept in the log.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrShadowEntry), errors.Is(err, core.ErrAccountInUse):
		status = http.StatusConflict
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrInvalidOwner),
		errors.Is(err, core.ErrInvalidCategory),
		errors.Is(err, core.ErrInvalidInterval),
		errors.Is(err, core.ErrUnknownAccount),
		errors.Is(err, core.ErrInvalidIBAN),
		errors.Is(err, core.ErrDuplicateAccount),
		errors.Is(err, core.ErrInvalidSnapshot):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "url", r.URL.Path, "error", err)
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// summaryResponse is the wire form of a view aggregate, amounts in cents.
type summaryResponse struct {
	View     core.View `json:"view"`
	Income   int64     `json:"income"`
	Security int64     `json:"security"`
	Fixed    int64     `json:"fixed"`
	Life     int64     `json:"life"`
	Wealth   int64     `json:"wealth"`
	Buffer   int64     `json:"buffer"`
}

func toSummaryResponse(v core.View, s core.Summary) summaryResponse {
	return summaryResponse{
		View:     v,
		Income:   s.Income.Cents,
		Security: s.Security.Cents,
		Fixed:    s.Fixed.Cents,
		Life:     s.Life.Cents,
		Wealth:   s.Wealth.Cents,
		Buffer:   s.Buffer.Cents,
	}
}

type balanceResponse struct {
	Account string       `json:"account"`
	Owner   core.Persona `json:"owner"`
	Net     int64        `json:"net"`
}

func toBalanceResponses(balances []core.AccountBalance) []balanceResponse {
	out := make([]balanceResponse, len(balances))
	for i, b := range balances {
		out[i] = balanceResponse{Account: b.Account, Owner: b.Owner, Net: b.Net.Cents}
	}
	return out
}

type settlementResponse struct {
	Amount    int64          `json:"amount"`
	Direction core.Direction `json:"direction"`
}

type accountJSON struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Owner core.Persona `json:"owner"`
	IBAN  string       `json:"iban,omitempty"`
}

func toAccountJSON(a core.Account) accountJSON {
	return accountJSON{ID: a.ID, Name: a.Name, Owner: a.Owner, IBAN: a.IBAN}
}

func fromAccountJSON(j accountJSON) core.Account {
	return core.Account{ID: j.ID, Name: j.Name, Owner: j.Owner, IBAN: j.IBAN}
}
