package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"moneyflow/internal/chart"
	"moneyflow/internal/core"
	applog "moneyflow/internal/log"
)

type sessionCreatedResponse struct {
	ID string `json:"id"`
}

type viewResponse struct {
	SessionID string      `json:"session_id"`
	View      core.Filter `json:"view"`
}

type transactionsResponse struct {
	SessionID    string             `json:"session_id"`
	Filter       core.Filter        `json:"filter"`
	Transactions []core.Transaction `json:"transactions"`
}

// totalsResponse carries full precision figures plus two-decimal strings
// for display.
type totalsResponse struct {
	SessionID string          `json:"session_id"`
	Income    decimal.Decimal `json:"income"`
	Expense   decimal.Decimal `json:"expense"`
	Balance   decimal.Decimal `json:"balance"`
	Display   totalsDisplay   `json:"display"`
}

type totalsDisplay struct {
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Balance string `json:"balance"`
}

type chartResponse struct {
	SessionID string `json:"session_id"`
	Revision  int    `json:"revision"`
	chart.ChartSeries
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id, err := s.ledgers.CreateSession(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/sessions/"+id).
		Body(sessionCreatedResponse{ID: id}).
		Write(w)
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := s.ledgers.EndSession(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ledgers.Snapshot(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if snap.Transactions == nil {
		snap.Transactions = []core.Transaction{}
	}
	NewJSONResponse().Body(snap).Write(w)
}

func (s *Server) handleSetView(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	filter, err := ParseViewRequest(NewRequestBodyParser(w, r))
	if err != nil {
		writeParseError(w, err)
		return
	}
	if err := s.ledgers.SetView(r.Context(), id, filter); err != nil {
		writeServiceError(w, r, err)
		return
	}

	NewJSONResponse().Body(viewResponse{SessionID: id, View: filter}).Write(w)
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	req, err := ParseAddRequest(NewRequestBodyParser(w, r))
	if err != nil {
		applog.FromContext(r.Context()).DebugContext(r.Context(), "Add request rejected before the ledger",
			applog.FieldSessionID, id,
			applog.FieldError, err)
		writeParseError(w, err)
		return
	}

	tx, err := s.ledgers.Add(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	NewJSONResponse().Status(http.StatusCreated).Body(tx).Write(w)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	filter, err := ParseFilterQuery(r.URL.Query())
	if err != nil {
		writeParseError(w, err)
		return
	}

	txs, err := s.ledgers.Transactions(r.Context(), id, filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}

	NewJSONResponse().Body(transactionsResponse{SessionID: id, Filter: filter, Transactions: txs}).Write(w)
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	totals, err := s.ledgers.Totals(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	balance := totals.Balance()
	NewJSONResponse().Body(totalsResponse{
		SessionID: id,
		Income:    totals.Income,
		Expense:   totals.Expense,
		Balance:   balance,
		Display: totalsDisplay{
			Income:  core.FormatAmount(totals.Income),
			Expense: core.FormatAmount(totals.Expense),
			Balance: core.FormatAmount(balance),
		},
	}).Write(w)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	series, revision, err := s.ledgers.Chart(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	NewJSONResponse().Body(chartResponse{SessionID: id, Revision: revision, ChartSeries: series}).Write(w)
}
