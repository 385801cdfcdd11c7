// Package api exposes the exchange's core operations as a small JSON HTTP
// surface built on the stdlib net/http ServeMux. It is the ambient entry
// point cmd/exchange uses to exercise the ledger; it is not part of the
// core's contract.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/exim-exchange/core/internal/ledger"
	"github.com/exim-exchange/core/internal/metrics"
	"github.com/exim-exchange/core/internal/models"
	"github.com/exim-exchange/core/internal/views"
)

// Server is the HTTP front end for one Exchange.
type Server struct {
	listenAddr string
	exchange   *ledger.Exchange
	metrics    *metrics.Metrics
	startTime  time.Time
}

// New returns a Server bound to exchange, listening on listenAddr.
func New(listenAddr string, exchange *ledger.Exchange, m *metrics.Metrics) *Server {
	return &Server{listenAddr: listenAddr, exchange: exchange, metrics: m, startTime: time.Now()}
}

// Run starts the HTTP server and blocks until it exits.
func (s *Server) Run() error {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/symbols", s.handleRegisterSymbol)
	mux.HandleFunc("POST /api/v1/markets", s.handleRegisterMarket)
	mux.HandleFunc("POST /api/v1/accounts", s.handleRegisterAccount)
	mux.HandleFunc("POST /api/v1/accounts/{id}/deposit", s.handleDeposit)
	mux.HandleFunc("POST /api/v1/accounts/{id}/withdraw", s.handleWithdraw)
	mux.HandleFunc("POST /api/v1/orders", s.handleSubmitOrder)
	mux.HandleFunc("DELETE /api/v1/markets/{market}/orders/{id}", s.handleCancel)
	mux.HandleFunc("GET /api/v1/markets/{market}/orderbook", s.handleOrderBook)
	mux.HandleFunc("GET /api/v1/markets/{market}/trades", s.handleTrades)
	mux.HandleFunc("GET /api/v1/accounts/{id}/wallet", s.handleWallet)
	mux.HandleFunc("GET /api/v1/accounts/{id}/orders/{market}", s.handleOrders)
	mux.HandleFunc("GET /api/v1/accounts", s.handleAccounts)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	return http.ListenAndServe(s.listenAddr, mux)
}

type registerSymbolRequest struct {
	Symbol       string `json:"symbol"`
	UnitDecimals int32  `json:"unit_decimals"`
}

func (s *Server) handleRegisterSymbol(w http.ResponseWriter, r *http.Request) {
	var req registerSymbolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ok := s.exchange.RegisterSymbol(req.Symbol, req.UnitDecimals)
	writeJSON(w, http.StatusCreated, map[string]bool{"ok": ok})
}

type registerMarketRequest struct {
	Base  string `json:"base"`
	Quote string `json:"quote"`
}

func (s *Server) handleRegisterMarket(w http.ResponseWriter, r *http.Request) {
	var req registerMarketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ok := s.exchange.RegisterMarket(req.Base, req.Quote)
	writeJSON(w, http.StatusCreated, map[string]bool{"ok": ok})
}

type registerAccountRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleRegisterAccount(w http.ResponseWriter, r *http.Request) {
	var req registerAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	id, ok := s.exchange.RegisterAccount(req.Name)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"ok": ok, "account_id": id})
}

type transferRequest struct {
	Symbol   string          `json:"symbol"`
	Quantity decimal.Decimal `json:"quantity"`
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ok, err := s.exchange.Deposit(accountID, req.Symbol, req.Quantity)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": ok})
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ok, err := s.exchange.Withdraw(accountID, req.Symbol, req.Quantity)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": ok})
}

type submitOrderRequest struct {
	AccountID models.AccountID `json:"account_id"`
	Market    string           `json:"market"`
	Side      models.Side      `json:"side"`
	Quantity  decimal.Decimal  `json:"quantity"`
	Price     *decimal.Decimal `json:"price,omitempty"`
}

func (s *Server) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req submitOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var (
		ok  bool
		err error
	)
	switch req.Side {
	case models.Buy:
		ok, err = s.exchange.Buy(req.AccountID, req.Market, req.Quantity, req.Price)
	case models.Sell:
		ok, err = s.exchange.Sell(req.AccountID, req.Market, req.Quantity, req.Price)
	default:
		writeError(w, http.StatusBadRequest, errUnknownSide)
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"ok": ok})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	market := r.PathValue("market")
	orderID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	accountID, err := parseAccountID(r.URL.Query().Get("account_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ok, err := s.exchange.Cancel(accountID, market, models.OrderID(orderID))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": ok})
}

func (s *Server) handleOrderBook(w http.ResponseWriter, r *http.Request) {
	snapshot, err := views.OrderBook(s.exchange, r.PathValue("market"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := views.Trades(s.exchange, r.PathValue("market"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, trades)
}

func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	wallet, err := views.Wallet(s.exchange, accountID)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, wallet)
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseAccountID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	orders, err := views.Orders(s.exchange, accountID, r.PathValue("market"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, views.Accounts(s.exchange))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"uptime_seconds": int64(time.Since(s.startTime).Seconds()),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics)
}

func parseAccountID(raw string) (models.AccountID, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return models.AccountID(n), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

var errUnknownSide = errors.New("side must be BUY or SELL")
