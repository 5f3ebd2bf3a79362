package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeanFuture9999/stock-game1/internal/modules/fees"
	"github.com/SeanFuture9999/stock-game1/internal/modules/ledger"
	"github.com/SeanFuture9999/stock-game1/internal/modules/portfolio"
)

func setupRouter(t *testing.T) chi.Router {
	t.Helper()

	ledgerDB, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { ledgerDB.Close() })
	_, err = ledgerDB.Exec(`
		CREATE TABLE trade_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol TEXT NOT NULL,
			stock_name TEXT NOT NULL DEFAULT '',
			action TEXT NOT NULL,
			shares INTEGER NOT NULL,
			price REAL NOT NULL,
			fee INTEGER NOT NULL DEFAULT 0,
			tax INTEGER NOT NULL DEFAULT 0,
			net_amount REAL NOT NULL,
			realized_pnl REAL,
			note TEXT NOT NULL DEFAULT '',
			executed_at INTEGER NOT NULL,
			created_at INTEGER NOT NULL DEFAULT 0
		)`)
	require.NoError(t, err)

	portfolioDB, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { portfolioDB.Close() })
	_, err = portfolioDB.Exec(`
		CREATE TABLE portfolio_summary (
			symbol TEXT PRIMARY KEY,
			stock_name TEXT NOT NULL DEFAULT '',
			total_shares INTEGER NOT NULL DEFAULT 0,
			avg_cost REAL NOT NULL DEFAULT 0,
			total_cost REAL NOT NULL DEFAULT 0,
			realized_pnl REAL NOT NULL DEFAULT 0,
			buy_count INTEGER NOT NULL DEFAULT 0,
			sell_count INTEGER NOT NULL DEFAULT 0,
			first_buy_at INTEGER,
			last_trade_at INTEGER,
			updated_at INTEGER NOT NULL DEFAULT 0
		)`)
	require.NoError(t, err)

	log := zerolog.Nop()
	portfolioSvc := portfolio.NewService(portfolio.NewRepository(portfolioDB, log), nil, log)
	schedule := fees.Schedule{
		FeeRate: 0.001425, FeeDiscount: 0.6, MinFee: 1,
		TaxRateStock: 0.003, TaxRateETF: 0.001,
	}
	svc := ledger.NewService(ledger.NewRepository(ledgerDB, log), portfolioSvc,
		schedule, nil, nil, log)

	r := chi.NewRouter()
	NewHandler(svc, log).RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, r chi.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleRecordTrade(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, "POST", "/trades",
		`{"symbol":"2330","stock_name":"TSMC","action":"buy","shares":1000,"price":100,"executed_at":1000}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

	data := response["data"].(map[string]interface{})
	assert.Equal(t, "2330", data["symbol"])
	assert.Equal(t, float64(86), data["fee"])
	assert.Equal(t, float64(0), data["tax"])
	assert.Equal(t, 100086.0, data["net_amount"])
}

func TestHandleRecordTradeInvalidBody(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, "POST", "/trades", `{not json`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleRecordTradeRejectsOversell(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, "POST", "/trades",
		`{"symbol":"2330","action":"sell","shares":500,"price":100,"executed_at":1000}`)

	assert.Equal(t, http.StatusConflict, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Contains(t, response, "error")
}

func TestHandlePreviewTrade(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, "POST", "/trades/preview",
		`{"symbol":"2330","action":"sell","shares":1000,"price":110}`)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(94), data["fee"])
	assert.Equal(t, float64(330), data["tax"])

	// Preview never touches the ledger
	list := doJSON(t, r, "GET", "/trades", "")
	var listed map[string]interface{}
	require.NoError(t, json.NewDecoder(list.Body).Decode(&listed))
	assert.Equal(t, float64(0), listed["data"].(map[string]interface{})["count"])
}

func TestHandleListTrades(t *testing.T) {
	r := setupRouter(t)

	for _, body := range []string{
		`{"symbol":"2330","action":"buy","shares":1000,"price":100,"executed_at":1000}`,
		`{"symbol":"2454","action":"buy","shares":500,"price":900,"executed_at":2000}`,
	} {
		w := doJSON(t, r, "POST", "/trades", body)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, r, "GET", "/trades?symbol=2330", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))

	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["count"])
	trades := data["trades"].([]interface{})
	require.Len(t, trades, 1)
	assert.Equal(t, "2330", trades[0].(map[string]interface{})["symbol"])
}

func TestHandleGetTradeNotFound(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, "GET", "/trades/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleDeleteTrade(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(t, r, "POST", "/trades",
		`{"symbol":"2330","action":"buy","shares":1000,"price":100,"executed_at":1000}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var created map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	id := created["data"].(map[string]interface{})["id"].(float64)

	del := doJSON(t, r, "DELETE", "/trades/1", "")
	assert.Equal(t, http.StatusOK, del.Code)
	assert.Equal(t, float64(1), id)

	get := doJSON(t, r, "GET", "/trades/1", "")
	assert.Equal(t, http.StatusNotFound, get.Code)
}
