package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"

	"github.com/ayodejiio/vestra/internal/config"
	"github.com/ayodejiio/vestra/internal/domain"
	"github.com/ayodejiio/vestra/internal/ledger"
	"github.com/ayodejiio/vestra/internal/logging"
	"github.com/ayodejiio/vestra/internal/service"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) (*Server, *ledger.Memory) {
	t.Helper()
	store := ledger.NewMemory()

	cfg := config.Config{}
	cfg.Auth.JWTSecret = testSecret
	cfg.Loan.AnnualRatePercent = decimal.NewFromInt(15)
	cfg.Loan.TermMonths = 12

	alerts := service.NopAlerts{}
	srv := New(Options{
		Config:    cfg,
		Logger:    logging.New(cfg.Logging),
		Store:     store,
		Wallets:   service.NewWalletService(store, alerts),
		Invest:    service.NewInvestmentService(store, alerts),
		Loans:     service.NewLoanService(store, alerts, service.LoanTerms{AnnualRatePercent: cfg.Loan.AnnualRatePercent, TermMonths: cfg.Loan.TermMonths}),
		Reconcile: service.NewReconciliationService(store, alerts),
	})
	return srv, store
}

func signToken(t *testing.T, userID, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   userID,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func doRequest(srv *Server, method, path, token, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(srv, http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestWalletRequiresAuth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doRequest(srv, http.MethodGet, "/wallet", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestWalletAdjustRoundTrip(t *testing.T) {
	srv, store := newTestServer(t)
	store.PutUser(domain.User{ID: "u1", KYCStatus: domain.KYCApproved})
	token := signToken(t, "u1", "user")

	rec := doRequest(srv, http.MethodGet, "/wallet", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get wallet: status = %d, body %s", rec.Code, rec.Body)
	}

	rec = doRequest(srv, http.MethodPost, "/wallet/adjust", token,
		`{"type":"deposit","amount":"250.50"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("deposit: status = %d, body %s", rec.Code, rec.Body)
	}

	rec = doRequest(srv, http.MethodPost, "/wallet/adjust", token,
		`{"type":"withdrawal","amount":"1000"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("overdraw: status = %d, want 400", rec.Code)
	}

	rec = doRequest(srv, http.MethodGet, "/wallet/transactions", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("transactions: status = %d", rec.Code)
	}
	var body struct {
		Transactions []domain.Transaction `json:"transactions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Transactions) != 1 {
		t.Fatalf("transactions = %d, want 1 (failed withdrawal must not be recorded)", len(body.Transactions))
	}
}

func TestAdminRoutesGuarded(t *testing.T) {
	srv, store := newTestServer(t)
	store.PutUser(domain.User{ID: "u1", KYCStatus: domain.KYCApproved})
	userToken := signToken(t, "u1", "user")

	rec := doRequest(srv, http.MethodGet, "/admin/transactions", userToken, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}

	adminToken := signToken(t, "a1", "admin")
	rec = doRequest(srv, http.MethodGet, "/admin/transactions", adminToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestLoanLifecycleOverHTTP(t *testing.T) {
	srv, store := newTestServer(t)
	store.PutUser(domain.User{ID: "u1", KYCStatus: domain.KYCApproved})
	token := signToken(t, "u1", "user")
	admin := signToken(t, "a1", "admin")

	rec := doRequest(srv, http.MethodPost, "/loans", token,
		`{"amount":"6000","purpose":"equipment","employment_status":"employed","monthly_income":"4000"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("apply: status = %d, body %s", rec.Code, rec.Body)
	}
	var applyBody struct {
		Application domain.LoanApplication `json:"application"`
		Score       int                    `json:"score"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &applyBody); err != nil {
		t.Fatal(err)
	}
	if applyBody.Score == 0 {
		t.Error("expected a nonzero advisory score")
	}

	// A second pending application is refused.
	rec = doRequest(srv, http.MethodPost, "/loans", token,
		`{"amount":"2000","purpose":"car","employment_status":"employed","monthly_income":"4000"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second apply: status = %d, want 409", rec.Code)
	}

	rec = doRequest(srv, http.MethodPost, "/admin/loans/"+applyBody.Application.ID+"/approve", admin, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("approve: status = %d, body %s", rec.Code, rec.Body)
	}

	// Approving again conflicts; the application is settled.
	rec = doRequest(srv, http.MethodPost, "/admin/loans/"+applyBody.Application.ID+"/approve", admin, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("re-approve: status = %d, want 409", rec.Code)
	}
}

func TestWebhookIdempotentOverHTTP(t *testing.T) {
	srv, store := newTestServer(t)
	store.PutUser(domain.User{ID: "u1", KYCStatus: domain.KYCApproved})
	token := signToken(t, "u1", "user")

	rec := doRequest(srv, http.MethodPost, "/crypto-deposits", token,
		`{"currency":"BTC","fiat_amount":"500"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create order: status = %d, body %s", rec.Code, rec.Body)
	}
	var order domain.CryptoOrder
	if err := json.Unmarshal(rec.Body.Bytes(), &order); err != nil {
		t.Fatal(err)
	}

	event := `{"order_id":"` + order.ExternalOrderID + `","status":"confirmed","external_ref":"pay_1"}`
	rec = doRequest(srv, http.MethodPost, "/crypto-deposits/webhook", "", event)
	if rec.Code != http.StatusOK {
		t.Fatalf("webhook: status = %d, body %s", rec.Code, rec.Body)
	}
	var first struct {
		Applied bool `json:"applied"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
		t.Fatal(err)
	}
	if !first.Applied {
		t.Fatal("first delivery should apply")
	}

	// Redelivery succeeds but changes nothing.
	rec = doRequest(srv, http.MethodPost, "/crypto-deposits/webhook", "", event)
	if rec.Code != http.StatusOK {
		t.Fatalf("replay: status = %d", rec.Code)
	}
	var second struct {
		Applied bool `json:"applied"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatal(err)
	}
	if second.Applied {
		t.Fatal("replay must not apply")
	}

	rec = doRequest(srv, http.MethodGet, "/wallet", token, "")
	var w domain.Wallet
	if err := json.Unmarshal(rec.Body.Bytes(), &w); err != nil {
		t.Fatal(err)
	}
	if !w.Balance.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("Balance = %s, want 500", w.Balance)
	}

	rec = doRequest(srv, http.MethodPost, "/crypto-deposits/webhook", "",
		`{"order_id":"order_missing","status":"confirmed"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown order: status = %d, want 404", rec.Code)
	}
}
