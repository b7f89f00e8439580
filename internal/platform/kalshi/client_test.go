package kalshi

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testKeyPEM(t *testing.T) ([]byte, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshal key: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), key
}

func TestSetRSAPrivateKey(t *testing.T) {
	pemBytes, _ := testKeyPEM(t)

	c := NewClient("https://example.test", "key-id", testLogger())
	if err := c.SetRSAPrivateKey(pemBytes); err != nil {
		t.Fatalf("SetRSAPrivateKey(pkcs8) error: %v", err)
	}

	// PKCS1 fallback.
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	pkcs1 := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	if err := c.SetRSAPrivateKey(pkcs1); err != nil {
		t.Fatalf("SetRSAPrivateKey(pkcs1) error: %v", err)
	}

	if err := c.SetRSAPrivateKey([]byte("not pem")); err == nil {
		t.Error("SetRSAPrivateKey accepted garbage, want error")
	}
}

func TestFetchMarketsSignsRequest(t *testing.T) {
	pemBytes, _ := testKeyPEM(t)

	var gotHeaders http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		w.Write([]byte(`{"markets": [
			{"ticker": "T-1", "title": "Chiefs vs Jaguars Winner?", "status": "open", "yes_ask": 56, "no_ask": 46}
		], "cursor": ""}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key-id", testLogger())
	if err := c.SetRSAPrivateKey(pemBytes); err != nil {
		t.Fatal(err)
	}

	markets, err := c.FetchMarkets(context.Background(), 100)
	if err != nil {
		t.Fatalf("FetchMarkets() error: %v", err)
	}
	if len(markets) != 1 || markets[0].MarketID != "T-1" {
		t.Fatalf("markets = %+v", markets)
	}

	if got := gotHeaders.Get("KALSHI-ACCESS-KEY"); got != "key-id" {
		t.Errorf("KALSHI-ACCESS-KEY = %q", got)
	}
	if gotHeaders.Get("KALSHI-ACCESS-SIGNATURE") == "" {
		t.Error("KALSHI-ACCESS-SIGNATURE header missing")
	}
	if gotHeaders.Get("KALSHI-ACCESS-TIMESTAMP") == "" {
		t.Error("KALSHI-ACCESS-TIMESTAMP header missing")
	}
}

func TestFetchMarketsWithoutKey(t *testing.T) {
	c := NewClient("https://example.test", "key-id", testLogger())
	_, err := c.FetchMarkets(context.Background(), 10)
	if err == nil || !strings.Contains(err.Error(), "private key not configured") {
		t.Fatalf("FetchMarkets() error = %v, want missing-key error", err)
	}
}

func TestCheckStatus(t *testing.T) {
	c := NewClient("https://example.test", "key-id", testLogger())
	body := []byte(`{"code": "rate_limit", "message": "slow down"}`)

	tests := []struct {
		status int
		want   string
	}{
		{http.StatusNotFound, "not found"},
		{http.StatusUnauthorized, "unauthorized"},
		{http.StatusForbidden, "unauthorized"},
		{http.StatusTooManyRequests, "rate limited"},
		{http.StatusBadRequest, "bad request"},
		{http.StatusBadGateway, "HTTP 502"},
	}
	for _, tt := range tests {
		err := c.checkStatus(tt.status, body)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("checkStatus(%d) = %v, want %q", tt.status, err, tt.want)
		}
	}
	if err := c.checkStatus(http.StatusOK, nil); err != nil {
		t.Errorf("checkStatus(200) = %v, want nil", err)
	}
}
