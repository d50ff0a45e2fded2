package crm

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omnibridge-console/config"
	"omnibridge-console/logger"
)

type fakeSalesforce struct {
	t          *testing.T
	server     *httptest.Server
	pub        *rsa.PublicKey
	tokenCalls int32
	lastQuery  atomic.Value
}

func newFakeSalesforce(t *testing.T, pub *rsa.PublicKey) *fakeSalesforce {
	f := &fakeSalesforce{t: t, pub: pub}
	mux := http.NewServeMux()
	mux.HandleFunc("/services/oauth2/token", f.token)
	mux.HandleFunc("/services/data/"+apiVersion+"/query", f.query)
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeSalesforce) token(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&f.tokenCalls, 1)
	assert.NoError(f.t, r.ParseForm())
	assert.Equal(f.t, jwtGrantType, r.PostForm.Get("grant_type"))

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(r.PostForm.Get("assertion"), claims, func(*jwt.Token) (interface{}, error) {
		return f.pub, nil
	}, jwt.WithValidMethods([]string{"RS256"}))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
		return
	}
	assert.Equal(f.t, "client-id", claims.Issuer)
	assert.Equal(f.t, "ops@example.com", claims.Subject)

	_ = json.NewEncoder(w).Encode(map[string]string{
		"access_token": "token-123",
		"instance_url": f.server.URL,
	})
}

func (f *fakeSalesforce) query(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer token-123" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	q := r.URL.Query().Get("q")
	f.lastQuery.Store(q)

	records := []Account{}
	if strings.Contains(q, "001FOUND") || strings.Contains(q, "LIKE") {
		records = append(records, Account{ID: "001FOUND", Name: "Found Inc"})
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"totalSize": len(records), "records": records})
}

func testKey(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	return key, base64.StdEncoding.EncodeToString(pemBytes)
}

func newTestClient(t *testing.T) (*SalesforceClient, *fakeSalesforce) {
	key, encoded := testKey(t)
	fake := newFakeSalesforce(t, &key.PublicKey)
	c, err := NewSalesforceClient(config.SalesforceConfig{
		LoginURL:         fake.server.URL,
		ClientID:         "client-id",
		Username:         "ops@example.com",
		PrivateKeyBase64: encoded,
	}, fake.server.Client())
	require.NoError(t, err)
	return c, fake
}

func TestSalesforceClient_GetAccount(t *testing.T) {
	c, fake := newTestClient(t)

	acc, err := c.GetAccount(context.Background(), "001FOUND")
	require.NoError(t, err)
	assert.Equal(t, "Found Inc", acc.Name)

	_, err = c.GetAccount(context.Background(), "001MISSING")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	assert.EqualValues(t, 1, atomic.LoadInt32(&fake.tokenCalls))
}

func TestSalesforceClient_TokenRefreshAfterLifetime(t *testing.T) {
	c, fake := newTestClient(t)
	now := time.Now()
	c.now = func() time.Time { return now }

	_, err := c.SearchAccounts(context.Background(), "found")
	require.NoError(t, err)
	_, err = c.SearchAccounts(context.Background(), "found")
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&fake.tokenCalls))

	now = now.Add(tokenLifetime + time.Second)
	_, err = c.SearchAccounts(context.Background(), "found")
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&fake.tokenCalls))
}

func TestSalesforceClient_EscapesQuotes(t *testing.T) {
	c, fake := newTestClient(t)

	_, err := c.SearchAccounts(context.Background(), "O'Brien")
	require.NoError(t, err)
	assert.Contains(t, fake.lastQuery.Load().(string), `O\'Brien`)
}

func TestNewSalesforceClient_InvalidKey(t *testing.T) {
	_, err := NewSalesforceClient(config.SalesforceConfig{
		LoginURL:         "https://login.salesforce.com",
		ClientID:         "id",
		Username:         "user",
		PrivateKeyBase64: base64.StdEncoding.EncodeToString([]byte("not a key")),
	}, http.DefaultClient)
	assert.Error(t, err)
}

func TestMockClient(t *testing.T) {
	m := NewMockClient()
	ctx := context.Background()

	acc, err := m.GetAccount(ctx, "001DEMO000000001")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp (Demo)", acc.Name)

	synth, err := m.GetAccount(ctx, "001XYZ")
	require.NoError(t, err)
	assert.Equal(t, "001XYZ", synth.ID)

	found, err := m.SearchAccounts(ctx, "glob")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Globex Corporation", found[0].Name)
}

func TestNewClient_SelectsMock(t *testing.T) {
	c, err := NewClient(config.SalesforceConfig{UseMock: "true"}, logger.NewNoOpLogger())
	require.NoError(t, err)
	assert.IsType(t, &MockClient{}, c)
}
