package crm

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"omnibridge-console/config"
)

const (
	apiVersion    = "v60.0"
	tokenLifetime = 90 * time.Minute
	jwtGrantType  = "urn:ietf:params:oauth:grant-type:jwt-bearer"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	InstanceURL string `json:"instance_url"`
}

type cachedToken struct {
	accessToken string
	instanceURL string
	expiresAt   time.Time
}

// SalesforceClient authenticates with the OAuth 2.0 JWT bearer flow and runs SOQL queries.
type SalesforceClient struct {
	loginURL   string
	clientID   string
	username   string
	audience   string
	key        *rsa.PrivateKey
	httpClient *http.Client
	now        func() time.Time

	mu    sync.Mutex
	token *cachedToken
}

func NewSalesforceClient(cfg config.SalesforceConfig, httpClient *http.Client) (*SalesforceClient, error) {
	if cfg.ClientID == "" || cfg.Username == "" {
		return nil, errors.New("salesforce client_id and username must be set")
	}
	pemBytes, err := base64.StdEncoding.DecodeString(cfg.PrivateKeyBase64)
	if err != nil || len(pemBytes) == 0 {
		return nil, errors.New("salesforce private_key_base64 is not set or not valid base64")
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("parse salesforce private key: %w", err)
	}

	audience := cfg.Audience
	if audience == "" {
		audience = cfg.LoginURL
	}
	return &SalesforceClient{
		loginURL:   strings.TrimRight(cfg.LoginURL, "/"),
		clientID:   cfg.ClientID,
		username:   cfg.Username,
		audience:   audience,
		key:        key,
		httpClient: httpClient,
		now:        time.Now,
	}, nil
}

func (c *SalesforceClient) accessToken(ctx context.Context) (*cachedToken, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != nil && c.now().Before(c.token.expiresAt) {
		return c.token, nil
	}

	now := c.now()
	claims := jwt.RegisteredClaims{
		Issuer:    c.clientID,
		Subject:   c.username,
		Audience:  jwt.ClaimStrings{c.audience},
		ExpiresAt: jwt.NewNumericDate(now.Add(3 * time.Minute)),
	}
	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(c.key)
	if err != nil {
		return nil, fmt.Errorf("sign salesforce assertion: %w", err)
	}

	form := url.Values{}
	form.Set("grant_type", jwtGrantType)
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.loginURL+"/services/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("salesforce token error: %d %s", resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token response: %w", err)
	}

	c.token = &cachedToken{
		accessToken: tr.AccessToken,
		instanceURL: strings.TrimRight(tr.InstanceURL, "/"),
		expiresAt:   now.Add(tokenLifetime),
	}
	return c.token, nil
}

func (c *SalesforceClient) soql(ctx context.Context, query string, out any) error {
	tok, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/services/data/%s/query?q=%s", tok.instanceURL, apiVersion, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("SOQL error: %d %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *SalesforceClient) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	var result struct {
		Records []Account `json:"records"`
	}
	q := fmt.Sprintf("SELECT Id, Name, Website, BillingCity, BillingState, BillingCountry, Industry, Type FROM Account WHERE Id = '%s' LIMIT 1",
		escapeSOQL(accountID))
	if err := c.soql(ctx, q, &result); err != nil {
		return nil, err
	}
	if len(result.Records) == 0 {
		return nil, ErrAccountNotFound
	}
	return &result.Records[0], nil
}

func (c *SalesforceClient) SearchAccounts(ctx context.Context, term string) ([]Account, error) {
	var result struct {
		Records []Account `json:"records"`
	}
	q := fmt.Sprintf("SELECT Id, Name, Website, Industry FROM Account WHERE Name LIKE '%%%s%%' ORDER BY Name LIMIT 25",
		escapeSOQL(term))
	if err := c.soql(ctx, q, &result); err != nil {
		return nil, err
	}
	return result.Records, nil
}

var soqlEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func escapeSOQL(s string) string {
	return soqlEscaper.Replace(s)
}
