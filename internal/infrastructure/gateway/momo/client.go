package momo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Jonathan-321/congenial-eureka/internal/domain/port"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/valueobject"
	"github.com/Jonathan-321/congenial-eureka/pkg/observability"
)

// scope selects which of the two gateway products a call belongs to. Each
// scope has its own subscription key and its own bearer token.
type scope string

const (
	scopeDisbursement scope = "disbursement"
	scopeCollection   scope = "collection"
)

const defaultTimeout = 30 * time.Second

// Config holds the gateway credentials. The two subscription keys belong to
// separate gateway products and must not be mixed.
type Config struct {
	BaseURL         string
	Environment     string // e.g. "sandbox", "mtnrwanda"
	APIUser         string
	APIKey          string
	DisbursementKey string
	CollectionKey   string
	Timeout         time.Duration
}

// Client talks to an MTN MoMo style mobile-money API. It implements
// port.MoneyGateway. Access tokens are cached per scope and refreshed
// shortly before expiry.
type Client struct {
	cfg  Config
	http *http.Client

	mu     sync.Mutex
	tokens map[scope]cachedToken
}

type cachedToken struct {
	value   string
	expires time.Time
}

// NewClient creates a gateway client. httpClient may be nil, in which case a
// client with the default timeout is used.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		cfg:    cfg,
		http:   httpClient,
		tokens: make(map[scope]cachedToken),
	}
}

var _ port.MoneyGateway = (*Client)(nil)

// Transfer pushes a disbursement to the payee's mobile-money account.
func (c *Client) Transfer(ctx context.Context, req port.PaymentRequest) error {
	payload := transferPayload{
		Amount:       req.Amount.String(),
		Currency:     req.Currency,
		ExternalID:   req.Reference,
		Payee:        party{PartyIDType: "MSISDN", PartyID: formatPhone(req.PhoneNumber)},
		PayerMessage: req.Message,
		PayeeNote:    req.Note,
	}
	return c.initiate(ctx, scopeDisbursement, "transfer", req.Reference, payload)
}

// RequestToPay asks the payer to approve a repayment collection.
func (c *Client) RequestToPay(ctx context.Context, req port.PaymentRequest) error {
	payload := requestToPayPayload{
		Amount:       req.Amount.String(),
		Currency:     req.Currency,
		ExternalID:   req.Reference,
		Payer:        party{PartyIDType: "MSISDN", PartyID: formatPhone(req.PhoneNumber)},
		PayerMessage: req.Message,
		PayeeNote:    req.Note,
	}
	return c.initiate(ctx, scopeCollection, "requesttopay", req.Reference, payload)
}

// TransferStatus checks a disbursement by reference.
func (c *Client) TransferStatus(ctx context.Context, reference string) (port.GatewayStatus, error) {
	return c.status(ctx, scopeDisbursement, "transfer", reference)
}

// RequestToPayStatus checks a collection by reference.
func (c *Client) RequestToPayStatus(ctx context.Context, reference string) (port.GatewayStatus, error) {
	return c.status(ctx, scopeCollection, "requesttopay", reference)
}

// ---------------------------------------------------------------------------
// wire types
// ---------------------------------------------------------------------------

type party struct {
	PartyIDType string `json:"partyIdType"`
	PartyID     string `json:"partyId"`
}

type transferPayload struct {
	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
	ExternalID   string `json:"externalId"`
	Payee        party  `json:"payee"`
	PayerMessage string `json:"payerMessage"`
	PayeeNote    string `json:"payeeNote"`
}

type requestToPayPayload struct {
	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
	ExternalID   string `json:"externalId"`
	Payer        party  `json:"payer"`
	PayerMessage string `json:"payerMessage"`
	PayeeNote    string `json:"payeeNote"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type statusResponse struct {
	Status                 string `json:"status"`
	FinancialTransactionID string `json:"financialTransactionId"`
	Reason                 string `json:"reason"`
}

// ---------------------------------------------------------------------------
// calls
// ---------------------------------------------------------------------------

func (c *Client) initiate(ctx context.Context, sc scope, op, reference string, payload any) error {
	token, err := c.token(ctx, sc)
	if err != nil {
		observability.GatewayRequestsTotal.WithLabelValues(op, "error").Inc()
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("momo: marshal %s payload: %w", op, err)
	}

	url := fmt.Sprintf("%s/%s/v1_0/%s", c.cfg.BaseURL, sc, op)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("momo: build %s request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Reference-Id", reference)
	req.Header.Set("X-Target-Environment", c.cfg.Environment)
	req.Header.Set("Ocp-Apim-Subscription-Key", c.subscriptionKey(sc))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		observability.GatewayRequestsTotal.WithLabelValues(op, "error").Inc()
		return &valueobject.GatewayError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusCreated {
		observability.GatewayRequestsTotal.WithLabelValues(op, "rejected").Inc()
		return &valueobject.GatewayError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", readErrorBody(resp.Body)),
		}
	}

	observability.GatewayRequestsTotal.WithLabelValues(op, "accepted").Inc()
	return nil
}

func (c *Client) status(ctx context.Context, sc scope, op, reference string) (port.GatewayStatus, error) {
	token, err := c.token(ctx, sc)
	if err != nil {
		observability.GatewayRequestsTotal.WithLabelValues("status", "error").Inc()
		return port.GatewayStatus{}, err
	}

	url := fmt.Sprintf("%s/%s/v1_0/%s/%s", c.cfg.BaseURL, sc, op, reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return port.GatewayStatus{}, fmt.Errorf("momo: build status request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Target-Environment", c.cfg.Environment)
	req.Header.Set("Ocp-Apim-Subscription-Key", c.subscriptionKey(sc))

	resp, err := c.http.Do(req)
	if err != nil {
		observability.GatewayRequestsTotal.WithLabelValues("status", "error").Inc()
		return port.GatewayStatus{}, &valueobject.GatewayError{Op: "status", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		observability.GatewayRequestsTotal.WithLabelValues("status", "rejected").Inc()
		return port.GatewayStatus{}, &valueobject.GatewayError{
			Op:         "status",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", readErrorBody(resp.Body)),
		}
	}

	var sr statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return port.GatewayStatus{}, fmt.Errorf("momo: decode status response: %w", err)
	}

	observability.GatewayRequestsTotal.WithLabelValues("status", "ok").Inc()
	return mapStatus(sr), nil
}

// mapStatus translates the gateway's status string. PENDING means the
// gateway has not decided; everything that is not SUCCESSFUL or PENDING is
// treated as FAILED.
func mapStatus(sr statusResponse) port.GatewayStatus {
	switch strings.ToUpper(sr.Status) {
	case "SUCCESSFUL":
		return port.GatewayStatus{
			Status:      valueobject.TransactionStatusSuccessful,
			FinancialID: sr.FinancialTransactionID,
		}
	case "PENDING":
		return port.GatewayStatus{Pending: true}
	default:
		return port.GatewayStatus{
			Status: valueobject.TransactionStatusFailed,
			Reason: sr.Reason,
		}
	}
}

// ---------------------------------------------------------------------------
// token cache
// ---------------------------------------------------------------------------

// token returns a valid bearer token for the scope, requesting a fresh one
// when the cached token is within a minute of expiry.
func (c *Client) token(ctx context.Context, sc scope) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.tokens[sc]; ok && time.Now().Before(cached.expires.Add(-time.Minute)) {
		return cached.value, nil
	}

	url := fmt.Sprintf("%s/%s/token/", c.cfg.BaseURL, sc)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return "", fmt.Errorf("momo: build token request: %w", err)
	}
	req.SetBasicAuth(c.cfg.APIUser, c.cfg.APIKey)
	req.Header.Set("Ocp-Apim-Subscription-Key", c.subscriptionKey(sc))
	req.Header.Set("X-Target-Environment", c.cfg.Environment)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &valueobject.GatewayError{Op: "token", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &valueobject.GatewayError{
			Op:         "token",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", readErrorBody(resp.Body)),
		}
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("momo: decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", &valueobject.GatewayError{Op: "token", Err: fmt.Errorf("empty access token")}
	}

	ttl := time.Duration(tr.ExpiresIn) * time.Second
	if ttl == 0 {
		ttl = time.Hour
	}
	c.tokens[sc] = cachedToken{value: tr.AccessToken, expires: time.Now().Add(ttl)}
	return tr.AccessToken, nil
}

func (c *Client) subscriptionKey(sc scope) string {
	if sc == scopeCollection {
		return c.cfg.CollectionKey
	}
	return c.cfg.DisbursementKey
}

func formatPhone(phone string) string {
	return strings.TrimPrefix(phone, "+")
}

func readErrorBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 1024))
	msg := strings.TrimSpace(string(b))
	if msg == "" {
		return "no response body"
	}
	return msg
}
