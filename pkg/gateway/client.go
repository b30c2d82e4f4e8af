package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Amount is a minor-unit value with its currency code.
type Amount struct {
	Currency string `json:"currency"`
	Value    int64  `json:"value"`
}

// BrowserInfo carries the shopper's request headers so the processor can decide
// whether to challenge with 3-D Secure.
type BrowserInfo struct {
	AcceptHeader string `json:"acceptHeader,omitempty"`
	UserAgent    string `json:"userAgent,omitempty"`
}

// CardPayload is the card data attached to an authorise call. Encrypted is a
// client-side-encrypted blob and travels in additionalData; the remaining
// fields are plain card data. A request never carries both.
type CardPayload struct {
	Encrypted string `json:"-"`
	Number    string `json:"number,omitempty"`
	CVC       string `json:"cvc,omitempty"`
}

type encryptedCard struct {
	JSON string `json:"json"`
}

type additionalData struct {
	Card encryptedCard `json:"card"`
}

// AuthoriseRequest is the shared request shape for plain, recurring and
// one-click authorisations.
type AuthoriseRequest struct {
	MerchantAccount  string       `json:"merchantAccount"`
	Reference        string       `json:"reference"`
	Amount           Amount       `json:"amount"`
	ShopperEmail     string       `json:"shopperEmail,omitempty"`
	ShopperReference string       `json:"shopperReference,omitempty"`
	ShopperIP        string       `json:"shopperIP,omitempty"`
	ShopperStatement string       `json:"shopperStatement,omitempty"`
	Recurring        bool         `json:"recurring,omitempty"`
	BrowserInfo      *BrowserInfo `json:"browserInfo,omitempty"`

	Card           *CardPayload    `json:"card,omitempty"`
	AdditionalData *additionalData `json:"additionalData,omitempty"`

	// Stored token for one-click authorisations; no fresh card data travels
	// alongside it.
	SelectedRecurringDetailReference string `json:"selectedRecurringDetailReference,omitempty"`
}

// ThreeDSecureRequest completes an authorisation after the shopper returns
// from the issuer challenge.
type ThreeDSecureRequest struct {
	MerchantAccount string       `json:"merchantAccount"`
	MD              string       `json:"md"`
	ShopperIP       string       `json:"shopperIP,omitempty"`
	BrowserInfo     *BrowserInfo `json:"browserInfo,omitempty"`
}

// ModificationRequest addresses a previous authorisation by its PSP reference.
type ModificationRequest struct {
	MerchantAccount   string  `json:"merchantAccount"`
	OriginalReference string  `json:"originalReference"`
	Amount            *Amount `json:"modificationAmount,omitempty"`
}

// DisableContractRequest tears down a stored recurring contract.
type DisableContractRequest struct {
	MerchantAccount          string `json:"merchantAccount"`
	ShopperReference         string `json:"shopperReference"`
	RecurringDetailReference string `json:"recurringDetailReference"`
}

// ListRecurringDetailsRequest fetches the stored cards for a shopper.
type ListRecurringDetailsRequest struct {
	MerchantAccount  string `json:"merchantAccount"`
	ShopperReference string `json:"shopperReference"`
}

// Client is the processor-side API, one method per gateway action. The raw
// response shape differs between success and failure; the adapter normalizes
// it before handing it to callers.
type Client interface {
	AuthorisePayment(ctx context.Context, req AuthoriseRequest) (*RawResponse, error)
	AuthoriseRecurringPayment(ctx context.Context, req AuthoriseRequest) (*RawResponse, error)
	AuthoriseOneClickPayment(ctx context.Context, req AuthoriseRequest) (*RawResponse, error)
	Authorise3DSecurePayment(ctx context.Context, req ThreeDSecureRequest) (*RawResponse, error)
	CapturePayment(ctx context.Context, req ModificationRequest) (*RawResponse, error)
	CancelPayment(ctx context.Context, req ModificationRequest) (*RawResponse, error)
	RefundPayment(ctx context.Context, req ModificationRequest) (*RawResponse, error)
	DisableRecurringContract(ctx context.Context, req DisableContractRequest) (*RawResponse, error)
	ListRecurringDetails(ctx context.Context, req ListRecurringDetailsRequest) (*RecurringDetailList, error)
}

// RESTClient talks to the processor's JSON API with basic auth.
type RESTClient struct {
	BaseURL  string
	username string
	password string
	client   *http.Client
}

func NewRESTClient(baseURL, username, password string) *RESTClient {
	if baseURL == "" {
		baseURL = "https://pal-test.adyen.com/pal/servlet"
	}
	return &RESTClient{
		BaseURL:  baseURL,
		username: username,
		password: password,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *RESTClient) post(ctx context.Context, path string, payload, out interface{}) error {
	body, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username, c.password)
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway %s: %d %s", path, resp.StatusCode, string(respBody))
	}
	return json.Unmarshal(respBody, out)
}

func (c *RESTClient) authorise(ctx context.Context, req AuthoriseRequest) (*RawResponse, error) {
	var out RawResponse
	if err := c.post(ctx, "/Payment/authorise", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RESTClient) AuthorisePayment(ctx context.Context, req AuthoriseRequest) (*RawResponse, error) {
	return c.authorise(ctx, req)
}

func (c *RESTClient) AuthoriseRecurringPayment(ctx context.Context, req AuthoriseRequest) (*RawResponse, error) {
	return c.authorise(ctx, req)
}

func (c *RESTClient) AuthoriseOneClickPayment(ctx context.Context, req AuthoriseRequest) (*RawResponse, error) {
	return c.authorise(ctx, req)
}

func (c *RESTClient) Authorise3DSecurePayment(ctx context.Context, req ThreeDSecureRequest) (*RawResponse, error) {
	var out RawResponse
	if err := c.post(ctx, "/Payment/authorise3d", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *RESTClient) CapturePayment(ctx context.Context, req ModificationRequest) (*RawResponse, error) {
	return c.modification(ctx, "/Payment/capture", req)
}

func (c *RESTClient) CancelPayment(ctx context.Context, req ModificationRequest) (*RawResponse, error) {
	return c.modification(ctx, "/Payment/cancel", req)
}

func (c *RESTClient) RefundPayment(ctx context.Context, req ModificationRequest) (*RawResponse, error) {
	return c.modification(ctx, "/Payment/refund", req)
}

// modificationResponse is the wire shape of capture/cancel/refund/disable
// results: an ack string instead of a result code.
type modificationResponse struct {
	PSPReference  string `json:"pspReference"`
	Response      string `json:"response"`
	RefusalReason string `json:"refusalReason"`
	FaultMessage  string `json:"message"`
}

var modificationAcks = map[string]bool{
	"[capture-received]":                  true,
	"[cancel-received]":                   true,
	"[refund-received]":                   true,
	"[detail-successfully-disabled]":      true,
	"[all-details-successfully-disabled]": true,
}

func (m modificationResponse) raw() *RawResponse {
	raw := &RawResponse{
		PSPReference:  m.PSPReference,
		ResultCode:    m.Response,
		RefusalReason: m.RefusalReason,
		FaultMessage:  m.FaultMessage,
	}
	if modificationAcks[m.Response] {
		raw.ResultCode = resultAuthorised
	}
	return raw
}

func (c *RESTClient) modification(ctx context.Context, path string, req ModificationRequest) (*RawResponse, error) {
	var out modificationResponse
	if err := c.post(ctx, path, req, &out); err != nil {
		return nil, err
	}
	return out.raw(), nil
}

func (c *RESTClient) DisableRecurringContract(ctx context.Context, req DisableContractRequest) (*RawResponse, error) {
	var out modificationResponse
	if err := c.post(ctx, "/Recurring/disable", req, &out); err != nil {
		return nil, err
	}
	return out.raw(), nil
}

func (c *RESTClient) ListRecurringDetails(ctx context.Context, req ListRecurringDetailsRequest) (*RecurringDetailList, error) {
	payload := struct {
		ListRecurringDetailsRequest
		Recurring struct {
			Contract string `json:"contract"`
		} `json:"recurring"`
	}{ListRecurringDetailsRequest: req}
	payload.Recurring.Contract = "RECURRING"

	var out RecurringDetailList
	if err := c.post(ctx, "/Recurring/listRecurringDetails", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
