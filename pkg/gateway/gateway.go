package gateway

import (
	"context"
	"fmt"
)

// CardSource is the stored card record owned by the surrounding order system.
// The adapter reads its payload and token, and writes back display fields and
// the recurring reference after a successful contract fetch.
type CardSource interface {
	EncryptedData() string
	VerificationValue() string
	RecurringReference() string
	UserID() string

	// UpdateStoredCard overwrites the display fields and recurring reference
	// from a fetched contract. Implementations write columns directly, without
	// running the owning record's validation hooks.
	UpdateStoredCard(detail RecurringDetail) error
	ClearRecurringReference() error
}

// Payment is the surrounding payment context consumed by CreateProfile.
type Payment interface {
	Amount() int64
	Currency() string
	OrderNumber() string
	ShopperEmail() string
	ShopperReference() string
	ShopperIP() string
	Browser() *BrowserInfo
	Source() CardSource

	// MarkProcessing transitions the payment so the surrounding order does not
	// authorise it a second time on completion.
	MarkProcessing() error
}

// Shopper is the contextual shopper data passed to policy hooks.
type Shopper struct {
	Reference string
	Email     string
	IP        string
	Statement string
}

// Options carries the per-call context for an authorisation.
type Options struct {
	Currency   string
	OrderID    string
	CustomerID string
	Email      string
	IP         string

	// Recurring flags the call as a token-registering authorisation (e.g. the
	// zero-amount contract-setup flow).
	Recurring bool

	// ThreeDSecureToken is the pending continuation token (md) from an earlier
	// enrollment redirect. When set, the call completes the challenge instead
	// of starting a fresh authorisation.
	ThreeDSecureToken string

	Browser *BrowserInfo
}

func (o Options) shopper() Shopper {
	ref := o.CustomerID
	if ref == "" {
		ref = o.Email
	}
	return Shopper{
		Reference: ref,
		Email:     o.Email,
		IP:        o.IP,
		Statement: "Order # " + o.OrderID,
	}
}

// Policy is the variant configuration: capture behaviour plus the two
// overridable decision hooks.
type Policy struct {
	// AutoCapture means the processor captures at authorise time; the capture
	// contract becomes a no-op.
	AutoCapture bool

	// PaymentProfiles enables the profile-creation-on-payment operation.
	// Both stock variants ship with it disabled.
	PaymentProfiles bool

	// RequireThreeDSecure decides whether browser headers are attached so the
	// processor can challenge. Defaults to always true.
	RequireThreeDSecure func(opts Options) bool

	// RequireOneClickPayment decides one-click eligibility for a source and
	// shopper. Defaults to always false.
	RequireOneClickPayment func(source CardSource, shopper Shopper) bool

	// BuildCard produces the card payload for a source. Defaults to the
	// encrypted payload.
	BuildCard func(source CardSource) CardPayload
}

func (p Policy) withDefaults() Policy {
	if p.RequireThreeDSecure == nil {
		p.RequireThreeDSecure = func(Options) bool { return true }
	}
	if p.RequireOneClickPayment == nil {
		p.RequireOneClickPayment = func(CardSource, Shopper) bool { return false }
	}
	if p.BuildCard == nil {
		p.BuildCard = func(source CardSource) CardPayload {
			return CardPayload{Encrypted: source.EncryptedData()}
		}
	}
	return p
}

// Gateway is the adapter between the order/payment lifecycle and the
// processor API. It is synchronous: each public operation issues exactly one
// blocking call and returns the normalized result. It holds no locks; callers
// racing on the same source or order reference must serialize themselves.
type Gateway struct {
	client   Client
	creds    Credentials
	currency string
	policy   Policy
}

func New(client Client, creds Credentials, defaultCurrency string, policy Policy) *Gateway {
	return &Gateway{
		client:   client,
		creds:    ResolveCredentials(creds),
		currency: defaultCurrency,
		policy:   policy.withDefaults(),
	}
}

// NewImmediateCapture configures the variant where capture is implied by
// authorisation and the capture contract is a no-op.
func NewImmediateCapture(client Client, creds Credentials, defaultCurrency string) *Gateway {
	return New(client, creds, defaultCurrency, Policy{AutoCapture: true})
}

// NewDelayedCapture configures the variant where capture is a distinct, later
// operation against the stored authorisation reference.
func NewDelayedCapture(client Client, creds Credentials, defaultCurrency string) *Gateway {
	return New(client, creds, defaultCurrency, Policy{AutoCapture: false})
}

func (g *Gateway) AutoCapture() bool { return g.policy.AutoCapture }

func (g *Gateway) MerchantAccount() string { return g.creds.MerchantAccount }

// Authorize picks the authorisation mode for the given card and context,
// dispatches it, and returns the normalized response. Refusals come back as a
// failed Response, not an error; enrollment comes back as
// *EnrollmentRequiredError.
func (g *Gateway) Authorize(ctx context.Context, amount int64, source CardSource, opts Options) (*Response, error) {
	if opts.ThreeDSecureToken != "" {
		return g.authorise3DSecure(ctx, opts)
	}

	shopper := opts.shopper()
	oneClick := g.policy.RequireOneClickPayment(source, shopper)
	if oneClick && source.VerificationValue() == "" && source.RecurringReference() == "" {
		return nil, &InputError{Reason: "one-click payment requires a card verification value or a stored contract"}
	}

	req := g.authoriseRequest(amount, shopper, opts)

	var (
		raw *RawResponse
		err error
	)
	switch {
	case oneClick && source.RecurringReference() != "":
		req.SelectedRecurringDetailReference = source.RecurringReference()
		if cvc := source.VerificationValue(); cvc != "" {
			req.Card = &CardPayload{CVC: cvc}
		}
		raw, err = g.client.AuthoriseOneClickPayment(ctx, req)
	case opts.Recurring:
		applyCard(&req, g.policy.BuildCard(source))
		raw, err = g.client.AuthoriseRecurringPayment(ctx, req)
	default:
		applyCard(&req, g.policy.BuildCard(source))
		raw, err = g.client.AuthorisePayment(ctx, req)
	}
	if err != nil {
		return nil, fmt.Errorf("authorise dispatch: %w", err)
	}
	if raw.RedirectShopper() {
		return nil, &EnrollmentRequiredError{Response: raw, Gateway: g}
	}
	return newCardResponse(raw), nil
}

func (g *Gateway) authorise3DSecure(ctx context.Context, opts Options) (*Response, error) {
	raw, err := g.client.Authorise3DSecurePayment(ctx, ThreeDSecureRequest{
		MerchantAccount: g.creds.MerchantAccount,
		MD:              opts.ThreeDSecureToken,
		ShopperIP:       opts.IP,
		BrowserInfo:     opts.Browser,
	})
	if err != nil {
		return nil, fmt.Errorf("authorise 3-D Secure dispatch: %w", err)
	}
	return newCardResponse(raw), nil
}

func (g *Gateway) authoriseRequest(amount int64, shopper Shopper, opts Options) AuthoriseRequest {
	req := AuthoriseRequest{
		MerchantAccount:  g.creds.MerchantAccount,
		Reference:        opts.OrderID,
		Amount:           Amount{Currency: opts.Currency, Value: amount},
		ShopperEmail:     shopper.Email,
		ShopperReference: shopper.Reference,
		ShopperIP:        shopper.IP,
		ShopperStatement: shopper.Statement,
		Recurring:        opts.Recurring,
	}
	if g.policy.RequireThreeDSecure(opts) && opts.Browser != nil {
		req.BrowserInfo = opts.Browser
	}
	return req
}

// applyCard attaches the card payload; encrypted blobs travel in
// additionalData, never alongside plain card fields.
func applyCard(req *AuthoriseRequest, card CardPayload) {
	if card.Encrypted != "" {
		req.AdditionalData = &additionalData{Card: encryptedCard{JSON: card.Encrypted}}
		return
	}
	req.Card = &card
}
