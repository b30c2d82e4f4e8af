package gateway

import (
	"context"
	"fmt"
	"log"
)

// SetupContract performs a zero-amount recurring authorisation so the
// processor registers a token for the card, then fetches and stores that
// token. Returns the stored recurring reference.
func (g *Gateway) SetupContract(ctx context.Context, source CardSource, userID, email, shopperIP string) (string, error) {
	opts := Options{
		Currency:   g.currency,
		OrderID:    "User-" + userID,
		CustomerID: userID,
		Email:      email,
		IP:         shopperIP,
		Recurring:  true,
	}

	resp, err := g.Authorize(ctx, 0, source, opts)
	if err != nil {
		return "", err
	}
	if !resp.IsSuccess() {
		return "", &GatewayError{Reason: resp.FailureMessage()}
	}
	if err := g.FetchAndStore(ctx, source, userID); err != nil {
		return "", err
	}
	return source.RecurringReference(), nil
}

// FetchAndStore queries the shopper's stored card list and writes the last
// entry onto the source. The processor does not return the token with the
// authorisation, so this second call is always needed; if the list is still
// empty the token index has not caught up and ErrRecurringDetailsNotFound is
// returned.
func (g *Gateway) FetchAndStore(ctx context.Context, source CardSource, shopperReference string) error {
	list, err := g.client.ListRecurringDetails(ctx, ListRecurringDetailsRequest{
		MerchantAccount:  g.creds.MerchantAccount,
		ShopperReference: shopperReference,
	})
	if err != nil {
		return fmt.Errorf("list recurring details: %w", err)
	}
	if list == nil {
		return ErrRecurringDetailsNotFound
	}
	detail, ok := list.Last()
	if !ok {
		return ErrRecurringDetailsNotFound
	}
	return source.UpdateStoredCard(detail)
}

// DisableContract tears down the stored contract and clears the reference on
// the source. A refusal here is escalated to a GatewayError; there is no
// normalized-response contract for this operation.
func (g *Gateway) DisableContract(ctx context.Context, source CardSource) error {
	raw, err := g.client.DisableRecurringContract(ctx, DisableContractRequest{
		MerchantAccount:          g.creds.MerchantAccount,
		ShopperReference:         source.UserID(),
		RecurringDetailReference: source.RecurringReference(),
	})
	if err != nil {
		return fmt.Errorf("disable contract dispatch: %w", err)
	}
	if !raw.Authorised() {
		log.Printf("[Gateway] disable recurring contract failed: %+v", raw)
		return &GatewayError{Reason: raw.failureMessage()}
	}
	return source.ClearRecurringReference()
}

// CreateProfile registers a recurring contract at first payment: it
// authorises the payment amount with the recurring flag set, stores the
// fetched token, and marks the payment as processing so the surrounding order
// does not authorise it again on completion. A no-op when the source already
// carries a contract.
func (g *Gateway) CreateProfile(ctx context.Context, payment Payment) (*Response, error) {
	if !g.policy.PaymentProfiles {
		return nil, &InputError{Reason: "payment profiles are not supported by this gateway configuration"}
	}
	source := payment.Source()
	if source.RecurringReference() != "" {
		return nil, nil
	}

	opts := Options{
		Currency:   payment.Currency(),
		OrderID:    payment.OrderNumber(),
		CustomerID: payment.ShopperReference(),
		Email:      payment.ShopperEmail(),
		IP:         payment.ShopperIP(),
		Recurring:  true,
		Browser:    payment.Browser(),
	}

	req := g.authoriseRequest(payment.Amount(), opts.shopper(), opts)
	applyCard(&req, g.policy.BuildCard(source))

	raw, err := g.client.AuthorisePayment(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("authorise dispatch: %w", err)
	}
	switch {
	case raw.Authorised():
		if err := g.FetchAndStore(ctx, source, opts.shopper().Reference); err != nil {
			return nil, err
		}
		if err := payment.MarkProcessing(); err != nil {
			return nil, err
		}
		return newCardResponse(raw), nil
	case raw.RedirectShopper():
		return nil, &EnrollmentRequiredError{Response: raw, Gateway: g}
	default:
		log.Printf("[Gateway] profile creation failed: %+v", raw)
		return nil, &GatewayError{Reason: raw.failureMessage()}
	}
}
