package gateway

import (
	"context"
	"fmt"
)

// Capture settles a previous authorisation. Under the immediate-capture
// variant the processor already captured at authorise time, so this returns a
// successful no-op response for the same reference without dispatching.
func (g *Gateway) Capture(ctx context.Context, amount int64, reference string, opts Options) (*Response, error) {
	if g.policy.AutoCapture {
		return newModificationResponse(&RawResponse{
			PSPReference: reference,
			ResultCode:   resultAuthorised,
		}), nil
	}
	raw, err := g.client.CapturePayment(ctx, ModificationRequest{
		MerchantAccount:   g.creds.MerchantAccount,
		OriginalReference: reference,
		Amount:            &Amount{Currency: opts.Currency, Value: amount},
	})
	if err != nil {
		return nil, fmt.Errorf("capture dispatch: %w", err)
	}
	return newModificationResponse(raw), nil
}

// Void cancels an authorisation that has not been captured.
func (g *Gateway) Void(ctx context.Context, reference string, opts Options) (*Response, error) {
	raw, err := g.client.CancelPayment(ctx, ModificationRequest{
		MerchantAccount:   g.creds.MerchantAccount,
		OriginalReference: reference,
	})
	if err != nil {
		return nil, fmt.Errorf("cancel dispatch: %w", err)
	}
	return newModificationResponse(raw), nil
}

// Credit refunds amountCents against a captured payment.
func (g *Gateway) Credit(ctx context.Context, amountCents int64, reference string, opts Options) (*Response, error) {
	raw, err := g.client.RefundPayment(ctx, ModificationRequest{
		MerchantAccount:   g.creds.MerchantAccount,
		OriginalReference: reference,
		Amount:            &Amount{Currency: opts.Currency, Value: amountCents},
	})
	if err != nil {
		return nil, fmt.Errorf("refund dispatch: %w", err)
	}
	return newModificationResponse(raw), nil
}
