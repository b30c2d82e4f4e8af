package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"cardbridge/internal/models"
	"cardbridge/pkg/gateway"

	"github.com/google/uuid"
)

// cardSource adapts a CreditCard row to the gateway's CardSource contract.
// Writes go through the repository's direct-column path so a backend sync
// never triggers model hooks.
type cardSource struct {
	card  *models.CreditCard
	cards CardStore
}

func newCardSource(card *models.CreditCard, cards CardStore) *cardSource {
	return &cardSource{card: card, cards: cards}
}

func (s *cardSource) EncryptedData() string { return s.card.EncryptedData }

func (s *cardSource) VerificationValue() string { return s.card.VerificationValue }

func (s *cardSource) RecurringReference() string { return s.card.GatewayCustomerProfileID }

func (s *cardSource) UserID() string {
	return strconv.FormatUint(uint64(s.card.UserID), 10)
}

func (s *cardSource) UpdateStoredCard(d gateway.RecurringDetail) error {
	err := s.cards.UpdateStoredColumns(s.card.ID, map[string]interface{}{
		"month":                       d.CardExpiryMonth,
		"year":                        d.CardExpiryYear,
		"name":                        d.CardHolderName,
		"cc_type":                     d.Variant,
		"last_digits":                 d.CardNumber,
		"gateway_customer_profile_id": d.Reference,
	})
	if err != nil {
		return err
	}
	s.card.Month = d.CardExpiryMonth
	s.card.Year = d.CardExpiryYear
	s.card.Name = d.CardHolderName
	s.card.CCType = d.Variant
	s.card.LastDigits = d.CardNumber
	s.card.GatewayCustomerProfileID = d.Reference
	return nil
}

func (s *cardSource) ClearRecurringReference() error {
	if err := s.cards.ClearRecurringReference(s.card.ID); err != nil {
		return err
	}
	s.card.GatewayCustomerProfileID = ""
	return nil
}

// paymentContext adapts a Payment row to the gateway's Payment contract.
type paymentContext struct {
	payment  *models.Payment
	source   *cardSource
	payments PaymentStore
	browser  *gateway.BrowserInfo
}

func (p *paymentContext) Amount() int64 { return p.payment.AmountCents }

func (p *paymentContext) Currency() string { return p.payment.Currency }

func (p *paymentContext) OrderNumber() string { return p.payment.OrderNumber }

func (p *paymentContext) ShopperEmail() string { return p.payment.User.Email }

func (p *paymentContext) ShopperIP() string { return p.payment.LastIP }

func (p *paymentContext) Browser() *gateway.BrowserInfo { return p.browser }

func (p *paymentContext) Source() gateway.CardSource { return p.source }

func (p *paymentContext) ShopperReference() string {
	if p.payment.UserID != 0 {
		return strconv.FormatUint(uint64(p.payment.UserID), 10)
	}
	return p.payment.User.Email
}

func (p *paymentContext) MarkProcessing() error {
	if err := p.payments.Updates(p.payment.ID, map[string]interface{}{
		"state": models.PaymentStateProcessing,
	}); err != nil {
		return err
	}
	p.payment.State = models.PaymentStateProcessing
	return nil
}

// OperationResult is the service-level outcome of a gateway operation, shaped
// for the HTTP layer.
type OperationResult struct {
	Success          bool   `json:"success"`
	AuthorizationID  string `json:"authorization_id,omitempty"`
	Message          string `json:"message,omitempty"`
	State            string `json:"state,omitempty"`
	RedirectRequired bool   `json:"redirect_required,omitempty"`
	IssuerURL        string `json:"issuer_url,omitempty"`
	PaRequest        string `json:"pa_request,omitempty"`
	MD               string `json:"md,omitempty"`
}

type PaymentService struct {
	payments PaymentStore
	cards    CardStore
	gw       *gateway.Gateway
}

func NewPaymentService(payments PaymentStore, cards CardStore, gw *gateway.Gateway) *PaymentService {
	return &PaymentService{payments: payments, cards: cards, gw: gw}
}

type CreatePaymentInput struct {
	UserID       uint
	CreditCardID uint
	AmountCents  int64
	Currency     string
	ShopperIP    string
}

func (s *PaymentService) CreatePayment(in CreatePaymentInput) (*models.Payment, error) {
	p := &models.Payment{
		OrderNumber:  uuid.NewString(),
		UserID:       in.UserID,
		CreditCardID: in.CreditCardID,
		AmountCents:  in.AmountCents,
		Currency:     in.Currency,
		State:        models.PaymentStateCheckout,
		LastIP:       in.ShopperIP,
	}
	if err := s.payments.Create(p); err != nil {
		return nil, err
	}
	return p, nil
}

// AuthorizeParams carries the per-request shopper context that is never
// persisted: browser headers and the fresh CVC, if any.
type AuthorizeParams struct {
	Browser           *gateway.BrowserInfo
	VerificationValue string
}

// Authorize runs the gateway's mode selection for the payment and persists
// the normalized outcome. A pending 3-D Secure token on the payment resumes
// the challenge instead of starting over.
func (s *PaymentService) Authorize(ctx context.Context, paymentID uint, params AuthorizeParams) (*OperationResult, error) {
	p, err := s.payments.GetByID(paymentID)
	if err != nil {
		return nil, err
	}
	return s.authorize(ctx, p, params)
}

// Resume3DS completes a pending 3-D Secure challenge. Unlike Authorize it
// refuses to fall back to a fresh authorisation when no continuation token is
// stored on the payment.
func (s *PaymentService) Resume3DS(ctx context.Context, paymentID uint, browser *gateway.BrowserInfo) (*OperationResult, error) {
	p, err := s.payments.GetByID(paymentID)
	if err != nil {
		return nil, err
	}
	if p.MD == "" {
		return nil, &gateway.InputError{Reason: "payment has no pending 3-D Secure challenge"}
	}
	return s.authorize(ctx, p, AuthorizeParams{Browser: browser})
}

func (s *PaymentService) authorize(ctx context.Context, p *models.Payment, params AuthorizeParams) (*OperationResult, error) {
	p.CreditCard.VerificationValue = params.VerificationValue
	src := newCardSource(&p.CreditCard, s.cards)

	opts := gateway.Options{
		Currency:          p.Currency,
		OrderID:           p.OrderNumber,
		CustomerID:        strconv.FormatUint(uint64(p.UserID), 10),
		Email:             p.User.Email,
		IP:                p.LastIP,
		ThreeDSecureToken: p.MD,
		Browser:           params.Browser,
	}

	resp, err := s.gw.Authorize(ctx, p.AmountCents, src, opts)
	if err != nil {
		var enrolled *gateway.EnrollmentRequiredError
		if errors.As(err, &enrolled) {
			return s.storeEnrollment(p, enrolled)
		}
		return nil, err
	}
	return s.finalizeAuthorization(p, resp)
}

func (s *PaymentService) storeEnrollment(p *models.Payment, enrolled *gateway.EnrollmentRequiredError) (*OperationResult, error) {
	if err := s.payments.Updates(p.ID, map[string]interface{}{
		"md":    enrolled.Response.MD,
		"state": models.PaymentStatePending,
	}); err != nil {
		return nil, err
	}
	return &OperationResult{
		State:            models.PaymentStatePending,
		RedirectRequired: true,
		IssuerURL:        enrolled.Response.IssuerURL,
		PaRequest:        enrolled.Response.PaRequest,
		MD:               enrolled.Response.MD,
	}, nil
}

func (s *PaymentService) finalizeAuthorization(p *models.Payment, resp *gateway.Response) (*OperationResult, error) {
	if !resp.IsSuccess() {
		if err := s.payments.Updates(p.ID, map[string]interface{}{
			"state":          models.PaymentStateFailed,
			"failure_reason": resp.FailureMessage(),
		}); err != nil {
			return nil, err
		}
		return &OperationResult{
			Message: resp.FailureMessage(),
			State:   models.PaymentStateFailed,
		}, nil
	}

	state := models.PaymentStatePending
	cols := map[string]interface{}{
		"response_code": resp.AuthorizationID(),
		"md":            "",
	}
	if s.gw.AutoCapture() {
		state = models.PaymentStateCompleted
		cols["completed_at"] = time.Now()
	}
	cols["state"] = state
	if err := s.payments.Updates(p.ID, cols); err != nil {
		return nil, err
	}
	return &OperationResult{
		Success:         true,
		AuthorizationID: resp.AuthorizationID(),
		State:           state,
	}, nil
}

func (s *PaymentService) Capture(ctx context.Context, paymentID uint) (*OperationResult, error) {
	p, err := s.payments.GetByID(paymentID)
	if err != nil {
		return nil, err
	}
	resp, err := s.gw.Capture(ctx, p.AmountCents, p.ResponseCode, gateway.Options{Currency: p.Currency})
	if err != nil {
		return nil, err
	}
	return s.finalizeModification(p, resp, models.PaymentStateCompleted)
}

func (s *PaymentService) Void(ctx context.Context, paymentID uint) (*OperationResult, error) {
	p, err := s.payments.GetByID(paymentID)
	if err != nil {
		return nil, err
	}
	resp, err := s.gw.Void(ctx, p.ResponseCode, gateway.Options{Currency: p.Currency})
	if err != nil {
		return nil, err
	}
	return s.finalizeModification(p, resp, models.PaymentStateVoid)
}

func (s *PaymentService) Refund(ctx context.Context, paymentID uint, amountCents int64) (*OperationResult, error) {
	p, err := s.payments.GetByID(paymentID)
	if err != nil {
		return nil, err
	}
	if amountCents <= 0 {
		amountCents = p.AmountCents
	}
	resp, err := s.gw.Credit(ctx, amountCents, p.ResponseCode, gateway.Options{Currency: p.Currency})
	if err != nil {
		return nil, err
	}
	return s.finalizeModification(p, resp, models.PaymentStateRefunded)
}

func (s *PaymentService) finalizeModification(p *models.Payment, resp *gateway.Response, successState string) (*OperationResult, error) {
	if !resp.IsSuccess() {
		return &OperationResult{Message: resp.FailureMessage(), State: p.State}, nil
	}
	cols := map[string]interface{}{"state": successState}
	if successState == models.PaymentStateCompleted {
		cols["completed_at"] = time.Now()
	}
	if err := s.payments.Updates(p.ID, cols); err != nil {
		return nil, err
	}
	return &OperationResult{
		Success:         true,
		AuthorizationID: resp.AuthorizationID(),
		State:           successState,
	}, nil
}

// CreateProfile registers a recurring contract for the payment's card at
// first payment, leaving the payment in processing on success.
func (s *PaymentService) CreateProfile(ctx context.Context, paymentID uint, browser *gateway.BrowserInfo) (*OperationResult, error) {
	p, err := s.payments.GetByID(paymentID)
	if err != nil {
		return nil, err
	}
	pc := &paymentContext{
		payment:  p,
		source:   newCardSource(&p.CreditCard, s.cards),
		payments: s.payments,
		browser:  browser,
	}
	resp, err := s.gw.CreateProfile(ctx, pc)
	if err != nil {
		var enrolled *gateway.EnrollmentRequiredError
		if errors.As(err, &enrolled) {
			return s.storeEnrollment(p, enrolled)
		}
		return nil, err
	}
	if resp == nil {
		// Contract already present; nothing dispatched.
		return &OperationResult{Success: true, State: p.State}, nil
	}
	return &OperationResult{
		Success:         true,
		AuthorizationID: resp.AuthorizationID(),
		State:           p.State,
	}, nil
}
