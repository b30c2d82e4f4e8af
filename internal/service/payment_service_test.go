package service

import (
	"context"
	"testing"

	"cardbridge/internal/models"
	"cardbridge/pkg/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubClient satisfies gateway.Client without any network, recording which
// endpoint each dispatch hit.
type stubClient struct {
	calls []string
	resp  *gateway.RawResponse
	err   error
	list  *gateway.RecurringDetailList
}

func (c *stubClient) AuthorisePayment(_ context.Context, _ gateway.AuthoriseRequest) (*gateway.RawResponse, error) {
	c.calls = append(c.calls, "authorise")
	return c.resp, c.err
}

func (c *stubClient) AuthoriseRecurringPayment(_ context.Context, _ gateway.AuthoriseRequest) (*gateway.RawResponse, error) {
	c.calls = append(c.calls, "authoriseRecurring")
	return c.resp, c.err
}

func (c *stubClient) AuthoriseOneClickPayment(_ context.Context, _ gateway.AuthoriseRequest) (*gateway.RawResponse, error) {
	c.calls = append(c.calls, "authoriseOneClick")
	return c.resp, c.err
}

func (c *stubClient) Authorise3DSecurePayment(_ context.Context, _ gateway.ThreeDSecureRequest) (*gateway.RawResponse, error) {
	c.calls = append(c.calls, "authorise3d")
	return c.resp, c.err
}

func (c *stubClient) CapturePayment(_ context.Context, _ gateway.ModificationRequest) (*gateway.RawResponse, error) {
	c.calls = append(c.calls, "capture")
	return c.resp, c.err
}

func (c *stubClient) CancelPayment(_ context.Context, _ gateway.ModificationRequest) (*gateway.RawResponse, error) {
	c.calls = append(c.calls, "cancel")
	return c.resp, c.err
}

func (c *stubClient) RefundPayment(_ context.Context, _ gateway.ModificationRequest) (*gateway.RawResponse, error) {
	c.calls = append(c.calls, "refund")
	return c.resp, c.err
}

func (c *stubClient) DisableRecurringContract(_ context.Context, _ gateway.DisableContractRequest) (*gateway.RawResponse, error) {
	c.calls = append(c.calls, "disable")
	return c.resp, c.err
}

func (c *stubClient) ListRecurringDetails(_ context.Context, _ gateway.ListRecurringDetailsRequest) (*gateway.RecurringDetailList, error) {
	c.calls = append(c.calls, "listRecurringDetails")
	return c.list, c.err
}

type fakePaymentStore struct {
	payment *models.Payment
	updates []map[string]interface{}
}

func (f *fakePaymentStore) Create(p *models.Payment) error {
	if p.ID == 0 {
		p.ID = 1
	}
	f.payment = p
	return nil
}

func (f *fakePaymentStore) GetByID(id uint) (*models.Payment, error) {
	if f.payment == nil || f.payment.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *f.payment
	return &cp, nil
}

func (f *fakePaymentStore) Updates(_ uint, cols map[string]interface{}) error {
	f.updates = append(f.updates, cols)
	return nil
}

func (f *fakePaymentStore) lastUpdate(t *testing.T) map[string]interface{} {
	t.Helper()
	require.NotEmpty(t, f.updates)
	return f.updates[len(f.updates)-1]
}

type fakeCardStore struct {
	card    *models.CreditCard
	stored  []map[string]interface{}
	cleared int
}

func (f *fakeCardStore) Create(c *models.CreditCard) error {
	f.card = c
	return nil
}

func (f *fakeCardStore) GetByID(id uint) (*models.CreditCard, error) {
	if f.card == nil || f.card.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.card, nil
}

func (f *fakeCardStore) UpdateStoredColumns(_ uint, cols map[string]interface{}) error {
	f.stored = append(f.stored, cols)
	return nil
}

func (f *fakeCardStore) ClearRecurringReference(_ uint) error {
	f.cleared++
	return nil
}

var stubCreds = gateway.Credentials{
	MerchantAccount: "merchant",
	APIUsername:     "admin",
	APIPassword:     "123",
}

func checkoutPayment() *models.Payment {
	return &models.Payment{
		ID:           1,
		OrderNumber:  "ord-1",
		UserID:       42,
		CreditCardID: 7,
		AmountCents:  30000,
		Currency:     "USD",
		State:        models.PaymentStateCheckout,
		LastIP:       "127.0.0.1",
		User:         models.User{ID: 42, Email: "surf@uk.com"},
		CreditCard:   models.CreditCard{ID: 7, UserID: 42, EncryptedData: "blob"},
	}
}

func newPaymentService(client gateway.Client, p *models.Payment, gw *gateway.Gateway) (*PaymentService, *fakePaymentStore, *fakeCardStore) {
	payments := &fakePaymentStore{payment: p}
	cards := &fakeCardStore{card: &p.CreditCard}
	return NewPaymentService(payments, cards, gw), payments, cards
}

func TestPaymentServiceAuthorize(t *testing.T) {
	t.Run("success completes under immediate capture", func(t *testing.T) {
		client := &stubClient{resp: &gateway.RawResponse{PSPReference: "psp-1", ResultCode: "Authorised"}}
		svc, payments, _ := newPaymentService(client, checkoutPayment(),
			gateway.NewImmediateCapture(client, stubCreds, "USD"))

		result, err := svc.Authorize(context.Background(), 1, AuthorizeParams{})
		require.NoError(t, err)

		assert.True(t, result.Success)
		assert.Equal(t, "psp-1", result.AuthorizationID)
		assert.Equal(t, models.PaymentStateCompleted, result.State)

		cols := payments.lastUpdate(t)
		assert.Equal(t, "psp-1", cols["response_code"])
		assert.Equal(t, "", cols["md"])
		assert.Equal(t, models.PaymentStateCompleted, cols["state"])
		assert.Contains(t, cols, "completed_at")
	})

	t.Run("success stays pending under delayed capture", func(t *testing.T) {
		client := &stubClient{resp: &gateway.RawResponse{PSPReference: "psp-1", ResultCode: "Authorised"}}
		svc, payments, _ := newPaymentService(client, checkoutPayment(),
			gateway.NewDelayedCapture(client, stubCreds, "USD"))

		result, err := svc.Authorize(context.Background(), 1, AuthorizeParams{})
		require.NoError(t, err)

		assert.Equal(t, models.PaymentStatePending, result.State)
		cols := payments.lastUpdate(t)
		assert.Equal(t, models.PaymentStatePending, cols["state"])
		assert.NotContains(t, cols, "completed_at")
	})

	t.Run("refusal marks the payment failed", func(t *testing.T) {
		client := &stubClient{resp: &gateway.RawResponse{ResultCode: "Refused", RefusalReason: "010 Not allowed"}}
		svc, payments, _ := newPaymentService(client, checkoutPayment(),
			gateway.NewImmediateCapture(client, stubCreds, "USD"))

		result, err := svc.Authorize(context.Background(), 1, AuthorizeParams{})
		require.NoError(t, err)

		assert.False(t, result.Success)
		assert.Equal(t, "010 Not allowed", result.Message)
		assert.Equal(t, models.PaymentStateFailed, result.State)

		cols := payments.lastUpdate(t)
		assert.Equal(t, models.PaymentStateFailed, cols["state"])
		assert.Equal(t, "010 Not allowed", cols["failure_reason"])
	})

	t.Run("enrollment stores the continuation token", func(t *testing.T) {
		client := &stubClient{resp: &gateway.RawResponse{
			ResultCode: "RedirectShopper",
			IssuerURL:  "https://issuer.example/3ds",
			PaRequest:  "pa-req",
			MD:         "md-token",
		}}
		svc, payments, _ := newPaymentService(client, checkoutPayment(),
			gateway.NewImmediateCapture(client, stubCreds, "USD"))

		result, err := svc.Authorize(context.Background(), 1, AuthorizeParams{})
		require.NoError(t, err)

		assert.True(t, result.RedirectRequired)
		assert.Equal(t, "https://issuer.example/3ds", result.IssuerURL)
		assert.Equal(t, "pa-req", result.PaRequest)
		assert.Equal(t, "md-token", result.MD)
		assert.Equal(t, models.PaymentStatePending, result.State)

		cols := payments.lastUpdate(t)
		assert.Equal(t, "md-token", cols["md"])
		assert.Equal(t, models.PaymentStatePending, cols["state"])
	})

	t.Run("stored token resumes the challenge and is cleared on success", func(t *testing.T) {
		client := &stubClient{resp: &gateway.RawResponse{PSPReference: "psp-3d", ResultCode: "Authorised"}}
		p := checkoutPayment()
		p.MD = "md-token"
		p.State = models.PaymentStatePending
		svc, payments, _ := newPaymentService(client, p,
			gateway.NewImmediateCapture(client, stubCreds, "USD"))

		result, err := svc.Authorize(context.Background(), 1, AuthorizeParams{})
		require.NoError(t, err)

		require.Equal(t, []string{"authorise3d"}, client.calls)
		assert.True(t, result.Success)
		cols := payments.lastUpdate(t)
		assert.Equal(t, "", cols["md"])
		assert.Equal(t, models.PaymentStateCompleted, cols["state"])
	})

	t.Run("unknown payment propagates not found", func(t *testing.T) {
		client := &stubClient{}
		svc, _, _ := newPaymentService(client, checkoutPayment(),
			gateway.NewImmediateCapture(client, stubCreds, "USD"))

		_, err := svc.Authorize(context.Background(), 99, AuthorizeParams{})
		require.ErrorIs(t, err, gorm.ErrRecordNotFound)
		assert.Empty(t, client.calls)
	})
}

func TestPaymentServiceResume3DS(t *testing.T) {
	t.Run("completes the pending challenge", func(t *testing.T) {
		client := &stubClient{resp: &gateway.RawResponse{PSPReference: "psp-3d", ResultCode: "Authorised"}}
		p := checkoutPayment()
		p.MD = "md-token"
		p.State = models.PaymentStatePending
		svc, payments, _ := newPaymentService(client, p,
			gateway.NewImmediateCapture(client, stubCreds, "USD"))

		result, err := svc.Resume3DS(context.Background(), 1, nil)
		require.NoError(t, err)

		require.Equal(t, []string{"authorise3d"}, client.calls)
		assert.True(t, result.Success)
		assert.Equal(t, "", payments.lastUpdate(t)["md"])
	})

	t.Run("rejects when no challenge is pending", func(t *testing.T) {
		client := &stubClient{}
		svc, payments, _ := newPaymentService(client, checkoutPayment(),
			gateway.NewImmediateCapture(client, stubCreds, "USD"))

		_, err := svc.Resume3DS(context.Background(), 1, nil)

		var inputErr *gateway.InputError
		require.ErrorAs(t, err, &inputErr)
		assert.Empty(t, client.calls, "no dispatch without a stored token")
		assert.Empty(t, payments.updates)
	})
}

func TestPaymentServiceCapture(t *testing.T) {
	client := &stubClient{resp: &gateway.RawResponse{PSPReference: "psp-cap", ResultCode: "Authorised"}}
	p := checkoutPayment()
	p.State = models.PaymentStatePending
	p.ResponseCode = "psp-auth"
	svc, payments, _ := newPaymentService(client, p,
		gateway.NewDelayedCapture(client, stubCreds, "USD"))

	result, err := svc.Capture(context.Background(), 1)
	require.NoError(t, err)

	require.Equal(t, []string{"capture"}, client.calls)
	assert.True(t, result.Success)
	cols := payments.lastUpdate(t)
	assert.Equal(t, models.PaymentStateCompleted, cols["state"])
	assert.Contains(t, cols, "completed_at")
}

func TestPaymentServiceCreateProfile(t *testing.T) {
	client := &stubClient{
		resp: &gateway.RawResponse{PSPReference: "psp-prof", ResultCode: "Authorised"},
		list: &gateway.RecurringDetailList{Details: []gateway.RecurringDetail{{
			Reference:       "tok-9",
			Variant:         "visa",
			CardExpiryMonth: "8",
			CardExpiryYear:  "2030",
			CardNumber:      "1111",
		}}},
	}
	gw := gateway.New(client, stubCreds, "USD", gateway.Policy{AutoCapture: true, PaymentProfiles: true})
	svc, payments, cards := newPaymentService(client, checkoutPayment(), gw)

	result, err := svc.CreateProfile(context.Background(), 1, nil)
	require.NoError(t, err)

	assert.True(t, result.Success)
	require.Len(t, cards.stored, 1)
	assert.Equal(t, "tok-9", cards.stored[0]["gateway_customer_profile_id"])
	assert.Equal(t, models.PaymentStateProcessing, payments.lastUpdate(t)["state"])
}
