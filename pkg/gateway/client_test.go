package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, wantPath string, status int, body string) (*httptest.Server, *map[string]interface{}) {
	t.Helper()
	captured := map[string]interface{}{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "admin", user)
		assert.Equal(t, "123", pass)
		assert.Equal(t, wantPath, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func TestRESTClient_Authorise(t *testing.T) {
	srv, captured := newTestServer(t, "/Payment/authorise", http.StatusOK,
		`{"pspReference":"psp-1","resultCode":"Authorised"}`)
	client := NewRESTClient(srv.URL, "admin", "123")

	raw, err := client.AuthorisePayment(context.Background(), AuthoriseRequest{
		MerchantAccount: "merchant",
		Reference:       "R1",
		Amount:          Amount{Currency: "USD", Value: 30000},
		AdditionalData:  &additionalData{Card: encryptedCard{JSON: "blob"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "psp-1", raw.PSPReference)
	assert.True(t, raw.Authorised())

	req := *captured
	assert.Equal(t, "merchant", req["merchantAccount"])
	card := req["additionalData"].(map[string]interface{})["card"].(map[string]interface{})
	assert.Equal(t, "blob", card["json"])
}

func TestRESTClient_CaptureAckNormalized(t *testing.T) {
	srv, _ := newTestServer(t, "/Payment/capture", http.StatusOK,
		`{"pspReference":"psp-2","response":"[capture-received]"}`)
	client := NewRESTClient(srv.URL, "admin", "123")

	raw, err := client.CapturePayment(context.Background(), ModificationRequest{
		MerchantAccount:   "merchant",
		OriginalReference: "psp-1",
		Amount:            &Amount{Currency: "USD", Value: 30000},
	})
	require.NoError(t, err)
	assert.True(t, raw.Authorised())
	assert.Equal(t, "psp-2", raw.PSPReference)
}

func TestRESTClient_DisableAckNormalized(t *testing.T) {
	srv, captured := newTestServer(t, "/Recurring/disable", http.StatusOK,
		`{"response":"[detail-successfully-disabled]"}`)
	client := NewRESTClient(srv.URL, "admin", "123")

	raw, err := client.DisableRecurringContract(context.Background(), DisableContractRequest{
		MerchantAccount:          "merchant",
		ShopperReference:         "42",
		RecurringDetailReference: "tok-1",
	})
	require.NoError(t, err)
	assert.True(t, raw.Authorised())
	assert.Equal(t, "tok-1", (*captured)["recurringDetailReference"])
}

func TestRESTClient_ListRecurringDetails(t *testing.T) {
	srv, captured := newTestServer(t, "/Recurring/listRecurringDetails", http.StatusOK,
		`{"shopperReference":"42","details":[{"recurringDetailReference":"tok-1","variant":"visa","cardNumber":"1111"}]}`)
	client := NewRESTClient(srv.URL, "admin", "123")

	list, err := client.ListRecurringDetails(context.Background(), ListRecurringDetailsRequest{
		MerchantAccount:  "merchant",
		ShopperReference: "42",
	})
	require.NoError(t, err)
	require.Len(t, list.Details, 1)
	assert.Equal(t, "tok-1", list.Details[0].Reference)

	recurring := (*captured)["recurring"].(map[string]interface{})
	assert.Equal(t, "RECURRING", recurring["contract"])
}

func TestRESTClient_HTTPErrorPropagates(t *testing.T) {
	srv, _ := newTestServer(t, "/Payment/authorise", http.StatusUnauthorized, `{"message":"bad credentials"}`)
	client := NewRESTClient(srv.URL, "admin", "123")

	_, err := client.AuthorisePayment(context.Background(), AuthoriseRequest{MerchantAccount: "merchant"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
