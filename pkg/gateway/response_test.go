package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponse_Success(t *testing.T) {
	resp := newCardResponse(&RawResponse{PSPReference: "psp-1", ResultCode: "Authorised"})

	assert.True(t, resp.IsSuccess())
	assert.Equal(t, "psp-1", resp.AuthorizationID())
	assert.Equal(t, "Authorised", resp.CVVResult().Code)
	assert.Empty(t, resp.AVSResult().Code)
	assert.Empty(t, resp.FailureMessage())
}

func TestResponse_Refused(t *testing.T) {
	resp := newCardResponse(&RawResponse{ResultCode: "Refused", RefusalReason: "010 Not allowed"})

	assert.False(t, resp.IsSuccess())
	assert.Empty(t, resp.AuthorizationID())
	assert.Empty(t, resp.CVVResult().Code)
	assert.Equal(t, "010 Not allowed", resp.FailureMessage())
}

func TestResponse_FaultMessageWinsOverRefusalReason(t *testing.T) {
	resp := newCardResponse(&RawResponse{
		ResultCode:    "Error",
		RefusalReason: "refused",
		FaultMessage:  "validation 101 Invalid card number",
	})
	assert.Equal(t, "validation 101 Invalid card number", resp.FailureMessage())
}

func TestResponse_ModificationHidesCardChecks(t *testing.T) {
	resp := newModificationResponse(&RawResponse{PSPReference: "psp-2", ResultCode: "Authorised"})

	assert.True(t, resp.IsSuccess())
	assert.Equal(t, "psp-2", resp.AuthorizationID())
	assert.Empty(t, resp.CVVResult().Code)
	assert.Empty(t, resp.AVSResult().Code)
}

func TestRecurringDetailList_Last(t *testing.T) {
	_, ok := (&RecurringDetailList{}).Last()
	assert.False(t, ok)

	list := detailList("tok-1", "tok-2")
	last, ok := list.Last()
	assert.True(t, ok)
	assert.Equal(t, "tok-2", last.Reference)
}
