package gateway

const (
	resultAuthorised      = "Authorised"
	resultRedirectShopper = "RedirectShopper"
)

// RawResponse is the provider's response as received. Success and failure
// populate different fields; callers should go through Response instead of
// reading these directly.
type RawResponse struct {
	PSPReference  string `json:"pspReference"`
	ResultCode    string `json:"resultCode"`
	RefusalReason string `json:"refusalReason"`
	FaultMessage  string `json:"message"`

	// 3-D Secure challenge data, present when ResultCode is RedirectShopper.
	IssuerURL string `json:"issuerUrl"`
	PaRequest string `json:"paRequest"`
	MD        string `json:"md"`
}

func (r *RawResponse) Authorised() bool {
	return r.ResultCode == resultAuthorised
}

func (r *RawResponse) RedirectShopper() bool {
	return r.ResultCode == resultRedirectShopper
}

func (r *RawResponse) failureMessage() string {
	if r.FaultMessage != "" {
		return r.FaultMessage
	}
	return r.RefusalReason
}

// VerificationResult is a structured AVS/CVV check outcome.
type VerificationResult struct {
	Code string `json:"code,omitempty"`
}

// Response is the uniform success/failure view over a raw provider response.
// Every dispatch (authorise, capture, void, credit) is wrapped in one; card
// verification accessors are only populated for calls that submitted card
// data.
type Response struct {
	raw      *RawResponse
	cardData bool
}

func newCardResponse(raw *RawResponse) *Response {
	return &Response{raw: raw, cardData: true}
}

func newModificationResponse(raw *RawResponse) *Response {
	return &Response{raw: raw}
}

func (r *Response) IsSuccess() bool {
	return r.raw.Authorised()
}

// AuthorizationID is the provider's transaction reference. Empty unless
// IsSuccess.
func (r *Response) AuthorizationID() string {
	if !r.IsSuccess() {
		return ""
	}
	return r.raw.PSPReference
}

// AVSResult is always empty; the provider does not return AVS data in this
// integration.
func (r *Response) AVSResult() VerificationResult {
	return VerificationResult{}
}

func (r *Response) CVVResult() VerificationResult {
	if !r.cardData || !r.IsSuccess() {
		return VerificationResult{}
	}
	return VerificationResult{Code: r.raw.ResultCode}
}

// FailureMessage is the provider's refusal or fault text. Empty on success.
func (r *Response) FailureMessage() string {
	if r.IsSuccess() {
		return ""
	}
	return r.raw.failureMessage()
}

func (r *Response) Raw() *RawResponse {
	return r.raw
}

// RecurringDetail is one stored card as returned by the provider's recurring
// detail listing.
type RecurringDetail struct {
	Reference       string `json:"recurringDetailReference"`
	Variant         string `json:"variant"`
	CardHolderName  string `json:"cardHolderName"`
	CardExpiryMonth string `json:"cardExpiryMonth"`
	CardExpiryYear  string `json:"cardExpiryYear"`
	CardNumber      string `json:"cardNumber"`
}

// RecurringDetailList is the provider's stored-card listing for one shopper.
type RecurringDetailList struct {
	ShopperReference string            `json:"shopperReference"`
	Details          []RecurringDetail `json:"details"`
}

// Last returns the final entry of the list. The provider indexes the newest
// contract at the tail; that ordering is assumed, not documented.
func (l *RecurringDetailList) Last() (RecurringDetail, bool) {
	if len(l.Details) == 0 {
		return RecurringDetail{}, false
	}
	return l.Details[len(l.Details)-1], true
}
