package gateway

import "os"

// Credentials identify the merchant against the processor API.
type Credentials struct {
	MerchantAccount string
	APIUsername     string
	APIPassword     string
}

// ResolveCredentials applies the environment overrides once, at adapter
// construction. An env var always wins over the stored preference.
func ResolveCredentials(pref Credentials) Credentials {
	if v := os.Getenv("ADYEN_MERCHANT_ACCOUNT"); v != "" {
		pref.MerchantAccount = v
	}
	if v := os.Getenv("ADYEN_API_USERNAME"); v != "" {
		pref.APIUsername = v
	}
	if v := os.Getenv("ADYEN_API_PASSWORD"); v != "" {
		pref.APIPassword = v
	}
	return pref
}
