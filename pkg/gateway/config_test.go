package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveCredentials(t *testing.T) {
	pref := Credentials{
		MerchantAccount: "stored-merchant",
		APIUsername:     "stored-user",
		APIPassword:     "stored-pass",
	}

	t.Run("stored preferences used when env is empty", func(t *testing.T) {
		resolved := ResolveCredentials(pref)
		assert.Equal(t, pref, resolved)
	})

	t.Run("environment wins over stored preferences", func(t *testing.T) {
		t.Setenv("ADYEN_MERCHANT_ACCOUNT", "env-merchant")
		t.Setenv("ADYEN_API_USERNAME", "env-user")

		resolved := ResolveCredentials(pref)
		assert.Equal(t, "env-merchant", resolved.MerchantAccount)
		assert.Equal(t, "env-user", resolved.APIUsername)
		assert.Equal(t, "stored-pass", resolved.APIPassword)
	})
}
