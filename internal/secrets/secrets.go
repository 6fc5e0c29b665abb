// Package secrets resolves the USAJOBS API key. The environment wins;
// the OS keychain is the fallback for machines where exporting secrets
// into cron environments is awkward.
package secrets

import (
	"errors"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// Service groups this app's secrets in the OS keychain.
	Service = "usajobs-watch"
	// Account under which the API key is stored.
	Account = "api-key"
)

// APIKey returns the key from envValue if set, otherwise from the OS
// keychain. An empty string means no key is available anywhere.
func APIKey(envValue string) string {
	if v := strings.TrimSpace(envValue); v != "" {
		return v
	}
	key, err := keyring.Get(Service, Account)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(key)
}

// SetAPIKey stores the key in the OS keychain.
func SetAPIKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("api key is empty")
	}
	return keyring.Set(Service, Account, key)
}

// DeleteAPIKey removes the key from the OS keychain.
func DeleteAPIKey() error {
	return keyring.Delete(Service, Account)
}
