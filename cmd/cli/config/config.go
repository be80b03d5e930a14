package config

import (
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultAPIURL = "http://localhost:3000"

// APIURL returns the base URL for the account service.
// It can be overridden with the ACCT_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("ACCT_API_URL"); v != "" {
		return strings.TrimRight(v, "/")
	}
	return defaultAPIURL
}

// HTTPClient is shared by all commands.
var HTTPClient = &http.Client{Timeout: 15 * time.Second}
