package httpx

import (
	"net/http"
	"time"
)

const defaultExternalHTTPTimeout = 30 * time.Second

// externalHTTPClient is shared by every outbound call (sentiment endpoint,
// OpenAI). The Anthropic SDK manages its own client.
var externalHTTPClient = &http.Client{
	Timeout: defaultExternalHTTPTimeout,
}

// External returns the shared client for outbound requests.
func External() *http.Client {
	return externalHTTPClient
}

// ConfigureExternalHTTPClient applies a timeout in seconds to the shared
// client. Zero or negative restores the default. Returns the applied timeout.
func ConfigureExternalHTTPClient(seconds int) time.Duration {
	timeout := defaultExternalHTTPTimeout
	if seconds > 0 {
		timeout = time.Duration(seconds) * time.Second
	}
	externalHTTPClient.Timeout = timeout
	return timeout
}
