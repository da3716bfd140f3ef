package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/celestiaorg/jobdesk/internal/logger"
)

// discoveryPath is appended to the issuer URL to fetch provider metadata
const discoveryPath = "/.well-known/openid-configuration"

// Endpoints is the subset of provider metadata the handshake needs
type Endpoints struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	EndSessionEndpoint    string `json:"end_session_endpoint,omitempty"`
}

// NewDiscoveryClient returns a retrying HTTP client suited to metadata fetches
func NewDiscoveryClient() *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 250 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.Logger = logger.KeyValueLogger{}
	// Hand the last response back so its body reaches the handshake error.
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return client
}

// Discover fetches the provider metadata of issuerURL, retrying transient failures
func Discover(ctx context.Context, client *retryablehttp.Client, issuerURL string) (Endpoints, error) {
	target := strings.TrimSuffix(issuerURL, "/") + discoveryPath

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Endpoints{}, fmt.Errorf("failed to build discovery request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return Endpoints{}, fmt.Errorf("failed to fetch provider metadata: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Endpoints{}, fmt.Errorf("failed to read provider metadata: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Endpoints{}, &HandshakeError{
			Stage:   StageDiscovery,
			Payload: string(body),
			Err:     fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var endpoints Endpoints
	if err := json.Unmarshal(body, &endpoints); err != nil {
		return Endpoints{}, fmt.Errorf("error decoding provider metadata: %w", err)
	}
	if endpoints.AuthorizationEndpoint == "" || endpoints.TokenEndpoint == "" {
		return Endpoints{}, &HandshakeError{
			Stage:   StageDiscovery,
			Payload: string(body),
			Err:     fmt.Errorf("provider metadata lacks authorization or token endpoint"),
		}
	}
	return endpoints, nil
}
