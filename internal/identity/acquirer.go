package identity

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/teemow/examcoach/internal/logging"
)

// Acquirer performs one non-blocking token acquisition per call against
// the identity service. It never polls and never waits for user action;
// retry after consent is the caller's responsibility via re-invocation.
type Acquirer struct {
	api       API
	cache     *SessionCache
	provider  string
	scopes    []string
	returnURL string
	logger    *slog.Logger
}

// AcquirerConfig configures an Acquirer.
type AcquirerConfig struct {
	// ProviderName is the resource credential provider name.
	ProviderName string

	// Scopes are the OAuth2 scopes to request.
	Scopes []string

	// ReturnURL is the consent callback URL passed to the identity
	// service, or empty to use the provider's default.
	ReturnURL string

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// NewAcquirer creates a token acquirer backed by the given identity API
// and session cache.
func NewAcquirer(api API, cache *SessionCache, cfg AcquirerConfig) *Acquirer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Acquirer{
		api:       api,
		cache:     cache,
		provider:  cfg.ProviderName,
		scopes:    cfg.Scopes,
		returnURL: cfg.ReturnURL,
		logger:    logging.WithComponent(logger, "identity"),
	}
}

// Acquire issues exactly one token exchange call and classifies the
// response. The workload token comes from the hosting runtime; without it
// the call fails immediately and the provider is never contacted.
//
// All provider errors are converted to a Failed result; Acquire never
// returns an error to keep the caller's control flow plain.
func (a *Acquirer) Acquire(ctx context.Context, workloadToken string) Result {
	if workloadToken == "" {
		return Result{
			Outcome: OutcomeFailed,
			Reason: "Workload access token not available. " +
				"If using SigV4 auth, include the X-Amzn-Bedrock-AgentCore-Runtime-User-Id header.",
		}
	}

	req := &TokenRequest{
		ProviderName:        a.provider,
		Scopes:              a.scopes,
		WorkloadToken:       workloadToken,
		ForceAuthentication: false,
		CustomParameters:    map[string]string{"access_type": "offline"},
	}
	if a.returnURL != "" {
		req.ReturnURL = a.returnURL
	}
	if sessionURI := a.cache.Get(a.provider, a.scopes); sessionURI != "" {
		req.SessionURI = sessionURI
	}

	resp, err := a.api.GetResourceOauth2Token(ctx, req)
	if err != nil {
		a.logger.Error("token exchange call failed", logging.Provider(a.provider), logging.Err(err))
		return Result{Outcome: OutcomeFailed, Reason: fmt.Sprintf("OAuth2 token exchange failed: %v", err)}
	}

	// Persist the session URI before classifying the rest of the
	// response so the retry after consent resumes the same exchange.
	if resp.SessionURI != "" {
		a.cache.Put(a.provider, a.scopes, resp.SessionURI)
	}

	switch {
	case resp.AccessToken != "":
		// The exchange is complete; drop the session URI so it is not
		// echoed into a later, unrelated exchange.
		a.cache.Clear(a.provider, a.scopes)
		a.logger.Debug("access token ready",
			logging.Provider(a.provider),
			slog.String("token", logging.SanitizeToken(resp.AccessToken)))
		return Result{Outcome: OutcomeReady, AccessToken: resp.AccessToken}

	case resp.AuthorizationURL != "":
		// The service returns the authorization URL percent-encoded.
		// The consent endpoint rejects encoded reserved characters in
		// query values (urn%3Aietf%3Aparams vs urn:ietf:params), so
		// decode before handing the URL to the user.
		decoded := decodeAuthorizationURL(resp.AuthorizationURL)
		a.logger.Info("user consent required", logging.Provider(a.provider))
		return Result{Outcome: OutcomeConsentRequired, AuthorizationURL: decoded}

	case resp.SessionStatus == SessionStatusFailed:
		a.logger.Warn("OAuth2 session failed", logging.Provider(a.provider))
		return Result{Outcome: OutcomeFailed, Reason: "OAuth2 session failed. Please try again."}

	default:
		a.logger.Error("unexpected token exchange response",
			logging.Provider(a.provider),
			slog.String("session_status", resp.SessionStatus))
		return Result{Outcome: OutcomeFailed, Reason: fmt.Sprintf("Unexpected response: %+v", *resp)}
	}
}

// decodeAuthorizationURL fully percent-decodes the authorization URL.
// PathUnescape is used rather than QueryUnescape so literal plus signs in
// the URL survive.
func decodeAuthorizationURL(raw string) string {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		// Malformed escapes: pass the URL through untouched rather than
		// losing it.
		return raw
	}
	return decoded
}
