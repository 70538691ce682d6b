package identity

import "context"

// Oauth2FlowUserFederation selects delegated end-user consent, as opposed
// to machine-to-machine credentials.
const Oauth2FlowUserFederation = "USER_FEDERATION"

// SessionStatusFailed is the session status reported by the identity
// service when a pending exchange can no longer be completed.
const SessionStatusFailed = "FAILED"

// TokenRequest carries the parameters of a single GetResourceOauth2Token
// call to the identity service.
type TokenRequest struct {
	// ProviderName is the resource credential provider configured in
	// AgentCore Identity (e.g. a Google OAuth2 provider).
	ProviderName string

	// Scopes are the OAuth2 scopes requested from the resource provider.
	Scopes []string

	// WorkloadToken is the workload identity token injected by the
	// hosting runtime. Required for delegated user authorization.
	WorkloadToken string

	// ForceAuthentication requests a fresh consent even when a grant is
	// cached server-side. Left false so cached grants short-circuit.
	ForceAuthentication bool

	// CustomParameters are provider-specific authorization parameters
	// (e.g. access_type=offline for refresh-capable Google tokens).
	CustomParameters map[string]string

	// ReturnURL, when set, tells the identity service where to redirect
	// the user's browser after consent.
	ReturnURL string

	// SessionURI resumes a pending exchange instead of starting a new one.
	SessionURI string
}

// TokenResponse is the subset of the GetResourceOauth2Token response this
// package consumes.
type TokenResponse struct {
	AccessToken      string
	AuthorizationURL string
	SessionURI       string
	SessionStatus    string
}

// API is the narrow surface of the AgentCore Identity data plane consumed
// by this package. AgentCoreClient implements it against the real service;
// tests substitute fakes.
type API interface {
	// GetResourceOauth2Token performs one non-blocking token exchange call.
	GetResourceOauth2Token(ctx context.Context, req *TokenRequest) (*TokenResponse, error)

	// CompleteResourceTokenAuth binds a pending exchange to a user
	// identity after browser consent.
	CompleteResourceTokenAuth(ctx context.Context, sessionURI, userID string) error
}

// Outcome discriminates the result of a token acquisition attempt.
type Outcome int

const (
	// OutcomeReady means an access token is available for immediate use.
	OutcomeReady Outcome = iota
	// OutcomeConsentRequired means the user must open the authorization
	// URL in a browser and retry afterwards. Not an error.
	OutcomeConsentRequired
	// OutcomeFailed means the exchange failed; Reason is user-displayable.
	OutcomeFailed
)

// String returns the outcome as a label suitable for logs and metrics.
func (o Outcome) String() string {
	switch o {
	case OutcomeReady:
		return "ready"
	case OutcomeConsentRequired:
		return "consent_required"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Result is the typed outcome of Acquirer.Acquire. The access token is
// never cached across invocations; it lives only in the caller's frame.
type Result struct {
	Outcome          Outcome
	AccessToken      string
	AuthorizationURL string
	Reason           string
}
