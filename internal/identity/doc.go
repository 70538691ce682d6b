// Package identity implements non-blocking 3-legged OAuth2 token acquisition
// through the Bedrock AgentCore Identity service.
//
// The identity service's native "wait for user consent" primitive polls for
// up to ten minutes, which would hang the runtime invocation handler. This
// package instead issues exactly one GetResourceOauth2Token call per
// invocation and classifies the response:
//
//   - an access token means the grant is ready and Drive operations can
//     proceed immediately
//   - an authorization URL means the user must complete consent in their
//     browser; the URL is returned to the caller to relay
//   - everything else is a failure the user is told about
//
// The session URI returned by the service correlates a retry with the
// pending exchange. It is held in a SessionCache so the invocation after
// consent resumes the same exchange instead of starting a new one.
package identity
