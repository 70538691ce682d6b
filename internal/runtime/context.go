package runtime

import "context"

// WorkloadAccessTokenHeader is the request header carrying the caller's
// workload access token, injected by the AgentCore Runtime.
const WorkloadAccessTokenHeader = "WorkloadAccessToken"

type contextKey int

const workloadTokenKey contextKey = iota

// WithWorkloadToken returns a context carrying the workload access
// token of the current invocation.
func WithWorkloadToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, workloadTokenKey, token)
}

// WorkloadTokenFromContext returns the workload access token of the
// current invocation, or "" when none was provided.
func WorkloadTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(workloadTokenKey).(string)
	return token
}
