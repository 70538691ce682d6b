package identity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentcore"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentcore/types"
)

// AgentCoreClient implements API against the Bedrock AgentCore data plane.
type AgentCoreClient struct {
	dp *bedrockagentcore.Client
}

// NewAgentCoreClient creates an identity client for the given region using
// the default AWS credential chain.
func NewAgentCoreClient(ctx context.Context, region string) (*AgentCoreClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &AgentCoreClient{dp: bedrockagentcore.NewFromConfig(cfg)}, nil
}

// GetResourceOauth2Token performs one token exchange call against the
// identity service.
func (c *AgentCoreClient) GetResourceOauth2Token(ctx context.Context, req *TokenRequest) (*TokenResponse, error) {
	in := &bedrockagentcore.GetResourceOauth2TokenInput{
		ResourceCredentialProviderName: aws.String(req.ProviderName),
		Scopes:                         req.Scopes,
		Oauth2Flow:                     types.Oauth2FlowType(Oauth2FlowUserFederation),
		WorkloadIdentityToken:          aws.String(req.WorkloadToken),
		ForceAuthentication:            aws.Bool(req.ForceAuthentication),
		CustomParameters:               req.CustomParameters,
	}
	if req.ReturnURL != "" {
		in.ResourceOauth2ReturnUrl = aws.String(req.ReturnURL)
	}
	if req.SessionURI != "" {
		in.SessionUri = aws.String(req.SessionURI)
	}

	out, err := c.dp.GetResourceOauth2Token(ctx, in)
	if err != nil {
		return nil, err
	}

	return &TokenResponse{
		AccessToken:      aws.ToString(out.AccessToken),
		AuthorizationURL: aws.ToString(out.AuthorizationUrl),
		SessionURI:       aws.ToString(out.SessionUri),
		SessionStatus:    string(out.SessionStatus),
	}, nil
}

// CompleteResourceTokenAuth binds a pending exchange to the given user id.
// Called by the consent callback receiver after the browser redirect.
func (c *AgentCoreClient) CompleteResourceTokenAuth(ctx context.Context, sessionURI, userID string) error {
	_, err := c.dp.CompleteResourceTokenAuth(ctx, &bedrockagentcore.CompleteResourceTokenAuthInput{
		SessionUri:     aws.String(sessionURI),
		UserIdentifier: &types.UserIdentifierMemberUserId{Value: userID},
	})
	return err
}

// Interface guard.
var _ API = (*AgentCoreClient)(nil)
