package memory

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentcore"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentcore/types"
)

// AgentCoreAPI implements API against the Bedrock AgentCore data plane
// for one memory id and namespace.
type AgentCoreAPI struct {
	dp        *bedrockagentcore.Client
	memoryID  string
	namespace string
}

// NewAgentCoreAPI creates a memory backend for the given region, memory
// id and namespace using the default AWS credential chain.
func NewAgentCoreAPI(ctx context.Context, region, memoryID, namespace string) (*AgentCoreAPI, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &AgentCoreAPI{
		dp:        bedrockagentcore.NewFromConfig(cfg),
		memoryID:  memoryID,
		namespace: namespace,
	}, nil
}

// RetrieveRecords performs a semantic search over the memory namespace.
func (a *AgentCoreAPI) RetrieveRecords(ctx context.Context, query string, topK int) ([]Record, error) {
	out, err := a.dp.RetrieveMemoryRecords(ctx, &bedrockagentcore.RetrieveMemoryRecordsInput{
		MemoryId:  aws.String(a.memoryID),
		Namespace: aws.String(a.namespace),
		SearchCriteria: &types.SearchCriteria{
			SearchQuery: aws.String(query),
			TopK:        aws.Int32(int32(topK)),
		},
	})
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(out.MemoryRecordSummaries))
	for _, summary := range out.MemoryRecordSummaries {
		if content, ok := summary.Content.(*types.MemoryContentMemberText); ok {
			records = append(records, Record{Text: content.Value})
		}
	}
	return records, nil
}

// CreateEvent appends one user/assistant turn to memory as a pair of
// conversational payloads.
func (a *AgentCoreAPI) CreateEvent(ctx context.Context, actorID, sessionID string, turn Turn) error {
	_, err := a.dp.CreateEvent(ctx, &bedrockagentcore.CreateEventInput{
		MemoryId:       aws.String(a.memoryID),
		ActorId:        aws.String(actorID),
		SessionId:      aws.String(sessionID),
		EventTimestamp: aws.Time(turn.At),
		Payload: []types.PayloadType{
			&types.PayloadTypeMemberConversational{
				Value: types.Conversational{
					Role:    types.RoleUser,
					Content: &types.ContentMemberText{Value: turn.UserMessage},
				},
			},
			&types.PayloadTypeMemberConversational{
				Value: types.Conversational{
					Role:    types.RoleAssistant,
					Content: &types.ContentMemberText{Value: turn.AssistantMessage},
				},
			},
		},
	})
	return err
}

// Interface guard.
var _ API = (*AgentCoreAPI)(nil)
