package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/aws/aws-sdk-go-v2/config"

	"github.com/teemow/examcoach/internal/logging"
)

// DefaultModel is the Bedrock model id used when none is configured.
const DefaultModel = "anthropic.claude-haiku-4-5-20251001-v1:0"

// Tool is one callable tool offered to the answer generator.
type Tool struct {
	Name        string
	Description string

	// Schema holds the JSON schema properties of the tool input.
	Schema map[string]any

	// Required lists the mandatory input properties.
	Required []string

	// Run executes the tool. Errors are rendered into the returned
	// string, never propagated.
	Run func(ctx context.Context, args map[string]any) string
}

// Generator produces a reply for one user message, running tools as the
// model requests them.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userMessage string, tools []Tool) (Reply, error)
}

// ClaudeGenerator runs Claude on Amazon Bedrock with a tool loop.
type ClaudeGenerator struct {
	client        anthropic.Client
	model         anthropic.Model
	maxTokens     int64
	maxIterations int
	logger        *slog.Logger
}

// GeneratorConfig configures a ClaudeGenerator.
type GeneratorConfig struct {
	// Region is the AWS region hosting the Bedrock model.
	Region string

	// Model is the Bedrock model id; defaults to DefaultModel.
	Model string

	// MaxIterations bounds the tool loop; defaults to 10.
	MaxIterations int

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// NewClaudeGenerator creates a generator backed by Bedrock using the
// default AWS credential chain.
func NewClaudeGenerator(ctx context.Context, cfg GeneratorConfig) (*ClaudeGenerator, error) {
	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}

	client := anthropic.NewClient(
		bedrock.WithLoadDefaultConfig(ctx, loadOpts...),
		option.WithMaxRetries(2),
	)

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxIterations := cfg.MaxIterations
	if maxIterations <= 0 {
		maxIterations = 10
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &ClaudeGenerator{
		client:        client,
		model:         anthropic.Model(model),
		maxTokens:     4096,
		maxIterations: maxIterations,
		logger:        logging.WithComponent(logger, "generator"),
	}, nil
}

// Generate runs the model until it stops requesting tools, executing
// each requested tool and feeding its result back.
func (g *ClaudeGenerator) Generate(ctx context.Context, systemPrompt, userMessage string, tools []Tool) (Reply, error) {
	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(userMessage)),
	}
	toolParams := toolUnionParams(tools)

	for iteration := 0; iteration < g.maxIterations; iteration++ {
		resp, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     g.model,
			MaxTokens: g.maxTokens,
			System: []anthropic.TextBlockParam{
				{Text: systemPrompt},
			},
			Messages: messages,
			Tools:    toolParams,
		})
		if err != nil {
			return Reply{}, fmt.Errorf("model invocation failed: %w", err)
		}

		var assistantBlocks []anthropic.ContentBlockParamUnion
		var toolResultBlocks []anthropic.ContentBlockParamUnion
		var parts []Part

		for _, block := range resp.Content {
			switch variant := block.AsAny().(type) {
			case anthropic.TextBlock:
				parts = append(parts, Part{Text: variant.Text})
				assistantBlocks = append(assistantBlocks, anthropic.NewTextBlock(variant.Text))

			case anthropic.ToolUseBlock:
				assistantBlocks = append(assistantBlocks,
					anthropic.NewToolUseBlock(variant.ID, variant.Input, variant.Name))

				output, isError := g.runTool(ctx, tools, variant.Name, variant.Input)
				toolResultBlocks = append(toolResultBlocks,
					anthropic.NewToolResultBlock(variant.ID, output, isError))
			}
		}

		if resp.StopReason == anthropic.StopReasonEndTurn {
			return MessageReply(parts...), nil
		}

		messages = append(messages, anthropic.NewAssistantMessage(assistantBlocks...))
		if len(toolResultBlocks) > 0 {
			messages = append(messages, anthropic.NewUserMessage(toolResultBlocks...))
		}
	}

	return Reply{}, fmt.Errorf("tool loop did not finish within %d iterations", g.maxIterations)
}

func (g *ClaudeGenerator) runTool(ctx context.Context, tools []Tool, name string, input json.RawMessage) (string, bool) {
	var tool *Tool
	for i := range tools {
		if tools[i].Name == name {
			tool = &tools[i]
			break
		}
	}
	if tool == nil {
		g.logger.Warn("model requested unknown tool", logging.Tool(name))
		return fmt.Sprintf("Unknown tool: %s", name), true
	}

	args, err := decodeArgs(input)
	if err != nil {
		g.logger.Warn("failed to decode tool input", logging.Tool(name), logging.Err(err))
		return fmt.Sprintf("Invalid tool input: %v", err), true
	}

	g.logger.Info("executing tool", logging.Tool(name))
	return tool.Run(ctx, args), false
}

// decodeArgs unmarshals a tool input payload into string-keyed arguments.
func decodeArgs(input json.RawMessage) (map[string]any, error) {
	if len(input) == 0 {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal(input, &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// toolUnionParams converts tools into the SDK's request shape.
func toolUnionParams(tools []Tool) []anthropic.ToolUnionParam {
	params := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		params = append(params, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        tool.Name,
				Description: anthropic.String(tool.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: tool.Schema,
					Required:   tool.Required,
				},
			},
		})
	}
	return params
}
