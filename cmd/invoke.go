package cmd

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentcore"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newInvokeCmd() *cobra.Command {
	var (
		runtimeARN   string
		endpointName string
		prompt       string
		sessionID    string
		userID       string
		region       string
	)

	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Send a prompt to a deployed agent runtime",
		Long: `Invoke a deployed AgentCore Runtime endpoint with a single prompt and
print the response.

The session id groups turns into one coaching session; omitting it
starts a fresh session under a random id. Pass --user-id when the
session uses Google Drive storage so the OAuth2 grant is bound to a
stable identity.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runtimeARN == "" {
				runtimeARN = os.Getenv("RUNTIME_ARN")
			}
			if runtimeARN == "" {
				return fmt.Errorf("a runtime ARN is required; set --runtime-arn or RUNTIME_ARN")
			}
			if prompt == "" {
				return fmt.Errorf("a prompt is required; set --prompt")
			}
			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			if region == "" {
				region = os.Getenv("AWS_REGION")
			}
			if region == "" {
				region = os.Getenv("AWS_DEFAULT_REGION")
			}
			if region == "" {
				region = defaultRegion
			}
			return runInvoke(runtimeARN, endpointName, prompt, sessionID, userID, region)
		},
	}

	cmd.Flags().StringVar(&runtimeARN, "runtime-arn", "", "AgentCore Runtime ARN. Can also use RUNTIME_ARN env var.")
	cmd.Flags().StringVar(&endpointName, "endpoint-name", "DEFAULT", "AgentCore Runtime endpoint name")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Prompt to send to the agent")
	cmd.Flags().StringVar(&sessionID, "session-id", "", "Session id (default: random UUID)")
	cmd.Flags().StringVar(&userID, "user-id", "", "Runtime user id for identity and OAuth2 flows")
	cmd.Flags().StringVar(&region, "region", "", "AWS region. Can also use AWS_REGION or AWS_DEFAULT_REGION env vars.")

	return cmd
}

func runInvoke(runtimeARN, endpointName, prompt, sessionID, userID, region string) error {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := bedrockagentcore.NewFromConfig(cfg)

	payload, err := json.Marshal(map[string]string{
		"prompt":     prompt,
		"session_id": sessionID,
	})
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	input := &bedrockagentcore.InvokeAgentRuntimeInput{
		AgentRuntimeArn:  aws.String(runtimeARN),
		RuntimeSessionId: aws.String(sessionID),
		Payload:          payload,
		Qualifier:        aws.String(endpointName),
	}
	if userID != "" {
		input.RuntimeUserId = aws.String(userID)
	}

	fmt.Printf("Session: %s\n\n", sessionID)

	out, err := client.InvokeAgentRuntime(ctx, input)
	if err != nil {
		return fmt.Errorf("invocation failed: %w", err)
	}
	defer func() { _ = out.Response.Close() }()

	return printResponse(os.Stdout, aws.ToString(out.ContentType), out.Response)
}

// printResponse renders the runtime response body according to its
// content type: SSE data lines, pretty-printed JSON, or raw bytes.
func printResponse(w io.Writer, contentType string, body io.Reader) error {
	switch {
	case strings.Contains(contentType, "text/event-stream"):
		scanner := bufio.NewScanner(body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if data, ok := strings.CutPrefix(line, "data: "); ok {
				fmt.Fprintln(w, data)
			}
		}
		return scanner.Err()

	case strings.Contains(contentType, "application/json"):
		raw, err := io.ReadAll(body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, raw, "", "  "); err != nil {
			// Not valid JSON after all; print as-is.
			fmt.Fprintln(w, string(raw))
			return nil
		}
		fmt.Fprintln(w, pretty.String())
		return nil

	default:
		raw, err := io.ReadAll(body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		fmt.Fprintln(w, string(raw))
		return nil
	}
}
