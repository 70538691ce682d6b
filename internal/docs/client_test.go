package docs

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCaller struct {
	result *mcp.CallToolResult
	err    error
	calls  []mcp.CallToolRequest
}

func (f *fakeCaller) CallTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	f.calls = append(f.calls, request)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func textResult(texts ...string) *mcp.CallToolResult {
	result := &mcp.CallToolResult{}
	for _, t := range texts {
		result.Content = append(result.Content, mcp.TextContent{Type: "text", Text: t})
	}
	return result
}

func TestSearch(t *testing.T) {
	caller := &fakeCaller{result: textResult("1. Amazon VPC subnets", "2. CIDR blocks")}
	c := NewClient(caller, nil)

	got, err := c.Search(context.Background(), "vpc subnets", 5)
	require.NoError(t, err)
	assert.Equal(t, "1. Amazon VPC subnets\n2. CIDR blocks", got)

	require.Len(t, caller.calls, 1)
	call := caller.calls[0]
	assert.Equal(t, "search_documentation", call.Params.Name)
	args, ok := call.Params.Arguments.(map[string]any)
	require.True(t, ok, "expected map arguments, got %T", call.Params.Arguments)
	assert.Equal(t, "vpc subnets", args["search_phrase"])
	assert.Equal(t, 5, args["limit"])
}

func TestSearchOmitsZeroLimit(t *testing.T) {
	caller := &fakeCaller{result: textResult("ok")}
	c := NewClient(caller, nil)

	_, err := c.Search(context.Background(), "q", 0)
	require.NoError(t, err)

	args := caller.calls[0].Params.Arguments.(map[string]any)
	assert.NotContains(t, args, "limit")
}

func TestRead(t *testing.T) {
	caller := &fakeCaller{result: textResult("# Subnets\n\nA subnet is ...")}
	c := NewClient(caller, nil)

	got, err := c.Read(context.Background(), "https://docs.aws.amazon.com/vpc/latest/userguide/configure-subnets.html")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "# Subnets"), "unexpected page content %q", got)

	call := caller.calls[0]
	assert.Equal(t, "read_documentation", call.Params.Name)
	args := call.Params.Arguments.(map[string]any)
	assert.Equal(t, "https://docs.aws.amazon.com/vpc/latest/userguide/configure-subnets.html", args["url"])
}

func TestCallTransportError(t *testing.T) {
	caller := &fakeCaller{err: errors.New("connection reset")}
	c := NewClient(caller, nil)

	_, err := c.Search(context.Background(), "q", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search_documentation")
}

func TestCallToolError(t *testing.T) {
	result := textResult("no such page")
	result.IsError = true
	caller := &fakeCaller{result: result}
	c := NewClient(caller, nil)

	_, err := c.Read(context.Background(), "https://example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such page")
}

func TestCloseWithoutTransport(t *testing.T) {
	c := NewClient(&fakeCaller{}, nil)
	assert.NoError(t, c.Close())
}
