package agent

import (
	"encoding/json"
	"testing"
)

func TestDecodeArgs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  map[string]any
	}{
		{
			name:  "object",
			input: `{"session_id":"s1","limit":3}`,
			want:  map[string]any{"session_id": "s1", "limit": float64(3)},
		},
		{
			name:  "empty input",
			input: "",
			want:  map[string]any{},
		},
		{
			name:  "null",
			input: "null",
			want:  map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeArgs(json.RawMessage(tt.input))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d args, got %d", len(tt.want), len(got))
			}
			for key, want := range tt.want {
				if got[key] != want {
					t.Errorf("arg %q: expected %v, got %v", key, want, got[key])
				}
			}
		})
	}
}

func TestDecodeArgsInvalid(t *testing.T) {
	if _, err := decodeArgs(json.RawMessage(`[1,2]`)); err == nil {
		t.Fatal("expected error for non-object input")
	}
}

func TestToolUnionParams(t *testing.T) {
	tools := []Tool{
		{
			Name:        "save_session",
			Description: "save",
			Schema: map[string]any{
				"session_id": map[string]any{"type": "string"},
			},
			Required: []string{"session_id"},
		},
	}

	params := toolUnionParams(tools)
	if len(params) != 1 {
		t.Fatalf("expected 1 param, got %d", len(params))
	}
	param := params[0].OfTool
	if param == nil {
		t.Fatal("expected OfTool to be set")
	}
	if param.Name != "save_session" {
		t.Errorf("expected name save_session, got %q", param.Name)
	}
	if len(param.InputSchema.Required) != 1 || param.InputSchema.Required[0] != "session_id" {
		t.Errorf("unexpected required list %v", param.InputSchema.Required)
	}
	if _, ok := param.InputSchema.Properties.(map[string]any)["session_id"]; !ok {
		t.Error("expected session_id property in schema")
	}
}
