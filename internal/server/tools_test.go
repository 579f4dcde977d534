package server

import (
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	if len(tools) == 0 {
		t.Fatal("GetToolDefinitions returned empty slice")
	}

	expectedTools := []string{
		"raw_open",
		"raw_close",
		"raw_resume",
		"raw_adjust",
		"raw_commit",
		"raw_reset",
		"raw_get_params",
		"raw_preview",
		"raw_sample_color",
		"raw_export",
		"raw_import",
		"raw_library",
		"raw_thumbnail",
		"raw_delete",
		"raw_suggestion_prompt",
		"raw_apply_suggestion",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("duplicate tool %s", tool.Name)
		}
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
	if len(tools) != len(expectedTools) {
		t.Errorf("Tool count: got %d, want %d", len(tools), len(expectedTools))
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	tools := GetToolDefinitions()

	for _, tool := range tools {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Name == "" {
				t.Error("Tool name is empty")
			}
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema == nil {
				t.Fatal("Tool InputSchema is nil")
			}

			if schemaType := tool.InputSchema["type"]; schemaType != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", schemaType)
			}

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok || props == nil {
				t.Fatal("InputSchema properties should be a map")
			}

			// Every required field must be declared
			if required, ok := tool.InputSchema["required"].([]string); ok {
				for _, r := range required {
					if _, ok := props[r]; !ok {
						t.Errorf("required field %q not in properties", r)
					}
				}
			}
		})
	}
}

func TestToolDefinitions_Required(t *testing.T) {
	tests := []struct {
		tool     string
		required []string
	}{
		{"raw_open", []string{"path"}},
		{"raw_sample_color", []string{"x", "y"}},
		{"raw_export", []string{"path"}},
		{"raw_import", []string{"paths"}},
		{"raw_thumbnail", []string{"id"}},
		{"raw_delete", []string{"id"}},
		{"raw_suggestion_prompt", []string{"prompt"}},
		{"raw_apply_suggestion", []string{"response"}},
		{"raw_adjust", nil},
		{"raw_preview", nil},
	}

	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			tool, ok := toolMap[tt.tool]
			if !ok {
				t.Fatalf("tool %s not found", tt.tool)
			}
			got, _ := tool.InputSchema["required"].([]string)
			if len(got) != len(tt.required) {
				t.Fatalf("required: got %v, want %v", got, tt.required)
			}
			for i := range got {
				if got[i] != tt.required[i] {
					t.Errorf("required[%d]: got %s, want %s", i, got[i], tt.required[i])
				}
			}
		})
	}
}

func TestToolDefinitions_AdjustFields(t *testing.T) {
	var adjust Tool
	for _, tool := range GetToolDefinitions() {
		if tool.Name == "raw_adjust" {
			adjust = tool
		}
	}

	props, ok := adjust.InputSchema["properties"].(map[string]interface{})
	if !ok {
		t.Fatal("properties should be a map")
	}

	for _, name := range []string{"exposure", "contrast", "highlights", "shadows", "black_levels", "saturation"} {
		prop, ok := props[name].(map[string]interface{})
		if !ok {
			t.Errorf("missing %s", name)
			continue
		}
		if prop["type"] != "number" {
			t.Errorf("%s type: got %v, want number", name, prop["type"])
		}
	}
	if prop, ok := props["commit"].(map[string]interface{}); !ok || prop["type"] != "boolean" {
		t.Errorf("commit should be a boolean, got %v", props["commit"])
	}
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer(t, false)
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
	}

	resp := s.handleToolsList(req)

	if resp == nil {
		t.Fatal("handleToolsList returned nil")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}

	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}

	toolsList, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}

	if expected := GetToolDefinitions(); len(toolsList) != len(expected) {
		t.Errorf("Tool count: got %d, want %d", len(toolsList), len(expected))
	}
}
