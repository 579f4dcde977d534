package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func numberProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": description,
	}
}

func integerProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
	}
}

func stringProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func booleanProp(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "boolean",
		"description": description,
	}
}

func objectSchema(props map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Session
		{
			Name:        "raw_open",
			Description: "Open a RAW or standard image for editing. Loads stored adjustments from the library and renders a preview and an unadjusted original; a notifications/preview_ready message follows for each.",
			InputSchema: objectSchema(map[string]interface{}{
				"path": stringProp("Absolute path to the image file"),
			}, "path"),
		},
		{
			Name:        "raw_close",
			Description: "Close the current image. The preview falls back to an empty black placeholder.",
			InputSchema: objectSchema(map[string]interface{}{}),
		},

		// Adjustments
		{
			Name:        "raw_resume",
			Description: "Reopen the library image that was open when the previous session ended.",
			InputSchema: objectSchema(map[string]interface{}{}),
		},
		{
			Name:        "raw_adjust",
			Description: "Change one or more adjustments of the open image and queue a new preview. Omitted fields keep their value. Rapid calls are coalesced; only the newest adjustment is rendered.",
			InputSchema: objectSchema(map[string]interface{}{
				"exposure":     numberProp("Exposure in stops, -5 to 5"),
				"contrast":     numberProp("Contrast, -100 to 100"),
				"highlights":   numberProp("Highlight recovery, 0 to 100"),
				"shadows":      numberProp("Shadow lift, 0 to 100"),
				"black_levels": numberProp("Black level offset, -100 to 100"),
				"saturation":   numberProp("Saturation, -100 to 100"),
				"commit":       booleanProp("Persist the adjustments to the library (like releasing a slider). Default false"),
			}),
		},
		{
			Name:        "raw_commit",
			Description: "Persist the current adjustments of the open image to the library.",
			InputSchema: objectSchema(map[string]interface{}{}),
		},
		{
			Name:        "raw_reset",
			Description: "Reset every adjustment to zero, queue a new preview and persist the neutral parameters.",
			InputSchema: objectSchema(map[string]interface{}{}),
		},
		{
			Name:        "raw_get_params",
			Description: "Get the open image and its current adjustments.",
			InputSchema: objectSchema(map[string]interface{}{}),
		},

		// Output
		{
			Name:        "raw_preview",
			Description: "Return the most recently published preview as base64-encoded image data.",
			InputSchema: objectSchema(map[string]interface{}{
				"original": booleanProp("Return the unadjusted original instead of the edited preview. Default false"),
			}),
		},
		{
			Name:        "raw_sample_color",
			Description: "Get the displayed color and the linear values at a pixel of the latest preview.",
			InputSchema: objectSchema(map[string]interface{}{
				"x":        integerProp("X coordinate (0-based, from left)"),
				"y":        integerProp("Y coordinate (0-based, from top)"),
				"original": booleanProp("Sample the unadjusted original. Default false"),
			}, "x", "y"),
		},
		{
			Name:        "raw_export",
			Description: "Render at full quality and save to a file. The format follows the extension (jpg, png, tif, bmp, gif). 16-bit output is only written for PNG and TIFF.",
			InputSchema: objectSchema(map[string]interface{}{
				"path":      stringProp("Absolute output path"),
				"bit_depth": integerProp("8 or 16. Default 8"),
				"id":        integerProp("Library image to export instead of the open image"),
			}, "path"),
		},

		// Library
		{
			Name:        "raw_import",
			Description: "Add image files to the library and generate their thumbnails. Paths already in the library and files that are not supported images are skipped.",
			InputSchema: objectSchema(map[string]interface{}{
				"paths": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Absolute paths of the images to import",
				},
			}, "paths"),
		},
		{
			Name:        "raw_library",
			Description: "List every library image with its stored adjustments.",
			InputSchema: objectSchema(map[string]interface{}{}),
		},
		{
			Name:        "raw_thumbnail",
			Description: "Return the JPEG thumbnail of a library image as base64.",
			InputSchema: objectSchema(map[string]interface{}{
				"id": integerProp("Library image id"),
			}, "id"),
		},
		{
			Name:        "raw_delete",
			Description: "Remove an image and its thumbnail from the library. The source file is not touched.",
			InputSchema: objectSchema(map[string]interface{}{
				"id": integerProp("Library image id"),
			}, "id"),
		},

		// Suggestions
		{
			Name:        "raw_suggestion_prompt",
			Description: "Build the prompt to send to a vision model together with the current preview, asking for adjustments that achieve the described look.",
			InputSchema: objectSchema(map[string]interface{}{
				"prompt": stringProp("The desired result, e.g. \"a brighter, punchier sky\""),
			}, "prompt"),
		},
		{
			Name:        "raw_apply_suggestion",
			Description: "Parse a vision model's JSON reply and apply its adjustments to the open image.",
			InputSchema: objectSchema(map[string]interface{}{
				"response": stringProp("The model's reply, optionally wrapped in a ```json fence"),
				"commit":   booleanProp("Persist the applied adjustments. Default false"),
			}, "response"),
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
