// Package server implements the MCP (Model Context Protocol) server for the
// RAW developer.
//
// The server exposes one editing session over JSON-RPC 2.0: open an image,
// adjust its tone, watch previews arrive, and export the result. Adjustments
// are persisted per image in the library when one is configured.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses and notifications on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Session:
//   - raw_open: Open an image and render preview and original
//   - raw_close: Return to the empty placeholder
//   - raw_resume: Reopen the library image left open last time
//
// Adjustments:
//   - raw_adjust: Change exposure, contrast, highlights, shadows, black levels or saturation
//   - raw_commit: Persist the current adjustments
//   - raw_reset: Zero every adjustment
//   - raw_get_params: Current image and adjustments
//
// Output:
//   - raw_preview: Latest preview or original as base64
//   - raw_sample_color: Color at a preview pixel
//   - raw_export: Full render saved as 8- or 16-bit file
//
// Library:
//   - raw_import, raw_library, raw_thumbnail, raw_delete
//
// Suggestions:
//   - raw_suggestion_prompt: Prompt text for a vision model
//   - raw_apply_suggestion: Apply the model's JSON reply
//
// # Previews
//
// Adjustment tools return as soon as the render is queued. The render worker
// coalesces bursts so only the newest adjustment is rendered, and each
// published render is announced with a notification:
//
//	{"jsonrpc":"2.0","method":"notifications/preview_ready",
//	 "params":{"seq":3,"path":"/tmp/rawtone/preview.jpg","original":false,"width":6000,"height":4000}}
//
// Results rendered for an image that has since been closed are dropped.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(server.Options{
//	    Decoder:   rawdecode.NewAuto("dcraw"),
//	    Publisher: publisher,
//	    Library:   library,
//	})
//	defer srv.Close()
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
