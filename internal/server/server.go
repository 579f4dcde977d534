package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ironsheep/rawtone-mcp/internal/imaging"
	"github.com/ironsheep/rawtone-mcp/internal/logging"
	"github.com/ironsheep/rawtone-mcp/internal/render"
	"github.com/ironsheep/rawtone-mcp/internal/store"
)

// Name and version reported during initialize.
const (
	ServerName    = "rawtone-mcp"
	ServerVersion = "0.1.0"
)

// PreviewReadyMethod is the notification sent after each published render.
const PreviewReadyMethod = "notifications/preview_ready"

// Server handles MCP protocol communication
type Server struct {
	cache        *imaging.BufferCache
	worker       *render.Worker
	library      *store.Store
	mimeType     string
	thumbnailDir string
	session      *session

	outMu sync.Mutex
	enc   *json.Encoder
}

// Options wires the server's collaborators.
type Options struct {
	// Decoder turns source files into linear buffers.
	Decoder imaging.Decoder

	// Publisher writes preview artifacts. It must be set.
	Publisher render.Publisher

	// MimeType describes the published artifacts. Defaults to image/png.
	MimeType string

	// Library persists parameters. When nil the library tools fail with
	// ErrNoLibrary and adjustments live only for the session.
	Library *store.Store

	// ThumbnailDir receives library thumbnails named <id>.jpg.
	ThumbnailDir string

	// RenderOptions are passed to the render worker.
	RenderOptions []render.Option
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// MCPNotification represents an outgoing notification (no ID)
type MCPNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// New creates a server and starts its render worker. Call Close when done.
func New(opts Options) *Server {
	mime := opts.MimeType
	if mime == "" {
		mime = "image/png"
	}
	return &Server{
		cache:        imaging.NewBufferCache(opts.Decoder),
		worker:       render.NewWorker(opts.Publisher, opts.RenderOptions...),
		library:      opts.Library,
		mimeType:     mime,
		thumbnailDir: opts.ThumbnailDir,
		session:      newSession(),
	}
}

// Close stops the render worker after any stored request has been published.
func (s *Server) Close() {
	s.worker.Close()
}

// Run serves MCP on stdin and stdout.
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve reads line-delimited requests from r and writes responses and
// notifications to w until r is exhausted.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	s.outMu.Lock()
	s.enc = json.NewEncoder(w)
	s.outMu.Unlock()

	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	ctx := context.Background()
	log := logging.Logger()

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			log.Warn("failed to parse request", "error", err)
			continue
		}

		if resp := s.handleRequest(ctx, &req); resp != nil {
			s.write(resp)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// write serialises v onto the output stream. Responses and worker
// notifications share the stream, so every write holds outMu.
func (s *Server) write(v interface{}) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	if s.enc == nil {
		return
	}
	if err := s.enc.Encode(v); err != nil {
		logging.Logger().Warn("failed to encode message", "error", err)
	}
}

func (s *Server) notify(method string, params interface{}) {
	s.write(&MCPNotification{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
	})
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized", "notifications/cancelled":
		// Client notifications, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    ServerName,
				"version": ServerVersion,
			},
		},
	}
}
