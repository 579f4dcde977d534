package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ironsheep/rawtone-mcp/internal/imaging"
	"github.com/ironsheep/rawtone-mcp/internal/logging"
	"github.com/ironsheep/rawtone-mcp/internal/rawdecode"
	"github.com/ironsheep/rawtone-mcp/internal/render"
	"github.com/ironsheep/rawtone-mcp/internal/store"
	"github.com/ironsheep/rawtone-mcp/internal/suggest"
)

// Errors returned by tool handlers.
var (
	ErrNoImage   = errors.New("no image is open")
	ErrNoLibrary = errors.New("image library is not configured")
	ErrNoPreview = errors.New("no preview has been rendered yet")
	ErrNoResume  = errors.New("no previously opened image to resume")
)

// LastOpenedKey is the library config key holding the id of the image that
// was open when the previous session ended.
const LastOpenedKey = "last_opened"

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "raw_open", "raw_adjust").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		logging.Logger().Debug("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Handlers that change the adjustments only queue a render and return; the
// result arrives later as a preview_ready notification.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Session
	case "raw_open":
		return s.handleRawOpen(ctx, args)
	case "raw_close":
		return s.handleRawClose(ctx, args)
	case "raw_resume":
		return s.handleRawResume(ctx, args)

	// Adjustments
	case "raw_adjust":
		return s.handleRawAdjust(ctx, args)
	case "raw_commit":
		return s.handleRawCommit(ctx, args)
	case "raw_reset":
		return s.handleRawReset(ctx, args)
	case "raw_get_params":
		return s.handleRawGetParams(ctx, args)

	// Output
	case "raw_preview":
		return s.handleRawPreview(ctx, args)
	case "raw_sample_color":
		return s.handleRawSampleColor(ctx, args)
	case "raw_export":
		return s.handleRawExport(ctx, args)

	// Library
	case "raw_import":
		return s.handleRawImport(ctx, args)
	case "raw_library":
		return s.handleRawLibrary(ctx, args)
	case "raw_thumbnail":
		return s.handleRawThumbnail(ctx, args)
	case "raw_delete":
		return s.handleRawDelete(ctx, args)

	// Suggestions
	case "raw_suggestion_prompt":
		return s.handleRawSuggestionPrompt(ctx, args)
	case "raw_apply_suggestion":
		return s.handleRawApplySuggestion(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Rendering ===

// previewReady is the payload of a preview_ready notification.
type previewReady struct {
	Seq      uint64 `json:"seq"`
	Path     string `json:"path"`
	Original bool   `json:"original"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

// requestRender queues snap for rendering. Results for a source that has
// since been replaced are dropped by the sink.
func (s *Server) requestRender(snap snapshot, wantOriginal bool) error {
	gen := snap.gen
	return s.worker.Request(render.Request{
		Source:       snap.source,
		Params:       snap.params,
		WantOriginal: wantOriginal,
		Sink: func(r render.Result) {
			s.onResult(gen, r)
		},
	})
}

// onResult runs on the worker goroutine.
func (s *Server) onResult(gen uint64, r render.Result) {
	if !s.session.store(gen, r) {
		logging.Logger().Debug("result for a closed image dropped", "seq", r.Seq)
		return
	}
	s.notify(PreviewReadyMethod, previewReady{
		Seq:      r.Seq,
		Path:     r.Path,
		Original: r.IsOriginal,
		Width:    r.Image.Width,
		Height:   r.Image.Height,
	})
}

// commit persists the adjustments of snap.
func (s *Server) commit(ctx context.Context, snap snapshot) error {
	if !snap.hasImage() {
		return ErrNoImage
	}
	if s.library == nil {
		return ErrNoLibrary
	}
	if err := s.library.SaveParams(ctx, snap.id, snap.params); err != nil {
		return fmt.Errorf("failed to save parameters: %w", err)
	}
	return nil
}

// canCommit reports whether snap can be persisted.
func (s *Server) canCommit(snap snapshot) bool {
	return snap.hasImage() && s.library != nil && snap.id != 0
}

func (s *Server) thumbnailPath(id int64) string {
	return filepath.Join(s.thumbnailDir, fmt.Sprintf("%d.jpg", id))
}

// ensureThumbnail writes the thumbnail for id unless it already exists.
func (s *Server) ensureThumbnail(ctx context.Context, id int64, path string) (string, error) {
	if s.thumbnailDir == "" {
		return "", errors.New("thumbnail directory is not configured")
	}
	thumb := s.thumbnailPath(id)
	if _, err := os.Stat(thumb); err == nil {
		return thumb, nil
	}
	buf, err := s.cache.Load(ctx, path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.thumbnailDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create thumbnail directory: %w", err)
	}
	if err := imaging.SaveThumbnail(buf, thumb, imaging.ThumbnailEdge); err != nil {
		return "", err
	}
	return thumb, nil
}

// === Session Handlers ===

type pathArgs struct {
	Path string `json:"path"`
}

type openResult struct {
	ID     int64             `json:"id,omitempty"`
	Path   string            `json:"path"`
	Params imaging.Parameter `json:"params"`
	*imaging.SourceInfo
}

func (s *Server) handleRawOpen(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	path, err := filepath.Abs(a.Path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	return s.openImage(ctx, path)
}

// openImage decodes path, loads its stored adjustments and makes it the
// session image. Library images are remembered for raw_resume.
func (s *Server) openImage(ctx context.Context, path string) (*openResult, error) {
	info, err := imaging.LoadSourceInfo(ctx, s.cache, path)
	if err != nil {
		return nil, err
	}
	buf, err := s.cache.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	var (
		id     int64
		params imaging.Parameter
	)
	if s.library != nil {
		if id, err = s.library.Lookup(ctx, path); err != nil {
			return nil, err
		}
		if params, err = s.library.Params(ctx, id); err != nil {
			return nil, err
		}
		if _, err := s.ensureThumbnail(ctx, id, path); err != nil {
			logging.Logger().Warn("thumbnail not written", "path", path, "error", err)
		}
	}

	snap := s.session.open(id, path, buf, params)
	if err := s.requestRender(snap, true); err != nil {
		return nil, err
	}
	if id != 0 {
		s.setLastOpened(ctx, strconv.FormatInt(id, 10))
	}
	logging.Logger().Info("image opened", "path", path, "id", id,
		"width", info.Width, "height", info.Height)

	return &openResult{ID: id, Path: path, Params: params, SourceInfo: info}, nil
}

// setLastOpened records value under LastOpenedKey; "" forgets it.
// Failures only cost the resume, so they are logged.
func (s *Server) setLastOpened(ctx context.Context, value string) {
	if s.library == nil {
		return
	}
	if err := s.library.SetConfig(ctx, LastOpenedKey, value); err != nil {
		logging.Logger().Warn("last opened image not recorded", "error", err)
	}
}

// lastOpened returns the remembered library id, or ErrNoResume.
func (s *Server) lastOpened(ctx context.Context) (int64, error) {
	value, err := s.library.Config(ctx, LastOpenedKey)
	if errors.Is(err, store.ErrNotFound) || (err == nil && value == "") {
		return 0, ErrNoResume
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad %s value %q", ErrNoResume, LastOpenedKey, value)
	}
	return id, nil
}

func (s *Server) handleRawResume(ctx context.Context, args json.RawMessage) (interface{}, error) {
	if s.library == nil {
		return nil, ErrNoLibrary
	}
	id, err := s.lastOpened(ctx)
	if err != nil {
		return nil, err
	}
	img, err := s.library.Image(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		s.setLastOpened(ctx, "")
		return nil, ErrNoResume
	}
	if err != nil {
		return nil, err
	}
	return s.openImage(ctx, img.Path)
}

func (s *Server) handleRawClose(ctx context.Context, args json.RawMessage) (interface{}, error) {
	snap := s.session.close()
	if err := s.requestRender(snap, false); err != nil {
		return nil, err
	}
	s.setLastOpened(ctx, "")
	return map[string]interface{}{"status": "closed"}, nil
}

// === Adjustment Handlers ===

type rawAdjustArgs struct {
	Exposure    *float32 `json:"exposure"`
	Contrast    *float32 `json:"contrast"`
	Highlights  *float32 `json:"highlights"`
	Shadows     *float32 `json:"shadows"`
	BlackLevels *float32 `json:"black_levels"`
	Saturation  *float32 `json:"saturation"`
	Commit      bool     `json:"commit"`
}

func (a rawAdjustArgs) apply(p *imaging.Parameter) {
	set := func(dst *float32, v *float32) {
		if v != nil {
			*dst = *v
		}
	}
	set(&p.Exposure, a.Exposure)
	set(&p.Contrast, a.Contrast)
	set(&p.Highlights, a.Highlights)
	set(&p.Shadows, a.Shadows)
	set(&p.BlackLevels, a.BlackLevels)
	set(&p.Saturation, a.Saturation)
}

type paramsResult struct {
	ID        int64             `json:"id,omitempty"`
	Path      string            `json:"path,omitempty"`
	Params    imaging.Parameter `json:"params"`
	Committed bool              `json:"committed"`
	State     string            `json:"render_state"`
}

func (s *Server) paramsResult(snap snapshot, committed bool) *paramsResult {
	return &paramsResult{
		ID:        snap.id,
		Path:      snap.path,
		Params:    snap.params,
		Committed: committed,
		State:     s.worker.State().String(),
	}
}

func (s *Server) handleRawAdjust(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a rawAdjustArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	snap := s.session.update(a.apply)
	if err := s.requestRender(snap, false); err != nil {
		return nil, err
	}

	committed := false
	if a.Commit && s.canCommit(snap) {
		if err := s.commit(ctx, snap); err != nil {
			return nil, err
		}
		committed = true
	}
	return s.paramsResult(snap, committed), nil
}

func (s *Server) handleRawCommit(ctx context.Context, args json.RawMessage) (interface{}, error) {
	snap := s.session.snapshot()
	if err := s.commit(ctx, snap); err != nil {
		return nil, err
	}
	return s.paramsResult(snap, true), nil
}

func (s *Server) handleRawReset(ctx context.Context, args json.RawMessage) (interface{}, error) {
	snap := s.session.update(func(p *imaging.Parameter) { p.Reset() })
	if err := s.requestRender(snap, false); err != nil {
		return nil, err
	}

	committed := false
	if s.canCommit(snap) {
		if err := s.commit(ctx, snap); err != nil {
			return nil, err
		}
		committed = true
	}
	return s.paramsResult(snap, committed), nil
}

func (s *Server) handleRawGetParams(ctx context.Context, args json.RawMessage) (interface{}, error) {
	return s.paramsResult(s.session.snapshot(), false), nil
}

// === Output Handlers ===

type previewArgs struct {
	Original bool `json:"original"`
}

type previewResult struct {
	Seq      uint64 `json:"seq"`
	Path     string `json:"path"`
	Original bool   `json:"original"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

func (s *Server) handleRawPreview(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a previewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	r := s.session.latest(a.Original)
	if r == nil {
		return nil, ErrNoPreview
	}
	return &previewResult{
		Seq:      r.Seq,
		Path:     r.Path,
		Original: r.IsOriginal,
		Width:    r.Image.Width,
		Height:   r.Image.Height,
		MimeType: s.mimeType,
		Data:     base64.StdEncoding.EncodeToString(r.Encoded),
	}, nil
}

type sampleColorArgs struct {
	X        int  `json:"x"`
	Y        int  `json:"y"`
	Original bool `json:"original"`
}

type sampleColorResult struct {
	X   int    `json:"x"`
	Y   int    `json:"y"`
	Seq uint64 `json:"seq"`
	*imaging.ColorResult
}

func (s *Server) handleRawSampleColor(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a sampleColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	r := s.session.latest(a.Original)
	if r == nil {
		return nil, ErrNoPreview
	}
	c, err := imaging.SampleColor(r.Image, a.X, a.Y)
	if err != nil {
		return nil, err
	}
	return &sampleColorResult{X: a.X, Y: a.Y, Seq: r.Seq, ColorResult: c}, nil
}

type rawExportArgs struct {
	Path     string `json:"path"`
	BitDepth int    `json:"bit_depth"`
	ID       int64  `json:"id"`
}

type exportResult struct {
	Path     string            `json:"path"`
	Source   string            `json:"source"`
	Width    int               `json:"width"`
	Height   int               `json:"height"`
	BitDepth int               `json:"bit_depth"`
	Params   imaging.Parameter `json:"params"`
}

func (s *Server) handleRawExport(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a rawExportArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	if a.BitDepth == 0 {
		a.BitDepth = imaging.BitDepth8
	}
	if a.BitDepth != imaging.BitDepth8 && a.BitDepth != imaging.BitDepth16 {
		return nil, fmt.Errorf("bit_depth must be 8 or 16, got %d", a.BitDepth)
	}
	if _, err := imaging.FormatFromPath(a.Path); err != nil {
		return nil, err
	}

	var (
		source string
		src    *imaging.ColorBuffer
		params imaging.Parameter
	)
	if a.ID != 0 {
		if s.library == nil {
			return nil, ErrNoLibrary
		}
		img, err := s.library.Image(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		if src, err = s.cache.Load(ctx, img.Path); err != nil {
			return nil, err
		}
		source, params = img.Path, img.Params
	} else {
		snap := s.session.snapshot()
		if !snap.hasImage() {
			return nil, ErrNoImage
		}
		source, src, params = snap.path, snap.source, snap.params
	}

	out, err := imaging.Render(src, params)
	if err != nil {
		return nil, err
	}
	if err := imaging.Save(out, a.Path, a.BitDepth); err != nil {
		return nil, err
	}
	logging.Logger().Info("image exported", "source", source, "path", a.Path)

	return &exportResult{
		Path:     a.Path,
		Source:   source,
		Width:    out.Width,
		Height:   out.Height,
		BitDepth: imaging.EffectiveBitDepth(a.Path, a.BitDepth),
		Params:   params,
	}, nil
}

// === Library Handlers ===

type rawImportArgs struct {
	Paths []string `json:"paths"`
}

type importResult struct {
	Imported    []store.Image     `json:"imported"`
	Skipped     int               `json:"skipped"`
	Unsupported []string          `json:"unsupported,omitempty"`
	Failed      map[string]string `json:"thumbnail_errors,omitempty"`
}

func (s *Server) handleRawImport(ctx context.Context, args json.RawMessage) (interface{}, error) {
	if s.library == nil {
		return nil, ErrNoLibrary
	}
	var a rawImportArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Paths) == 0 {
		return nil, errors.New("paths must not be empty")
	}

	var unsupported []string
	paths := make([]string, 0, len(a.Paths))
	for _, p := range a.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("invalid path %q: %w", p, err)
		}
		if !rawdecode.IsSupported(abs) {
			unsupported = append(unsupported, abs)
			continue
		}
		paths = append(paths, abs)
	}

	var imported []store.Image
	if len(paths) > 0 {
		var err error
		if imported, err = s.library.Import(ctx, paths); err != nil {
			return nil, err
		}
	}

	res := &importResult{
		Imported:    imported,
		Skipped:     len(a.Paths) - len(imported),
		Unsupported: unsupported,
	}
	if res.Imported == nil {
		res.Imported = []store.Image{}
	}
	for _, img := range imported {
		if _, err := s.ensureThumbnail(ctx, img.ID, img.Path); err != nil {
			if res.Failed == nil {
				res.Failed = make(map[string]string)
			}
			res.Failed[img.Path] = err.Error()
		}
	}
	return res, nil
}

func (s *Server) handleRawLibrary(ctx context.Context, args json.RawMessage) (interface{}, error) {
	if s.library == nil {
		return nil, ErrNoLibrary
	}
	images, err := s.library.Images(ctx)
	if err != nil {
		return nil, err
	}
	if images == nil {
		images = []store.Image{}
	}
	return map[string]interface{}{
		"images": images,
		"count":  len(images),
	}, nil
}

type idArgs struct {
	ID int64 `json:"id"`
}

type thumbnailResult struct {
	ID       int64  `json:"id"`
	Path     string `json:"path"`
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

func (s *Server) handleRawThumbnail(ctx context.Context, args json.RawMessage) (interface{}, error) {
	if s.library == nil {
		return nil, ErrNoLibrary
	}
	var a idArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.library.Image(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	thumb, err := s.ensureThumbnail(ctx, img.ID, img.Path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(thumb)
	if err != nil {
		return nil, fmt.Errorf("failed to read thumbnail: %w", err)
	}
	return &thumbnailResult{
		ID:       img.ID,
		Path:     thumb,
		MimeType: "image/jpeg",
		Data:     base64.StdEncoding.EncodeToString(data),
	}, nil
}

func (s *Server) handleRawDelete(ctx context.Context, args json.RawMessage) (interface{}, error) {
	if s.library == nil {
		return nil, ErrNoLibrary
	}
	var a idArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.library.Image(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	if err := s.library.Delete(ctx, a.ID); err != nil {
		return nil, err
	}
	if s.thumbnailDir != "" {
		if err := os.Remove(s.thumbnailPath(a.ID)); err != nil && !errors.Is(err, os.ErrNotExist) {
			logging.Logger().Warn("thumbnail not removed", "id", a.ID, "error", err)
		}
	}
	s.cache.Evict(img.Path)

	if id, err := s.lastOpened(ctx); err == nil && id == a.ID {
		s.setLastOpened(ctx, "")
	}
	if s.session.snapshot().id == a.ID {
		if err := s.requestRender(s.session.close(), false); err != nil {
			return nil, err
		}
	}
	return map[string]interface{}{"deleted": a.ID, "path": img.Path}, nil
}

// === Suggestion Handlers ===

type suggestionPromptArgs struct {
	Prompt string `json:"prompt"`
}

type suggestionPromptResult struct {
	Prompt      string `json:"prompt"`
	PreviewPath string `json:"preview_path,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`
}

func (s *Server) handleRawSuggestionPrompt(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a suggestionPromptArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Prompt == "" {
		return nil, errors.New("prompt is required")
	}
	snap := s.session.snapshot()
	if !snap.hasImage() {
		return nil, ErrNoImage
	}

	res := &suggestionPromptResult{Prompt: suggest.BuildPrompt(a.Prompt, snap.params)}
	if r := s.session.latest(false); r != nil {
		res.PreviewPath = r.Path
		res.MimeType = s.mimeType
	}
	return res, nil
}

type applySuggestionArgs struct {
	Response string `json:"response"`
	Commit   bool   `json:"commit"`
}

type applySuggestionResult struct {
	Feedback string `json:"feedback"`
	paramsResult
}

func (s *Server) handleRawApplySuggestion(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a applySuggestionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	sug, err := suggest.Parse(a.Response)
	if err != nil {
		return nil, err
	}
	if !s.session.snapshot().hasImage() {
		return nil, ErrNoImage
	}

	snap := s.session.update(func(p *imaging.Parameter) { *p = sug.Params })
	if err := s.requestRender(snap, false); err != nil {
		return nil, err
	}

	committed := false
	if a.Commit && s.canCommit(snap) {
		if err := s.commit(ctx, snap); err != nil {
			return nil, err
		}
		committed = true
	}
	return &applySuggestionResult{Feedback: sug.Feedback, paramsResult: *s.paramsResult(snap, committed)}, nil
}
