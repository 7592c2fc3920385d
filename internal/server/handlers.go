package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/sprite-tools-mcp/internal/detection"
	"github.com/ironsheep/sprite-tools-mcp/internal/imaging"
)

var (
	// errSearchRunning is returned when sprite_find is called while another
	// search is still in progress.
	errSearchRunning = errors.New("sprite search already running")

	// errSearchAborted is returned when a sprite search is cancelled.
	errSearchAborted = errors.New("sprite search aborted")
)

// progressStep is the minimum ratio increase between two progress
// notifications for the same request.
const progressStep = 0.01

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "sprite_find").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`

	// Meta carries optional request metadata such as a progress token.
	Meta *RequestMeta `json:"_meta,omitempty"`
}

// RequestMeta is the MCP "_meta" object of a request.
type RequestMeta struct {
	// ProgressToken, when set, asks the server to send
	// notifications/progress messages tagged with this token.
	ProgressToken interface{} `json:"progressToken,omitempty"`
}

// toolCall is one tools/call invocation as seen by a handler.
type toolCall struct {
	id            interface{}
	progressToken interface{}
	args          json.RawMessage
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
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	call := &toolCall{id: req.ID, args: params.Arguments}
	if params.Meta != nil {
		call.progressToken = params.Meta.ProgressToken
	}

	result, err := s.executeTool(params.Name, call)
	if err != nil {
		s.debugf("Tool %s failed: %v", params.Name, err)
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
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Loads images from cache as needed
//  3. Calls the appropriate imaging/detection function
//  4. Returns the result or error
func (s *Server) executeTool(name string, call *toolCall) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(call.args)
	case "image_dimensions":
		return s.handleImageDimensions(call.args)

	// Sprite Detection
	case "sprite_find":
		return s.handleSpriteFind(call)
	case "sprite_trim":
		return s.handleSpriteTrim(call.args)

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
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path   string `json:"path"`
	Reload bool   `json:"reload"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	s.refresh(a.Path, a.Reload)
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	s.refresh(a.Path, a.Reload)
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Sprite Detection Handlers ===

type spriteFindArgs struct {
	Path      string  `json:"path"`
	Trim      bool    `json:"trim"`
	ColorKey  string  `json:"color_key"`
	Tolerance float64 `json:"tolerance"`
	Reload    bool    `json:"reload"`
}

// SpriteFindResult is the sprite_find tool result.
type SpriteFindResult struct {
	// Count is the number of sprites found.
	Count int `json:"count"`

	// Sprites lists the boxes in discovery order.
	Sprites []detection.Box `json:"sprites"`

	// Trimmed reports whether the boxes were shrunk to their opaque pixels.
	// Untrimmed boxes carry one pixel of padding on the right and bottom.
	Trimmed bool `json:"trimmed"`
}

// handleSpriteFind runs a sprite search as a cancellable job.
//
// The job is registered under the request ID for the duration of the call so
// that notifications/cancelled can reach it.
func (s *Server) handleSpriteFind(call *toolCall) (interface{}, error) {
	var a spriteFindArgs
	if err := json.Unmarshal(call.args, &a); err != nil {
		return nil, err
	}

	if !s.findMu.TryLock() {
		return nil, errSearchRunning
	}
	defer s.findMu.Unlock()

	s.refresh(a.Path, a.Reload)
	img, err := s.loadSheet(a.Path, a.ColorKey, a.Tolerance)
	if err != nil {
		return nil, err
	}

	job, err := detection.FindAsync(context.Background(), img)
	if err != nil {
		return nil, fmt.Errorf("failed to start sprite search: %w", err)
	}
	key := requestKey(call.id)
	s.trackJob(key, job)
	defer s.untrackJob(key)
	s.debugf("Sprite search %s started on %s", key, a.Path)

	last := 0.0
	for ev := range job.Events() {
		if ev.Kind != detection.EventProgress || call.progressToken == nil {
			continue
		}
		if ev.Ratio-last < progressStep {
			continue
		}
		last = ev.Ratio
		s.notify("notifications/progress", map[string]interface{}{
			"progressToken": call.progressToken,
			"progress":      ev.Ratio,
			"total":         1,
		})
	}

	res := job.Wait()
	if res.Status == detection.StatusAborted {
		s.debugf("Sprite search %s aborted", key)
		return nil, errSearchAborted
	}
	s.debugf("Sprite search %s found %d sprites", key, len(res.Bounds))

	sprites := res.Bounds
	if a.Trim {
		sprites = trimBoxes(img, sprites)
	}
	return &SpriteFindResult{
		Count:   len(sprites),
		Sprites: sprites,
		Trimmed: a.Trim,
	}, nil
}

type spriteTrimArgs struct {
	Path      string          `json:"path"`
	Rects     []detection.Box `json:"rects"`
	ColorKey  string          `json:"color_key"`
	Tolerance float64         `json:"tolerance"`
	Reload    bool            `json:"reload"`
}

// SpriteTrimResult is the sprite_trim tool result.
type SpriteTrimResult struct {
	// Count is the number of non-empty rectangles.
	Count int `json:"count"`

	// Rects holds the trimmed rectangles in input order.
	Rects []detection.Box `json:"rects"`
}

func (s *Server) handleSpriteTrim(args json.RawMessage) (interface{}, error) {
	var a spriteTrimArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	s.refresh(a.Path, a.Reload)
	img, err := s.loadSheet(a.Path, a.ColorKey, a.Tolerance)
	if err != nil {
		return nil, err
	}

	rects := trimBoxes(img, a.Rects)
	return &SpriteTrimResult{
		Count: len(rects),
		Rects: rects,
	}, nil
}

// refresh drops path from the cache when reload is set, so the next load
// reads the file again.
func (s *Server) refresh(path string, reload bool) {
	if reload {
		s.cache.Evict(path)
	}
}

// loadSheet loads path from the cache and applies the color key, if any.
func (s *Server) loadSheet(path, colorKey string, tolerance float64) (image.Image, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	if colorKey == "" {
		return img, nil
	}
	keyed, err := imaging.ApplyColorKey(img, colorKey, tolerance)
	if err != nil {
		return nil, err
	}
	return keyed, nil
}

// trimBoxes shrinks boxes to their opaque pixels, dropping empty ones.
func trimBoxes(img image.Image, boxes []detection.Box) []detection.Box {
	rects := make([]image.Rectangle, len(boxes))
	for i, b := range boxes {
		rects[i] = b.Rect()
	}
	trimmed := imaging.TrimAll(img, rects)
	out := make([]detection.Box, len(trimmed))
	for i, r := range trimmed {
		out[i] = detection.BoxFromRect(r)
	}
	return out
}
