package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is the schema shared by every tool's path argument.
func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the sprite sheet image file",
	}
}

// reloadProperty is the schema shared by every tool's reload argument.
func reloadProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "boolean",
		"description": "Read the file again instead of using the cached copy, for sheets edited since they were first loaded",
		"default":     false,
	}
}

// rectSchema describes one {x, y, width, height} rectangle.
func rectSchema() map[string]interface{} {
	coord := func(desc string) map[string]interface{} {
		return map[string]interface{}{
			"type":        "integer",
			"description": desc,
		}
	}
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"x":      coord("Left edge X coordinate (0-based)"),
			"y":      coord("Top edge Y coordinate (0-based)"),
			"width":  coord("Width in pixels"),
			"height": coord("Height in pixels"),
		},
		"required": []string{"x", "y", "width", "height"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load a sprite sheet and return its dimensions, format and whether it has an alpha channel. The image stays cached for subsequent calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"reload": reloadProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"reload": reloadProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Sprite Detection
		{
			Name:        "sprite_find",
			Description: "Find every sprite on a sprite sheet. A sprite is a group of non-transparent pixels connected through edges or corners; each is reported as a bounding rectangle in discovery order (top-to-bottom, left-to-right by first pixel). Boxes include one pixel of padding on the right and bottom unless trim is set. Send a progressToken in _meta to receive progress notifications; the search can be aborted with notifications/cancelled.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"trim": map[string]interface{}{
						"type":        "boolean",
						"description": "Shrink each box to its opaque pixels, removing padding and transparent margins",
						"default":     false,
					},
					"color_key": map[string]interface{}{
						"type":        "string",
						"description": "Background color to treat as transparent, as #RRGGBB, or \"auto\" to use the most common border color. Use for sheets without an alpha channel",
					},
					"tolerance": map[string]interface{}{
						"type":        "number",
						"description": "Maximum CIEDE2000 distance (0-1 scale) from color_key still treated as background",
						"default":     0.0,
					},
					"reload": reloadProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "sprite_trim",
			Description: "Shrink slice rectangles to the opaque pixels they contain. Rectangles past the image edge are clipped; fully transparent rectangles are dropped.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"rects": map[string]interface{}{
						"type":        "array",
						"items":       rectSchema(),
						"description": "Rectangles to trim",
					},
					"color_key": map[string]interface{}{
						"type":        "string",
						"description": "Background color to treat as transparent, as #RRGGBB or \"auto\"",
					},
					"tolerance": map[string]interface{}{
						"type":        "number",
						"description": "Maximum CIEDE2000 distance (0-1 scale) from color_key still treated as background",
						"default":     0.0,
					},
					"reload": reloadProperty(),
				},
				"required": []string{"path", "rects"},
			},
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
