// Package server implements the MCP (Model Context Protocol) server for sprite
// sheet slicing tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the sprite
// detection engine through the MCP protocol, so that MCP-compatible clients
// can slice sprite sheets without a sprite editor.
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
//   - notifications/cancelled: Abort a running sprite search
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load a sprite sheet and get metadata
//   - image_dimensions: Get width and height
//
// Sprite Detection:
//   - sprite_find: Find the bounding box of every sprite
//   - sprite_trim: Shrink slice rectangles to their opaque pixels
//
// # Progress and Cancellation
//
// Each tools/call request runs on its own goroutine; writes to stdout are
// serialized. A sprite_find request whose params carry
// _meta.progressToken receives notifications/progress messages:
//
//	{"jsonrpc":"2.0","method":"notifications/progress",
//	 "params":{"progressToken":"t1","progress":0.42,"total":1}}
//
// A notifications/cancelled message naming the request's ID stops the search
// at the next sprite; the call then fails with "sprite search aborted". Only
// one sprite_find runs at a time. A concurrent call fails immediately with
// "sprite search already running".
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded images. Images are cached
// by path and reused across multiple tool calls, avoiding redundant disk I/O.
// Color-keyed copies are not cached.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	srv := server.New()
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
