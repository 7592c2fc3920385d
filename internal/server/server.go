package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/ironsheep/sprite-tools-mcp/internal/detection"
	"github.com/ironsheep/sprite-tools-mcp/internal/imaging"
)

// Server handles MCP protocol communication
type Server struct {
	cache *imaging.ImageCache
	debug bool

	// writeMu serializes responses and notifications written by concurrent
	// tool calls. enc is nil until Serve starts.
	writeMu sync.Mutex
	enc     *json.Encoder

	// findMu admits one sprite search at a time.
	findMu sync.Mutex

	jobsMu sync.Mutex
	jobs   map[string]*detection.Job

	calls sync.WaitGroup
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

// New creates a new MCP server instance
func New() *Server {
	return &Server{
		cache: imaging.NewImageCache(),
		debug: os.Getenv("SPRITE_MCP_LOG_LEVEL") == "debug",
		jobs:  make(map[string]*detection.Job),
	}
}

// Run starts the MCP server, reading from stdin and writing to stdout
func (s *Server) Run() error {
	return s.Serve(os.Stdin, os.Stdout)
}

// Serve reads newline-delimited requests from r and writes responses to w
// until r is exhausted.
//
// tools/call requests run on their own goroutine so that a
// notifications/cancelled message can reach a running sprite search. Every
// other method is answered inline, in arrival order. Serve returns only after
// all in-flight tool calls have written their responses.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Increase buffer size for large requests
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	s.writeMu.Lock()
	s.enc = json.NewEncoder(w)
	s.writeMu.Unlock()

	defer s.calls.Wait()

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			log.Printf("Failed to parse request: %v", err)
			continue
		}

		if req.Method == "tools/call" {
			s.calls.Add(1)
			go func(req MCPRequest) {
				defer s.calls.Done()
				s.send(s.handleRequest(&req))
			}(req)
			continue
		}

		s.send(s.handleRequest(&req))
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// send writes one message. Nil responses (notifications) are skipped, as are
// all writes when no output is attached.
func (s *Server) send(resp *MCPResponse) {
	if resp == nil {
		return
	}
	s.write(resp)
}

// notify writes a server-to-client notification.
func (s *Server) notify(method string, params interface{}) {
	s.write(&MCPNotification{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
	})
}

func (s *Server) write(v interface{}) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.enc == nil {
		return
	}
	if err := s.enc.Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func (s *Server) debugf(format string, args ...interface{}) {
	if s.debug {
		log.Printf(format, args...)
	}
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(req *MCPRequest) *MCPResponse {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "notifications/cancelled":
		s.handleCancelled(req)
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(req)
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
				"name":    "sprite-tools-mcp",
				"version": "0.1.0",
			},
		},
	}
}

// cancelledParams is the payload of a notifications/cancelled message.
type cancelledParams struct {
	RequestID interface{} `json:"requestId"`
	Reason    string      `json:"reason,omitempty"`
}

// handleCancelled aborts the sprite search started by the referenced request,
// if one is still running. Unknown or finished requests are ignored.
func (s *Server) handleCancelled(req *MCPRequest) {
	var p cancelledParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		log.Printf("Failed to parse cancellation: %v", err)
		return
	}

	key := requestKey(p.RequestID)
	s.jobsMu.Lock()
	job := s.jobs[key]
	s.jobsMu.Unlock()

	if job == nil {
		s.debugf("Cancellation for %s ignored: no running search", key)
		return
	}
	s.debugf("Cancelling sprite search %s (%s)", key, p.Reason)
	job.Cancel()
}

func (s *Server) trackJob(key string, job *detection.Job) {
	s.jobsMu.Lock()
	s.jobs[key] = job
	s.jobsMu.Unlock()
}

func (s *Server) untrackJob(key string) {
	s.jobsMu.Lock()
	delete(s.jobs, key)
	s.jobsMu.Unlock()
}

// requestKey normalizes a JSON-RPC ID. IDs arrive as float64 or string and
// a cancellation must match the request it refers to either way.
func requestKey(id interface{}) string {
	return fmt.Sprint(id)
}
