package ipc

import (
	"encoding/json"
	"fmt"
	"time"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus CommandType = "GET_STATUS"
	CommandTick      CommandType = "TICK"
	CommandReload    CommandType = "RELOAD"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Rect is a screen rectangle in y-up coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// TickData describes one classification pass, returned by TICK.
type TickData struct {
	Outcome string `json:"outcome"`
	Reason  string `json:"reason,omitempty"`
	App     string `json:"app,omitempty"`
	Window  *Rect  `json:"window,omitempty"`
	Visible *Rect  `json:"visible,omitempty"`
	Size    int    `json:"size,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	PID             int       `json:"pid"`
	UptimeSeconds   int64     `json:"uptime_seconds"`
	PollInterval    string    `json:"poll_interval"`
	Ticks           uint64    `json:"ticks"`
	LastTick        TickData  `json:"last_tick"`
	LastTickAt      time.Time `json:"last_tick_at,omitempty"`
	SurfaceSize     int       `json:"surface_size"`
	SurfaceCount    int       `json:"surface_count"`
	SurfacesVisible bool      `json:"surfaces_visible"`
	DaemonRunning   bool      `json:"daemon_running"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	if req.Command == "" {
		return nil, fmt.Errorf("failed to parse request: command is required")
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
