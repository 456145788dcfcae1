// Package server implements the MCP (Model Context Protocol) server for scan
// container tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - scan_decode: Decode a container into detections and pixel payloads
//   - scan_convert: Re-encode a container, optionally in the other format
//   - scan_render_mask: Render one detection's binary mask as PNG
//   - scan_crop_detection: Crop one detection out of its view image
//
// Every tool takes the container by path and decodes it per call; nothing is
// cached between calls. Omitted options fall back to the loaded
// config.Config.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string, which names the failing entry or field
//
// # Usage
//
//	srv := server.New(cfg, log)
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal("server error", zap.Error(err))
//	}
package server
