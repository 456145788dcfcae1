package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"os"

	"go.uber.org/zap"

	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/detection"
	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/dicos"
	"github.com/irconde/ml-automated-threat-scanner-sub000/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "scan_decode", "scan_convert").
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
		s.log.Warn("tool failed", zap.String("tool", params.Name), zap.Error(err))
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
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "scan_decode":
		return s.handleScanDecode(ctx, args)
	case "scan_convert":
		return s.handleScanConvert(ctx, args)
	case "scan_render_mask":
		return s.handleScanRenderMask(ctx, args)
	case "scan_crop_detection":
		return s.handleScanCropDetection(ctx, args)
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

func readFile(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read container: %w", err)
	}
	return data, nil
}

// decodeFile reads and decodes the container at path.
func (s *Server) decodeFile(ctx context.Context, path string) (*detection.Result, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return s.scans.Decode(ctx, data)
}

// pick returns the detection at index and the pixel payload of its view.
func pick(res *detection.Result, index int) (detection.Detection, detection.PixelPayload, error) {
	if index < 0 || index >= len(res.DetectionData) {
		return detection.Detection{}, detection.PixelPayload{},
			fmt.Errorf("detection index %d out of range [0, %d)", index, len(res.DetectionData))
	}
	d := res.DetectionData[index]
	for _, p := range res.ImageData {
		if p.View == d.View {
			return d, p, nil
		}
	}
	return d, detection.PixelPayload{}, detection.NewError(detection.ErrMissingPixelLayer, d.View, nil)
}

// === Decode ===

type scanDecodeArgs struct {
	Path          string `json:"path"`
	IncludePixels bool   `json:"include_pixels"`
}

func (s *Server) handleScanDecode(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a scanDecodeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	res, err := s.decodeFile(ctx, a.Path)
	if err != nil {
		return nil, err
	}
	if !a.IncludePixels {
		for i := range res.ImageData {
			res.ImageData[i].Data = nil
		}
	}
	return res, nil
}

// === Convert ===

type scanConvertArgs struct {
	Path       string `json:"path"`
	OutputPath string `json:"output_path"`
	Format     string `json:"format"`
	Base64     *bool  `json:"base64"`
}

// ConvertResult describes a written container.
type ConvertResult struct {
	OutputPath string `json:"output_path"`
	Format     string `json:"format"`
	Bytes      int    `json:"bytes"`
	Base64     bool   `json:"base64"`
}

func (s *Server) handleScanConvert(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a scanConvertArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.OutputPath == "" {
		return nil, fmt.Errorf("output_path is required")
	}
	if a.Format == "" {
		a.Format = s.cfg.Encode.Format
	}
	asBase64 := s.cfg.Encode.Base64
	if a.Base64 != nil {
		asBase64 = *a.Base64
	}

	format := detection.FormatUnknown
	if a.Format != "" {
		f, err := detection.ParseFormat(a.Format)
		if err != nil {
			return nil, err
		}
		format = f
	}

	data, err := readFile(a.Path)
	if err != nil {
		return nil, err
	}
	out, format, err := s.scans.Convert(ctx, data, format, asBase64)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(a.OutputPath, out, 0644); err != nil {
		return nil, fmt.Errorf("failed to write container: %w", err)
	}

	return &ConvertResult{
		OutputPath: a.OutputPath,
		Format:     string(format),
		Bytes:      len(out),
		Base64:     asBase64,
	}, nil
}

// === Mask rendering ===

type scanRenderMaskArgs struct {
	Path  string  `json:"path"`
	Index int     `json:"index"`
	Zoom  float64 `json:"zoom"`
	Color string  `json:"color"`
}

// RenderResult is a rendered detection mask.
type RenderResult struct {
	Index       int    `json:"index"`
	View        string `json:"view"`
	ClassName   string `json:"class_name"`
	Confidence  int    `json:"confidence"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Color       string `json:"color"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

func (s *Server) handleScanRenderMask(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a scanRenderMaskArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Zoom == 0 {
		a.Zoom = s.cfg.Render.Zoom
	}
	if a.Color == "" {
		a.Color = s.cfg.Render.MaskColor
	}
	c, err := imaging.ParseColor(a.Color)
	if err != nil {
		return nil, err
	}

	res, err := s.decodeFile(ctx, a.Path)
	if err != nil {
		return nil, err
	}
	d, p, err := pick(res, a.Index)
	if err != nil {
		return nil, err
	}

	img, err := imaging.RenderBinaryMask(d.BinaryMask, p.Width, p.Height, a.Zoom, c)
	if err != nil {
		return nil, err
	}
	png, err := imaging.EncodePNG(img)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &RenderResult{
		Index:       a.Index,
		View:        d.View,
		ClassName:   d.ClassName,
		Confidence:  d.Confidence,
		Width:       b.Dx(),
		Height:      b.Dy(),
		Color:       imaging.ColorHex(c),
		ImageBase64: base64.StdEncoding.EncodeToString(png),
		MimeType:    "image/png",
	}, nil
}

// === Detection crop ===

type scanCropDetectionArgs struct {
	Path  string  `json:"path"`
	Index int     `json:"index"`
	Scale float64 `json:"scale"`
}

func (s *Server) handleScanCropDetection(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a scanCropDetectionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}

	res, err := s.decodeFile(ctx, a.Path)
	if err != nil {
		return nil, err
	}
	d, p, err := pick(res, a.Index)
	if err != nil {
		return nil, err
	}
	img, err := viewImage(p)
	if err != nil {
		return nil, err
	}
	return imaging.CropDetection(img, d.BoundingBox, a.Scale)
}

// viewImage decodes a pixel payload for display. Tag-structured images are
// narrowed to 8 bits per sample.
func viewImage(p detection.PixelPayload) (image.Image, error) {
	if p.Format == detection.FormatDICOS {
		img, err := dicos.DecodeImage(p.Data)
		if err != nil {
			return nil, err
		}
		return imaging.Gray16ToRGBA(img.Pixels), nil
	}
	return imaging.DecodeRaster(p.Data)
}
