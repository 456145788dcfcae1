package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the scan container (.ora archive, raw or base64)",
	}
}

func indexProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Detection index in the order returned by scan_decode (0-based)",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "scan_decode",
			Description: "Decode a scan container and return every detection with its view, class, confidence, bounding box and masks, plus one pixel payload per view.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"include_pixels": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the raw pixel entry bytes (base64) in the result. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "scan_convert",
			Description: "Re-encode a scan container, optionally switching between DICOS and COCO annotations. Pixel data is converted to match the target format.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path the new container is written to",
					},
					"format": map[string]interface{}{
						"type":        "string",
						"description": "Target annotation format. Default: the configured format, else the source format",
						"enum":        []string{"DICOS", "COCO"},
					},
					"base64": map[string]interface{}{
						"type":        "boolean",
						"description": "Write the container as base64 text. Default: configured value",
					},
				},
				"required": []string{"path", "output_path"},
			},
		},
		{
			Name:        "scan_render_mask",
			Description: "Render one detection's binary mask over a transparent canvas the size of its view and return it as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":  pathProperty(),
					"index": indexProperty(),
					"zoom": map[string]interface{}{
						"type":        "number",
						"description": "Scale factor, at most 16. Default: configured zoom",
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Mask colour as hex, e.g. #00ff00. Default: configured colour",
					},
				},
				"required": []string{"path", "index"},
			},
		},
		{
			Name:        "scan_crop_detection",
			Description: "Crop one detection's bounding box out of its view image and return it as base64-encoded PNG. DICOS images are narrowed to 8 bits.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":  pathProperty(),
					"index": indexProperty(),
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 2.0 to double size). Default 1.0",
						"default":     1.0,
					},
				},
				"required": []string{"path", "index"},
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
