package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// Tool names.
const (
	ToolConfigDefaults    = "config_defaults"
	ToolConfigExpand      = "config_expand"
	ToolConfigCalibrate   = "config_calibrate"
	ToolImageDimensions   = "image_dimensions"
	ToolImageMeasureBoxes = "image_measure_boxes"
)

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Configuration
		{
			Name:        ToolConfigDefaults,
			Description: "Return the built-in pipeline configuration as YAML, optionally writing it to a file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"output": map[string]interface{}{
						"type":        "string",
						"description": "Optional path to save the configuration to",
					},
				},
			},
		},
		{
			Name:        ToolConfigExpand,
			Description: "Load a configuration file and expand its parameter lists into the ordered parameter combinations the pipeline iterates over.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the YAML configuration file",
					},
					"suppress_warnings": map[string]interface{}{
						"type":        "boolean",
						"description": "Do not log unrecognized fields. Default false",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        ToolConfigCalibrate,
			Description: "Cluster observed box sizes and overwrite the width, height, ratio and kernel type ranges of a configuration. Sizes come from an explicit sample list or from measuring an image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"config_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional configuration to start from. Defaults are used when omitted",
					},
					"samples": map[string]interface{}{
						"type":        "array",
						"description": "Observed box sizes as [height, width] pairs",
						"items": map[string]interface{}{
							"type":     "array",
							"items":    map[string]interface{}{"type": "integer"},
							"minItems": 2,
							"maxItems": 2,
						},
					},
					"image": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to an image to measure when samples is omitted",
					},
					"epsilon": map[string]interface{}{
						"type":        "number",
						"description": "Maximum distance between sizes in one cluster. Default 5",
					},
					"margin_percent": map[string]interface{}{
						"type":        "number",
						"description": "Fraction of each bound added as margin. Default 0.1",
					},
					"margin_px_limit": map[string]interface{}{
						"type":        "integer",
						"description": "Largest margin in pixels. Default 5",
					},
					"use_rect_kernel_for_small": map[string]interface{}{
						"type":        "boolean",
						"description": "Use rectangle kernels for clusters no larger than rect_kernel_threshold. Default false",
					},
					"rect_kernel_threshold": map[string]interface{}{
						"type":        "integer",
						"description": "Size limit in pixels for rectangle kernels. Default 30",
					},
					"output": map[string]interface{}{
						"type":        "string",
						"description": "Optional path to save the calibrated configuration to",
					},
				},
			},
		},

		// Images
		{
			Name:        ToolImageDimensions,
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        ToolImageMeasureBoxes,
			Description: "Detect boxes in an image at each scaling factor and return their distinct sizes as [height, width] samples for calibration.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"config_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional configuration whose scaling factors and dilation settings are used",
					},
					"scaling_factors": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "number"},
						"description": "Scales to detect at. Overrides the configuration. Default [1.0]",
					},
					"min_area": map[string]interface{}{
						"type":        "integer",
						"description": "Minimum box area in scaled pixels. Default 16",
					},
					"tolerance": map[string]interface{}{
						"type":        "number",
						"description": "Minimum rectangularity from 0 to 1. Default 0.85",
					},
				},
				"required": []string{"path"},
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
