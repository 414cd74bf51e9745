package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/boxdetect/internal/calibrate"
	"github.com/ironsheep/boxdetect/internal/detection"
	"github.com/ironsheep/boxdetect/internal/params"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	Name      string          `json:"name"`
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
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var call ToolCallParams
	if err := json.Unmarshal(req.Params, &call); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(call.Name, call.Arguments)
	if err != nil {
		s.logger.WithError(err).WithField("tool", call.Name).Warn("Tool execution failed")
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	text, err := marshalJSON(result)
	if err != nil {
		s.logger.WithError(err).WithField("tool", call.Name).Warn("Failed to encode tool result")
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": text,
				},
			},
		},
	}
}

func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	case ToolConfigDefaults:
		return s.handleConfigDefaults(args)
	case ToolConfigExpand:
		return s.handleConfigExpand(args)
	case ToolConfigCalibrate:
		return s.handleConfigCalibrate(args)
	case ToolImageDimensions:
		return s.handleImageDimensions(args)
	case ToolImageMeasureBoxes:
		return s.handleImageMeasureBoxes(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// marshalJSON converts a value to a pretty-printed JSON string.
func marshalJSON(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(b), nil
}

// loadConfig returns the defaults overlaid with path, or the defaults alone
// when path is empty.
func (s *Server) loadConfig(path string, suppressWarnings bool) (*params.ParameterSet, error) {
	if path == "" {
		return params.Default(), nil
	}
	opts := []params.LoadOption{params.WithLogger(s.logger)}
	if suppressWarnings {
		opts = append(opts, params.WithSuppressWarnings())
	}
	return params.FromFile(path, opts...)
}

// ConfigResult describes a parameter set returned by a config tool.
type ConfigResult struct {
	NumIterations int    `json:"num_iterations"`
	YAML          string `json:"yaml"`
	SavedTo       string `json:"saved_to,omitempty"`
}

func (s *Server) describeConfig(p *params.ParameterSet, output string) (*ConfigResult, error) {
	if output != "" {
		if err := p.Save(output); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := p.SaveTo(&buf); err != nil {
		return nil, err
	}
	return &ConfigResult{
		NumIterations: p.NumIterations(),
		YAML:          buf.String(),
		SavedTo:       output,
	}, nil
}

// === Configuration Handlers ===

type configDefaultsArgs struct {
	Output string `json:"output"`
}

func (s *Server) handleConfigDefaults(args json.RawMessage) (interface{}, error) {
	var a configDefaultsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.describeConfig(params.Default(), a.Output)
}

type configExpandArgs struct {
	Path             string `json:"path"`
	SuppressWarnings bool   `json:"suppress_warnings"`
}

// ExpandResult lists the parameter combinations of a configuration.
type ExpandResult struct {
	NumIterations int            `json:"num_iterations"`
	Tuples        []params.Tuple `json:"tuples"`
}

func (s *Server) handleConfigExpand(args json.RawMessage) (interface{}, error) {
	var a configExpandArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}

	p, err := s.loadConfig(a.Path, a.SuppressWarnings)
	if err != nil {
		return nil, err
	}
	tuples, err := p.Expand()
	if err != nil {
		return nil, err
	}
	return &ExpandResult{
		NumIterations: p.NumIterations(),
		Tuples:        tuples,
	}, nil
}

type configCalibrateArgs struct {
	ConfigPath            string   `json:"config_path"`
	Samples               [][2]int `json:"samples"`
	Image                 string   `json:"image"`
	Epsilon               *float64 `json:"epsilon"`
	MarginPercent         *float64 `json:"margin_percent"`
	MarginPxLimit         *int     `json:"margin_px_limit"`
	UseRectKernelForSmall *bool    `json:"use_rect_kernel_for_small"`
	RectKernelThreshold   *int     `json:"rect_kernel_threshold"`
	Output                string   `json:"output"`
}

func (a configCalibrateArgs) options() calibrate.Options {
	opts := calibrate.DefaultOptions()
	if a.Epsilon != nil {
		opts.Epsilon = *a.Epsilon
	}
	if a.MarginPercent != nil {
		opts.MarginPercent = *a.MarginPercent
	}
	if a.MarginPxLimit != nil {
		opts.MarginPxLimit = *a.MarginPxLimit
	}
	if a.UseRectKernelForSmall != nil {
		opts.UseRectKernelForSmall = *a.UseRectKernelForSmall
	}
	if a.RectKernelThreshold != nil {
		opts.RectKernelThreshold = *a.RectKernelThreshold
	}
	return opts
}

// CalibrateResult is the outcome of a config_calibrate call.
type CalibrateResult struct {
	Samples []calibrate.Sample `json:"samples"`
	Groups  []calibrate.Group  `json:"groups"`
	Config  *ConfigResult      `json:"config"`
}

func (s *Server) handleConfigCalibrate(args json.RawMessage) (interface{}, error) {
	var a configCalibrateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	p, err := s.loadConfig(a.ConfigPath, false)
	if err != nil {
		return nil, err
	}

	samples := calibrate.FromPairs(a.Samples)
	if len(samples) == 0 && a.Image != "" {
		img, err := s.cache.Load(a.Image)
		if err != nil {
			return nil, err
		}
		measured, err := detection.MeasureBoxes(img, detection.MeasureOptionsFrom(p))
		if err != nil {
			return nil, err
		}
		samples = measured.Samples
	}

	groups, err := calibrate.Plan(samples, a.options())
	if err != nil {
		return nil, err
	}
	calibrate.Apply(p, groups)

	cfg, err := s.describeConfig(p, a.Output)
	if err != nil {
		return nil, err
	}
	return &CalibrateResult{
		Samples: samples,
		Groups:  groups,
		Config:  cfg,
	}, nil
}

// === Image Handlers ===

type imagePathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imagePathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return s.cache.Dimensions(a.Path)
}

type imageMeasureBoxesArgs struct {
	Path           string    `json:"path"`
	ConfigPath     string    `json:"config_path"`
	ScalingFactors []float64 `json:"scaling_factors"`
	MinArea        int       `json:"min_area"`
	Tolerance      float64   `json:"tolerance"`
}

func (s *Server) handleImageMeasureBoxes(args json.RawMessage) (interface{}, error) {
	var a imageMeasureBoxesArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	opts := detection.DefaultMeasureOptions()
	if a.ConfigPath != "" {
		p, err := s.loadConfig(a.ConfigPath, false)
		if err != nil {
			return nil, err
		}
		opts = detection.MeasureOptionsFrom(p)
	}
	if len(a.ScalingFactors) > 0 {
		opts.ScalingFactors = a.ScalingFactors
	}
	if a.MinArea > 0 {
		opts.MinArea = a.MinArea
	}
	if a.Tolerance > 0 {
		opts.Tolerance = a.Tolerance
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return detection.MeasureBoxes(img, opts)
}
