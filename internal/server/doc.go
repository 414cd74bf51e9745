// Package server exposes the box detection configuration engine as an MCP
// (Model Context Protocol) tool server.
//
// The server speaks JSON-RPC 2.0 over stdio, one request per line on stdin
// and one response per line on stdout. Logs go through logrus and must not
// be written to stdout.
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Configuration:
//   - config_defaults: The built-in configuration as YAML
//   - config_expand: Parameter combinations of a configuration file
//   - config_calibrate: Calibrate size ranges from samples or an image
//
// Images:
//   - image_dimensions: Width and height of an image
//   - image_measure_boxes: Box sizes found in an image
//
// Tool results are returned as pretty-printed JSON in a single text content
// block. Tool failures are JSON-RPC errors with code -32000 and the error
// message as data.
package server
