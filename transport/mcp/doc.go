// Package mcp provides an MCP (Model Context Protocol) interface to the
// server. It is a thin client that translates tool calls into REST API
// requests, so the MCP surface never touches game state directly.
package mcp
