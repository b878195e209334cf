// Package mcp exposes the game as Model Context Protocol tools.
//
// The client is a thin proxy: every tool call becomes a REST request against
// a running API server, so MCP agents and HTTP clients share the same
// sessions. It can be served over stdio (server.ServeStdio) or mounted as a
// single-message HTTP endpoint with HTTPHandler.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
