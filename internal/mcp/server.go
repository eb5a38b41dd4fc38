// Package mcp exposes diagram generation, file trees and the project
// registry as tools of an MCP stdio server.
package mcp

import (
	"context"
	"fmt"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jdg-tools/jdg/internal/config"
	"github.com/jdg-tools/jdg/internal/diagram"
	"github.com/jdg-tools/jdg/internal/filetree"
	"github.com/jdg-tools/jdg/internal/generator"
)

const serverName = "jdg"

// Options configures the MCP server.
type Options struct {
	Generator *generator.Generator
	Registry  *config.Registry
	Tree      filetree.Options
	Diagram   diagram.Options // defaults for generate_diagram
	Version   string
	Verbose   bool
	Logger    func(format string, args ...any) // optional logger, defaults to fmt.Fprintf(os.Stderr, ...)
}

// Server wraps an mcp.Server with the jdg tools registered.
type Server struct {
	mcpServer *mcp.Server
	gen       *generator.Generator
	registry  *config.Registry
	tree      filetree.Options
	diagram   diagram.Options
	verbose   bool
	log       func(format string, args ...any)
}

// NewServer creates a server with every tool and resource registered.
func NewServer(opts Options) *Server {
	logFn := opts.Logger
	if logFn == nil {
		logFn = func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version}, nil),
		gen:       opts.Generator,
		registry:  opts.Registry,
		tree:      opts.Tree,
		diagram:   opts.Diagram,
		verbose:   opts.Verbose,
		log:       logFn,
	}
	s.registerTools()
	s.registerResources()
	return s
}

// Run serves requests over stdin/stdout until the client disconnects or ctx
// is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if s.verbose {
		s.log("MCP server %s listening on stdio", serverName)
	}
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

// Connect serves a single session over the given transport.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.mcpServer.Connect(ctx, t, nil)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}
