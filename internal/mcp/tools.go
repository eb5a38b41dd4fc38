package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jdg-tools/jdg/internal/config"
	"github.com/jdg-tools/jdg/internal/diagram"
	"github.com/jdg-tools/jdg/internal/filetree"
)

// Arguments structs

type GenerateDiagramArgs struct {
	FilePaths []string `json:"file_paths" jsonschema:"Paths of the Java files to include, in diagram order"`
	Vertical  bool     `json:"vertical,omitempty" jsonschema:"Lay the diagram out left to right"`
	Format    string   `json:"format,omitempty" jsonschema:"Output format: mermaid (default) or json"`
}

type FileTreeArgs struct {
	Root   string `json:"root" jsonschema:"Directory to scan for Java files"`
	Search string `json:"search,omitempty" jsonschema:"Case-insensitive substring filter on file names"`
}

type ListProjectsArgs struct{}

type AddProjectArgs struct {
	Name string `json:"name,omitempty" jsonschema:"Display name, defaults to the directory name"`
	Path string `json:"path" jsonschema:"Root directory of the project"`
}

type OpenProjectArgs struct {
	ID int64 `json:"id" jsonschema:"Registry id of the project"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "generate_diagram",
		Description: "Parses the given Java files and returns a Mermaid class diagram",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args GenerateDiagramArgs) (*mcp.CallToolResult, any, error) {
		if len(args.FilePaths) == 0 {
			return errorResult("file_paths must not be empty"), nil, nil
		}
		format, err := diagram.ParseFormat(args.Format)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}

		res, err := s.gen.Generate(ctx, args.FilePaths)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}

		opts := s.diagram
		opts.Vertical = opts.Vertical || args.Vertical

		var sb strings.Builder
		if err := diagram.Write(&sb, format, res.Models, res.Relationships, opts); err != nil {
			return errorResult(err.Error()), nil, nil
		}
		return textResult(sb.String()), nil, nil
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "file_tree",
		Description: "Returns the tree of Java files under a directory, or the matching files when search is set",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args FileTreeArgs) (*mcp.CallToolResult, any, error) {
		if args.Root == "" {
			return errorResult("root is required"), nil, nil
		}
		root, err := filetree.Build(args.Root, s.tree)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		if args.Search != "" {
			matches := filetree.Search([]*filetree.Node{root}, args.Search)
			if matches == nil {
				matches = []*filetree.Node{}
			}
			return jsonResult(matches), nil, nil
		}
		return jsonResult(root), nil, nil
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_projects",
		Description: "Lists the registered projects",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ListProjectsArgs) (*mcp.CallToolResult, any, error) {
		projects, err := s.registry.List()
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		return jsonResult(projects), nil, nil
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_project",
		Description: "Registers a project directory",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args AddProjectArgs) (*mcp.CallToolResult, any, error) {
		if args.Path == "" {
			return errorResult("path is required"), nil, nil
		}
		p, err := s.registry.Add(args.Name, args.Path)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		return jsonResult(p), nil, nil
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "open_project",
		Description: "Marks a project as opened and returns its file tree",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args OpenProjectArgs) (*mcp.CallToolResult, any, error) {
		p, err := s.registry.Open(args.ID)
		if errors.Is(err, config.ErrProjectNotFound) {
			return errorResult(fmt.Sprintf("No project with id %d", args.ID)), nil, nil
		}
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		root, err := filetree.Build(p.Path, s.tree)
		if err != nil {
			return errorResult(err.Error()), nil, nil
		}
		return jsonResult(map[string]any{"project": p, "tree": root}), nil, nil
	})
}

func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("encode result: %v", err))
	}
	return textResult(string(data))
}
