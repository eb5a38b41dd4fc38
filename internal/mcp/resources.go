package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const usageURI = "jdg://usage"

const usageText = `# jdg

jdg turns Java source files into Mermaid class diagrams.

1. Call file_tree with a project root to find the .java files.
2. Call generate_diagram with the files to include. Order matters: classes
   appear in the order given, and relationships are inferred only between
   classes in the same call.
3. Associations are drawn when a field's declared type exactly matches the
   name of another class in the batch. Generic and array types do not match.

Parsing stops at the first file that fails; the error names the file.
`

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         usageURI,
		Name:        "Usage Guidelines",
		Description: "How to combine the jdg tools",
		MIMEType:    "text/markdown",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      usageURI,
					MIMEType: "text/markdown",
					Text:     usageText,
				},
			},
		}, nil
	})
}
