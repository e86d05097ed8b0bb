package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewMultiparagraphMCPServer creates an MCP server with the realign,
// report_status and graph_diagram tools registered.
func NewMultiparagraphMCPServer(svc *Service) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "multiparagraph",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "realign",
		Description: "Genotype a set of structural-variant candidates by running paragraph on each one in parallel and writing a combined JSON report.",
	}, svc.Realign)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "report_status",
		Description: "Summarize a combined report: entry count, failed candidates, entries without alignment statistics.",
	}, svc.ReportStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "graph_diagram",
		Description: "Render the sequence graph of one report entry as a Mermaid diagram.",
	}, svc.GraphDiagram)

	return server
}

// RunStdio runs the MCP server on stdio transport, blocking until stdin is
// closed or the context is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the MCP server over streamable HTTP on addr until ctx is
// cancelled.
func RunHTTP(ctx context.Context, server *mcp.Server, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
