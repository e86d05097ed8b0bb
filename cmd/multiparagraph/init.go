package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Keys of the .mcp.json document this command touches.
const (
	mcpServersKey = "mcpServers"
	mcpEntryName  = "multiparagraph"
)

// multiparagraphMCPEntry is the MCP server configuration for this binary.
var multiparagraphMCPEntry = json.RawMessage(`{
  "type": "stdio",
  "command": "multiparagraph",
  "args": ["-serve-mcp"]
}`)

// runInit registers the multiparagraph MCP server in a project's .mcp.json.
func runInit(w io.Writer, args []string) error {
	flags := flag.NewFlagSet("init", flag.ContinueOnError)
	force := flags.Bool("force", false, "overwrite an existing multiparagraph entry")
	if err := flags.Parse(args); err != nil {
		return err
	}
	projectRoot := "."
	if flags.NArg() > 0 {
		projectRoot = flags.Arg(0)
	}

	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		return fmt.Errorf("resolving project root: %w", err)
	}
	return mergeMCPConfig(w, filepath.Join(abs, ".mcp.json"), *force)
}

// mergeMCPConfig creates or merges the multiparagraph entry into .mcp.json.
// Other servers and every other top-level key are carried over unchanged.
func mergeMCPConfig(w io.Writer, mcpPath string, force bool) error {
	doc := make(map[string]json.RawMessage)
	servers := make(map[string]json.RawMessage)

	data, err := os.ReadFile(mcpPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing %s: %w", mcpPath, err)
		}
		if doc == nil {
			doc = make(map[string]json.RawMessage)
		}
		if raw, ok := doc[mcpServersKey]; ok {
			if err := json.Unmarshal(raw, &servers); err != nil {
				return fmt.Errorf("parsing %s: %s: %w", mcpPath, mcpServersKey, err)
			}
			if servers == nil {
				servers = make(map[string]json.RawMessage)
			}
		}
	case errors.Is(err, fs.ErrNotExist):
		// Created below.
	default:
		return fmt.Errorf("reading %s: %w", mcpPath, err)
	}

	if _, exists := servers[mcpEntryName]; exists && !force {
		fmt.Fprintf(w, "  skipped .mcp.json %s entry (exists, use -force to overwrite)\n", mcpEntryName)
		return nil
	}
	servers[mcpEntryName] = multiparagraphMCPEntry

	rawServers, err := json.Marshal(servers)
	if err != nil {
		return fmt.Errorf("marshaling .mcp.json: %w", err)
	}
	doc[mcpServersKey] = rawServers

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling .mcp.json: %w", err)
	}
	if err := os.WriteFile(mcpPath, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", mcpPath, err)
	}

	action := "created"
	if data != nil {
		action = "updated"
	}
	fmt.Fprintf(w, "  %s .mcp.json with %s MCP server\n", action, mcpEntryName)
	return nil
}
