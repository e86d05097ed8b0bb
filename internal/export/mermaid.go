package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoGraph is returned when an entry carries no nodes to draw.
var ErrNoGraph = errors.New("entry has no graph nodes")

// GraphMermaid renders the sequence graph of one report entry as a Mermaid
// "graph LR" diagram. Nodes and edges are read from the entry's "graph"
// object when present there, otherwise from the entry itself.
func GraphMermaid(entry map[string]any) (string, error) {
	src := entry
	if g, ok := entry["graph"].(map[string]any); ok {
		if _, has := g["nodes"]; has {
			src = g
		}
	}
	nodes, _ := src["nodes"].([]any)
	if len(nodes) == 0 {
		return "", ErrNoGraph
	}
	edges, _ := src["edges"].([]any)

	// Mermaid node IDs must be alphanumeric.
	nodeIDs := make(map[string]string)
	nextID := 0
	getID := func(name string) string {
		if id, ok := nodeIDs[name]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", nextID)
		nextID++
		nodeIDs[name] = id
		return id
	}

	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for i, n := range nodes {
		node, ok := n.(map[string]any)
		if !ok {
			return "", fmt.Errorf("node %d: not an object", i)
		}
		name, _ := node["name"].(string)
		if name == "" {
			return "", fmt.Errorf("node %d: missing name", i)
		}
		fmt.Fprintf(&sb, "  %s[\"%s\"]\n", getID(name), nodeLabel(name, node))
	}

	for i, e := range edges {
		edge, ok := e.(map[string]any)
		if !ok {
			return "", fmt.Errorf("edge %d: not an object", i)
		}
		from, _ := edge["from"].(string)
		to, _ := edge["to"].(string)
		if from == "" || to == "" {
			return "", fmt.Errorf("edge %d: missing endpoint", i)
		}
		fmt.Fprintf(&sb, "  %s --> %s\n", getID(from), getID(to))
	}

	return sb.String(), nil
}

// nodeLabel is the node name followed by its reference region or a
// shortened inserted sequence.
func nodeLabel(name string, node map[string]any) string {
	label := name
	if ref, ok := node["reference"].(string); ok && ref != "" {
		label += "<br/>" + ref
	} else if seq, ok := node["sequence"].(string); ok && seq != "" {
		label += "<br/>" + shortSequence(seq)
	}
	return strings.ReplaceAll(label, `"`, "'")
}

// shortSequence keeps the first 12 bases of long sequences.
func shortSequence(seq string) string {
	if len(seq) <= 12 {
		return seq
	}
	return fmt.Sprintf("%s... (%d bp)", seq[:12], len(seq))
}

// EntryID returns the identifier of a report entry. Like the candidate
// loader it takes "ID" before "id" and accepts numeric identifiers.
func EntryID(entry map[string]any) (string, bool) {
	for _, key := range []string{"ID", "id"} {
		switch v := entry[key].(type) {
		case string:
			if v != "" {
				return v, true
			}
		case json.Number:
			return v.String(), true
		case float64:
			return fmt.Sprint(v), true
		}
	}
	return "", false
}

// FindEntry returns the report entry whose ID is id.
func FindEntry(entries []map[string]any, id string) (map[string]any, bool) {
	for _, e := range entries {
		if got, ok := EntryID(e); ok && got == id {
			return e, true
		}
	}
	return nil, false
}
