package pipeline

import (
	"fmt"
	"strings"
)

// Mermaid renders the topology as a Mermaid flowchart.
// Guarded steps are drawn as hexagons labelled with their guard.
func (g *Graph) Mermaid() string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("    __start__((start))\n")

	for _, n := range g.nodes {
		safeID := sanitizeMermaidID(n.Name)
		if n.When != "" {
			guard := strings.ReplaceAll(n.When, "\"", "'")
			sb.WriteString(fmt.Sprintf("    %s{{\"%s <br/> when %s\"}}\n", safeID, n.Name, guard))
			continue
		}
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", safeID, n.Name))
	}

	sb.WriteString("    __end__((end))\n")
	sb.WriteString(fmt.Sprintf("    __start__ --> %s\n", sanitizeMermaidID(g.start)))
	for _, e := range g.Edges() {
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", sanitizeMermaidID(e.From), sanitizeMermaidID(e.To)))
	}
	sb.WriteString(fmt.Sprintf("    %s --> __end__\n", sanitizeMermaidID(g.terminal)))

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer("/", "_", "-", "_", ".", "_", " ", "_", ":", "_")
	return r.Replace(id)
}
