package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/stackbt/pkg/domain"
	"github.com/aretw0/stackbt/pkg/fsm"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	// Path is the live frame path of a snapshot, nested branches included.
	Path []domain.FrameInfo
}

// GenerateMermaid produces a Mermaid flowchart of the node tree under root.
// It applies semantic styling per node kind:
// - State machine: ((Circle))
// - Sequence / Selector: [[Subroutine]]
// - Parallel: [/Parallelogram/]
// - Decorator: {{Hexagon}}
// - Leaf: [Rectangle]
// State machines also draw their statically known transitions.
// It applies overlay styles (active/current) if provided.
func GenerateMermaid(root domain.Node, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	ids := make(map[string][]string) // node name -> mermaid IDs
	write(&sb, root, "n0", ids)

	if overlay != nil && len(overlay.Path) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef active fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		active, current := overlayNames(overlay.Path)
		styled := make(map[string]bool)
		for _, name := range active {
			for _, id := range ids[name] {
				if !styled[id] {
					styled[id] = true
					sb.WriteString(fmt.Sprintf("    class %s active;\n", id))
				}
			}
		}
		for _, name := range current {
			for _, id := range ids[name] {
				sb.WriteString(fmt.Sprintf("    class %s current;\n", id))
			}
		}
	}

	return sb.String()
}

func write(sb *strings.Builder, n domain.Node, id string, ids map[string][]string) {
	d := domain.Describe(n)
	ids[d.Name] = append(ids[d.Name], id)

	opener, closer := "[", "]"
	switch d.Kind {
	case domain.KindStateMachine:
		opener, closer = "((", "))" // Circle
	case domain.KindSequence, domain.KindSelector, domain.KindReactive:
		opener, closer = "[[", "]]" // Subroutine
	case domain.KindParallel:
		opener, closer = "[/", "/]" // Parallelogram
	case domain.KindDecorator:
		opener, closer = "{{", "}}" // Hexagon
	}
	label := escape(d.Name)
	if d.Kind != domain.KindLeaf {
		label = fmt.Sprintf("%s <br/> <i>%s</i>", label, d.Kind)
	}
	sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", id, opener, label, closer))

	if m, ok := n.(*fsm.Machine); ok {
		writeMachine(sb, m, id, ids)
		return
	}
	for i, c := range d.Children {
		childID := fmt.Sprintf("%s_%d", id, i)
		arrow := "-->"
		if d.Kind == domain.KindSequence || d.Kind == domain.KindSelector || d.Kind == domain.KindReactive {
			arrow = fmt.Sprintf("-- \"%d\" -->", i+1)
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", id, arrow, childID))
		write(sb, c, childID, ids)
	}
}

func writeMachine(sb *strings.Builder, m *fsm.Machine, id string, ids map[string][]string) {
	stateIDs := make(map[string]string)
	for i, key := range m.States() {
		childID := fmt.Sprintf("%s_%d", id, i)
		stateIDs[key] = childID
		arrow := fmt.Sprintf("-. \"%s\" .->", escape(key))
		if key == m.Initial() {
			arrow = fmt.Sprintf("== \"%s\" ==>", escape(key))
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", id, arrow, childID))
		node, _ := m.Node(key)
		write(sb, node, childID, ids)
	}
	for _, e := range m.Edges() {
		label := e.On
		if e.Now {
			label += " ⚡"
		}
		if e.Push {
			label += " push"
		}
		sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n", stateIDs[e.From], label, stateIDs[e.To]))
	}
}

// overlayNames returns every node name on the path and the innermost names
// of each (nested) branch.
func overlayNames(path []domain.FrameInfo) (active, current []string) {
	for i, f := range path {
		active = append(active, f.Name)
		for _, b := range f.Branches {
			a, c := overlayNames(b)
			active = append(active, a...)
			current = append(current, c...)
		}
		if i == len(path)-1 && len(f.Branches) == 0 {
			current = append(current, f.Name)
		}
	}
	return active, current
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
