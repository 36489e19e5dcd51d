package fsm

import (
	"strconv"
	"strings"

	"github.com/enetx/g"
)

// ToDOT generates a DOT language representation of the definition for visualization.
// Nested machines are drawn as clusters next to the state that owns them. When current
// is a path-qualified state such as "Jump/Rise", it and its ancestors are highlighted.
func (d *Definition) ToDOT(current State) g.String {
	b := g.NewBuilder()

	b.WriteString("digraph FSM {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  compound=true;\n")
	b.WriteString(
		"  node [shape=circle, style=filled, fillcolor=\"#f8f8f8\", color=\"#444444\", fontname=\"Helvetica\"];\n",
	)
	b.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n\n")

	d.writeDOT(b, "", current, "  ")

	b.WriteString("\n  subgraph cluster_legend {\n")
	b.WriteString("    label = \"Legend\";\n")
	b.WriteString("    style = dashed;\n")
	b.WriteString(`    key [label=<
      <table border="0" cellpadding="4" cellspacing="0" cellborder="0">
        <tr><td align="right">●</td><td>Regular state</td></tr>
        <tr><td align="right"><font color="green">◎</font></td><td>Current state</td></tr>
        <tr><td align="right"><font color="gray">◎</font></td><td>Exit state</td></tr>
        <tr><td align="right">▭</td><td>Nested machine</td></tr>
        <tr><td align="right"><font color="red">→</font></td><td>Guarded transition</td></tr>
        <tr><td align="right"><font color="blue">→</font></td><td>Any-state transition</td></tr>
      </table>
    >, shape=none];`)

	b.WriteString("\n  }\n")
	b.WriteString("}\n")

	return b.String()
}

func (d *Definition) writeDOT(b *g.Builder, prefix, current State, indent g.String) {
	start := join(prefix, "__start")

	b.WriteString(g.Format("{}\"{}\" [shape=point, style=invis];\n", indent, start))
	b.WriteString(g.Format("{}\"{}\" -> \"{}\" [label=\" start\"];\n\n", indent, start, join(prefix, d.start)))

	for _, s := range d.states {
		id := join(prefix, s.Name)

		var attrs g.Slice[g.String]
		attrs.Push(g.Format("label=\"{}\"", s.Name))

		if s.IsNested() {
			attrs.Push("shape=box", "style=\"rounded,filled\"")
		}

		switch {
		case active(current, id):
			attrs.Push("fillcolor=\"#90ee90\"")
			if !s.IsNested() {
				attrs.Push("shape=doublecircle")
			}
		case s.Marker == MarkerExit:
			attrs.Push("fillcolor=\"#d3d3d3\"", "shape=doublecircle")
		}

		var tooltips g.Slice[g.String]

		if s.Marker != MarkerNone {
			tooltips.Push(g.String(s.Marker.String()))
		}

		if s.Script != "" {
			tooltips.Push("script")
		}

		if tooltips.NotEmpty() {
			attrs.Push(g.Format("tooltip=\"{}\"", tooltips.Join("\\n")))
		}

		b.WriteString(g.Format("{}\"{}\" [{}];\n", indent, id, attrs.Join(", ")))
	}

	b.WriteByte('\n')

	anyNode := join(prefix, AnyState)
	if d.hasAnyTransition() {
		b.WriteString(g.Format("{}\"{}\" [label=\"any\", shape=plaintext, style=\"\"];\n", indent, anyNode))
	}

	for _, t := range d.transitions {
		from := join(prefix, t.From)
		if t.IsAny() {
			from = anyNode
		}

		var edge g.Slice[g.String]

		if label := edgeLabel(t); label != "" {
			edge.Push(g.Format("label=\" {} \"", label))
		}

		switch {
		case t.IsAny():
			edge.Push("style=dotted", "color=blue")
		case len(t.Conditions) > 0:
			edge.Push("style=dashed", "color=red", "arrowhead=odiamond")
		case t.Trigger != "":
			edge.Push("style=bold")
		}

		b.WriteString(g.Format("{}\"{}\" -> \"{}\" [{}];\n", indent, from, join(prefix, t.To), edge.Join(", ")))
	}

	for _, s := range d.states {
		if !s.IsNested() {
			continue
		}

		id := join(prefix, s.Name)

		b.WriteString(g.Format("\n{}subgraph \"cluster_{}\" ", indent, id))
		b.WriteString("{\n")
		b.WriteString(g.Format("{}  label = \"{}\";\n", indent, id))
		b.WriteString(g.Format("{}  style = rounded;\n", indent))

		s.Machine.writeDOT(b, id, current, indent+"  ")

		b.WriteString(indent)
		b.WriteString("}\n")
		b.WriteString(g.Format("{}\"{}\" -> \"{}\" [style=dotted, arrowhead=none, lhead=\"cluster_{}\"];\n",
			indent, id, join(id, "__start"), id))
	}
}

func (d *Definition) hasAnyTransition() bool {
	for _, t := range d.transitions {
		if t.IsAny() {
			return true
		}
	}

	return false
}

// active reports whether id is the current state or one of its ancestors.
func active(current, id State) bool {
	return current == id || strings.HasPrefix(string(current), string(id)+"/")
}

func edgeLabel(t Transition) g.String {
	label := t.Label()

	if t.Priority != 0 {
		label = strings.TrimSpace(label + " p=" + strconv.Itoa(t.Priority))
	}

	if t.Stack != StackNone {
		label = strings.TrimSpace(label + " " + t.Stack.String())
	}

	return g.String(strings.ReplaceAll(label, `"`, `\"`))
}
