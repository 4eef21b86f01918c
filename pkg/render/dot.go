package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/toolrack/pkg/cad"
)

// PlanDOT renders ops as a top-to-bottom chain in Graphviz DOT. Consecutive
// ops of the same build step share a cluster; failed ops are drawn red.
func PlanDOT(ops []cad.Op) string {
	var buf bytes.Buffer
	buf.WriteString("digraph plan {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=11];\n")
	buf.WriteString("  edge [arrowsize=0.6];\n")

	cluster := 0
	for i := 0; i < len(ops); {
		step := ops[i].Step
		j := i
		for j < len(ops) && ops[j].Step == step {
			j++
		}
		if step != "" {
			fmt.Fprintf(&buf, "\n  subgraph cluster_%d {\n", cluster)
			fmt.Fprintf(&buf, "    label=%s;\n    style=\"rounded,dashed\";\n    color=grey;\n", dotQuote(step))
			cluster++
		}
		for _, op := range ops[i:j] {
			fmt.Fprintf(&buf, "    %s [%s];\n", nodeID(op), strings.Join(opAttrs(op), ", "))
		}
		if step != "" {
			buf.WriteString("  }\n")
		}
		i = j
	}

	buf.WriteString("\n")
	for i := 1; i < len(ops); i++ {
		fmt.Fprintf(&buf, "  %s -> %s;\n", nodeID(ops[i-1]), nodeID(ops[i]))
	}
	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(op cad.Op) string { return "op" + strconv.Itoa(op.Seq) }

func opAttrs(op cad.Op) []string {
	label := string(op.Kind)
	if op.Mode != "" {
		label += " [" + op.Mode + "]"
	}
	if op.Result != "" {
		label += "\n" + op.Result
	}
	if op.Detail != "" {
		label += "\n" + op.Detail
	}
	attrs := []string{"label=" + dotQuote(label)}
	switch {
	case op.Err != "":
		attrs = append(attrs, "fillcolor=\"#f8d7da\"", "color=\"#b02a37\"")
	case op.Kind == cad.OpExtrude && cad.ExtrudeMode(op.Mode).IsCut():
		attrs = append(attrs, "fillcolor=\"#fde2c8\"")
	case op.Kind == cad.OpExtrude:
		attrs = append(attrs, "fillcolor=\"#d6e9f8\"")
	case op.Kind == cad.OpChamfer:
		attrs = append(attrs, "fillcolor=\"#e3f1dc\"")
	}
	return attrs
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// dotQuote quotes s as a DOT string. Unlike strconv.Quote it leaves
// non-ASCII text intact.
func dotQuote(s string) string { return `"` + dotEscaper.Replace(s) + `"` }

// RenderDOTSVG lays out a DOT graph with Graphviz and returns SVG.
func RenderDOTSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's root element with one whose viewBox
// starts at the origin and whose size matches it, so the SVG scales cleanly
// when embedded.
func normalizeViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[3]), 64)
	h, _ := strconv.ParseFloat(string(m[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
