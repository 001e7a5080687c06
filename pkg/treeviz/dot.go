// Package treeviz draws the structure of a template as a Graphviz graph.
//
// Every object and sequence becomes a box; scalar style values are listed
// inside the box of the object that holds them. [ToDOT] produces the DOT
// source and [RenderSVG] / [RenderPNG] lay it out with Graphviz.
package treeviz

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/figstyle/pkg/figure"
	"github.com/matzehuels/figstyle/pkg/template"
)

// Options configures tree rendering.
type Options struct {
	// Values lists scalar values inside their container's box.
	// When false, only container keys are shown.
	Values bool

	// MaxDepth limits how many container levels are drawn (0 = unlimited).
	MaxDepth int
}

// ToDOT converts a template to Graphviz DOT format.
// Output is deterministic: nodes are numbered in template order.
func ToDOT(t *template.Template, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=12];\n")
	buf.WriteString("  edge [fontsize=10, color=\"#888888\"];\n")
	buf.WriteString("\n")

	b := &dotBuilder{buf: &buf, opts: opts}
	b.node("template", t.Object(), 1)

	buf.WriteString("}\n")
	return buf.String()
}

type dotBuilder struct {
	buf  *bytes.Buffer
	opts Options
	next int
}

// node writes v (an object or sequence) and its descendants and returns
// the node ID.
func (b *dotBuilder) node(title string, v any, depth int) string {
	id := fmt.Sprintf("n%d", b.next)
	b.next++

	var lines []string
	type child struct {
		label string
		value any
	}
	var children []child

	add := func(label string, value any) {
		if figure.KindOf(value) == figure.KindScalar {
			if b.opts.Values {
				lines = append(lines, fmt.Sprintf("%s = %s", label, fmtScalar(value)))
			}
			return
		}
		children = append(children, child{label, value})
	}

	switch x := v.(type) {
	case *figure.Object:
		x.Range(func(key string, value any) bool {
			add(key, value)
			return true
		})
	case []any:
		for i, value := range x {
			add(fmt.Sprintf("[%d]", i), value)
		}
	}

	label := title
	if len(lines) > 0 {
		label += "\n" + strings.Join(lines, "\n")
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if figure.KindOf(v) == figure.KindSequence {
		attrs = append(attrs, "fillcolor=\"#eef3ff\"")
	}
	fmt.Fprintf(b.buf, "  %s [%s];\n", id, strings.Join(attrs, ", "))

	if b.opts.MaxDepth > 0 && depth >= b.opts.MaxDepth {
		return id
	}
	for _, c := range children {
		childID := b.node(c.label, c.value, depth+1)
		fmt.Fprintf(b.buf, "  %s -> %s;\n", id, childID)
	}
	return id
}

func fmtScalar(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(x)
	default:
		return fmt.Sprint(x)
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	data, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(data), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
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
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based svg header with one whose
// viewBox starts at the origin, so the drawing scales cleanly in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
