package render

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/toolrack/pkg/build"
	"github.com/matzehuels/toolrack/pkg/buildinfo"
	"github.com/matzehuels/toolrack/pkg/cad"
	"github.com/matzehuels/toolrack/pkg/layout"
	"github.com/matzehuels/toolrack/pkg/params"
	"github.com/matzehuels/toolrack/pkg/tool"
)

// Document is the plan of one build.
type Document struct {
	RunID       string          `json:"run_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Version     string          `json:"version"`
	Component   string          `json:"component"`
	Layout      LayoutSummary   `json:"layout"`
	Plate       build.Plate     `json:"plate"`
	Params      map[string]any  `json:"params"`
	Ops         []cad.Op        `json:"ops"`
	Warnings    []build.Warning `json:"warnings"`
	Counts      build.Counts    `json:"counts"`
}

// LayoutSummary describes a computed grid.
type LayoutSummary struct {
	Rows        int          `json:"rows"`
	Cols        int          `json:"cols"`
	PartWidth   float64      `json:"part_width"`
	PartDepth   float64      `json:"part_depth"`
	StackHeight float64      `json:"stack_height"`
	ColWidths   []float64    `json:"col_widths"`
	RowDepths   []float64    `json:"row_depths"`
	Tools       []PlacedTool `json:"tools"`
}

// PlacedTool is a tool with its hole center and label anchor.
type PlacedTool struct {
	Name           string       `json:"name"`
	Row            int          `json:"row"`
	Col            int          `json:"col"`
	HandleDiameter float64      `json:"handle_d_mm"`
	ShaftDiameter  float64      `json:"shaft_d_mm"`
	Center         layout.Point `json:"center"`
	Label          layout.Point `json:"label"`
	LabelClamped   bool         `json:"label_clamped,omitempty"`
}

// Summarize describes g and the enabled tools placed on it, in cell order.
func Summarize(g layout.Grid, tools []tool.Tool, p params.Set) LayoutSummary {
	s := LayoutSummary{
		Rows:        g.Rows(),
		Cols:        g.Cols(),
		PartWidth:   g.PartWidth,
		PartDepth:   g.PartDepth,
		StackHeight: build.StackHeight(g, p),
		ColWidths:   make([]float64, g.Cols()),
		RowDepths:   make([]float64, g.Rows()),
	}
	for c := range s.ColWidths {
		s.ColWidths[c] = g.ColWidths[c]
	}
	for r := range s.RowDepths {
		s.RowDepths[r] = g.RowDepths[r]
	}
	for _, t := range tool.SortByCell(tool.Enabled(tools)) {
		label, clamped := build.LabelPosition(g, t, p)
		s.Tools = append(s.Tools, PlacedTool{
			Name:           t.Name,
			Row:            t.Row,
			Col:            t.Col,
			HandleDiameter: t.HandleDiameter,
			ShaftDiameter:  t.ShaftDiameter,
			Center:         g.Centers[t.Cell()],
			Label:          label,
			LabelClamped:   clamped,
		})
	}
	return s
}

// NewDocument assembles the plan of res under a fresh run id.
func NewDocument(res *build.Result, g layout.Grid, tools []tool.Tool, p params.Set) Document {
	warnings := res.Warnings
	if warnings == nil {
		warnings = []build.Warning{}
	}
	return Document{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Version:     buildinfo.Version,
		Component:   res.Component,
		Layout:      Summarize(g, tools, p),
		Plate:       res.Plate,
		Params:      p.Values(),
		Ops:         res.Ops,
		Warnings:    warnings,
		Counts:      res.Counts(),
	}
}

// PlanJSON encodes doc as indented JSON.
func PlanJSON(doc Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// ParsePlan decodes a document written by PlanJSON.
func ParsePlan(data []byte) (Document, error) {
	var doc Document
	err := json.Unmarshal(data, &doc)
	return doc, err
}
