// Package planner decides which path columns form which output group and
// which metadata columns travel with the files of each group.
package planner

import (
	"fmt"
	"slices"

	"github.com/vvka-141/dsdist/internal/schema"
	"github.com/vvka-141/dsdist/pkg/dsdist"
)

// Group is one output group.
type Group struct {
	Label           string   // Display label
	PathColumns     []string // Source path columns merged under Label, in schema order
	MetadataColumns []string // Metadata attached to each file of the group
}

// Plan is the ordered list of groups derived from a schema.
type Plan struct {
	Groups []Group
}

// Labels returns the group labels in plan order.
func (p Plan) Labels() []string {
	out := make([]string, len(p.Groups))
	for i, g := range p.Groups {
		out[i] = g.Label
	}
	return out
}

// Build derives the plan for s. Groups appear in the order their first path
// column appears in the schema.
//
// Every path column is assigned every effective metadata column. Path columns
// merged under one label must agree on their metadata columns; a mismatch
// fails with dsdist.ErrValidation instead of being silently merged.
func Build(s schema.Schema) (Plan, error) {
	metadata := s.MetadataColumns()

	var plan Plan
	index := make(map[string]int)

	for _, col := range s.PathColumns() {
		label := s.Label(col)
		if dsdist.IsReservedLabel(label) {
			return Plan{}, fmt.Errorf("path column %q uses reserved label %q; map it to another label: %w", col, label, dsdist.ErrValidation)
		}

		assigned := columnMetadata(metadata, col)

		i, ok := index[label]
		if !ok {
			index[label] = len(plan.Groups)
			plan.Groups = append(plan.Groups, Group{
				Label:           label,
				PathColumns:     []string{col},
				MetadataColumns: assigned,
			})
			continue
		}

		g := &plan.Groups[i]
		if !slices.Equal(g.MetadataColumns, assigned) {
			return Plan{}, fmt.Errorf("path columns %v and %q share label %q but carry different metadata columns (%v vs %v): %w",
				g.PathColumns, col, label, g.MetadataColumns, assigned, dsdist.ErrValidation)
		}
		g.PathColumns = append(g.PathColumns, col)
	}

	return plan, nil
}

// columnMetadata returns the metadata columns of one path column.
func columnMetadata(metadata []string, col string) []string {
	out := make([]string, 0, len(metadata))
	for _, m := range metadata {
		if m != col {
			out = append(out, m)
		}
	}
	return out
}
