// Package grading maps aggregated scores to grade labels.
//
// Three scales coexist and are never mixed. Descriptive-4 and BAN-PT expect a
// continuous 0..4 score (model.DomainScore4); the institutional scale expects
// a weighted point total (model.DomainPoints, 0..400). PointTotal is the one
// explicit conversion between the two domains.
package grading

import (
	"fmt"
	"strings"

	"github.com/okian/akreditasi/internal/domain/model"
)

// Scale names a grading scale.
type Scale string

// Supported scales.
const (
	ScaleDescriptive4  Scale = "descriptive4"
	ScaleBANPT         Scale = "banpt"
	ScaleInstitutional Scale = "institutional"
)

// Scales lists the supported scales.
func Scales() []Scale {
	return []Scale{ScaleDescriptive4, ScaleBANPT, ScaleInstitutional}
}

// ParseScale resolves a scale name, case-insensitively.
func ParseScale(name string) (Scale, error) {
	s := Scale(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := tables[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownScale, name)
	}
	return s, nil
}

// Domain returns the input domain the scale expects.
func (s Scale) Domain() model.Domain {
	return tables[s].domain
}

// Measure is a value tagged with the domain it lives in.
type Measure struct {
	Value  float64      `json:"value"`
	Domain model.Domain `json:"domain"`
}

// Score4 tags v as a 0..4 evaluation-scale score.
func Score4(v float64) Measure {
	return Measure{Value: v, Domain: model.DomainScore4}
}

// Points tags v as a weighted point total.
func Points(v float64) Measure {
	return Measure{Value: v, Domain: model.DomainPoints}
}

// PointTotal converts a 0..4 score into the institutional point total.
func PointTotal(score4 float64) Measure {
	return Points(score4 * model.PointsPerScore)
}

// In expresses m in domain d, converting only across the PointTotal boundary.
func (m Measure) In(d model.Domain) Measure {
	switch {
	case m.Domain == d:
		return m
	case m.Domain == model.DomainScore4 && d == model.DomainPoints:
		return PointTotal(m.Value)
	default:
		return Measure{Value: m.Value / model.PointsPerScore, Domain: d}
	}
}

// Grade is a classified label.
type Grade struct {
	Label string `json:"label"`
	// Alias is an alternative label the institution also uses, if any.
	Alias string `json:"alias,omitempty"`
	Scale Scale  `json:"scale"`
}

func (g Grade) String() string {
	if g.Alias == "" {
		return g.Label
	}
	return g.Label + "/" + g.Alias
}

type band struct {
	min   float64
	label string
	alias string
}

type table struct {
	domain model.Domain
	// bands, highest lower bound first; the last band catches everything below.
	bands []band
}

var tables = map[Scale]table{
	ScaleDescriptive4: {
		domain: model.DomainScore4,
		bands: []band{
			{min: 3.5, label: "Unggul"},
			{min: 3.0, label: "Sangat Baik"},
			{min: 2.5, label: "Baik"},
			{min: 2.0, label: "Cukup"},
			{label: "Kurang"},
		},
	},
	ScaleBANPT: {
		domain: model.DomainScore4,
		bands: []band{
			{min: 3.5, label: "A"},
			{min: 2.5, label: "B"},
			{min: 1.5, label: "C"},
			{label: "D"},
		},
	},
	ScaleInstitutional: {
		domain: model.DomainPoints,
		bands: []band{
			{min: 361, label: "Unggul"},
			{min: 301, label: "Baik Sekali", alias: "Sangat Baik"},
			{min: 200, label: "Baik"},
			{label: "Tidak Terakreditasi", alias: "Kurang"},
		},
	},
}

// Classify grades m under scale s. Lower bounds are inclusive.
func Classify(m Measure, s Scale) (Grade, error) {
	t, ok := tables[s]
	if !ok {
		return Grade{}, fmt.Errorf("%w: %q", ErrUnknownScale, s)
	}
	if m.Domain != t.domain {
		return Grade{}, fmt.Errorf("%w: %s measure under %s scale (expects %s)", ErrDomainMismatch, m.Domain, s, t.domain)
	}
	last := t.bands[len(t.bands)-1]
	for _, b := range t.bands[:len(t.bands)-1] {
		if m.Value >= b.min {
			return Grade{Label: b.label, Alias: b.alias, Scale: s}, nil
		}
	}
	return Grade{Label: last.label, Alias: last.alias, Scale: s}, nil
}

// ClassifyScore grades an aggregated 0..4 score under s, converting it to a
// point total first when s is the institutional scale.
func ClassifyScore(score4 float64, s Scale) (Grade, error) {
	if _, ok := tables[s]; !ok {
		return Grade{}, fmt.Errorf("%w: %q", ErrUnknownScale, s)
	}
	return Classify(Score4(score4).In(s.Domain()), s)
}
