// Package scoring rolls evaluations up the program hierarchy.
//
// Every computation is a pure function of a *model.Snapshot and a
// model.Scope: no clock reads, no randomness, and sums are taken in a
// canonical (id) order so identical snapshots give bit-identical results
// regardless of load order.
package scoring

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/okian/akreditasi/internal/domain/model"
)

const defaultCompletenessFactor = 0.8

// Basis tags how a score was derived.
type Basis string

// Bases, ordered from strongest to weakest.
const (
	BasisEvidence     Basis = "evidence"
	BasisCompleteness Basis = "completeness"
	BasisNoEvidence   Basis = "no_evidence"
)

func (b Basis) rank() int {
	switch b {
	case BasisEvidence:
		return 2
	case BasisCompleteness:
		return 1
	default:
		return 0
	}
}

// strongest returns the stronger of two bases.
func strongest(a, b Basis) Basis {
	if b.rank() > a.rank() {
		return b
	}
	return a
}

// Level names a hierarchy level.
type Level string

// Hierarchy levels.
const (
	LevelProgram   Level = "program"
	LevelStandard  Level = "standard"
	LevelCriterion Level = "criterion"
)

// Result is an aggregated score on the 0..4 evaluation scale.
type Result struct {
	Score           float64 `json:"score"`
	Basis           Basis   `json:"basis"`
	EvidenceCount   int     `json:"evidence_count"`
	AssignmentCount int     `json:"assignment_count"`
}

func noEvidence() Result {
	return Result{Basis: BasisNoEvidence}
}

// Node is one level of an aggregated hierarchy.
type Node struct {
	ID       uuid.UUID      `json:"id"`
	Name     string         `json:"name"`
	Level    Level          `json:"level"`
	Weight   float64        `json:"weight"`
	Category model.Category `json:"category,omitempty"`
	Result
	// Skipped nodes carry invalid data and are left out of their parent's rollup.
	Skipped  bool   `json:"skipped,omitempty"`
	Children []Node `json:"children,omitempty"`
}

// Skip records a node excluded from aggregation and why.
type Skip struct {
	NodeID uuid.UUID `json:"node_id"`
	Level  Level     `json:"level"`
	Reason string    `json:"reason"`
	Err    error     `json:"-"`
}

func newSkip(id uuid.UUID, level Level, err error) Skip {
	return Skip{NodeID: id, Level: level, Reason: err.Error(), Err: err}
}

// Report is a program's aggregated tree plus the nodes that were skipped.
type Report struct {
	Program Node   `json:"program"`
	Skipped []Skip `json:"skipped"`
}

// Criteria flattens the report into its criterion nodes, standards in order.
func (r Report) Criteria() []Node {
	var out []Node
	for _, s := range r.Program.Children {
		out = append(out, s.Children...)
	}
	return out
}

// Aggregator computes scores for criteria, standards and programs.
// It holds no mutable state and is safe for concurrent use.
type Aggregator struct {
	completenessFactor float64
}

// New creates an Aggregator with configuration options.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{completenessFactor: defaultCompletenessFactor}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Program aggregates a whole program. Invalid standards or criteria are
// skipped and listed in the report; only an unknown program is an error.
func (a *Aggregator) Program(snap *model.Snapshot, scope model.Scope, programID uuid.UUID) (Report, error) {
	p, ok := snap.Program(programID)
	if !ok {
		return Report{}, fmt.Errorf("%w: %s", ErrUnknownProgram, programID)
	}
	if scope.ProgramID == uuid.Nil {
		scope.ProgramID = programID
	}

	report := Report{Skipped: []Skip{}}
	node := Node{ID: p.ID, Name: p.Name, Level: LevelProgram}

	for _, s := range p.Standards {
		child, skips, err := a.Standard(snap, scope, s)
		report.Skipped = append(report.Skipped, skips...)
		if err != nil {
			report.Skipped = append(report.Skipped, newSkip(s.ID, LevelStandard, err))
			child = Node{ID: s.ID, Name: s.Name, Level: LevelStandard, Weight: s.Weight, Result: noEvidence(), Skipped: true}
		}
		node.Children = append(node.Children, child)
	}

	node.Result = rollup(node.Children)
	report.Program = node
	return report, nil
}

// Standard aggregates a standard. The returned error is non-nil only when the
// standard itself is invalid; invalid criteria are reported as skips.
func (a *Aggregator) Standard(snap *model.Snapshot, scope model.Scope, s model.Standard) (Node, []Skip, error) {
	if err := checkWeight(s.Weight); err != nil {
		return Node{}, nil, fmt.Errorf("standard %s: %w", s.ID, err)
	}

	node := Node{ID: s.ID, Name: s.Name, Level: LevelStandard, Weight: s.Weight}
	var skips []Skip
	for _, c := range s.Criteria {
		res, err := a.Criterion(snap, scope, c)
		child := Node{ID: c.ID, Name: c.Name, Level: LevelCriterion, Weight: c.Weight, Category: c.Category, Result: res}
		if err != nil {
			skips = append(skips, newSkip(c.ID, LevelCriterion, err))
			child.Result = noEvidence()
			child.Skipped = true
		}
		node.Children = append(node.Children, child)
	}

	node.Result = rollup(node.Children)
	return node, skips, nil
}

// Criterion aggregates a criterion from its active, in-scope assignments.
func (a *Aggregator) Criterion(snap *model.Snapshot, scope model.Scope, c model.Criterion) (Result, error) {
	if err := checkWeight(c.Weight); err != nil {
		return Result{}, fmt.Errorf("criterion %s: %w", c.ID, err)
	}
	points := make(map[uuid.UUID]model.CriteriaPoint, len(c.Points))
	for _, p := range c.Points {
		if !(p.MaxScore > 0) || math.IsInf(p.MaxScore, 0) {
			return Result{}, fmt.Errorf("criterion %s point %s: %w (%v)", c.ID, p.ID, ErrInvalidMaxScore, p.MaxScore)
		}
		points[p.ID] = p
	}

	var assignments []model.Assignment
	for _, asg := range snap.AssignmentsForCriterion(c.ID) {
		if asg.Active() && scope.Includes(asg) {
			assignments = append(assignments, asg)
		}
	}
	if len(assignments) == 0 {
		return noEvidence(), nil
	}
	sort.Slice(assignments, func(i, j int) bool { return less(assignments[i].ID, assignments[j].ID) })

	res := Result{Basis: BasisNoEvidence}
	sum := 0.0
	for _, asg := range assignments {
		contribution, basis, n, err := a.contribution(snap, scope, c, points, asg)
		if err != nil {
			return Result{}, fmt.Errorf("criterion %s: %w", c.ID, err)
		}
		// A unit-scoped assignment only weighs in on criteria it scored.
		if asg.UnitScoped() && n == 0 {
			continue
		}
		sum += contribution
		res.AssignmentCount++
		res.EvidenceCount += n
		res.Basis = strongest(res.Basis, basis)
	}
	if res.AssignmentCount == 0 {
		return noEvidence(), nil
	}
	res.Score = sum / float64(res.AssignmentCount)
	return res, nil
}

// contribution is one assignment's share of a criterion score. A stored score
// that is not a finite number is corrupt and fails the whole criterion.
func (a *Aggregator) contribution(snap *model.Snapshot, scope model.Scope, c model.Criterion, points map[uuid.UUID]model.CriteriaPoint, asg model.Assignment) (float64, Basis, int, error) {
	var scores []scored
	for _, e := range snap.EvaluationsFor(asg.ID) {
		p, ok := points[e.CriteriaPointID]
		if !ok || e.AssessorID != asg.AssessorID || !scope.IncludesEvaluation(e) {
			continue
		}
		if math.IsNaN(e.Score) || math.IsInf(e.Score, 0) {
			return 0, BasisNoEvidence, 0, fmt.Errorf("assignment %s point %s: %w (%v)", asg.ID, e.CriteriaPointID, ErrInvalidScore, e.Score)
		}
		scores = append(scores, scored{id: e.CriteriaPointID, score: clamp(e.Score, 0, p.MaxScore)})
	}

	if len(scores) > 0 {
		sort.Slice(scores, func(i, j int) bool { return less(scores[i].id, scores[j].id) })
		sum := 0.0
		for _, s := range scores {
			sum += s.score
		}
		return sum / float64(len(scores)), BasisEvidence, len(scores), nil
	}

	if snap.AssignmentDocuments(asg.ID).Validated > 0 {
		// Optimistic placeholder until an assessor scores the criterion.
		return c.Ceiling() * a.completenessFactor, BasisCompleteness, 0, nil
	}
	return 0, BasisNoEvidence, 0, nil
}

type scored struct {
	id    uuid.UUID
	score float64
}

// rollup is the weight-normalized mean of the non-skipped children.
func rollup(children []Node) Result {
	included := make([]Node, 0, len(children))
	for _, c := range children {
		if !c.Skipped {
			included = append(included, c)
		}
	}
	sort.Slice(included, func(i, j int) bool { return less(included[i].ID, included[j].ID) })

	res := noEvidence()
	var weighted, total float64
	for _, c := range included {
		weighted += c.Score * c.Weight
		total += c.Weight
		res.EvidenceCount += c.EvidenceCount
		res.AssignmentCount += c.AssignmentCount
		res.Basis = strongest(res.Basis, c.Basis)
	}
	if total > 0 {
		res.Score = weighted / total
	}
	return res
}

func checkWeight(w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidWeight, w)
	}
	return nil
}

// clamp maps NaN to lo.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func less(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}
