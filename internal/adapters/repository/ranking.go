package repository

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/okian/akreditasi/internal/domain/report"
	"github.com/okian/akreditasi/internal/domain/types"
	"github.com/okian/akreditasi/pkg/metrics"
)

// Treap-backed ranking of cached program reports.
//
// Ordering: score DESC, then program ID ASC (deterministic). "less" means
// ranks earlier, so an in-order traversal yields the ranking best first.

// scoreScale controls fixed-point scaling from float64. Scores live in 0..4.
const scoreScale = 1_000_000_000_000

type scoreFP int64

func toFixedPoint(x float64) scoreFP {
	if math.IsNaN(x) {
		return 0
	}
	scaled := x * scoreScale
	if scaled > float64(math.MaxInt64) {
		return scoreFP(math.MaxInt64)
	}
	if scaled < float64(math.MinInt64) {
		return scoreFP(math.MinInt64)
	}
	return scoreFP(math.Round(scaled))
}

func toFloat(x scoreFP) float64 {
	return float64(x) / scoreScale
}

type node struct {
	id    uuid.UUID
	score scoreFP
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func less(aScore scoreFP, aID uuid.UUID, bScore scoreFP, bID uuid.UUID) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return bytes.Compare(aID[:], bID[:]) < 0
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

// priority derives a stable heap priority from the id so the tree shape
// depends only on its contents.
func priority(id uuid.UUID) uint64 {
	return binary.BigEndian.Uint64(id[8:])
}

func insert(n *node, id uuid.UUID, score scoreFP) *node {
	if n == nil {
		return &node{id: id, score: score, prio: priority(id), size: 1}
	}
	if less(score, id, n.score, n.id) {
		n.left = insert(n.left, id, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id uuid.UUID, score scoreFP) *node {
	if n == nil {
		return nil
	}
	switch {
	case score == n.score && id == n.id:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, score)
		}
	case less(score, id, n.score, n.id):
		n.left = deleteNode(n.left, id, score)
	default:
		n.right = deleteNode(n.right, id, score)
	}
	fix(n)
	return n
}

// collect appends every node in rank order.
func collect(n *node, byID map[uuid.UUID]cached, out *[]types.Entry) {
	if n == nil {
		return
	}
	collect(n.left, byID, out)
	if c, ok := byID[n.id]; ok {
		*out = append(*out, types.Entry{
			ProgramID: n.id,
			Name:      c.report.Name,
			Score:     toFloat(c.score),
			Grade:     c.report.Grade.Label,
		})
	}
	collect(n.right, byID, out)
}

type cached struct {
	score  scoreFP
	report report.Program
}

// ranking is an immutable, published view of the order.
type ranking struct {
	entries   []types.Entry
	byProgram map[uuid.UUID]int // index into entries
}

// ReportCache holds the latest computed report of every program and ranks
// programs by score for the executive dashboard.
type ReportCache struct {
	mu   sync.RWMutex
	root *node
	byID map[uuid.UUID]cached

	published atomic.Pointer[ranking]
}

// NewReportCache returns an empty cache.
func NewReportCache() *ReportCache {
	c := &ReportCache{byID: make(map[uuid.UUID]cached)}
	c.published.Store(&ranking{byProgram: map[uuid.UUID]int{}})
	return c
}

// Put stores rep, replacing any previous report of the same program.
func (c *ReportCache) Put(ctx context.Context, rep report.Program) error {
	if rep.ProgramID == uuid.Nil {
		return ErrEmptyProgram
	}
	ns := toFixedPoint(rep.Score())

	c.mu.Lock()
	if old, ok := c.byID[rep.ProgramID]; ok {
		c.root = deleteNode(c.root, rep.ProgramID, old.score)
	}
	c.byID[rep.ProgramID] = cached{score: ns, report: rep}
	c.root = insert(c.root, rep.ProgramID, ns)
	c.publish()
	count := len(c.byID)
	c.mu.Unlock()

	metrics.UpdateRankedPrograms(count)
	return nil
}

// Get returns the cached report of a program.
func (c *ReportCache) Get(ctx context.Context, programID uuid.UUID) (report.Program, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cr, ok := c.byID[programID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return report.Program{}, fmt.Errorf("report %s: %w", programID, ErrNotFound)
	}
	return cr.report, nil
}

// Rank returns the ranking row of a program.
func (c *ReportCache) Rank(ctx context.Context, programID uuid.UUID) (types.Entry, error) {
	r := c.published.Load()
	i, ok := r.byProgram[programID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return types.Entry{}, fmt.Errorf("rank %s: %w", programID, ErrNotFound)
	}
	return r.entries[i], nil
}

// TopN returns up to n rows best first.
func (c *ReportCache) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	r := c.published.Load()
	if n > len(r.entries) {
		n = len(r.entries)
	}
	out := make([]types.Entry, n)
	copy(out, r.entries[:n])
	return out, nil
}

// Count returns the number of cached programs.
func (c *ReportCache) Count(ctx context.Context) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}

// publish rebuilds the published ranking. Callers hold c.mu.
func (c *ReportCache) publish() {
	entries := make([]types.Entry, 0, len(c.byID))
	collect(c.root, c.byID, &entries)
	assignRanksWithTies(entries)

	byProgram := make(map[uuid.UUID]int, len(entries))
	for i, e := range entries {
		byProgram[e.ProgramID] = i
	}
	c.published.Store(&ranking{entries: entries, byProgram: byProgram})
}

// assignRanksWithTies gives equal scores the same rank; ranks stay dense.
func assignRanksWithTies(entries []types.Entry) {
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].Score != entries[i-1].Score {
			rank++
		}
		entries[i].Rank = rank
	}
}
