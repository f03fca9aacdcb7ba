package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/okian/akreditasi/internal/domain/assignment"
	"github.com/okian/akreditasi/internal/domain/gap"
	"github.com/okian/akreditasi/internal/domain/model"
	"github.com/okian/akreditasi/pkg/metrics"
)

// GormStore is the Postgres backend.
type GormStore struct {
	db   *gorm.DB
	now  func() time.Time
	pool PoolConfig
}

// OpenPostgres connects to dsn. PreferSimpleProtocol keeps the store usable
// behind PgBouncer in transaction pooling mode.
func OpenPostgres(dsn string, opts ...GormOption) (*GormStore, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	s := NewGormStore(db, opts...)
	if err := s.tunePool(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewGormStore wraps an open gorm handle.
func NewGormStore(db *gorm.DB, opts ...GormOption) *GormStore {
	s := &GormStore{
		db:  db,
		now: time.Now,
		pool: PoolConfig{
			MaxOpenConns:    20,
			MaxIdleConns:    10,
			ConnMaxIdleTime: 60 * time.Second,
			ConnMaxLifetime: 10 * time.Minute,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *GormStore) tunePool() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "tune pool")
	}
	sqlDB.SetMaxOpenConns(s.pool.MaxOpenConns)
	sqlDB.SetMaxIdleConns(s.pool.MaxIdleConns)
	sqlDB.SetConnMaxIdleTime(s.pool.ConnMaxIdleTime)
	sqlDB.SetConnMaxLifetime(s.pool.ConnMaxLifetime)
	return nil
}

// AutoMigrate creates or updates the tables the store reads.
func (s *GormStore) AutoMigrate(ctx context.Context) error {
	return errors.Wrap(s.db.WithContext(ctx).AutoMigrate(allRows()...), "auto migrate")
}

// LoadSnapshot batch-loads the whole hierarchy, one query per table.
func (s *GormStore) LoadSnapshot(ctx context.Context) (*model.Snapshot, error) {
	start := time.Now()
	db := s.db.WithContext(ctx)

	var (
		programs    []programRow
		standards   []standardRow
		criteria    []criterionRow
		points      []criteriaPointRow
		assignments []assignmentRow
		evaluations []evaluationRow
		targets     []targetRow
		documents   []documentRow
	)
	loads := []struct {
		name  string
		order string
		dest  interface{}
	}{
		{"programs", "name, id", &programs},
		{"standards", "position, id", &standards},
		{"criteria", "position, id", &criteria},
		{"criteria points", "position, id", &points},
		{"assignments", "id", &assignments},
		{"evaluations", "assignment_id, assessor_id, criteria_point_id", &evaluations},
		{"targets", "program_id, year", &targets},
		{"documents", "id", &documents},
	}
	for _, l := range loads {
		if err := db.Order(l.order).Find(l.dest).Error; err != nil {
			metrics.RecordErrorByComponent("repository", "load")
			return nil, errors.Wrapf(err, "load %s", l.name)
		}
	}

	data := assemble(programs, standards, criteria, points, assignments, evaluations, targets, documents, s.now())
	metrics.RecordSnapshotLoad(float64(time.Since(start).Milliseconds()))
	return model.NewSnapshot(data), nil
}

// SubmitEvaluation implements EvaluationWriter. The assignment row is locked
// FOR UPDATE before the guard runs, so a concurrent lock either lands before
// the check and rejects the write or waits for the transaction to commit.
func (s *GormStore) SubmitEvaluation(ctx context.Context, e model.Evaluation) (SubmitResult, error) {
	var res SubmitResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ar assignmentRow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&ar, "id = ?", e.AssignmentID).Error; err != nil {
			return notFound(err, "assignment %s", e.AssignmentID)
		}
		a := ar.toModel()

		var pr criteriaPointRow
		if err := tx.First(&pr, "id = ?", e.CriteriaPointID).Error; err != nil {
			return notFound(err, "criteria point %s", e.CriteriaPointID)
		}
		var ownerRow programRow
		if err := tx.Table("criteria").Select("programs.id, programs.name, programs.unit_id").
			Joins("JOIN standards ON standards.id = criteria.standard_id").
			Joins("JOIN programs ON programs.id = standards.program_id").
			Where("criteria.id = ?", pr.CriterionID).Scan(&ownerRow).Error; err != nil {
			return errors.Wrap(err, "resolve point program")
		}
		owner := model.Program{ID: ownerRow.ID, Name: ownerRow.Name, UnitID: ownerRow.UnitID}
		if err := assignment.CheckSubmission(a, pr.toModel(), owner, e); err != nil {
			return err
		}

		var existing evaluationRow
		err := tx.Where("assignment_id = ? AND assessor_id = ? AND criteria_point_id = ?",
			e.AssignmentID, e.AssessorID, e.CriteriaPointID).Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			res.Created = true
		case err != nil:
			return errors.Wrap(err, "read evaluation")
		}

		now := s.now().UTC()
		row := evaluationRow{
			ID:               uuid.New(),
			AssignmentID:     e.AssignmentID,
			AssessorID:       e.AssessorID,
			CriteriaPointID:  e.CriteriaPointID,
			Score:            e.Score,
			EvaluationStatus: e.Status,
			Notes:            e.Notes,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if !res.Created {
			row.ID = existing.ID
			row.CreatedAt = existing.CreatedAt
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "assignment_id"}, {Name: "assessor_id"}, {Name: "criteria_point_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"score":             row.Score,
				"evaluation_status": row.EvaluationStatus,
				"notes":             row.Notes,
				"updated_at":        row.UpdatedAt,
			}),
		}).Create(&row).Error; err != nil {
			return errors.Wrap(err, "upsert evaluation")
		}
		res.Evaluation = row.toModel()

		var rows []evaluationRow
		if err := tx.Where("assignment_id = ?", a.ID).Find(&rows).Error; err != nil {
			return errors.Wrap(err, "read assignment evaluations")
		}
		evals := make([]model.Evaluation, 0, len(rows))
		for _, r := range rows {
			evals = append(evals, r.toModel())
		}
		var pointIDs []uuid.UUID
		if a.CriterionID != uuid.Nil {
			if err := tx.Model(&criteriaPointRow{}).Where("criterion_id = ?", a.CriterionID).
				Order("position, id").Pluck("id", &pointIDs).Error; err != nil {
				return errors.Wrap(err, "read criteria points")
			}
		}

		res.ProgramID = a.ProgramID
		if res.ProgramID == uuid.Nil {
			res.ProgramID = owner.ID
		}

		res.Status = assignment.NextStatus(a, pointIDs, evals)
		if res.Status != a.Status {
			if err := tx.Model(&assignmentRow{}).Where("id = ?", a.ID).
				Update("status", string(res.Status)).Error; err != nil {
				return errors.Wrap(err, "update assignment status")
			}
		}
		return nil
	})
	if err != nil {
		return SubmitResult{}, err
	}
	return res, nil
}

// BackfillCategories assigns an inferred category to every criterion stored
// without one and returns how many rows changed. It is a one-off migration.
func (s *GormStore) BackfillCategories(ctx context.Context) (int, error) {
	var rows []criterionRow
	if err := s.db.WithContext(ctx).Where("category = ''").Find(&rows).Error; err != nil {
		return 0, errors.Wrap(err, "load uncategorized criteria")
	}
	changed := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, r := range rows {
			cat := gap.InferCategory(r.Name)
			if cat == model.CategoryUncategorized {
				continue
			}
			if err := tx.Model(&criterionRow{}).Where("id = ?", r.ID).
				Update("category", string(cat)).Error; err != nil {
				return errors.Wrapf(err, "categorize criterion %s", r.ID)
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

// Close releases the connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "close")
	}
	return sqlDB.Close()
}

func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrapf(ErrNotFound, format, args...)
	}
	return errors.Wrapf(err, format, args...)
}
