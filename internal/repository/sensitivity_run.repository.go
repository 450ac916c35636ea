package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"strategysim/internal/db/models/postgres/public/model"
	"strategysim/internal/db/models/postgres/public/table"

	"github.com/go-jet/jet/v2/postgres"
	"github.com/go-jet/jet/v2/qrm"
	"github.com/google/uuid"
)

type SensitivityRunRepository interface {
	Add(tx *sql.Tx, run model.SensitivityRun) (*model.SensitivityRun, error)
	Get(id uuid.UUID) (*model.SensitivityRun, error)
	List(limit int64) ([]model.SensitivityRun, error)
}

type sensitivityRunRepositoryHandler struct {
	Db *sql.DB
}

func NewSensitivityRunRepository(db *sql.DB) SensitivityRunRepository {
	return sensitivityRunRepositoryHandler{Db: db}
}

func (h sensitivityRunRepositoryHandler) Add(tx *sql.Tx, run model.SensitivityRun) (*model.SensitivityRun, error) {
	if run.SensitivityRunID == uuid.Nil {
		run.SensitivityRunID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	query := table.SensitivityRun.
		INSERT(
			table.SensitivityRun.AllColumns,
		).
		MODEL(run).
		RETURNING(table.SensitivityRun.AllColumns)

	var db qrm.Queryable = h.Db
	if tx != nil {
		db = tx
	}

	out := model.SensitivityRun{}
	err := query.Query(db, &out)
	if err != nil {
		return nil, fmt.Errorf("failed to insert sensitivity run: %w", err)
	}

	return &out, nil
}

// Get returns nil, nil when no run has the id
func (h sensitivityRunRepositoryHandler) Get(id uuid.UUID) (*model.SensitivityRun, error) {
	query := table.SensitivityRun.
		SELECT(table.SensitivityRun.AllColumns).
		WHERE(table.SensitivityRun.SensitivityRunID.EQ(postgres.UUID(id)))

	result := model.SensitivityRun{}
	err := query.Query(h.Db, &result)
	if errors.Is(err, qrm.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get sensitivity run %s: %w", id.String(), err)
	}

	return &result, nil
}

// List returns the most recent runs first. the result column is left
// empty since it can be large
func (h sensitivityRunRepositoryHandler) List(limit int64) ([]model.SensitivityRun, error) {
	if limit <= 0 {
		limit = 50
	}
	query := table.SensitivityRun.
		SELECT(
			table.SensitivityRun.SensitivityRunID,
			table.SensitivityRun.Seed,
			table.SensitivityRun.NumSimulations,
			table.SensitivityRun.NumFailed,
			table.SensitivityRun.Partial,
			table.SensitivityRun.CreatedAt,
		).
		ORDER_BY(table.SensitivityRun.CreatedAt.DESC()).
		LIMIT(limit)

	result := []model.SensitivityRun{}
	err := query.Query(h.Db, &result)
	if errors.Is(err, qrm.ErrNoRows) {
		return []model.SensitivityRun{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to list sensitivity runs: %w", err)
	}

	return result, nil
}
