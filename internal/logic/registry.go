package logic

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/hoopsight/predictions-api/internal/models"
)

const pgUniqueViolation = "23505"

const artifactColumns = `id, model_name, model_version, model_type,
	hyperparameters, training_date, training_sample_count, is_active, created_at`

// registryService stores versioned model artifacts. Activation is a single
// transaction so no reader ever observes zero or two active models.
type registryService struct {
	pg     PgPool
	logger *zap.SugaredLogger
}

func NewModelRegistryService(pg PgPool, logger *zap.Logger) ModelRegistryService {
	return &registryService{pg: pg, logger: logger.Sugar()}
}

func (s *registryService) Register(ctx context.Context, artifact *models.ModelArtifact) (*models.ModelArtifact, error) {
	reg := *artifact
	reg.ID = uuid.NewString()
	reg.IsActive = false
	if reg.Hyperparameters == nil {
		reg.Hyperparameters = models.Hyperparameters{}
	}

	_, err := s.pg.Exec(ctx, `
		INSERT INTO model_artifacts (
			id, model_name, model_version, model_type, hyperparameters,
			training_date, training_sample_count, is_active, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,false,now())
	`, reg.ID, reg.ModelName, reg.ModelVersion, reg.ModelType,
		reg.Hyperparameters, dateOnly(reg.TrainingDate), reg.TrainingSampleCount)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, fmt.Errorf("model %s/%s: %w",
				reg.ModelName, reg.ModelVersion, ErrDuplicateVersion)
		}
		return nil, fmt.Errorf("model registration failed: %w", err)
	}

	s.logger.Infow("Model registered",
		"model_id", reg.ID,
		"name", reg.ModelName,
		"version", reg.ModelVersion,
		"type", reg.ModelType,
	)
	return &reg, nil
}

// Activate atomically moves the active flag to modelID and writes the audit
// row. The previous-active lookup runs FOR UPDATE inside the same
// transaction, which serializes concurrent activations.
func (s *registryService) Activate(ctx context.Context, modelID string) error {
	tx, err := s.pg.Begin(ctx)
	if err != nil {
		return fmt.Errorf("activation begin failed: %w", err)
	}
	defer tx.Rollback(ctx)

	var previousID *string
	err = tx.QueryRow(ctx,
		`SELECT id FROM model_artifacts WHERE is_active FOR UPDATE`,
	).Scan(&previousID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("active model lookup failed: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE model_artifacts SET is_active = false WHERE is_active`,
	); err != nil {
		return fmt.Errorf("deactivation failed: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE model_artifacts SET is_active = true WHERE id = $1`, modelID)
	if err != nil {
		return fmt.Errorf("activation failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("model %s: %w", modelID, ErrNotFound)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO model_activations (previous_model_id, new_model_id, activated_at)
		VALUES ($1, $2, now())
	`, previousID, modelID); err != nil {
		return fmt.Errorf("activation audit log failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("activation commit failed: %w", err)
	}

	prev := ""
	if previousID != nil {
		prev = *previousID
	}
	s.logger.Infow("Model activated", "model_id", modelID, "previous", prev)
	return nil
}

func (s *registryService) GetActive(ctx context.Context) (*models.ModelArtifact, error) {
	artifact, err := s.scanOne(s.pg.QueryRow(ctx,
		`SELECT `+artifactColumns+` FROM model_artifacts WHERE is_active`))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoActiveModel
		}
		return nil, err
	}
	return artifact, nil
}

func (s *registryService) Get(ctx context.Context, modelID string) (*models.ModelArtifact, error) {
	artifact, err := s.scanOne(s.pg.QueryRow(ctx,
		`SELECT `+artifactColumns+` FROM model_artifacts WHERE id = $1`, modelID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("model %s: %w", modelID, ErrNotFound)
		}
		return nil, err
	}
	return artifact, nil
}

func (s *registryService) List(ctx context.Context) ([]models.ModelArtifact, error) {
	rows, err := s.pg.Query(ctx,
		`SELECT `+artifactColumns+` FROM model_artifacts ORDER BY model_name, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("model list query failed: %w", err)
	}
	defer rows.Close()

	artifacts := []models.ModelArtifact{}
	for rows.Next() {
		var a models.ModelArtifact
		if err := rows.Scan(&a.ID, &a.ModelName, &a.ModelVersion, &a.ModelType,
			&a.Hyperparameters, &a.TrainingDate, &a.TrainingSampleCount,
			&a.IsActive, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("model scan failed: %w", err)
		}
		artifacts = append(artifacts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("model row iteration failed: %w", err)
	}
	return artifacts, nil
}

func (s *registryService) scanOne(row pgx.Row) (*models.ModelArtifact, error) {
	var a models.ModelArtifact
	err := row.Scan(&a.ID, &a.ModelName, &a.ModelVersion, &a.ModelType,
		&a.Hyperparameters, &a.TrainingDate, &a.TrainingSampleCount,
		&a.IsActive, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
