package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/srgjo27/campus_ticket/internal/core/domain"
)

const (
	roleAdmin     = "admin"
	roleClubAdmin = "club_admin"
)

type OperatorRepository struct {
	db *sql.DB
}

func NewOperatorRepository(db *sql.DB) *OperatorRepository {
	return &OperatorRepository{db: db}
}

// GetOperatorScope returns a non-elevated scope for users without an
// operators row.
func (r *OperatorRepository) GetOperatorScope(ctx context.Context, operatorID uuid.UUID) (domain.OperatorScope, error) {
	query := `SELECT role, club_id FROM operators WHERE user_id = $1`

	scope := domain.OperatorScope{OperatorID: operatorID}

	var role string
	var clubID uuid.NullUUID
	err := r.db.QueryRowContext(ctx, query, operatorID).Scan(&role, &clubID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return scope, nil
		}
		return scope, fmt.Errorf("failed to fetch operator %s: %w", operatorID, err)
	}

	switch role {
	case roleAdmin:
		scope.IsGlobalAdmin = true
	case roleClubAdmin:
		if clubID.Valid {
			club := clubID.UUID
			scope.ScopedClubID = &club
		}
	}

	return scope, nil
}
