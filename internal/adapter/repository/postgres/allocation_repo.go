package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finvola/cardledger/internal/domain"
	"github.com/finvola/cardledger/internal/usecase"
)

// AllocationRepository implements usecase.AllocationRepository.
type AllocationRepository struct {
	pool *pgxpool.Pool
}

// NewAllocationRepository creates a new AllocationRepository.
func NewAllocationRepository(pool *pgxpool.Pool) *AllocationRepository {
	return &AllocationRepository{pool: pool}
}

// Create persists an allocation node inside the caller's transaction.
func (r *AllocationRepository) Create(ctx context.Context, tx usecase.Transaction, allocation *domain.Allocation) error {
	_, err := txQuerier(tx).Exec(ctx,
		`INSERT INTO allocations (id, business_id, parent_allocation_id, account_id, name, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		allocation.ID, allocation.BusinessID, allocation.ParentAllocationID,
		allocation.AccountID, allocation.Name, timeToPgTimestamptz(allocation.CreatedAt))

	return err
}

const selectAllocationSQL = `
	SELECT id, business_id, parent_allocation_id, account_id, name, created_at
	FROM allocations
`

// GetByID retrieves an allocation by ID.
func (r *AllocationRepository) GetByID(ctx context.Context, id string) (*domain.Allocation, error) {
	row := r.pool.QueryRow(ctx, selectAllocationSQL+" WHERE id = $1", id)

	allocation, err := scanAllocation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAllocationNotFound
		}

		return nil, err
	}

	return allocation, nil
}

// GetChildren lists the direct children of an allocation.
func (r *AllocationRepository) GetChildren(ctx context.Context, id string) ([]*domain.Allocation, error) {
	rows, err := r.pool.Query(ctx,
		selectAllocationSQL+" WHERE parent_allocation_id = $1 ORDER BY created_at", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var children []*domain.Allocation
	for rows.Next() {
		allocation, err := scanAllocation(rows)
		if err != nil {
			return nil, err
		}

		children = append(children, allocation)
	}

	return children, rows.Err()
}

// GetAncestorIDs walks the tree upward with a recursive CTE and returns the
// ancestor chain nearest-first.
func (r *AllocationRepository) GetAncestorIDs(ctx context.Context, id string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		WITH RECURSIVE ancestors AS (
			SELECT parent_allocation_id, 1 AS depth
			FROM allocations
			WHERE id = $1
			UNION ALL
			SELECT a.parent_allocation_id, anc.depth + 1
			FROM allocations a
			JOIN ancestors anc ON a.id = anc.parent_allocation_id
		)
		SELECT parent_allocation_id
		FROM ancestors
		WHERE parent_allocation_id IS NOT NULL
		ORDER BY depth
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ancestorIDs []string
	for rows.Next() {
		var ancestorID string
		if err := rows.Scan(&ancestorID); err != nil {
			return nil, err
		}

		ancestorIDs = append(ancestorIDs, ancestorID)
	}

	return ancestorIDs, rows.Err()
}

func scanAllocation(row pgx.Row) (*domain.Allocation, error) {
	var allocation domain.Allocation

	err := row.Scan(
		&allocation.ID, &allocation.BusinessID, &allocation.ParentAllocationID,
		&allocation.AccountID, &allocation.Name, &allocation.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &allocation, nil
}
