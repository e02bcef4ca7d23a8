package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidAllocationName = errors.New("invalid allocation name")

const maxAllocationNameLength = 255

// Allocation is one node of a business's fund-allocation tree. A nil parent
// marks the root. Each allocation owns one Account (and through it one
// ledger account); reallocations move funds between sibling or ancestor
// allocations with balanced postings.
type Allocation struct {
	ID                 string
	BusinessID         string
	ParentAllocationID *string
	AccountID          string
	Name               string
	CreatedAt          time.Time
}

// ValidateAllocationName checks the display name.
func ValidateAllocationName(name string) error {
	name = strings.TrimSpace(name)

	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidAllocationName)
	}

	if len(name) > maxAllocationNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidAllocationName, maxAllocationNameLength)
	}

	return nil
}

// AllocationPermissions is the per-request read model assembled from an
// allocation's ancestor chain: a permission granted on an ancestor applies
// to every descendant. It is not owned by any entity and never persisted.
type AllocationPermissions struct {
	AllocationID string
	// AncestorIDs is ordered nearest-first, ending at the root.
	AncestorIDs []string
}

// InheritsFrom reports whether the allocation inherits from the given
// ancestor.
func (p *AllocationPermissions) InheritsFrom(allocationID string) bool {
	for _, id := range p.AncestorIDs {
		if id == allocationID {
			return true
		}
	}

	return false
}
