package domain

import (
	"encoding/json"
	"time"
)

// AuditLog is an audit trail entry for compliance and debugging.
type AuditLog struct {
	ID           string
	ActorID      string // who performed the action; "network" for card-network events
	Action       string
	ResourceType string
	ResourceID   string
	RequestID    string
	BeforeState  JSON
	AfterState   JSON
	Status       string
	ErrorMessage string
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	AuditActionJournalEntryCreate AuditAction = "journal_entry.create"

	AuditActionAdjustmentDebit  AuditAction = "adjustment.debit"
	AuditActionAdjustmentCredit AuditAction = "adjustment.credit"

	AuditActionAuthApprove AuditAction = "authorization.approve"
	AuditActionAuthDecline AuditAction = "authorization.decline"
	AuditActionAuthSettle  AuditAction = "authorization.settle"

	AuditActionAllocationCreate     AuditAction = "allocation.create"
	AuditActionAllocationReallocate AuditAction = "allocation.reallocate"
	AuditActionAllocationFund       AuditAction = "allocation.fund"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
)

// MarshalState converts a domain object to JSON for audit logging.
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	ActorID      string
	Action       string
	ResourceType string
	ResourceID   string
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Offset       int
}
