package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finvola/cardledger/internal/domain"
	"github.com/finvola/cardledger/internal/infrastructure/metrics"
)

// NetworkUseCase turns card-network events into holds, postings, and
// adjustments. Every event produces exactly one NetworkMessage record; the
// externalRef+type chain is the idempotency key, so retried deliveries get
// the recorded decision back without reprocessing.
type NetworkUseCase struct {
	txManager         TransactionManager
	cardRepo          CardRepository
	accountRepo       AccountRepository
	ledgerAccountRepo LedgerAccountRepository
	journalRepo       JournalRepository
	adjustmentRepo    AdjustmentRepository
	holdRepo          HoldRepository
	messageRepo       NetworkMessageRepository
	outboxRepo        OutboxRepository
	auditRepo         AuditRepository
	idGen             IDGenerator
	cache             BalanceCache
	metrics           *metrics.Metrics
	limitWindow       time.Duration
}

// NewNetworkUseCase creates a new NetworkUseCase.
func NewNetworkUseCase(
	txManager TransactionManager,
	cardRepo CardRepository,
	accountRepo AccountRepository,
	ledgerAccountRepo LedgerAccountRepository,
	journalRepo JournalRepository,
	adjustmentRepo AdjustmentRepository,
	holdRepo HoldRepository,
	messageRepo NetworkMessageRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	cache BalanceCache,
	metrics *metrics.Metrics,
) *NetworkUseCase {
	return &NetworkUseCase{
		txManager:         txManager,
		cardRepo:          cardRepo,
		accountRepo:       accountRepo,
		ledgerAccountRepo: ledgerAccountRepo,
		journalRepo:       journalRepo,
		adjustmentRepo:    adjustmentRepo,
		holdRepo:          holdRepo,
		messageRepo:       messageRepo,
		outboxRepo:        outboxRepo,
		auditRepo:         auditRepo,
		idGen:             idGen,
		cache:             cache,
		metrics:           metrics,
		limitWindow:       SpendLimitWindow,
	}
}

// ProcessResult carries the decision returned to the webhook layer and the
// message recorded for the event.
type ProcessResult struct {
	Decision domain.AuthDecision
	Message  *domain.NetworkMessage
	// Replayed is set when the decision came from the idempotency record
	// rather than fresh processing.
	Replayed bool
}

// ProcessNetworkMessage processes one inbound card-network event and returns
// the authorization decision synchronously. Declines are decisions, not
// errors: they persist a message with the reason and nothing else.
func (uc *NetworkUseCase) ProcessNetworkMessage(ctx context.Context, event domain.NetworkEvent) (*ProcessResult, error) {
	start := time.Now()

	// Idempotency guard: the same externalRef+type is never reprocessed.
	prior, err := uc.messageRepo.GetLatestByExternalRefAndType(ctx, event.ExternalRef, event.Type)
	if err == nil {
		if uc.metrics != nil {
			uc.metrics.DuplicateMessages.Inc()
		}

		return &ProcessResult{Decision: prior.Decision(), Message: prior, Replayed: true}, nil
	}

	if !errors.Is(err, domain.ErrNetworkMessageNotFound) {
		return nil, err
	}

	var result *ProcessResult

	switch event.Type {
	case domain.NetworkMessageTypeAuthRequest:
		result, err = uc.authorize(ctx, event)
	case domain.NetworkMessageTypeAuthCreated:
		result, err = uc.recordAuthorization(ctx, event)
	case domain.NetworkMessageTypeAuthUpdated:
		result, err = uc.updateAuthorization(ctx, event)
	case domain.NetworkMessageTypeTransactionCreated:
		result, err = uc.settle(ctx, event)
	default:
		return nil, fmt.Errorf("unsupported network message type %q", event.Type)
	}

	if err != nil {
		// A duplicate delivery racing past the idempotency pre-read loses
		// to the (externalRef, type) uniqueness at insert; answer it from
		// the recorded message like any other replay.
		if errors.Is(err, domain.ErrDuplicateNetworkMessage) {
			prior, readErr := uc.messageRepo.GetLatestByExternalRefAndType(ctx, event.ExternalRef, event.Type)
			if readErr != nil {
				return nil, readErr
			}

			if uc.metrics != nil {
				uc.metrics.DuplicateMessages.Inc()
			}

			return &ProcessResult{Decision: prior.Decision(), Message: prior, Replayed: true}, nil
		}

		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.MessageDuration.WithLabelValues(string(event.Type)).Observe(time.Since(start).Seconds())

		if result.Decision.Approved {
			uc.metrics.AuthorizationsApproved.Inc()
		} else {
			uc.metrics.AuthorizationsDeclined.WithLabelValues(string(result.Decision.DeclineReason)).Inc()
		}
	}

	return result, nil
}

// authorize handles AUTH_REQUEST. Checks run in fixed order, cheapest first;
// the first failure wins and is final for this message.
func (uc *NetworkUseCase) authorize(ctx context.Context, event domain.NetworkEvent) (*ProcessResult, error) {
	if !event.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	card, err := uc.cardRepo.GetByID(ctx, event.CardID)
	if err != nil {
		if errors.Is(err, domain.ErrCardNotFound) {
			return uc.decline(ctx, event, "", domain.DeclineReasonCardNotFound)
		}

		return nil, err
	}

	if card.Status != domain.CardStatusActive {
		return uc.decline(ctx, event, card.AccountID, domain.DeclineReasonInvalidCardStatus)
	}

	since := time.Now().UTC().Add(-uc.limitWindow)

	if card.Limits.DailyAmount != nil {
		spent, err := uc.messageRepo.SumApprovedAmountSince(ctx, card.ID, since)
		if err != nil {
			return nil, err
		}

		if spent.Add(event.Amount.Amount).GreaterThan(*card.Limits.DailyAmount) {
			return uc.decline(ctx, event, card.AccountID, domain.DeclineReasonLimitExceeded)
		}
	}

	if card.Limits.DailyCount != nil {
		count, err := uc.messageRepo.CountApprovedSince(ctx, card.ID, since)
		if err != nil {
			return nil, err
		}

		if count+1 > *card.Limits.DailyCount {
			return uc.decline(ctx, event, card.AccountID, domain.DeclineReasonOperationLimitExceeded)
		}
	}

	if card.MCCBlocked(event.MCC) || card.ChannelBlocked(event.Channel) {
		return uc.decline(ctx, event, card.AccountID, domain.DeclineReasonSpendControlViolated)
	}

	// Balance check and hold creation run under the account row lock so
	// concurrent authorizations cannot both pass and overdraw.
	now := time.Now().UTC()

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, card.AccountID)
	if err != nil {
		return nil, err
	}

	available := account.AvailableBalance()
	if short, err := available.LessThan(event.Amount); err != nil {
		return nil, err
	} else if short {
		// Roll back the empty transaction and record the decline outside it.
		_ = tx.Rollback(txCtx)
		return uc.decline(ctx, event, account.ID, domain.DeclineReasonInsufficientFunds)
	}

	hold := &domain.Hold{
		ID:          uc.idGen.Generate(),
		AccountID:   account.ID,
		ExternalRef: event.ExternalRef,
		Amount:      event.Amount,
		Status:      domain.HoldStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := hold.Validate(); err != nil {
		return nil, err
	}

	if err := uc.holdRepo.Create(txCtx, tx, hold); err != nil {
		return nil, err
	}

	newHoldTotal, err := account.HoldTotal.Add(event.Amount)
	if err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalances(txCtx, tx, account.ID, account.LedgerBalance, newHoldTotal, now); err != nil {
		return nil, err
	}

	message := uc.newMessage(event, account.ID, now)
	message.HoldID = &hold.ID

	if err := uc.messageRepo.CreateTx(txCtx, tx, message); err != nil {
		return nil, err
	}

	outboxEvent := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   hold.ID,
		AggregateType: domain.AggregateTypeHold,
		EventType:     domain.EventTypeHoldCreated,
		Payload: map[string]any{
			"hold_id":      hold.ID,
			"account_id":   account.ID,
			"external_ref": event.ExternalRef,
			"amount":       event.Amount.Amount.String(),
			"currency":     event.Amount.Currency,
		},
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, outboxEvent); err != nil {
		return nil, err
	}

	if err := uc.audit(txCtx, tx, domain.AuditActionAuthApprove, "hold", hold.ID, domain.MarshalState(hold), now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.HoldsCreated.Inc()
	}

	return &ProcessResult{Decision: domain.Approved(), Message: message}, nil
}

// recordAuthorization handles AUTH_CREATED: the network's confirmation that
// an authorization exists. When the approval already created a hold this is
// a pure chain link; a confirmation without a hold (stand-in processing)
// creates the hold without re-running decline checks, since the network has
// already committed the authorization.
func (uc *NetworkUseCase) recordAuthorization(ctx context.Context, event domain.NetworkEvent) (*ProcessResult, error) {
	now := time.Now().UTC()

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	hold, err := uc.holdRepo.GetActiveByExternalRefForUpdate(txCtx, tx, event.ExternalRef)
	if err != nil && !errors.Is(err, domain.ErrHoldNotFound) {
		return nil, err
	}

	var accountID string

	if hold == nil {
		card, err := uc.cardRepo.GetByID(ctx, event.CardID)
		if err != nil {
			return nil, err
		}

		account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, card.AccountID)
		if err != nil {
			return nil, err
		}

		accountID = account.ID

		hold = &domain.Hold{
			ID:          uc.idGen.Generate(),
			AccountID:   account.ID,
			ExternalRef: event.ExternalRef,
			Amount:      event.Amount,
			Status:      domain.HoldStatusActive,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := uc.holdRepo.Create(txCtx, tx, hold); err != nil {
			return nil, err
		}

		newHoldTotal, err := account.HoldTotal.Add(event.Amount)
		if err != nil {
			return nil, err
		}

		if err := uc.accountRepo.UpdateBalances(txCtx, tx, account.ID, account.LedgerBalance, newHoldTotal, now); err != nil {
			return nil, err
		}
	} else {
		accountID = hold.AccountID
	}

	message := uc.newMessage(event, accountID, now)
	message.HoldID = &hold.ID

	if err := uc.messageRepo.CreateTx(txCtx, tx, message); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return &ProcessResult{Decision: domain.Approved(), Message: message}, nil
}

// updateAuthorization handles AUTH_UPDATED: the hold is resized without any
// ledger postings. An increase re-validates available balance with the
// existing hold excluded.
func (uc *NetworkUseCase) updateAuthorization(ctx context.Context, event domain.NetworkEvent) (*ProcessResult, error) {
	if !event.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	now := time.Now().UTC()

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	hold, err := uc.holdRepo.GetActiveByExternalRefForUpdate(txCtx, tx, event.ExternalRef)
	if err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByIDForUpdate(txCtx, tx, hold.AccountID)
	if err != nil {
		return nil, err
	}

	// Spendable funds with this hold excluded.
	freed, err := account.AvailableBalance().Add(hold.Amount)
	if err != nil {
		return nil, err
	}

	if short, err := freed.LessThan(event.Amount); err != nil {
		return nil, err
	} else if short {
		_ = tx.Rollback(txCtx)
		return uc.decline(ctx, event, account.ID, domain.DeclineReasonInsufficientFunds)
	}

	newHoldTotal, err := account.HoldTotal.Sub(hold.Amount)
	if err != nil {
		return nil, err
	}

	newHoldTotal, err = newHoldTotal.Add(event.Amount)
	if err != nil {
		return nil, err
	}

	if err := uc.holdRepo.UpdateAmount(txCtx, tx, hold.ID, event.Amount, now); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalances(txCtx, tx, account.ID, account.LedgerBalance, newHoldTotal, now); err != nil {
		return nil, err
	}

	message := uc.newMessage(event, account.ID, now)
	message.HoldID = &hold.ID

	if err := uc.messageRepo.CreateTx(txCtx, tx, message); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return &ProcessResult{Decision: domain.Approved(), Message: message}, nil
}

// settle handles TRANSACTION_CREATED: the hold is captured and the final
// amount becomes the one real journal entry against the network clearing
// account. A clearing with no matching hold posts directly after a balance
// check.
func (uc *NetworkUseCase) settle(ctx context.Context, event domain.NetworkEvent) (*ProcessResult, error) {
	if !event.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	now := time.Now().UTC()

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	hold, err := uc.holdRepo.GetActiveByExternalRefForUpdate(txCtx, tx, event.ExternalRef)
	if err != nil && !errors.Is(err, domain.ErrHoldNotFound) {
		return nil, err
	}

	var account *domain.Account

	if hold != nil {
		account, err = uc.accountRepo.GetByIDForUpdate(txCtx, tx, hold.AccountID)
	} else {
		var card *domain.Card

		card, err = uc.cardRepo.GetByID(ctx, event.CardID)
		if err != nil {
			return nil, err
		}

		account, err = uc.accountRepo.GetByIDForUpdate(txCtx, tx, card.AccountID)
	}
	if err != nil {
		return nil, err
	}

	// Funds freed by releasing the hold count toward the final amount; a
	// larger clearing re-runs the balance check against what remains.
	projectedHoldTotal := account.HoldTotal
	if hold != nil {
		projectedHoldTotal, err = projectedHoldTotal.Sub(hold.Amount)
		if err != nil {
			return nil, err
		}
	}

	spendable, err := account.LedgerBalance.Sub(projectedHoldTotal)
	if err != nil {
		return nil, err
	}

	if short, err := spendable.LessThan(event.Amount); err != nil {
		return nil, err
	} else if short {
		_ = tx.Rollback(txCtx)
		return uc.decline(ctx, event, account.ID, domain.DeclineReasonInsufficientFunds)
	}

	if hold != nil {
		if err := uc.holdRepo.UpdateStatus(txCtx, tx, hold.ID, domain.HoldStatusCaptured, now); err != nil {
			return nil, err
		}
	}

	clearing, err := uc.ledgerAccountRepo.GetOrCreate(txCtx, tx, uc.idGen.Generate(), domain.LedgerAccountTypeNetwork, event.Amount.Currency)
	if err != nil {
		return nil, err
	}

	entry := &domain.JournalEntry{
		ID:        uc.idGen.Generate(),
		CreatedAt: now,
	}
	entry.Postings = []domain.Posting{
		{
			ID:              uc.idGen.Generate(),
			JournalEntryID:  entry.ID,
			LedgerAccountID: account.LedgerAccountID,
			Amount:          event.Amount.Neg(),
			CreatedAt:       now,
		},
		{
			ID:              uc.idGen.Generate(),
			JournalEntryID:  entry.ID,
			LedgerAccountID: clearing.ID,
			Amount:          event.Amount,
			CreatedAt:       now,
		},
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	if err := uc.journalRepo.CreateWithPostings(txCtx, tx, entry); err != nil {
		return nil, err
	}

	newBalance, err := account.LedgerBalance.Sub(event.Amount)
	if err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalances(txCtx, tx, account.ID, newBalance, projectedHoldTotal, now); err != nil {
		return nil, err
	}

	adjustment := &domain.Adjustment{
		ID:             uc.idGen.Generate(),
		AccountID:      account.ID,
		JournalEntryID: entry.ID,
		Type:           domain.AdjustmentTypeNetwork,
		Amount:         event.Amount.Neg(),
		CreatedAt:      now,
	}

	if err := uc.adjustmentRepo.Create(txCtx, tx, adjustment); err != nil {
		return nil, err
	}

	message := uc.newMessage(event, account.ID, now)
	message.AdjustmentID = &adjustment.ID
	if hold != nil {
		message.HoldID = &hold.ID
	}

	if err := uc.messageRepo.CreateTx(txCtx, tx, message); err != nil {
		return nil, err
	}

	if hold != nil {
		outboxEvent := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   hold.ID,
			AggregateType: domain.AggregateTypeHold,
			EventType:     domain.EventTypeHoldCaptured,
			Payload: map[string]any{
				"hold_id":         hold.ID,
				"adjustment_id":   adjustment.ID,
				"external_ref":    event.ExternalRef,
				"settled_amount":  event.Amount.Amount.String(),
				"original_amount": hold.Amount.Amount.String(),
			},
			CreatedAt: now,
			Published: false,
		}
		if err := uc.outboxRepo.Create(txCtx, tx, outboxEvent); err != nil {
			return nil, err
		}
	}

	if err := uc.audit(txCtx, tx, domain.AuditActionAuthSettle, "adjustment", adjustment.ID, domain.MarshalState(adjustment), now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, account.LedgerAccountID, clearing.ID)
	}

	if uc.metrics != nil {
		uc.metrics.SettlementsPosted.Inc()
		if hold != nil {
			uc.metrics.HoldsCaptured.Inc()
		}
	}

	return &ProcessResult{Decision: domain.Approved(), Message: message}, nil
}

// decline records the message with its reason and nothing else: no hold, no
// postings, no adjustment. The decision value answers the network
// synchronously.
func (uc *NetworkUseCase) decline(ctx context.Context, event domain.NetworkEvent, accountID string, reason domain.DeclineReason) (*ProcessResult, error) {
	now := time.Now().UTC()

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	message := uc.newMessage(event, accountID, now)
	message.DeclineReason = &reason

	if err := uc.messageRepo.CreateTx(txCtx, tx, message); err != nil {
		return nil, err
	}

	outboxEvent := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   message.ID,
		AggregateType: domain.AggregateTypeNetworkMessage,
		EventType:     domain.EventTypeAuthDeclined,
		Payload: map[string]any{
			"message_id":     message.ID,
			"external_ref":   event.ExternalRef,
			"card_id":        event.CardID,
			"decline_reason": string(reason),
			"amount":         event.Amount.Amount.String(),
		},
		CreatedAt: now,
		Published: false,
	}
	if err := uc.outboxRepo.Create(txCtx, tx, outboxEvent); err != nil {
		return nil, err
	}

	if err := uc.audit(txCtx, tx, domain.AuditActionAuthDecline, "network_message", message.ID, domain.MarshalState(message), now); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return &ProcessResult{Decision: domain.Declined(reason), Message: message}, nil
}

func (uc *NetworkUseCase) newMessage(event domain.NetworkEvent, accountID string, now time.Time) *domain.NetworkMessage {
	return &domain.NetworkMessage{
		ID:          uc.idGen.Generate(),
		Type:        event.Type,
		ExternalRef: event.ExternalRef,
		CardID:      event.CardID,
		AccountID:   accountID,
		Amount:      event.Amount,
		MCC:         event.MCC,
		Channel:     event.Channel,
		CreatedAt:   now,
	}
}

func (uc *NetworkUseCase) audit(ctx context.Context, tx Transaction, action domain.AuditAction, resourceType, resourceID string, state domain.JSON, now time.Time) error {
	if uc.auditRepo == nil {
		return nil
	}

	return uc.auditRepo.CreateTx(ctx, tx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		ActorID:      "network",
		Action:       string(action),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		AfterState:   state,
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    now,
	})
}

// ListMessagesByExternalRef returns the full message chain for one
// authorization, most recent first.
func (uc *NetworkUseCase) ListMessagesByExternalRef(ctx context.Context, externalRef string) ([]*domain.NetworkMessage, error) {
	return uc.messageRepo.ListByExternalRef(ctx, externalRef)
}
