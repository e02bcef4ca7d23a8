package domain

import (
	"errors"
	"testing"
)

func TestAccount_AvailableBalance(t *testing.T) {
	account := &Account{
		Currency:      "USD",
		LedgerBalance: usd("100.00"),
		HoldTotal:     usd("35.00"),
	}

	if got := account.AvailableBalance(); !got.Equal(usd("65.00")) {
		t.Errorf("expected 65.00 USD, got %s", got)
	}
}

func TestAccount_ValidateDebit(t *testing.T) {
	tests := []struct {
		name           string
		ledgerBalance  Money
		holdTotal      Money
		allowOverdraft bool
		amount         Money
		wantErr        error
	}{
		{
			name:          "debit within available balance",
			ledgerBalance: usd("100"),
			holdTotal:     usd("0"),
			amount:        usd("30"),
		},
		{
			name:          "debit exact available balance",
			ledgerBalance: usd("100"),
			holdTotal:     usd("0"),
			amount:        usd("100"),
		},
		{
			name:          "debit exceeds available balance",
			ledgerBalance: usd("70"),
			holdTotal:     usd("0"),
			amount:        usd("80"),
			wantErr:       ErrInsufficientFunds,
		},
		{
			name:          "holds reduce spendable funds",
			ledgerBalance: usd("100"),
			holdTotal:     usd("60"),
			amount:        usd("50"),
			wantErr:       ErrInsufficientFunds,
		},
		{
			name:           "overdraft permitted by policy",
			ledgerBalance:  usd("10"),
			holdTotal:      usd("0"),
			allowOverdraft: true,
			amount:         usd("500"),
		},
		{
			name:          "non-positive amount",
			ledgerBalance: usd("100"),
			holdTotal:     usd("0"),
			amount:        usd("0"),
			wantErr:       ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := &Account{
				Currency:       "USD",
				LedgerBalance:  tt.ledgerBalance,
				HoldTotal:      tt.holdTotal,
				AllowOverdraft: tt.allowOverdraft,
			}

			err := account.ValidateDebit(tt.amount)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestAccount_ValidateCredit(t *testing.T) {
	account := &Account{Currency: "USD", LedgerBalance: usd("0"), HoldTotal: usd("0")}

	if err := account.ValidateCredit(usd("25")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := account.ValidateCredit(usd("-5")); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}

	if err := account.ValidateCredit(eur("25")); !errors.Is(err, ErrCurrencyMismatch) {
		t.Errorf("expected ErrCurrencyMismatch, got %v", err)
	}
}
