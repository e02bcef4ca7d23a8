package domain

import "testing"

func TestNetworkMessage_Decision(t *testing.T) {
	reason := DeclineReasonInsufficientFunds

	tests := []struct {
		name         string
		message      NetworkMessage
		wantApproved bool
		wantReason   DeclineReason
	}{
		{
			name:         "approved message",
			message:      NetworkMessage{Type: NetworkMessageTypeAuthCreated},
			wantApproved: true,
		},
		{
			name:         "declined message carries its reason",
			message:      NetworkMessage{Type: NetworkMessageTypeAuthRequest, DeclineReason: &reason},
			wantApproved: false,
			wantReason:   DeclineReasonInsufficientFunds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := tt.message.Decision()
			if decision.Approved != tt.wantApproved {
				t.Errorf("expected approved=%v, got %v", tt.wantApproved, decision.Approved)
			}
			if decision.DeclineReason != tt.wantReason {
				t.Errorf("expected reason %q, got %q", tt.wantReason, decision.DeclineReason)
			}
		})
	}
}

func TestCard_SpendControls(t *testing.T) {
	card := &Card{
		Status: CardStatusActive,
		Controls: SpendControls{
			BlockedMCCs:     []string{"7995", "5813"},
			BlockedChannels: []string{"ONLINE"},
		},
	}

	if !card.MCCBlocked("7995") {
		t.Error("expected MCC 7995 to be blocked")
	}
	if card.MCCBlocked("5411") {
		t.Error("expected MCC 5411 to be allowed")
	}
	if !card.ChannelBlocked("ONLINE") {
		t.Error("expected ONLINE channel to be blocked")
	}
	if card.ChannelBlocked("POS") {
		t.Error("expected POS channel to be allowed")
	}
}
