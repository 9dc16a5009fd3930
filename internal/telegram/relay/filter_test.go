package relay

import (
	"testing"

	"relay_bot/internal/telegram/models"
)

func TestRuleAccepts(t *testing.T) {
	textMsg := InboundMessage{Content: "hello BTC world", SenderUserID: 10}
	photoMsg := InboundMessage{
		Content:      "a caption",
		Media:        []MediaItem{{Kind: "photo", FileID: "f1"}},
		SenderUserID: 10,
	}

	tests := []struct {
		name string
		opts models.FilterOptions
		msg  InboundMessage
		want bool
	}{
		{name: "empty filters accept everything", opts: models.FilterOptions{}, msg: textMsg, want: true},
		{
			name: "allowed type matches",
			opts: models.FilterOptions{AllowedMessageTypes: []string{"photo", "video"}},
			msg:  photoMsg,
			want: true,
		},
		{
			name: "allowed type rejects text",
			opts: models.FilterOptions{AllowedMessageTypes: []string{"photo"}},
			msg:  textMsg,
			want: false,
		},
		{
			name: "contains text plain",
			opts: models.FilterOptions{ContainsText: "BTC"},
			msg:  textMsg,
			want: true,
		},
		{
			name: "contains text plain miss",
			opts: models.FilterOptions{ContainsText: "ETH"},
			msg:  textMsg,
			want: false,
		},
		{
			name: "regex match",
			opts: models.FilterOptions{ContainsText: `\bBTC\b`, IsRegex: true},
			msg:  textMsg,
			want: true,
		},
		{
			name: "regex case insensitive",
			opts: models.FilterOptions{ContainsText: "btc", IsRegex: true, RegexCaseInsensitive: true},
			msg:  textMsg,
			want: true,
		},
		{
			name: "invalid regex treated as no match",
			opts: models.FilterOptions{ContainsText: "([", IsRegex: true},
			msg:  textMsg,
			want: false,
		},
		{
			name: "min length rejects short message",
			opts: models.FilterOptions{MinMessageLength: 100},
			msg:  textMsg,
			want: false,
		},
		{
			name: "max length rejects long message",
			opts: models.FilterOptions{MaxMessageLength: 3},
			msg:  textMsg,
			want: false,
		},
		{
			name: "length bounds pass",
			opts: models.FilterOptions{MinMessageLength: 3, MaxMessageLength: 100},
			msg:  textMsg,
			want: true,
		},
		{
			name: "sender allowlist pass",
			opts: models.FilterOptions{AllowedSenderUserIDs: []int64{10, 20}},
			msg:  textMsg,
			want: true,
		},
		{
			name: "sender allowlist reject",
			opts: models.FilterOptions{AllowedSenderUserIDs: []int64{20}},
			msg:  textMsg,
			want: false,
		},
		{
			name: "allowlist rejects anonymous sender",
			opts: models.FilterOptions{AllowedSenderUserIDs: []int64{10}},
			msg:  InboundMessage{Content: "x"},
			want: false,
		},
		{
			name: "sender blocklist reject",
			opts: models.FilterOptions{BlockedSenderUserIDs: []int64{10}},
			msg:  textMsg,
			want: false,
		},
		{
			name: "blocklist ignores anonymous sender",
			opts: models.FilterOptions{BlockedSenderUserIDs: []int64{10}},
			msg:  InboundMessage{Content: "x"},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ruleAccepts(tt.opts, &tt.msg); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
