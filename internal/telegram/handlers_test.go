package telegram

import (
	"testing"

	botModels "github.com/go-telegram/bot/models"
)

func TestIsCommandUpdate(t *testing.T) {
	tests := []struct {
		name   string
		update botModels.Update
		want   bool
	}{
		{
			name:   "command message",
			update: botModels.Update{Message: &botModels.Message{Text: "/rules"}},
			want:   true,
		},
		{
			name:   "plain message",
			update: botModels.Update{Message: &botModels.Message{Text: "hello"}},
			want:   false,
		},
		{
			name:   "channel post starting with slash is not a command",
			update: botModels.Update{ChannelPost: &botModels.Message{Text: "/vote for option A"}},
			want:   false,
		},
		{
			name:   "plain channel post",
			update: botModels.Update{ChannelPost: &botModels.Message{Text: "breaking news"}},
			want:   false,
		},
		{
			name:   "empty update",
			update: botModels.Update{},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isCommandUpdate(&tt.update); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
