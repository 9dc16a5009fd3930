package telegram

import (
	"sync"
	"testing"
	"time"

	botModels "github.com/go-telegram/bot/models"
)

func albumMessage(groupID string, messageID int) *botModels.Message {
	return &botModels.Message{
		ID:           messageID,
		Chat:         botModels.Chat{ID: -100, Type: botModels.ChatTypeChannel},
		MediaGroupID: groupID,
		Photo:        []botModels.PhotoSize{{FileID: "f"}},
	}
}

func TestMediaGroupCollectorBatchesByGroupID(t *testing.T) {
	var mu sync.Mutex
	var batches [][]*botModels.Message
	done := make(chan struct{}, 4)

	collector := NewMediaGroupCollector(50*time.Millisecond, func(messages []*botModels.Message) {
		mu.Lock()
		batches = append(batches, messages)
		mu.Unlock()
		done <- struct{}{}
	})

	collector.Add(albumMessage("album-1", 1))
	collector.Add(albumMessage("album-1", 2))
	collector.Add(albumMessage("album-2", 3))

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for media group collection")
		}
	}

	mu.Lock()
	defer mu.Unlock()

	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}

	sizes := map[int]bool{}
	for _, batch := range batches {
		sizes[len(batch)] = true
	}
	if !sizes[2] || !sizes[1] {
		t.Fatalf("expected batches of size 2 and 1, got %v", sizes)
	}
}

func TestMediaGroupCollectorPreservesOrder(t *testing.T) {
	done := make(chan []*botModels.Message, 1)

	collector := NewMediaGroupCollector(50*time.Millisecond, func(messages []*botModels.Message) {
		done <- messages
	})

	for i := 1; i <= 3; i++ {
		collector.Add(albumMessage("album-1", i))
	}

	select {
	case messages := <-done:
		if len(messages) != 3 {
			t.Fatalf("expected 3 messages, got %d", len(messages))
		}
		for i, msg := range messages {
			if msg.ID != i+1 {
				t.Fatalf("order not preserved: position %d has message %d", i, msg.ID)
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for media group collection")
	}
}
