package relay

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relay_bot/internal/telegram/models"

	botModels "github.com/go-telegram/bot/models"
)

func TestDecideEmptyEditsIsDirectForward(t *testing.T) {
	rule := &models.ForwardingRule{
		RuleName:         "plain",
		SourceChannelID:  -100123,
		TargetChannelIDs: []int64{-100555, -100777},
		IsEnabled:        true,
	}
	msg := &InboundMessage{
		MessageID: 42,
		ChatID:    -100123,
		ChatKind:  ChatKindChannel,
		Content:   "original text",
		Spans:     []FormattingSpan{{Kind: SpanBold, Offset: 0, Length: 8}},
	}

	jobs := Decide(rule, msg, nil, PeerReference{Kind: PeerNone})

	require.Len(t, jobs, 2)
	assert.Equal(t, int64(-100555), jobs[0].TargetID)
	assert.Equal(t, int64(-100777), jobs[1].TargetID)

	for _, job := range jobs {
		assert.Equal(t, ModeDirectForward, job.Mode)
		assert.Equal(t, 42, job.SourceMessageID)
		assert.Equal(t, int64(-100123), job.SourceChatID)
		// 直接转发保留原始内容与原始标记，仅作记录
		assert.Equal(t, "original text", job.Content)
		assert.Equal(t, msg.Spans, job.SourceSpans)
		assert.Nil(t, job.WireSpans)
	}
}

func TestDecideAnySingleEditForcesCustomSend(t *testing.T) {
	tests := []struct {
		name  string
		edits models.EditOptions
	}{
		{name: "no forwards", edits: models.EditOptions{NoForwards: true}},
		{name: "prepend", edits: models.EditOptions{PrependText: "x"}},
		{name: "append", edits: models.EditOptions{AppendText: "x"}},
		{name: "replacements", edits: models.EditOptions{TextReplacements: []models.TextReplacement{{Find: "a", Replace: "b"}}}},
		{name: "remove links", edits: models.EditOptions{RemoveLinks: true}},
		{name: "strip formatting", edits: models.EditOptions{StripFormatting: true}},
		{name: "footer", edits: models.EditOptions{CustomFooter: "f"}},
		{name: "drop captions", edits: models.EditOptions{DropMediaCaptions: true}},
	}

	msg := &InboundMessage{MessageID: 1, ChatID: -100123, Content: "text"}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := &models.ForwardingRule{
				RuleName:         "edited",
				TargetChannelIDs: []int64{-100555},
				Edits:            tt.edits,
			}
			jobs := Decide(rule, msg, nil, PeerReference{})
			require.Len(t, jobs, 1)
			assert.Equal(t, ModeCustomSend, jobs[0].Mode)
		})
	}
}

func TestDecidePrependShiftsSpansAndPrefixesContent(t *testing.T) {
	rule := &models.ForwardingRule{
		RuleName:         "prefixed",
		TargetChannelIDs: []int64{-100555, -100777},
		Edits:            models.EditOptions{PrependText: "[FWD] "},
	}
	msg := &InboundMessage{MessageID: 7, ChatID: -100123, Content: "original"}
	wireSpans := []botModels.MessageEntity{{Type: "bold", Offset: 0, Length: 8}}

	jobs := Decide(rule, msg, wireSpans, PeerReference{})

	require.Len(t, jobs, 2)
	for _, job := range jobs {
		assert.Equal(t, ModeCustomSend, job.Mode)
		assert.True(t, strings.HasPrefix(job.Content, "[FWD] "), "content %q should begin with prefix", job.Content)
		require.Len(t, job.WireSpans, 1)
		assert.Equal(t, 6, job.WireSpans[0].Offset) // "[FWD] " 占 6 个 UTF-16 码元
		assert.Equal(t, 8, job.WireSpans[0].Length)
	}
}

func TestDecideNoForwardsWithMediaClearsMediaList(t *testing.T) {
	rule := &models.ForwardingRule{
		RuleName:         "protected",
		TargetChannelIDs: []int64{-100555},
		Edits:            models.EditOptions{NoForwards: true},
	}
	msg := &InboundMessage{
		MessageID: 9,
		ChatID:    -100123,
		Content:   "caption",
		Media:     []MediaItem{{Kind: "photo", FileID: "f1"}},
	}

	jobs := Decide(rule, msg, nil, PeerReference{})

	require.Len(t, jobs, 1)
	assert.Equal(t, ModeCustomSend, jobs[0].Mode)
	assert.Empty(t, jobs[0].Media)
}

func TestDecideCustomSendWithoutNoForwardsKeepsMediaDescriptors(t *testing.T) {
	rule := &models.ForwardingRule{
		RuleName:         "captioned",
		TargetChannelIDs: []int64{-100555},
		Edits:            models.EditOptions{AppendText: "!"},
	}
	msg := &InboundMessage{
		MessageID: 9,
		Content:   "caption",
		Media:     []MediaItem{{Kind: "photo", FileID: "f1"}},
	}

	jobs := Decide(rule, msg, nil, PeerReference{})

	require.Len(t, jobs, 1)
	assert.Equal(t, msg.Media, jobs[0].Media)
}

func TestApplyEdits(t *testing.T) {
	bold := botModels.MessageEntity{Type: "bold", Offset: 0, Length: 4}
	link := botModels.MessageEntity{Type: "text_link", Offset: 5, Length: 4, URL: "https://x.y"}

	t.Run("drop caption clears content and spans", func(t *testing.T) {
		content, spans := applyEdits(models.EditOptions{DropMediaCaptions: true}, "some caption", []botModels.MessageEntity{bold}, true)
		assert.Equal(t, "", content)
		assert.Nil(t, spans)
	})

	t.Run("drop caption ignored without media", func(t *testing.T) {
		content, _ := applyEdits(models.EditOptions{DropMediaCaptions: true}, "some text", nil, false)
		assert.Equal(t, "some text", content)
	})

	t.Run("replacements applied in order and drop spans on change", func(t *testing.T) {
		edits := models.EditOptions{TextReplacements: []models.TextReplacement{
			{Find: "aaa", Replace: "b"},
			{Find: "b", Replace: "c"},
		}}
		content, spans := applyEdits(edits, "aaa text", []botModels.MessageEntity{bold}, false)
		assert.Equal(t, "c text", content)
		assert.Nil(t, spans)
	})

	t.Run("replacements without effect keep spans", func(t *testing.T) {
		edits := models.EditOptions{TextReplacements: []models.TextReplacement{{Find: "zzz", Replace: "y"}}}
		content, spans := applyEdits(edits, "text body", []botModels.MessageEntity{bold}, false)
		assert.Equal(t, "text body", content)
		assert.Equal(t, []botModels.MessageEntity{bold}, spans)
	})

	t.Run("remove links drops only link spans", func(t *testing.T) {
		_, spans := applyEdits(models.EditOptions{RemoveLinks: true}, "text link", []botModels.MessageEntity{bold, link}, false)
		require.Len(t, spans, 1)
		assert.Equal(t, bold, spans[0])
	})

	t.Run("strip formatting drops all spans", func(t *testing.T) {
		_, spans := applyEdits(models.EditOptions{StripFormatting: true}, "text link", []botModels.MessageEntity{bold, link}, false)
		assert.Empty(t, spans)
	})

	t.Run("append and footer", func(t *testing.T) {
		edits := models.EditOptions{AppendText: " end", CustomFooter: "via bot"}
		content, _ := applyEdits(edits, "body", nil, false)
		assert.Equal(t, "body end\n\nvia bot", content)
	})
}

func TestEditOptionsEmpty(t *testing.T) {
	assert.True(t, models.EditOptions{}.Empty())
	assert.False(t, models.EditOptions{NoForwards: true}.Empty())
	assert.False(t, models.EditOptions{CustomFooter: "f"}.Empty())
	assert.False(t, models.EditOptions{TextReplacements: []models.TextReplacement{{Find: "a"}}}.Empty())
}
