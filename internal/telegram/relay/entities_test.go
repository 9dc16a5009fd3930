package relay

import (
	"testing"

	botModels "github.com/go-telegram/bot/models"
)

func TestTranslateSpansMapsAllKnownKinds(t *testing.T) {
	text := "0123456789abcdefghij"

	tests := []struct {
		name     string
		span     FormattingSpan
		wantType botModels.MessageEntityType
		check    func(t *testing.T, e botModels.MessageEntity)
	}{
		{name: "bold", span: FormattingSpan{Kind: SpanBold, Offset: 0, Length: 4}, wantType: "bold"},
		{name: "italic", span: FormattingSpan{Kind: SpanItalic, Offset: 1, Length: 3}, wantType: "italic"},
		{name: "underline", span: FormattingSpan{Kind: SpanUnderline, Offset: 2, Length: 2}, wantType: "underline"},
		{name: "strikethrough", span: FormattingSpan{Kind: SpanStrikethrough, Offset: 0, Length: 5}, wantType: "strikethrough"},
		{name: "spoiler", span: FormattingSpan{Kind: SpanSpoiler, Offset: 3, Length: 6}, wantType: "spoiler"},
		{name: "code", span: FormattingSpan{Kind: SpanCode, Offset: 0, Length: 10}, wantType: "code"},
		{
			name:     "pre carries language",
			span:     FormattingSpan{Kind: SpanPre, Offset: 0, Length: 10, Language: "go"},
			wantType: "pre",
			check: func(t *testing.T, e botModels.MessageEntity) {
				if e.Language != "go" {
					t.Fatalf("expected language go, got %q", e.Language)
				}
			},
		},
		{
			name:     "text link carries url",
			span:     FormattingSpan{Kind: SpanTextLink, Offset: 0, Length: 4, URL: "https://example.com"},
			wantType: "text_link",
			check: func(t *testing.T, e botModels.MessageEntity) {
				if e.URL != "https://example.com" {
					t.Fatalf("expected url to carry over, got %q", e.URL)
				}
			},
		},
		{name: "url", span: FormattingSpan{Kind: SpanURL, Offset: 0, Length: 19}, wantType: "url"},
		{name: "mention", span: FormattingSpan{Kind: SpanMention, Offset: 0, Length: 5}, wantType: "mention"},
		{name: "hashtag", span: FormattingSpan{Kind: SpanHashtag, Offset: 0, Length: 4}, wantType: "hashtag"},
		{name: "cashtag", span: FormattingSpan{Kind: SpanCashtag, Offset: 0, Length: 4}, wantType: "cashtag"},
		{name: "bot command", span: FormattingSpan{Kind: SpanBotCommand, Offset: 0, Length: 6}, wantType: "bot_command"},
		{name: "email", span: FormattingSpan{Kind: SpanEmail, Offset: 0, Length: 15}, wantType: "email"},
		{name: "phone number", span: FormattingSpan{Kind: SpanPhoneNumber, Offset: 0, Length: 11}, wantType: "phone_number"},
		{
			name:     "text mention carries user id",
			span:     FormattingSpan{Kind: SpanTextMention, Offset: 0, Length: 4, UserID: 424242},
			wantType: "text_mention",
			check: func(t *testing.T, e botModels.MessageEntity) {
				if e.User == nil || e.User.ID != 424242 {
					t.Fatalf("expected user id 424242, got %+v", e.User)
				}
			},
		},
		{name: "blockquote", span: FormattingSpan{Kind: SpanBlockquote, Offset: 0, Length: 20}, wantType: "blockquote"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TranslateSpans([]FormattingSpan{tt.span}, text)
			if len(got) != 1 {
				t.Fatalf("expected 1 entity, got %d", len(got))
			}
			e := got[0]
			if e.Type != tt.wantType {
				t.Fatalf("expected type %s, got %s", tt.wantType, e.Type)
			}
			if e.Offset != tt.span.Offset || e.Length != tt.span.Length {
				t.Fatalf("expected offset/length %d/%d, got %d/%d",
					tt.span.Offset, tt.span.Length, e.Offset, e.Length)
			}
			if tt.check != nil {
				tt.check(t, e)
			}
		})
	}
}

func TestTranslateSpansDropsOutOfRange(t *testing.T) {
	text := "hello"

	spans := []FormattingSpan{
		{Kind: SpanBold, Offset: -1, Length: 3},  // 负偏移
		{Kind: SpanBold, Offset: 0, Length: 5},   // 正好覆盖全文，合法
		{Kind: SpanItalic, Offset: 3, Length: 3}, // 越过结尾
		{Kind: SpanCode, Offset: 2, Length: 2},   // 合法
	}

	got := TranslateSpans(spans, text)
	if len(got) != 2 {
		t.Fatalf("expected 2 surviving entities, got %d", len(got))
	}
	// 幸存标记保持相对顺序且不受影响
	if got[0].Type != "bold" || got[0].Offset != 0 || got[0].Length != 5 {
		t.Fatalf("unexpected first survivor: %+v", got[0])
	}
	if got[1].Type != "code" || got[1].Offset != 2 || got[1].Length != 2 {
		t.Fatalf("unexpected second survivor: %+v", got[1])
	}
}

func TestTranslateSpansDropsUnknownKind(t *testing.T) {
	spans := []FormattingSpan{
		{Kind: SpanUnknown, Offset: 0, Length: 2},
		{Kind: SpanKind("custom_emoji"), Offset: 0, Length: 2},
		{Kind: SpanBold, Offset: 0, Length: 2},
	}

	got := TranslateSpans(spans, "hi")
	if len(got) != 1 {
		t.Fatalf("expected only the bold span to survive, got %d", len(got))
	}
	if got[0].Type != "bold" {
		t.Fatalf("expected bold, got %s", got[0].Type)
	}
}

func TestTranslateSpansUsesUTF16Length(t *testing.T) {
	// "👍" 在 UTF-16 里占 2 个码元，Go 字符串里占 4 字节、1 个 rune
	text := "👍ok"
	if utf16Len(text) != 4 {
		t.Fatalf("expected utf16 length 4, got %d", utf16Len(text))
	}

	spans := []FormattingSpan{
		{Kind: SpanBold, Offset: 2, Length: 2}, // 覆盖 "ok"，合法
		{Kind: SpanBold, Offset: 3, Length: 2}, // 按 UTF-16 越界
	}

	got := TranslateSpans(spans, text)
	if len(got) != 1 {
		t.Fatalf("expected 1 surviving entity, got %d", len(got))
	}
	if got[0].Offset != 2 {
		t.Fatalf("expected offset 2, got %d", got[0].Offset)
	}
}

func TestTranslateSpansEmptyInput(t *testing.T) {
	if got := TranslateSpans(nil, "text"); got != nil {
		t.Fatalf("expected nil result for nil spans, got %v", got)
	}
}
