package relay

import (
	"unicode/utf16"

	"relay_bot/internal/logger"

	botModels "github.com/go-telegram/bot/models"
)

// spanTranslators 格式标记翻译表
// 每种标记一行，新增类型只需加表项，不引入新分支
var spanTranslators = map[SpanKind]func(span FormattingSpan) botModels.MessageEntity{
	SpanBold:          func(s FormattingSpan) botModels.MessageEntity { return wireEntity(s, "bold") },
	SpanItalic:        func(s FormattingSpan) botModels.MessageEntity { return wireEntity(s, "italic") },
	SpanUnderline:     func(s FormattingSpan) botModels.MessageEntity { return wireEntity(s, "underline") },
	SpanStrikethrough: func(s FormattingSpan) botModels.MessageEntity { return wireEntity(s, "strikethrough") },
	SpanSpoiler:       func(s FormattingSpan) botModels.MessageEntity { return wireEntity(s, "spoiler") },
	SpanCode:          func(s FormattingSpan) botModels.MessageEntity { return wireEntity(s, "code") },
	SpanPre: func(s FormattingSpan) botModels.MessageEntity {
		e := wireEntity(s, "pre")
		e.Language = s.Language
		return e
	},
	SpanTextLink: func(s FormattingSpan) botModels.MessageEntity {
		e := wireEntity(s, "text_link")
		e.URL = s.URL
		return e
	},
	SpanURL:         func(s FormattingSpan) botModels.MessageEntity { return wireEntity(s, "url") },
	SpanMention:     func(s FormattingSpan) botModels.MessageEntity { return wireEntity(s, "mention") },
	SpanHashtag:     func(s FormattingSpan) botModels.MessageEntity { return wireEntity(s, "hashtag") },
	SpanCashtag:     func(s FormattingSpan) botModels.MessageEntity { return wireEntity(s, "cashtag") },
	SpanBotCommand:  func(s FormattingSpan) botModels.MessageEntity { return wireEntity(s, "bot_command") },
	SpanEmail:       func(s FormattingSpan) botModels.MessageEntity { return wireEntity(s, "email") },
	SpanPhoneNumber: func(s FormattingSpan) botModels.MessageEntity { return wireEntity(s, "phone_number") },
	SpanTextMention: func(s FormattingSpan) botModels.MessageEntity {
		e := wireEntity(s, "text_mention")
		e.User = &botModels.User{ID: s.UserID}
		return e
	},
	SpanBlockquote: func(s FormattingSpan) botModels.MessageEntity { return wireEntity(s, "blockquote") },
}

func wireEntity(s FormattingSpan, entityType botModels.MessageEntityType) botModels.MessageEntity {
	return botModels.MessageEntity{
		Type:   entityType,
		Offset: s.Offset,
		Length: s.Length,
	}
}

// TranslateSpans 将内部格式标记翻译为 Bot API 线上表示
// 越界或未知的标记只记录警告并丢弃，整体调用永不失败；输出保持输入相对顺序
func TranslateSpans(spans []FormattingSpan, fullText string) []botModels.MessageEntity {
	if len(spans) == 0 {
		return nil
	}

	textLen := utf16Len(fullText)
	result := make([]botModels.MessageEntity, 0, len(spans))

	for _, span := range spans {
		if span.Offset < 0 || span.Length < 0 || span.Offset+span.Length > textLen {
			logger.L().Warnf("Dropping out-of-range span: kind=%s offset=%d length=%d text_len=%d",
				span.Kind, span.Offset, span.Length, textLen)
			continue
		}

		translate, ok := spanTranslators[span.Kind]
		if !ok {
			logger.L().Warnf("Dropping unrecognized span kind: %s", span.Kind)
			continue
		}

		result = append(result, translate(span))
	}

	return result
}

// utf16Len 返回字符串的 UTF-16 码元长度
func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}
