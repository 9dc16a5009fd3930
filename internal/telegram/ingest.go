package telegram

import (
	botModels "github.com/go-telegram/bot/models"

	"relay_bot/internal/telegram/relay"
)

// entitySpanKinds Bot API 实体类型到内部格式标记类型的映射
var entitySpanKinds = map[botModels.MessageEntityType]relay.SpanKind{
	botModels.MessageEntityTypeBold:          relay.SpanBold,
	botModels.MessageEntityTypeItalic:        relay.SpanItalic,
	botModels.MessageEntityTypeUnderline:     relay.SpanUnderline,
	botModels.MessageEntityTypeStrikethrough: relay.SpanStrikethrough,
	botModels.MessageEntityTypeSpoiler:       relay.SpanSpoiler,
	botModels.MessageEntityTypeCode:          relay.SpanCode,
	botModels.MessageEntityTypePre:           relay.SpanPre,
	botModels.MessageEntityTypeTextLink:      relay.SpanTextLink,
	botModels.MessageEntityTypeURL:           relay.SpanURL,
	botModels.MessageEntityTypeMention:       relay.SpanMention,
	botModels.MessageEntityTypeHashtag:       relay.SpanHashtag,
	botModels.MessageEntityTypeCashtag:       relay.SpanCashtag,
	botModels.MessageEntityTypeBotCommand:    relay.SpanBotCommand,
	botModels.MessageEntityTypeEmail:         relay.SpanEmail,
	botModels.MessageEntityTypePhoneNumber:   relay.SpanPhoneNumber,
	botModels.MessageEntityTypeTextMention:   relay.SpanTextMention,
	botModels.MessageEntityTypeBlockquote:    relay.SpanBlockquote,
}

// toInboundMessage 把 Bot API 消息转换为中继层的入站消息
func toInboundMessage(msg *botModels.Message) *relay.InboundMessage {
	inbound := &relay.InboundMessage{
		MessageID:    msg.ID,
		ChatID:       msg.Chat.ID,
		ChatKind:     chatKindOf(msg.Chat.Type),
		Media:        mediaItemsOf(msg),
		MediaGroupID: msg.MediaGroupID,
	}

	// 正文：纯文本消息用 Text，媒体消息用 Caption
	if msg.Text != "" {
		inbound.Content = msg.Text
		inbound.Spans = toFormattingSpans(msg.Entities)
	} else {
		inbound.Content = msg.Caption
		inbound.Spans = toFormattingSpans(msg.CaptionEntities)
	}

	if msg.From != nil {
		inbound.SenderUserID = msg.From.ID
	}
	if msg.SenderChat != nil {
		inbound.SenderChatID = msg.SenderChat.ID
		inbound.SenderChatKind = chatKindOf(msg.SenderChat.Type)
	}

	return inbound
}

// chatKindOf 转换会话类型
func chatKindOf(chatType botModels.ChatType) relay.ChatKind {
	switch chatType {
	case botModels.ChatTypePrivate:
		return relay.ChatKindPrivate
	case botModels.ChatTypeGroup:
		return relay.ChatKindGroup
	case botModels.ChatTypeSupergroup:
		return relay.ChatKindSupergroup
	case botModels.ChatTypeChannel:
		return relay.ChatKindChannel
	default:
		return relay.ChatKind(chatType)
	}
}

// toFormattingSpans 转换格式实体
// 未知实体类型保留为 SpanUnknown，由翻译层统一丢弃并告警
func toFormattingSpans(entities []botModels.MessageEntity) []relay.FormattingSpan {
	if len(entities) == 0 {
		return nil
	}

	spans := make([]relay.FormattingSpan, 0, len(entities))
	for _, entity := range entities {
		kind, ok := entitySpanKinds[entity.Type]
		if !ok {
			kind = relay.SpanUnknown
		}

		span := relay.FormattingSpan{
			Kind:     kind,
			Offset:   entity.Offset,
			Length:   entity.Length,
			URL:      entity.URL,
			Language: entity.Language,
		}
		if entity.User != nil {
			span.UserID = entity.User.ID
		}
		spans = append(spans, span)
	}
	return spans
}

// mediaItemsOf 提取消息携带的媒体引用
func mediaItemsOf(msg *botModels.Message) []relay.MediaItem {
	var items []relay.MediaItem

	if len(msg.Photo) > 0 {
		// 取最大尺寸
		items = append(items, relay.MediaItem{Kind: "photo", FileID: msg.Photo[len(msg.Photo)-1].FileID})
	}
	if msg.Video != nil {
		items = append(items, relay.MediaItem{Kind: "video", FileID: msg.Video.FileID})
	}
	// 动图消息会同时携带兼容用的 Document 字段，只取 Animation
	if msg.Document != nil && msg.Animation == nil {
		items = append(items, relay.MediaItem{Kind: "document", FileID: msg.Document.FileID})
	}
	if msg.Audio != nil {
		items = append(items, relay.MediaItem{Kind: "audio", FileID: msg.Audio.FileID})
	}
	if msg.Voice != nil {
		items = append(items, relay.MediaItem{Kind: "voice", FileID: msg.Voice.FileID})
	}
	if msg.Animation != nil {
		items = append(items, relay.MediaItem{Kind: "animation", FileID: msg.Animation.FileID})
	}
	if msg.Sticker != nil {
		items = append(items, relay.MediaItem{Kind: "sticker", FileID: msg.Sticker.FileID})
	}
	if msg.VideoNote != nil {
		items = append(items, relay.MediaItem{Kind: "video_note", FileID: msg.VideoNote.FileID})
	}

	return items
}
