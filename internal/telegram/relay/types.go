package relay

import (
	"relay_bot/internal/telegram/models"

	botModels "github.com/go-telegram/bot/models"
)

// ChatKind 会话类型
type ChatKind string

const (
	ChatKindPrivate    ChatKind = "private"
	ChatKindGroup      ChatKind = "group"
	ChatKindSupergroup ChatKind = "supergroup"
	ChatKindChannel    ChatKind = "channel"
)

// SpanKind 格式标记类型
type SpanKind string

const (
	SpanBold          SpanKind = "bold"
	SpanItalic        SpanKind = "italic"
	SpanUnderline     SpanKind = "underline"
	SpanStrikethrough SpanKind = "strikethrough"
	SpanSpoiler       SpanKind = "spoiler"
	SpanCode          SpanKind = "code"
	SpanPre           SpanKind = "pre"
	SpanTextLink      SpanKind = "text_link"
	SpanURL           SpanKind = "url"
	SpanMention       SpanKind = "mention"
	SpanHashtag       SpanKind = "hashtag"
	SpanCashtag       SpanKind = "cashtag"
	SpanBotCommand    SpanKind = "bot_command"
	SpanEmail         SpanKind = "email"
	SpanPhoneNumber   SpanKind = "phone_number"
	SpanTextMention   SpanKind = "text_mention"
	SpanBlockquote    SpanKind = "blockquote"
	SpanUnknown       SpanKind = "unknown"
)

// FormattingSpan 富文本格式标记
// Offset/Length 以 UTF-16 码元计（Bot API 的计数方式）
type FormattingSpan struct {
	Kind     SpanKind
	Offset   int
	Length   int
	URL      string // 仅 text_link
	UserID   int64  // 仅 text_mention
	Language string // 仅 pre
}

// MediaItem 媒体描述（仅引用，不做下载和重传）
type MediaItem struct {
	Kind   string // photo/video/document/audio/voice/animation/sticker/video_note
	FileID string
}

// InboundMessage 入站消息
// 每条消息处理期间临时构建，任务入队后即废弃
type InboundMessage struct {
	MessageID      int
	ChatID         int64
	ChatKind       ChatKind
	Content        string // 正文或媒体说明文字
	Spans          []FormattingSpan
	SenderUserID   int64    // 个人发送者，0 表示无
	SenderChatID   int64    // 以会话身份发送时的会话 ID，0 表示无
	SenderChatKind ChatKind // 发送会话的类型（仅 SenderChatID 非 0 时有意义）
	Media          []MediaItem
	MediaGroupID   string // 相册分组 ID，可为空
}

// HasMedia 消息是否携带媒体
func (m *InboundMessage) HasMedia() bool {
	return len(m.Media) > 0
}

// TypeTag 消息类型标签（用于规则过滤）
func (m *InboundMessage) TypeTag() string {
	if len(m.Media) > 0 {
		return m.Media[0].Kind
	}
	return "text"
}

// PeerKind 身份引用类型
type PeerKind string

const (
	PeerUser    PeerKind = "user"
	PeerChannel PeerKind = "channel"
	PeerChat    PeerKind = "chat"
	PeerNone    PeerKind = "none"
)

// PeerReference 发送者身份的统一引用
type PeerReference struct {
	Kind PeerKind
	ID   int64
}

// RelayMode 中继模式
type RelayMode string

const (
	// ModeDirectForward 协议级直接转发，原生保留媒体
	ModeDirectForward RelayMode = "direct_forward"
	// ModeCustomSend 在目标端重建消息内容
	ModeCustomSend RelayMode = "custom_send"
)

// RelayJob 单个 (规则, 目标) 的中继任务载荷
type RelayJob struct {
	SourceMessageID int
	SourceChatID    int64
	TargetID        int64
	Rule            models.ForwardingRule // 规则快照，入队后不再随规则变更
	Mode            RelayMode

	// Content/WireSpans 为自定义发送的重建内容；
	// 直接转发时 Content 保留原文、SourceSpans 保留原始标记，仅作记录用
	Content     string
	WireSpans   []botModels.MessageEntity
	SourceSpans []FormattingSpan

	Sender PeerReference
	Media  []MediaItem
}
