package relay

// channelIDMarker Bot API 给频道/超级群会话 ID 加的编码前缀（-100 标记）
// 例如内部频道号 123 在线上表示为 -1000000000123
const channelIDMarker int64 = 1_000_000_000_000

// ResolveSender 从消息上下文推导发送者的统一身份引用
// 缺少发送者信息是合法结果（返回 PeerNone），本函数不会失败
func ResolveSender(msg *InboundMessage) PeerReference {
	if msg.SenderUserID != 0 {
		return PeerReference{Kind: PeerUser, ID: msg.SenderUserID}
	}

	if msg.SenderChatID != 0 {
		switch msg.SenderChatKind {
		case ChatKindChannel, ChatKindSupergroup:
			return PeerReference{Kind: PeerChannel, ID: stripChannelMarker(msg.SenderChatID)}
		case ChatKindGroup:
			return PeerReference{Kind: PeerChat, ID: abs64(msg.SenderChatID)}
		}
	}

	return PeerReference{Kind: PeerNone}
}

// stripChannelMarker 去掉 -100 编码前缀并取幅值
// 未带前缀的 ID 原样取幅值返回
func stripChannelMarker(id int64) int64 {
	n := abs64(id)
	if n > channelIDMarker {
		return n - channelIDMarker
	}
	return n
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
