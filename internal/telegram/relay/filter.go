package relay

import (
	"regexp"
	"slices"
	"strings"

	"relay_bot/internal/logger"
	"relay_bot/internal/telegram/models"
)

// ruleAccepts 判断消息是否通过规则的全部过滤条件
// 过滤失败只影响这一条规则，不影响同消息下的其他规则
func ruleAccepts(opts models.FilterOptions, msg *InboundMessage) bool {
	if len(opts.AllowedMessageTypes) > 0 && !slices.Contains(opts.AllowedMessageTypes, msg.TypeTag()) {
		return false
	}

	if opts.ContainsText != "" && !matchesText(opts, msg.Content) {
		return false
	}

	contentLen := utf16Len(msg.Content)
	if opts.MinMessageLength > 0 && contentLen < opts.MinMessageLength {
		return false
	}
	if opts.MaxMessageLength > 0 && contentLen > opts.MaxMessageLength {
		return false
	}

	if len(opts.AllowedSenderUserIDs) > 0 {
		if msg.SenderUserID == 0 || !slices.Contains(opts.AllowedSenderUserIDs, msg.SenderUserID) {
			return false
		}
	}
	if msg.SenderUserID != 0 && slices.Contains(opts.BlockedSenderUserIDs, msg.SenderUserID) {
		return false
	}

	return true
}

// matchesText 文本匹配：普通包含或正则
// 无效正则按不匹配处理并记录警告，不让单条规则拖垮整条消息
func matchesText(opts models.FilterOptions, content string) bool {
	if !opts.IsRegex {
		return strings.Contains(content, opts.ContainsText)
	}

	pattern := opts.ContainsText
	if opts.RegexCaseInsensitive {
		pattern = "(?i)" + pattern
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		logger.L().Warnf("Invalid filter regex %q: %v", opts.ContainsText, err)
		return false
	}

	return re.MatchString(content)
}
