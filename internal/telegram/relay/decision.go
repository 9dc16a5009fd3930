package relay

import (
	"strings"

	"relay_bot/internal/logger"
	"relay_bot/internal/telegram/models"

	botModels "github.com/go-telegram/bot/models"
)

// Decide 为规则下的每个目标生成一个中继任务
// 模式判定只看编辑配置：完全为空走直接转发，否则走自定义发送
func Decide(rule *models.ForwardingRule, msg *InboundMessage, wireSpans []botModels.MessageEntity, sender PeerReference) []*RelayJob {
	direct := rule.Edits.Empty()

	var (
		content string
		spans   []botModels.MessageEntity
		media   []MediaItem
	)

	if direct {
		// 直接转发由传输层原生完成，载荷里的内容仅作记录
		content = msg.Content
		media = msg.Media
	} else {
		content, spans = applyEdits(rule.Edits, msg.Content, wireSpans, msg.HasMedia())

		media = msg.Media
		if rule.Edits.NoForwards && msg.HasMedia() {
			// 自定义发送无法重传媒体，显式置空，绝不发送零值占位引用
			logger.L().Warnf("Rule %s: media skipped — re-upload unsupported (message %d)",
				rule.RuleName, msg.MessageID)
			media = nil
		}
	}

	jobs := make([]*RelayJob, 0, len(rule.TargetChannelIDs))
	for _, targetID := range rule.TargetChannelIDs {
		job := &RelayJob{
			SourceMessageID: msg.MessageID,
			SourceChatID:    msg.ChatID,
			TargetID:        targetID,
			Rule:            *rule,
			Sender:          sender,
			Content:         content,
			Media:           media,
		}
		if direct {
			job.Mode = ModeDirectForward
			job.SourceSpans = msg.Spans
		} else {
			job.Mode = ModeCustomSend
			job.WireSpans = spans
		}
		jobs = append(jobs, job)
	}

	return jobs
}

// applyEdits 按固定顺序应用编辑管线，返回重建后的内容与格式标记
// 顺序：丢弃媒体说明 → 文本替换 → 移除链接 → 清除格式 → 前置/后置/页脚
func applyEdits(edits models.EditOptions, content string, spans []botModels.MessageEntity, hasMedia bool) (string, []botModels.MessageEntity) {
	if edits.DropMediaCaptions && hasMedia {
		content = ""
		spans = nil
	}

	if len(edits.TextReplacements) > 0 {
		replaced := content
		for _, tr := range edits.TextReplacements {
			if tr.Find == "" {
				continue
			}
			replaced = strings.ReplaceAll(replaced, tr.Find, tr.Replace)
		}
		if replaced != content {
			// 替换后原有偏移不再可靠，标记整体丢弃
			content = replaced
			spans = nil
		}
	}

	if edits.RemoveLinks {
		kept := spans[:0:0]
		for _, e := range spans {
			if e.Type == "url" || e.Type == "text_link" {
				continue
			}
			kept = append(kept, e)
		}
		spans = kept
	}

	if edits.StripFormatting {
		spans = nil
	}

	if edits.PrependText != "" {
		shift := utf16Len(edits.PrependText)
		shifted := make([]botModels.MessageEntity, len(spans))
		for i, e := range spans {
			e.Offset += shift
			shifted[i] = e
		}
		content = edits.PrependText + content
		spans = shifted
	}

	if edits.AppendText != "" {
		content += edits.AppendText
	}

	if edits.CustomFooter != "" {
		content += "\n\n" + edits.CustomFooter
	}

	return content, spans
}
