package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ForwardingRule 转发规则模型
// 一条规则把一个源频道绑定到一个或多个目标频道，可附带过滤与编辑配置
type ForwardingRule struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	RuleName         string             `bson:"rule_name"`          // 规则名称（唯一，用于日志与管理命令）
	SourceChannelID  int64              `bson:"source_channel_id"`  // 源频道 ID（频道编码形式，例如 -100xxxxxxxxxx）
	TargetChannelIDs []int64            `bson:"target_channel_ids"` // 目标频道 ID 列表（有序，为空的规则会被跳过）
	IsEnabled        bool               `bson:"is_enabled"`         // 是否启用
	Filters          FilterOptions      `bson:"filters"`            // 消息过滤配置
	Edits            EditOptions        `bson:"edits"`              // 内容编辑配置
	CreatedAt        time.Time          `bson:"created_at"`         // 创建时间
	UpdatedAt        time.Time          `bson:"updated_at"`         // 更新时间
}

// FilterOptions 消息过滤配置
type FilterOptions struct {
	AllowedMessageTypes  []string `bson:"allowed_message_types,omitempty"`   // 允许的消息类型（为空表示全部）
	ContainsText         string   `bson:"contains_text,omitempty"`           // 必须包含的文本
	IsRegex              bool     `bson:"is_regex"`                          // ContainsText 是否为正则表达式
	RegexCaseInsensitive bool     `bson:"regex_case_insensitive"`            // 正则是否忽略大小写
	MinMessageLength     int      `bson:"min_message_length,omitempty"`      // 最小消息长度（0 表示不限制）
	MaxMessageLength     int      `bson:"max_message_length,omitempty"`      // 最大消息长度（0 表示不限制）
	AllowedSenderUserIDs []int64  `bson:"allowed_sender_user_ids,omitempty"` // 发送者白名单
	BlockedSenderUserIDs []int64  `bson:"blocked_sender_user_ids,omitempty"` // 发送者黑名单
}

// TextReplacement 文本替换项
type TextReplacement struct {
	Find    string `bson:"find"`    // 查找内容
	Replace string `bson:"replace"` // 替换为
}

// EditOptions 内容编辑配置
// 所有字段都为零值时，消息可以走协议级直接转发
type EditOptions struct {
	NoForwards        bool              `bson:"no_forwards"`                 // 禁止协议级转发（强制重建消息）
	PrependText       string            `bson:"prepend_text,omitempty"`      // 前置文本
	AppendText        string            `bson:"append_text,omitempty"`       // 后置文本
	TextReplacements  []TextReplacement `bson:"text_replacements,omitempty"` // 有序文本替换列表
	RemoveLinks       bool              `bson:"remove_links"`                // 移除链接标记
	StripFormatting   bool              `bson:"strip_formatting"`            // 移除全部格式标记
	CustomFooter      string            `bson:"custom_footer,omitempty"`     // 自定义页脚
	DropMediaCaptions bool              `bson:"drop_media_captions"`         // 丢弃媒体说明文字
}

// Empty 判断编辑配置是否完全为空
// 转发模式的唯一判定入口：为空走直接转发，否则走自定义发送
func (o EditOptions) Empty() bool {
	return !o.NoForwards &&
		o.PrependText == "" &&
		o.AppendText == "" &&
		len(o.TextReplacements) == 0 &&
		!o.RemoveLinks &&
		!o.StripFormatting &&
		o.CustomFooter == "" &&
		!o.DropMediaCaptions
}
