package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RelayRecord 中继任务记录（用于审计与排查）
type RelayRecord struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	JobID            string             `bson:"job_id"`                       // 任务 ID (UUID)
	RuleName         string             `bson:"rule_name"`                    // 规则名称
	SourceChatID     int64              `bson:"source_chat_id"`               // 源会话 ID
	SourceMessageID  int                `bson:"source_message_id"`            // 源消息 ID
	TargetChatID     int64              `bson:"target_chat_id"`               // 目标会话 ID
	RelayedMessageID int                `bson:"relayed_message_id,omitempty"` // 中继后的消息 ID
	Mode             string             `bson:"mode"`                         // direct_forward/custom_send
	Status           string             `bson:"status"`                       // success/failed
	Error            string             `bson:"error,omitempty"`              // 失败原因
	CreatedAt        time.Time          `bson:"created_at"`                   // 创建时间（TTL 索引）
}

const (
	RelayStatusSuccess = "success"
	RelayStatusFailed  = "failed"
)
