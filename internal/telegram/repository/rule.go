package repository

import (
	"context"
	"fmt"
	"time"

	"relay_bot/internal/telegram/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ruleRepository struct {
	collection *mongo.Collection
}

// NewRuleRepository 创建转发规则仓储实例
func NewRuleRepository(db *mongo.Database) RuleRepository {
	return &ruleRepository{
		collection: db.Collection("forwarding_rules"),
	}
}

// Create 创建转发规则
func (r *ruleRepository) Create(ctx context.Context, rule *models.ForwardingRule) error {
	now := time.Now()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, rule)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("rule already exists: %s", rule.RuleName)
		}
		return fmt.Errorf("failed to create rule: %w", err)
	}
	return nil
}

// GetByName 根据规则名称获取规则
func (r *ruleRepository) GetByName(ctx context.Context, ruleName string) (*models.ForwardingRule, error) {
	var rule models.ForwardingRule
	err := r.collection.FindOne(ctx, bson.M{"rule_name": ruleName}).Decode(&rule)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("rule not found: %s", ruleName)
		}
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	return &rule, nil
}

// GetBySourceChannel 根据源频道 key 获取全部规则
// 返回该源的所有规则（含停用规则），启用状态的过滤由调用方决定
func (r *ruleRepository) GetBySourceChannel(ctx context.Context, sourceChannelID int64) ([]*models.ForwardingRule, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"source_channel_id": sourceChannelID})
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer cursor.Close(ctx)

	var rules []*models.ForwardingRule
	if err := cursor.All(ctx, &rules); err != nil {
		return nil, fmt.Errorf("failed to decode rules: %w", err)
	}

	return rules, nil
}

// ListAll 列出全部规则
func (r *ruleRepository) ListAll(ctx context.Context) ([]*models.ForwardingRule, error) {
	opts := options.Find().SetSort(bson.D{{Key: "rule_name", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer cursor.Close(ctx)

	var rules []*models.ForwardingRule
	if err := cursor.All(ctx, &rules); err != nil {
		return nil, fmt.Errorf("failed to decode rules: %w", err)
	}

	return rules, nil
}

// SetEnabled 启用/停用规则
func (r *ruleRepository) SetEnabled(ctx context.Context, ruleName string, enabled bool) error {
	filter := bson.M{"rule_name": ruleName}
	update := bson.M{
		"$set": bson.M{
			"is_enabled": enabled,
			"updated_at": time.Now(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("rule not found: %s", ruleName)
	}
	return nil
}

// Delete 删除规则
func (r *ruleRepository) Delete(ctx context.Context, ruleName string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"rule_name": ruleName})
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("rule not found: %s", ruleName)
	}
	return nil
}

// EnsureIndexes 确保索引存在
func (r *ruleRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// rule_name 唯一索引（规则名称即身份）
		{
			Keys:    bson.D{{Key: "rule_name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		// source_channel_id 索引（中继路径的热查询）
		{
			Keys: bson.D{{Key: "source_channel_id", Value: 1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes for forwarding_rules: %w", err)
	}

	return nil
}
