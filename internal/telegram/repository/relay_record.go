package repository

import (
	"context"
	"fmt"

	"relay_bot/internal/telegram/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type relayRecordRepository struct {
	collection *mongo.Collection
}

// NewRelayRecordRepository 创建中继记录仓储实例
func NewRelayRecordRepository(db *mongo.Database) RelayRecordRepository {
	return &relayRecordRepository{
		collection: db.Collection("relay_records"),
	}
}

// CreateRecord 创建中继记录
func (r *relayRecordRepository) CreateRecord(ctx context.Context, record *models.RelayRecord) error {
	_, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		return fmt.Errorf("failed to create relay record: %w", err)
	}
	return nil
}

// GetRecordsByJobID 根据任务 ID 查询记录
func (r *relayRecordRepository) GetRecordsByJobID(ctx context.Context, jobID string) ([]*models.RelayRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"job_id": jobID})
	if err != nil {
		return nil, fmt.Errorf("failed to query relay records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*models.RelayRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode relay records: %w", err)
	}

	return records, nil
}

// EnsureIndexes 确保索引存在
func (r *relayRecordRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// job_id 索引（排查某个任务时的查询入口）
		{
			Keys: bson.D{{Key: "job_id", Value: 1}},
		},
		// TTL 索引（48小时自动删除）
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(48 * 3600),
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes for relay_records: %w", err)
	}

	return nil
}
