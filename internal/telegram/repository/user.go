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

type userRepository struct {
	collection *mongo.Collection
}

// NewUserRepository 创建用户 Repository
func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{
		collection: db.Collection("users"),
	}
}

// CreateOrUpdate 创建或更新用户
func (r *userRepository) CreateOrUpdate(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.UpdatedAt = now

	filter := bson.M{"telegram_id": user.TelegramID}

	setFields := bson.M{
		"username":       user.Username,
		"first_name":     user.FirstName,
		"last_name":      user.LastName,
		"updated_at":     user.UpdatedAt,
		"last_active_at": user.LastActiveAt,
	}

	setOnInsert := bson.M{
		"created_at": now,
	}

	// 如果用户指定了角色（如初始化 owner），则更新角色；
	// 同一字段不能同时出现在 $set 和 $setOnInsert 里
	if user.Role != "" {
		setFields["role"] = user.Role
	} else {
		setOnInsert["role"] = models.RoleUser // 默认角色为普通用户
	}

	update := bson.M{
		"$set":         setFields,
		"$setOnInsert": setOnInsert,
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to create or update user: %w", err)
	}

	return nil
}

// GetByTelegramID 根据 Telegram ID 获取用户
func (r *userRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"telegram_id": telegramID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("user not found: %d", telegramID)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// UpdateLastActive 更新用户最后活跃时间
func (r *userRepository) UpdateLastActive(ctx context.Context, telegramID int64) error {
	filter := bson.M{"telegram_id": telegramID}
	update := bson.M{
		"$set": bson.M{
			"last_active_at": time.Now(),
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update last active: %w", err)
	}
	return nil
}

// GrantAdmin 授予管理员权限
func (r *userRepository) GrantAdmin(ctx context.Context, telegramID int64, grantedBy int64) error {
	now := time.Now()
	filter := bson.M{"telegram_id": telegramID}
	update := bson.M{
		"$set": bson.M{
			"role":       models.RoleAdmin,
			"granted_by": grantedBy,
			"granted_at": now,
			"updated_at": now,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to grant admin: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user not found: %d", telegramID)
	}
	return nil
}

// RevokeAdmin 撤销管理员权限
func (r *userRepository) RevokeAdmin(ctx context.Context, telegramID int64) error {
	filter := bson.M{"telegram_id": telegramID}
	update := bson.M{
		"$set": bson.M{
			"role":       models.RoleUser,
			"updated_at": time.Now(),
		},
		"$unset": bson.M{
			"granted_by": "",
			"granted_at": "",
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to revoke admin: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user not found: %d", telegramID)
	}
	return nil
}

// ListAdmins 列出所有管理员
func (r *userRepository) ListAdmins(ctx context.Context) ([]*models.User, error) {
	filter := bson.M{
		"role": bson.M{
			"$in": []string{models.RoleOwner, models.RoleAdmin},
		},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	defer cursor.Close(ctx)

	var admins []*models.User
	if err := cursor.All(ctx, &admins); err != nil {
		return nil, fmt.Errorf("failed to decode admins: %w", err)
	}

	return admins, nil
}

// EnsureIndexes 确保索引存在
func (r *userRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "telegram_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "role", Value: 1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
