package interfaces

import (
	"context"

	"github.com/aarondl/sqlboiler/v4/boil"

	"rpg-backend/internal/entity/game_runtime"
)

// CharacterRepository 角色仓储
type CharacterRepository interface {
	// Create 插入角色，同一用户下重名返回 ErrDuplicate
	Create(ctx context.Context, exec boil.ContextExecutor, character *game_runtime.Character) error

	GetByID(ctx context.Context, exec boil.ContextExecutor, id string) (*game_runtime.Character, error)

	// GetByIDForUpdate 在事务中锁定角色行
	GetByIDForUpdate(ctx context.Context, exec boil.ContextExecutor, id string) (*game_runtime.Character, error)

	ListByUser(ctx context.Context, exec boil.ContextExecutor, userID string) ([]*game_runtime.Character, error)

	CountByUser(ctx context.Context, exec boil.ContextExecutor, userID string) (int, error)

	ExistsByName(ctx context.Context, exec boil.ContextExecutor, userID, name string) (bool, error)

	// Delete 删除角色，关联的战斗会话级联删除；不存在返回 ErrNotFound
	Delete(ctx context.Context, exec boil.ContextExecutor, id string) error

	// UpdateProgress 写回结算后的等级、货币、战力与 JSONB 字段
	UpdateProgress(ctx context.Context, exec boil.ContextExecutor, character *game_runtime.Character) error
}
