package impl

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aarondl/sqlboiler/v4/boil"

	"rpg-backend/internal/entity/game_runtime"
	"rpg-backend/internal/repository/interfaces"
)

const characterColumns = `id, user_id, name, character_class, level, experience, gold, gems, power,
	free_stat_points, stats, inventory, equipped, potions, skills, progression, shop,
	created_at, updated_at`

type characterRepositoryImpl struct {
	db *sql.DB
}

// NewCharacterRepository 创建角色仓储实例
func NewCharacterRepository(db *sql.DB) interfaces.CharacterRepository {
	return &characterRepositoryImpl{db: db}
}

func (r *characterRepositoryImpl) execer(exec boil.ContextExecutor) boil.ContextExecutor {
	if exec == nil {
		return r.db
	}
	return exec
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCharacter(row rowScanner) (*game_runtime.Character, error) {
	var c game_runtime.Character
	err := row.Scan(
		&c.ID, &c.UserID, &c.Name, &c.CharacterClass, &c.Level, &c.Experience, &c.Gold, &c.Gems, &c.Power,
		&c.FreeStatPoints, &c.Stats, &c.Inventory, &c.Equipped, &c.Potions, &c.Skills, &c.Progression, &c.Shop,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *characterRepositoryImpl) Create(ctx context.Context, exec boil.ContextExecutor, c *game_runtime.Character) error {
	if c == nil {
		return fmt.Errorf("character is nil")
	}
	query := `
		INSERT INTO game_runtime.characters (
			id, user_id, name, character_class, level, experience, gold, gems, power,
			free_stat_points, stats, inventory, equipped, potions, skills, progression, shop
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
		RETURNING created_at, updated_at
	`
	err := r.execer(exec).QueryRowContext(ctx, query,
		c.ID, c.UserID, c.Name, c.CharacterClass, c.Level, c.Experience, c.Gold, c.Gems, c.Power,
		c.FreeStatPoints, c.Stats, c.Inventory, c.Equipped, c.Potions, c.Skills, c.Progression, c.Shop,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("角色名已存在: %w", interfaces.ErrDuplicate)
		}
		return fmt.Errorf("插入角色失败: %w", err)
	}
	return nil
}

func (r *characterRepositoryImpl) getOne(ctx context.Context, exec boil.ContextExecutor, query, id string) (*game_runtime.Character, error) {
	c, err := scanCharacter(r.execer(exec).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, interfaces.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("查询角色失败: %w", err)
	}
	return c, nil
}

func (r *characterRepositoryImpl) GetByID(ctx context.Context, exec boil.ContextExecutor, id string) (*game_runtime.Character, error) {
	return r.getOne(ctx, exec,
		`SELECT `+characterColumns+` FROM game_runtime.characters WHERE id = $1`, id)
}

func (r *characterRepositoryImpl) GetByIDForUpdate(ctx context.Context, exec boil.ContextExecutor, id string) (*game_runtime.Character, error) {
	return r.getOne(ctx, exec,
		`SELECT `+characterColumns+` FROM game_runtime.characters WHERE id = $1 FOR UPDATE`, id)
}

func (r *characterRepositoryImpl) ListByUser(ctx context.Context, exec boil.ContextExecutor, userID string) ([]*game_runtime.Character, error) {
	rows, err := r.execer(exec).QueryContext(ctx,
		`SELECT `+characterColumns+` FROM game_runtime.characters WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("查询角色列表失败: %w", err)
	}
	defer rows.Close()

	characters := make([]*game_runtime.Character, 0)
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("读取角色失败: %w", err)
		}
		characters = append(characters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历角色列表失败: %w", err)
	}
	return characters, nil
}

func (r *characterRepositoryImpl) CountByUser(ctx context.Context, exec boil.ContextExecutor, userID string) (int, error) {
	var count int
	err := r.execer(exec).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM game_runtime.characters WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("统计角色数量失败: %w", err)
	}
	return count, nil
}

func (r *characterRepositoryImpl) ExistsByName(ctx context.Context, exec boil.ContextExecutor, userID, name string) (bool, error) {
	var exists bool
	err := r.execer(exec).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM game_runtime.characters WHERE user_id = $1 AND name = $2)`,
		userID, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("检查角色名失败: %w", err)
	}
	return exists, nil
}

func (r *characterRepositoryImpl) Delete(ctx context.Context, exec boil.ContextExecutor, id string) error {
	result, err := r.execer(exec).ExecContext(ctx, `DELETE FROM game_runtime.characters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("删除角色失败: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("读取影响行数失败: %w", err)
	}
	if affected == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

func (r *characterRepositoryImpl) UpdateProgress(ctx context.Context, exec boil.ContextExecutor, c *game_runtime.Character) error {
	query := `
		UPDATE game_runtime.characters
		SET level = $2, experience = $3, gold = $4, gems = $5, power = $6,
		    free_stat_points = $7, inventory = $8, progression = $9, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.execer(exec).ExecContext(ctx, query,
		c.ID, c.Level, c.Experience, c.Gold, c.Gems, c.Power,
		c.FreeStatPoints, c.Inventory, c.Progression,
	)
	if err != nil {
		return fmt.Errorf("更新角色进度失败: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("读取影响行数失败: %w", err)
	}
	if affected == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}
