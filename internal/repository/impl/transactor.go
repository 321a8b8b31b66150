package impl

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aarondl/sqlboiler/v4/boil"

	"rpg-backend/internal/repository/interfaces"
)

type sqlTransactor struct {
	db *sql.DB
}

// NewTransactor 基于 *sql.DB 的事务执行器
func NewTransactor(db *sql.DB) interfaces.Transactor {
	return &sqlTransactor{db: db}
}

func (t *sqlTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, exec boil.ContextExecutor) error) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("开启事务失败: %w", err)
	}
	// 提交后 Rollback 返回 ErrTxDone，忽略即可
	defer tx.Rollback()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("提交事务失败: %w", err)
	}
	return nil
}
