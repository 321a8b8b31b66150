package interfaces

import (
	"context"

	"github.com/aarondl/sqlboiler/v4/boil"
)

// Transactor 在单个数据库事务中执行 fn，fn 返回错误时回滚
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, exec boil.ContextExecutor) error) error
}
