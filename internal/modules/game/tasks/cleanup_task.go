package tasks

import (
	"context"
	"database/sql"
	"time"

	"github.com/robfig/cron/v3"

	"rpg-backend/internal/pkg/log"
	"rpg-backend/internal/pkg/metrics"
	"rpg-backend/internal/repository/interfaces"
)

const (
	// Cron 表达式: 秒 分 时 日 月 周
	purgeSchedule    = "0 15 * * * *"
	poolStatSchedule = "*/30 * * * * *"
	purgeTimeout     = time.Minute
	serviceName      = "game"
)

// CleanupTask 定时清理过期战斗会话，并采样数据库连接池
type CleanupTask struct {
	sessionRepo interfaces.BattleSessionRepository
	retention   time.Duration
	db          *sql.DB
	logger      log.Logger
	gameMetrics *metrics.GameMetrics
	resMetrics  *metrics.ResourceMetrics
	now         func() time.Time
	cron        *cron.Cron
}

// NewCleanupTask db 为 nil 时不采样连接池
func NewCleanupTask(repo interfaces.BattleSessionRepository, retention time.Duration, db *sql.DB, logger log.Logger) *CleanupTask {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &CleanupTask{
		sessionRepo: repo,
		retention:   retention,
		db:          db,
		logger:      logger,
		gameMetrics: metrics.DefaultGameMetrics,
		resMetrics:  metrics.DefaultResourceMetrics,
		now:         time.Now,
	}
}

// Start 启动定时任务
func (t *CleanupTask) Start() error {
	t.cron = cron.New(cron.WithSeconds())

	if _, err := t.cron.AddFunc(purgeSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
		defer cancel()
		t.PurgeExpiredSessions(ctx)
	}); err != nil {
		return err
	}

	if t.db != nil {
		if _, err := t.cron.AddFunc(poolStatSchedule, t.samplePool); err != nil {
			return err
		}
	}

	t.cron.Start()
	t.logger.Info("【定时任务】已启动", "purge_schedule", purgeSchedule, "retention", t.retention.String())
	return nil
}

// PurgeExpiredSessions 删除过期超过保留期且未使用的会话，返回删除条数
func (t *CleanupTask) PurgeExpiredSessions(ctx context.Context) int64 {
	cutoff := t.now().Add(-t.retention)

	deleted, err := t.sessionRepo.PurgeExpiredBefore(ctx, cutoff)
	if err != nil {
		t.logger.ErrorContext(ctx, "【定时任务】清理战斗会话失败", "error", err, "cutoff", cutoff)
		return 0
	}

	t.gameMetrics.RecordSessionsPurged(deleted, serviceName)
	t.logger.InfoContext(ctx, "【定时任务】战斗会话清理完成", "deleted_count", deleted, "cutoff", cutoff)
	return deleted
}

func (t *CleanupTask) samplePool() {
	t.resMetrics.RecordDBPoolStats(serviceName, "postgres", t.db.Stats())
}

// Stop 停止定时任务并等待运行中的任务结束
func (t *CleanupTask) Stop() {
	if t.cron == nil {
		return
	}
	t.logger.Info("【定时任务】正在停止定时任务...")
	<-t.cron.Stop().Done()
	t.logger.Info("【定时任务】定时任务已停止")
}
