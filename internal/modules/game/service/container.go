package service

import (
	"database/sql"
	"fmt"
	"time"

	"rpg-backend/internal/modules/game/battle"
	"rpg-backend/internal/pkg/config"
	"rpg-backend/internal/pkg/log"
	"rpg-backend/internal/pkg/metrics"
	"rpg-backend/internal/pkg/notify"
	"rpg-backend/internal/pkg/random"
	"rpg-backend/internal/repository/impl"
	"rpg-backend/internal/repository/interfaces"
)

// ServiceContainer 游戏服务容器，统一管理 Repository 和 Service
type ServiceContainer struct {
	transactor    interfaces.Transactor
	sessionRepo   interfaces.BattleSessionRepository
	characterRepo interfaces.CharacterRepository

	ProgressionService *ProgressionService
	CharacterService   *CharacterService
}

// ContainerOptions 可选依赖；Redis 为空时限流只在进程内生效
type ContainerOptions struct {
	RedisCounter windowCounter
	Publisher    notify.Publisher
	Logger       log.Logger
	Metrics      *metrics.GameMetrics
	Random       random.Source
	Clock        func() time.Time
}

// Repositories 容器使用的仓储集合
type Repositories struct {
	Transactor interfaces.Transactor
	Sessions   interfaces.BattleSessionRepository
	Characters interfaces.CharacterRepository
}

// NewServiceContainer 创建基于 PostgreSQL 的服务容器
func NewServiceContainer(db *sql.DB, cfg config.GameConfig, opts ContainerOptions) (*ServiceContainer, error) {
	return NewServiceContainerWithRepositories(Repositories{
		Transactor: impl.NewTransactor(db),
		Sessions:   impl.NewBattleSessionRepository(db),
		Characters: impl.NewCharacterRepository(db),
	}, cfg, opts)
}

// NewServiceContainerWithRepositories 使用给定仓储创建服务容器
func NewServiceContainerWithRepositories(repos Repositories, cfg config.GameConfig, opts ContainerOptions) (*ServiceContainer, error) {
	if opts.Logger == nil {
		opts.Logger = log.GetLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.DefaultGameMetrics
	}
	if opts.Random == nil {
		opts.Random = random.CryptoSource{}
	}

	c := &ServiceContainer{
		transactor:    repos.Transactor,
		sessionRepo:   repos.Sessions,
		characterRepo: repos.Characters,
	}

	validator, err := NewValidator(cfg)
	if err != nil {
		return nil, err
	}

	c.ProgressionService, err = NewProgressionService(cfg, ProgressionDependencies{
		Transactor:    c.transactor,
		SessionRepo:   c.sessionRepo,
		CharacterRepo: c.characterRepo,
		Validator:     validator,
		Suspicion:     battle.NewSuspicionReporter(opts.Logger, opts.Metrics, opts.Publisher),
		Limiter:       NewIssueLimiter(opts.RedisCounter, cfg.StageConfigRate, time.Minute, opts.Logger),
		Random:        opts.Random,
		Clock:         opts.Clock,
		Publisher:     opts.Publisher,
		Metrics:       opts.Metrics,
		Logger:        opts.Logger,
	})
	if err != nil {
		return nil, err
	}

	c.CharacterService = NewCharacterService(cfg, c.transactor, c.characterRepo, opts.Logger)
	return c, nil
}

// NewValidator 按配置选择战斗校验器
func NewValidator(cfg config.GameConfig) (battle.Validator, error) {
	switch cfg.ValidatorMode {
	case config.ValidatorPermissive:
		if cfg.IsProduction() {
			return nil, fmt.Errorf("permissive battle validator is not allowed in production")
		}
		return battle.NewPermissiveValidator(), nil
	case config.ValidatorPlausibility, "":
		return battle.NewPlausibilityValidator(), nil
	default:
		return nil, fmt.Errorf("unknown validator mode %q", cfg.ValidatorMode)
	}
}

// GetProgressionService 获取关卡进度服务
func (c *ServiceContainer) GetProgressionService() *ProgressionService {
	return c.ProgressionService
}

// GetCharacterService 获取角色服务
func (c *ServiceContainer) GetCharacterService() *CharacterService {
	return c.CharacterService
}

// GetBattleSessionRepo 获取战斗会话仓储（清理任务使用）
func (c *ServiceContainer) GetBattleSessionRepo() interfaces.BattleSessionRepository {
	return c.sessionRepo
}
