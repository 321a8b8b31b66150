package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// 战斗校验器模式
const (
	ValidatorPlausibility = "plausibility"
	ValidatorPermissive   = "permissive"
)

// EnvProduction APP_ENV 生产环境取值
const EnvProduction = "production"

// GameConfig 游戏服务配置，构造时显式传入各组件
type GameConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	HTTPPort    string `env:"GAME_HTTP_PORT" envDefault:"8072"`

	DatabaseURL   string `env:"DATABASE_URL"`
	RedisHost     string `env:"REDIS_HOST"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	JWTSecret     string `env:"JWT_SECRET"`
	// 部署在已完成认证的网关之后时，信任网关注入的 X-User-ID
	TrustGatewayHeader bool     `env:"GAME_TRUST_GATEWAY_HEADER"`
	CORSAllowOrigins   []string `env:"GAME_CORS_ALLOW_ORIGINS" envSeparator:","`
	// 每个客户端 IP 每秒请求数，0 表示不限制
	HTTPRateLimit float64 `env:"GAME_HTTP_RATE_LIMIT" envDefault:"20"`

	SessionTTL           time.Duration `env:"GAME_SESSION_TTL" envDefault:"600s"`
	SessionRetention     time.Duration `env:"GAME_SESSION_RETENTION" envDefault:"168h"`
	MaxCharactersPerUser int           `env:"GAME_MAX_CHARACTERS_PER_USER" envDefault:"3"`
	TotalChapters        int           `env:"GAME_TOTAL_CHAPTERS" envDefault:"20"`
	StagesPerChapter     int           `env:"GAME_STAGES_PER_CHAPTER" envDefault:"10"`
	InventorySlots       int           `env:"GAME_INVENTORY_SLOTS" envDefault:"50"`
	LevelUpStatPoints    int           `env:"GAME_LEVEL_UP_STAT_POINTS" envDefault:"5"`
	ValidatorMode        string        `env:"GAME_VALIDATOR_MODE" envDefault:"plausibility"`
	// 每个角色每分钟可领取的关卡配置次数，0 表示不限制
	StageConfigRate int `env:"GAME_STAGE_CONFIG_RATE" envDefault:"30"`
}

// LoadGameConfig 从进程环境变量解析并校验配置
func LoadGameConfig() (GameConfig, error) {
	return parseGameConfig(nil)
}

// parseGameConfig environ 为 nil 时读取进程环境变量
func parseGameConfig(environ map[string]string) (GameConfig, error) {
	var cfg GameConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return GameConfig{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return GameConfig{}, err
	}
	return cfg, nil
}

// DefaultGameConfig 与 envDefault 一致的默认配置
func DefaultGameConfig() GameConfig {
	return GameConfig{
		Environment:          "development",
		LogLevel:             "info",
		HTTPPort:             "8072",
		RedisPort:            6379,
		HTTPRateLimit:        20,
		SessionTTL:           600 * time.Second,
		SessionRetention:     7 * 24 * time.Hour,
		MaxCharactersPerUser: 3,
		TotalChapters:        20,
		StagesPerChapter:     10,
		InventorySlots:       50,
		LevelUpStatPoints:    5,
		ValidatorMode:        ValidatorPlausibility,
		StageConfigRate:      30,
	}
}

// IsProduction 是否生产环境
func (c GameConfig) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Validate 校验取值范围；生产环境禁止宽松校验器
func (c GameConfig) Validate() error {
	var errs []error
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("GAME_SESSION_TTL must be positive"))
	}
	if c.SessionRetention < 0 {
		errs = append(errs, errors.New("GAME_SESSION_RETENTION must not be negative"))
	}
	if c.MaxCharactersPerUser < 1 {
		errs = append(errs, errors.New("GAME_MAX_CHARACTERS_PER_USER must be at least 1"))
	}
	if c.TotalChapters < 1 {
		errs = append(errs, errors.New("GAME_TOTAL_CHAPTERS must be at least 1"))
	}
	// 关卡生成规则固定第 5 关为小首领、第 10 关为首领
	if c.StagesPerChapter != 10 {
		errs = append(errs, fmt.Errorf("GAME_STAGES_PER_CHAPTER must be 10, got %d", c.StagesPerChapter))
	}
	if c.InventorySlots < 1 {
		errs = append(errs, errors.New("GAME_INVENTORY_SLOTS must be at least 1"))
	}
	if c.LevelUpStatPoints < 0 {
		errs = append(errs, errors.New("GAME_LEVEL_UP_STAT_POINTS must not be negative"))
	}
	if c.HTTPRateLimit < 0 {
		errs = append(errs, errors.New("GAME_HTTP_RATE_LIMIT must not be negative"))
	}
	if c.StageConfigRate < 0 {
		errs = append(errs, errors.New("GAME_STAGE_CONFIG_RATE must not be negative"))
	}
	switch c.ValidatorMode {
	case ValidatorPlausibility:
	case ValidatorPermissive:
		if c.IsProduction() {
			errs = append(errs, errors.New("permissive battle validator is not allowed in production"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown GAME_VALIDATOR_MODE %q", c.ValidatorMode))
	}
	return errors.Join(errs...)
}

// LogFields 可安全输出到日志的配置摘要
func (c GameConfig) LogFields() map[string]any {
	return SanitizeConfigForLog(map[string]any{
		"environment":        c.Environment,
		"http_port":          c.HTTPPort,
		"database_url":       c.DatabaseURL,
		"redis_host":         c.RedisHost,
		"redis_password":     c.RedisPassword,
		"jwt_secret":         c.JWTSecret,
		"trust_gateway":      c.TrustGatewayHeader,
		"http_rate_limit":    c.HTTPRateLimit,
		"session_ttl":        c.SessionTTL.String(),
		"session_retention":  c.SessionRetention.String(),
		"max_characters":     c.MaxCharactersPerUser,
		"total_chapters":     c.TotalChapters,
		"inventory_slots":    c.InventorySlots,
		"validator_mode":     c.ValidatorMode,
		"stage_config_rate":  c.StageConfigRate,
		"level_up_stat_pts":  c.LevelUpStatPoints,
		"stages_per_chapter": c.StagesPerChapter,
	})
}
