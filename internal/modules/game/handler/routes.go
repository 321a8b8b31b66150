package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	custommiddleware "rpg-backend/internal/middleware"
	"rpg-backend/internal/modules/game/service"
	"rpg-backend/internal/pkg/log"
	"rpg-backend/internal/pkg/metrics"
	"rpg-backend/internal/pkg/ownercache"
	"rpg-backend/internal/pkg/response"
	"rpg-backend/internal/pkg/validator"
)

const ownershipCacheTTL = time.Minute

// RouteDeps 注册游戏路由所需依赖
type RouteDeps struct {
	Container  *service.ServiceContainer
	RespWriter response.Writer
	Auth       custommiddleware.AuthConfig
	Logger     log.Logger
}

// RegisterRoutes 在 api 分组下注册角色与关卡进度路由，所有路由都需要认证
func RegisterRoutes(api *echo.Group, deps RouteDeps) {
	owners := ownercache.New(deps.Container.GetCharacterService(), ownershipCacheTTL, metrics.DefaultResourceMetrics, deps.Logger)
	characterHandler := NewCharacterHandler(deps.Container, deps.RespWriter)
	characterHandler.owners = owners
	progressionHandler := NewProgressionHandler(deps.Container, deps.RespWriter)

	api.Use(custommiddleware.AuthMiddleware(deps.Auth, deps.RespWriter, deps.Logger))

	api.POST("/characters", characterHandler.CreateCharacter)
	api.GET("/characters", characterHandler.ListCharacters)

	owned := api.Group("/characters/:character_id",
		validator.UUIDParams(deps.RespWriter, "character_id"),
		custommiddleware.CharacterMiddleware(owners, deps.RespWriter, deps.Logger),
	)
	owned.GET("", characterHandler.GetCharacter)
	owned.DELETE("", characterHandler.DeleteCharacter)

	progression := owned.Group("/progression")
	{
		progression.GET("/chapters", progressionHandler.GetChapters)
		progression.GET("/chapters/:chapter/stages/:stage/config", progressionHandler.GetStageConfig)
		progression.POST("/chapters/complete", progressionHandler.CompleteStage)
	}
}
