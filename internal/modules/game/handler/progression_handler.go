package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	custommiddleware "rpg-backend/internal/middleware"
	"rpg-backend/internal/model/gamemodel"
	"rpg-backend/internal/modules/game/service"
	"rpg-backend/internal/pkg/response"
)

// ProgressionHandler 章节进度、关卡配置与结算
type ProgressionHandler struct {
	progressionService *service.ProgressionService
	respWriter         response.Writer
}

// NewProgressionHandler 创建进度 handler
func NewProgressionHandler(serviceContainer *service.ServiceContainer, respWriter response.Writer) *ProgressionHandler {
	return &ProgressionHandler{
		progressionService: serviceContainer.GetProgressionService(),
		respWriter:         respWriter,
	}
}

// CompleteStageRequest 结算请求体
type CompleteStageRequest struct {
	SessionToken string              `json:"session_token" validate:"required" example:"3f2b8c1e-9a4d-4f6b-8e21-7c5d9a0b1e2f"`
	Chapter      int                 `json:"chapter" validate:"gte=0" example:"1"`
	Stage        int                 `json:"stage" validate:"gte=0" example:"1"`
	BattleLog    gamemodel.BattleLog `json:"battle_log"`
}

// GetChapters 章节进度
// @Summary 获取章节进度
// @Description 返回最高章节/关卡、已通关关卡和每个章节的解锁状态
// @Tags 关卡进度
// @Produce json
// @Security BearerAuth
// @Param character_id path string true "角色ID"
// @Success 200 {object} response.ResponseResult[service.ChapterProgress] "获取成功"
// @Failure 401 {object} response.ResponseResult[response.EmptyData] "未认证"
// @Failure 404 {object} response.ResponseResult[response.EmptyData] "角色不存在"
// @Router /game/characters/{character_id}/progression/chapters [get]
func (h *ProgressionHandler) GetChapters(c echo.Context) error {
	userID, characterID, err := identity(c)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	progress, err := h.progressionService.GetChapterProgress(c.Request().Context(), userID, characterID)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, progress)
}

// GetStageConfig 领取关卡配置
// @Summary 领取关卡配置
// @Description 生成关卡怪物与奖励并签发一次性战斗会话令牌，令牌 10 分钟内有效
// @Tags 关卡进度
// @Produce json
// @Security BearerAuth
// @Param character_id path string true "角色ID"
// @Param chapter path int true "章节" minimum(1)
// @Param stage path int true "关卡" minimum(1) maximum(10)
// @Success 200 {object} response.ResponseResult[service.StageConfig] "获取成功"
// @Failure 400 {object} response.ResponseResult[response.EmptyData] "章节或关卡超出范围"
// @Failure 403 {object} response.ResponseResult[response.EmptyData] "关卡未解锁"
// @Failure 404 {object} response.ResponseResult[response.EmptyData] "角色不存在"
// @Failure 429 {object} response.ResponseResult[response.EmptyData] "领取过于频繁"
// @Router /game/characters/{character_id}/progression/chapters/{chapter}/stages/{stage}/config [get]
func (h *ProgressionHandler) GetStageConfig(c echo.Context) error {
	userID, characterID, err := identity(c)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	chapter, err := strconv.Atoi(c.Param("chapter"))
	if err != nil {
		return response.EchoBadRequest(c, h.respWriter, "chapter must be an integer")
	}
	stage, err := strconv.Atoi(c.Param("stage"))
	if err != nil {
		return response.EchoBadRequest(c, h.respWriter, "stage must be an integer")
	}

	cfg, err := h.progressionService.IssueStageConfig(c.Request().Context(), userID, characterID, chapter, stage)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, cfg)
}

// CompleteStage 提交战斗结算
// @Summary 提交关卡结算
// @Description 校验战斗日志并发放会话快照中的奖励。会话已使用、过期、章节不一致或校验未通过时返回 success=false
// @Tags 关卡进度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param character_id path string true "角色ID"
// @Param request body CompleteStageRequest true "结算请求"
// @Success 200 {object} response.ResponseResult[service.CompleteStageResult] "结算结果"
// @Failure 400 {object} response.ResponseResult[response.EmptyData] "会话令牌无效或参数错误"
// @Failure 404 {object} response.ResponseResult[response.EmptyData] "角色不存在"
// @Failure 503 {object} response.ResponseResult[response.EmptyData] "存储不可用"
// @Router /game/characters/{character_id}/progression/chapters/complete [post]
func (h *ProgressionHandler) CompleteStage(c echo.Context) error {
	userID, characterID, err := identity(c)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	var req CompleteStageRequest
	if err := response.EchoBind(c, &req); err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	result, err := h.progressionService.CompleteStage(c.Request().Context(), &service.CompleteStageRequest{
		UserID:       userID,
		CharacterID:  characterID,
		SessionToken: req.SessionToken,
		Chapter:      req.Chapter,
		Stage:        req.Stage,
		BattleLog:    req.BattleLog,
	})
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, result)
}

// identity 认证与角色归属中间件写入的用户和角色
func identity(c echo.Context) (userID, characterID string, err error) {
	userID, err = custommiddleware.GetCurrentUserID(c)
	if err != nil {
		return "", "", err
	}
	characterID, err = custommiddleware.GetCurrentCharacterID(c)
	if err != nil {
		return "", "", err
	}
	return userID, characterID, nil
}
