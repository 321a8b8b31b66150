package handler

import (
	"github.com/labstack/echo/v4"

	custommiddleware "rpg-backend/internal/middleware"
	"rpg-backend/internal/model/gamemodel"
	"rpg-backend/internal/modules/game/service"
	"rpg-backend/internal/pkg/ownercache"
	"rpg-backend/internal/pkg/response"
)

// CharacterHandler 角色管理
type CharacterHandler struct {
	characterService *service.CharacterService
	respWriter       response.Writer
	owners           *ownercache.Cache
}

func NewCharacterHandler(serviceContainer *service.ServiceContainer, respWriter response.Writer) *CharacterHandler {
	return &CharacterHandler{
		characterService: serviceContainer.GetCharacterService(),
		respWriter:       respWriter,
	}
}

// CreateCharacterRequest 创建角色请求；职业 0 法师 1 战士 2 弓箭手
type CreateCharacterRequest struct {
	Name           string `json:"name" validate:"required,character_name" example:"Aria"`
	CharacterClass int    `json:"character_class" validate:"gte=0,lte=2" example:"1"`
}

// CreateCharacter
// @Summary 创建角色
// @Tags 角色
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCharacterRequest true "创建角色请求"
// @Success 200 {object} response.ResponseResult[service.CharacterSummary] "创建成功"
// @Failure 400 {object} response.ResponseResult[response.EmptyData] "参数错误或角色数量已达上限"
// @Failure 409 {object} response.ResponseResult[response.EmptyData] "角色名已被使用"
// @Router /game/characters [post]
func (h *CharacterHandler) CreateCharacter(c echo.Context) error {
	userID, err := custommiddleware.GetCurrentUserID(c)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	var req CreateCharacterRequest
	if err := response.EchoBind(c, &req); err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	summary, err := h.characterService.CreateCharacter(c.Request().Context(), userID, req.Name, gamemodel.CharacterClass(req.CharacterClass))
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, summary)
}

// ListCharacters
// @Summary 角色列表
// @Tags 角色
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.ResponseResult[[]service.CharacterSummary] "获取成功"
// @Router /game/characters [get]
func (h *CharacterHandler) ListCharacters(c echo.Context) error {
	userID, err := custommiddleware.GetCurrentUserID(c)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	characters, err := h.characterService.ListCharacters(c.Request().Context(), userID)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, characters)
}

// GetCharacter
// @Summary 角色完整数据
// @Tags 角色
// @Produce json
// @Security BearerAuth
// @Param character_id path string true "角色ID"
// @Success 200 {object} response.ResponseResult[service.CharacterDetail] "获取成功"
// @Failure 404 {object} response.ResponseResult[response.EmptyData] "角色不存在"
// @Router /game/characters/{character_id} [get]
func (h *CharacterHandler) GetCharacter(c echo.Context) error {
	userID, characterID, err := identity(c)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	detail, err := h.characterService.GetCharacter(c.Request().Context(), userID, characterID)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	return response.EchoOK(c, h.respWriter, detail)
}

// DeleteCharacter
// @Summary 删除角色
// @Tags 角色
// @Produce json
// @Security BearerAuth
// @Param character_id path string true "角色ID"
// @Success 200 {object} response.ResponseResult[response.EmptyData] "删除成功"
// @Failure 404 {object} response.ResponseResult[response.EmptyData] "角色不存在"
// @Router /game/characters/{character_id} [delete]
func (h *CharacterHandler) DeleteCharacter(c echo.Context) error {
	userID, characterID, err := identity(c)
	if err != nil {
		return response.EchoError(c, h.respWriter, err)
	}

	if err := h.characterService.DeleteCharacter(c.Request().Context(), userID, characterID); err != nil {
		return response.EchoError(c, h.respWriter, err)
	}
	h.owners.Forget(c.Request().Context(), characterID, "deleted")
	return response.EchoOK(c, h.respWriter, response.EmptyData{})
}
