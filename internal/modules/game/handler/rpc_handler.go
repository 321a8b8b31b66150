package handler

import (
	"context"
	"encoding/json"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"rpg-backend/internal/modules/game/service"
	"rpg-backend/internal/pkg/xerrors"
)

const rpcTimeout = 5 * time.Second

// ProgressionRPCHandler 供其他 mqant 模块调用的进度查询
type ProgressionRPCHandler struct {
	progressionService *service.ProgressionService
}

func NewProgressionRPCHandler(serviceContainer *service.ServiceContainer) *ProgressionRPCHandler {
	return &ProgressionRPCHandler{progressionService: serviceContainer.GetProgressionService()}
}

// GetChapterProgress 请求为 {"character_id": "..."} 的 structpb.Struct，返回同样编码的章节进度
func (h *ProgressionRPCHandler) GetChapterProgress(data []byte) ([]byte, error) {
	req := &structpb.Struct{}
	if err := proto.Unmarshal(data, req); err != nil {
		return nil, xerrors.NewValidationError("request", "invalid protobuf data")
	}

	characterID := req.GetFields()["character_id"].GetStringValue()
	if characterID == "" {
		return nil, xerrors.NewValidationError("character_id", "character_id is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	progress, err := h.progressionService.ChapterProgressByID(ctx, characterID)
	if err != nil {
		return nil, err
	}

	resp, err := toStruct(progress)
	if err != nil {
		return nil, xerrors.Wrap(err, xerrors.CodeInternalError, "编码章节进度失败")
	}
	return proto.Marshal(resp)
}

// toStruct 按 JSON 标签转换为 structpb.Struct
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return structpb.NewStruct(fields)
}
