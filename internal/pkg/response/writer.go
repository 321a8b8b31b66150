package response

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"rpg-backend/internal/pkg/ctxkey"
	"rpg-backend/internal/pkg/i18n"
	"rpg-backend/internal/pkg/log"
	"rpg-backend/internal/pkg/metrics"
	"rpg-backend/internal/pkg/trace"
	"rpg-backend/internal/pkg/xerrors"
)

// Writer 统一响应输出接口
type Writer interface {
	WriteSuccess(ctx context.Context, w http.ResponseWriter, data any) error
	WriteError(ctx context.Context, w http.ResponseWriter, err error) error
	WriteJSON(ctx context.Context, w http.ResponseWriter, data any, statusCode int) error
}

// ResponseHandler Writer 的默认实现
// 生产环境不向客户端暴露底层错误详情
type ResponseHandler struct {
	logger      log.Logger
	environment string
}

// NewResponseHandler 创建响应处理器
func NewResponseHandler(logger log.Logger, environment string) *ResponseHandler {
	if logger == nil {
		logger = log.GetLogger()
	}
	return &ResponseHandler{logger: logger, environment: environment}
}

// DefaultResponseHandler 使用全局 logger 和开发环境配置
func DefaultResponseHandler() *ResponseHandler {
	return NewResponseHandler(log.GetLogger(), "development")
}

// WriteSuccess 写入成功响应
func (h *ResponseHandler) WriteSuccess(ctx context.Context, w http.ResponseWriter, data any) error {
	resp := Success(&data)
	resp.Message = i18n.GetErrorMessage(xerrors.CodeSuccess, i18n.GetLanguage(ctx))
	resp.TraceId = trace.GetTraceID(ctx)
	return JSON(w, http.StatusOK, resp)
}

// WriteError 写入错误响应，非 AppError 一律按内部错误处理
func (h *ResponseHandler) WriteError(ctx context.Context, w http.ResponseWriter, err error) error {
	start := time.Now()

	appErr, ok := xerrors.As(err)
	if !ok {
		appErr = xerrors.NewWithError(xerrors.CodeInternalError, "内部服务错误", err)
	}

	traceID := trace.GetTraceID(ctx)
	if traceID != "" {
		appErr.WithTraceID(traceID)
	}

	status := xerrors.GetHTTPStatus(appErr.Code)
	if status >= http.StatusInternalServerError {
		log.LogAppError(ctx, h.logger, "请求处理失败", appErr)
	} else {
		h.logger.DebugContext(ctx, "请求被拒绝", log.Any("app_error", appErr))
	}

	message := appErr.Message
	if appErr.Code.IsValid() && appErr.Message == appErr.Code.Message() {
		message = i18n.GetErrorMessage(appErr.Code, i18n.GetLanguage(ctx))
	}

	detail := ""
	if h.environment != "production" && appErr.Err != nil {
		detail = appErr.Err.Error()
	}

	resp := Error[EmptyData](appErr.Code.ToInt(), message, detail)
	resp.TraceId = traceID

	metrics.DefaultErrorMetrics.RecordError(appErr, status, ctxMethod(ctx), "", time.Since(start).Seconds())

	return JSON(w, status, resp)
}

// WriteJSON 直接输出 JSON（不做 ResponseResult 包装）
func (h *ResponseHandler) WriteJSON(ctx context.Context, w http.ResponseWriter, data any, statusCode int) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

func ctxMethod(ctx context.Context) string {
	return ctxkey.GetString(ctx, ctxkey.HTTPMethod)
}
