package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/ZhouKai90/runlog/api"
	"github.com/ZhouKai90/runlog/types"
)

// =============================================================================
// 🧠 查询 Handler
// =============================================================================

// QueryService 是查询处理器依赖的编排能力
type QueryService interface {
	Query(ctx context.Context, req types.RunRequest) (*types.RunResult, bool, error)
	Recent(ctx context.Context, userID string, limit int64) ([]types.RunResult, error)
}

// QueryHandler 查询处理器
type QueryHandler struct {
	service      QueryService
	logger       *zap.Logger
	maxBodyBytes int64
}

// NewQueryHandler 创建查询处理器。maxBodyBytes <= 0 时使用 1 MB。
func NewQueryHandler(service QueryService, logger *zap.Logger, maxBodyBytes int64) *QueryHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = 1 << 20
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryHandler{
		service:      service,
		logger:       logger,
		maxBodyBytes: maxBodyBytes,
	}
}

// HandleQuery 处理 POST /api/v1/query 请求
// @Summary 执行一次工具查询
// @Description 校验请求，命中缓存直接返回，否则调度工具并生成摘要
// @Tags 查询
// @Accept json
// @Produce json
// @Param request body api.QueryRequest true "查询请求"
// @Success 200 {object} api.QueryResponse "查询结果"
// @Failure 400 {object} api.ErrorResponse "校验失败"
// @Failure 500 {object} api.ErrorResponse "工具或摘要失败"
// @Router /api/v1/query [post]
func (h *QueryHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		WriteError(w, types.NewInvalidRequestError("method not allowed").WithHTTPStatus(http.StatusMethodNotAllowed), h.logger)
		return
	}
	if !ValidateContentType(w, r, h.logger) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var req api.QueryRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	result, cached, err := h.service.Query(r.Context(), req.ToRunRequest())
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	h.logger.Info("query completed",
		zap.String("user_id", result.UserID),
		zap.String("tool", string(result.Tool())),
		zap.Bool("cached", cached),
		zap.Int("token_count", result.TokenCount),
	)

	WriteJSON(w, http.StatusOK, api.NewQueryResponse(result))
}

// HandleRecent 处理 GET /api/v1/recent?userId= 请求
// @Summary 用户近期查询
// @Description 返回用户最近的缓存查询结果，新的在前
// @Tags 查询
// @Produce json
// @Param userId query string true "用户标识"
// @Success 200 {object} api.RecentResponse "近期查询列表"
// @Failure 400 {object} api.ErrorResponse "缺少 userId"
// @Router /api/v1/recent [get]
func (h *QueryHandler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		WriteError(w, types.NewInvalidRequestError("method not allowed").WithHTTPStatus(http.StatusMethodNotAllowed), h.logger)
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		WriteError(w, types.NewInvalidRequestError("userId query parameter is required"), h.logger)
		return
	}

	results, err := h.service.Recent(r.Context(), userID, 0)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	resp := api.RecentResponse{
		UserID: userID,
		Runs:   make([]api.QueryResponse, len(results)),
	}
	for i := range results {
		resp.Runs[i] = api.NewQueryResponse(&results[i])
	}
	WriteJSON(w, http.StatusOK, resp)
}
