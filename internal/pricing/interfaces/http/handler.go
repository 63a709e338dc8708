// Package http 定价服务的 HTTP 处理器
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/mcpricing/internal/pricing/application"
	"github.com/wyfcoding/mcpricing/internal/pricing/domain"
	"github.com/wyfcoding/mcpricing/pkg/logger"
)

// PricingHandler 负责处理与亚式期权定价相关的 HTTP 请求
type PricingHandler struct {
	app *application.PricingService
}

// NewPricingHandler 创建 HTTP 处理器实例
func NewPricingHandler(app *application.PricingService) *PricingHandler {
	return &PricingHandler{app: app}
}

// RegisterRoutes 将处理器方法绑定到 Gin 路由引擎
func (h *PricingHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1/pricing")
	{
		api.POST("/asian", h.PriceAsianCall)
		api.GET("/runs/:id", h.GetRun)
		api.GET("/runs", h.ListRuns)
	}
}

// PriceAsianCallRequest 定价请求。
// Steps/Paths 缺省时使用服务端配置的默认值；Seed 缺省时由服务端生成，
// 响应中回传以便重放。
type PriceAsianCallRequest struct {
	S0                float64 `json:"s0" binding:"required"`
	K                 float64 `json:"k" binding:"required"`
	T                 float64 `json:"t" binding:"required"`
	R                 float64 `json:"r"`
	Sigma             float64 `json:"sigma" binding:"required"`
	Dividend          float64 `json:"dividend"`
	Steps             int     `json:"steps"`
	Paths             int     `json:"paths"`
	Antithetic        bool    `json:"antithetic"`
	UseControlVariate bool    `json:"control_variate"`
	Seed              *int64  `json:"seed"`
}

// PriceAsianCall 执行一次定价
func (h *PricingHandler) PriceAsianCall(c *gin.Context) {
	var req PriceAsianCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cmd := application.PriceAsianCallCommand{
		S0:                req.S0,
		K:                 req.K,
		T:                 req.T,
		R:                 req.R,
		Sigma:             req.Sigma,
		Dividend:          req.Dividend,
		Steps:             req.Steps,
		Paths:             req.Paths,
		Antithetic:        req.Antithetic,
		UseControlVariate: req.UseControlVariate,
		Seed:              req.Seed,
	}

	dto, err := h.app.PriceAsianCall(c.Request.Context(), cmd)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error(c.Request.Context(), "Failed to price asian call", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto)
}

// GetRun 查询定价记录
func (h *PricingHandler) GetRun(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "run id is required"})
		return
	}

	dto, err := h.app.GetRun(c.Request.Context(), id)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to get pricing run", "run_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if dto == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "pricing run not found"})
		return
	}

	c.JSON(http.StatusOK, dto)
}

// ListRunsQuery 记录列表查询参数
type ListRunsQuery struct {
	Limit int `form:"limit"`
}

// ListRuns 查询最近的定价记录
func (h *PricingHandler) ListRuns(c *gin.Context) {
	var q ListRunsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dtos, err := h.app.ListRuns(c.Request.Context(), q.Limit)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to list pricing runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": dtos, "count": len(dtos)})
}
