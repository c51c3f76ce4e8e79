package http

import (
	"net/http"
	"strconv"

	"github.com/wyfcoding/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/optionpricing/internal/pricing/application"
	"github.com/wyfcoding/pkg/logging"
)

// PricingHandler 负责处理估值相关的 HTTP 请求
type PricingHandler struct {
	cmd   *application.PricingCommandService
	query *application.PricingQueryService
}

func NewPricingHandler(cmd *application.PricingCommandService, query *application.PricingQueryService) *PricingHandler {
	return &PricingHandler{cmd: cmd, query: query}
}

func (h *PricingHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/pricing")
	{
		api.POST("/valuations", h.ValueOption)
		api.POST("/valuations/batch", h.BatchValueOptions)
		api.POST("/implied-volatility", h.SolveImpliedVolatility)
		api.POST("/greeks", h.GetGreeks)
		api.POST("/explain", h.ExplainValuation)
		api.POST("/lattice", h.GetLatticeCalculation)
		api.GET("/valuations/:symbol/latest", h.GetLatestValuation)
		api.GET("/valuations/:symbol/history", h.GetValuationHistory)
	}
}

// ValueOptionRequest 单笔估值请求
type ValueOptionRequest struct {
	Symbol      string  `json:"symbol" binding:"required"`
	OptionType  string  `json:"option_type" binding:"required"`
	OptionStyle string  `json:"option_style"`
	Method      string  `json:"method"`
	Spot        float64 `json:"spot" binding:"required"`
	Strike      float64 `json:"strike" binding:"required"`
	Maturity    float64 `json:"maturity" binding:"required"`
	Volatility  float64 `json:"volatility" binding:"required"`
	Rate        float64 `json:"rate"`
	Dividend    float64 `json:"dividend"`
	TimeSteps   int     `json:"time_steps"`
}

// BatchValueOptionsRequest 批量估值请求
type BatchValueOptionsRequest struct {
	BatchID   string               `json:"batch_id" binding:"required"`
	Contracts []ValueOptionRequest `json:"contracts" binding:"required"`
}

// ImpliedVolatilityRequest 隐含波动率求解请求
type ImpliedVolatilityRequest struct {
	Symbol       string  `json:"symbol"`
	OptionType   string  `json:"option_type" binding:"required"`
	Spot         float64 `json:"spot" binding:"required"`
	Strike       float64 `json:"strike" binding:"required"`
	Maturity     float64 `json:"maturity" binding:"required"`
	Rate         float64 `json:"rate"`
	Dividend     float64 `json:"dividend"`
	MarketPrice  float64 `json:"market_price" binding:"required"`
	InitialGuess float64 `json:"initial_guess"`
}

// GreeksRequest 敏感度查询请求
type GreeksRequest struct {
	OptionType string  `json:"option_type" binding:"required"`
	Spot       float64 `json:"spot" binding:"required"`
	Strike     float64 `json:"strike" binding:"required"`
	Maturity   float64 `json:"maturity" binding:"required"`
	Volatility float64 `json:"volatility" binding:"required"`
	Rate       float64 `json:"rate"`
	Dividend   float64 `json:"dividend"`
}

// ExplainRequest 推导轨迹查询请求
type ExplainRequest struct {
	Quantity   string  `json:"quantity" binding:"required"`
	OptionType string  `json:"option_type" binding:"required"`
	Spot       float64 `json:"spot" binding:"required"`
	Strike     float64 `json:"strike" binding:"required"`
	Maturity   float64 `json:"maturity" binding:"required"`
	Volatility float64 `json:"volatility" binding:"required"`
	Rate       float64 `json:"rate"`
	Dividend   float64 `json:"dividend"`
	Digits     *int    `json:"digits"`
	Mode       string  `json:"mode"`
}

// LatticeRequest 网格明细查询请求
type LatticeRequest struct {
	OptionType  string  `json:"option_type" binding:"required"`
	OptionStyle string  `json:"option_style"`
	Spot        float64 `json:"spot" binding:"required"`
	Strike      float64 `json:"strike" binding:"required"`
	Maturity    float64 `json:"maturity" binding:"required"`
	Volatility  float64 `json:"volatility" binding:"required"`
	Rate        float64 `json:"rate"`
	Dividend    float64 `json:"dividend"`
	TimeSteps   int     `json:"time_steps"`
}

// ValueOption 对单份合约执行一次估值并持久化结果。
func (h *PricingHandler) ValueOption(c *gin.Context) {
	var req ValueOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request data", err.Error())
		return
	}

	result, err := h.cmd.ValueOption(c.Request.Context(), toValueOptionCommand(req))
	if err != nil {
		logging.Error(c.Request.Context(), "failed to value option", "symbol", req.Symbol, "error", err)
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// BatchValueOptions 批量估值, 单笔失败不中断整批。
func (h *PricingHandler) BatchValueOptions(c *gin.Context) {
	var req BatchValueOptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request data", err.Error())
		return
	}

	contracts := make([]application.ValueOptionCommand, 0, len(req.Contracts))
	for _, item := range req.Contracts {
		contracts = append(contracts, toValueOptionCommand(item))
	}

	result, err := h.cmd.BatchValueOptions(c.Request.Context(), application.BatchValueOptionsCommand{
		BatchID:   req.BatchID,
		Contracts: contracts,
	})
	if err != nil {
		logging.Error(c.Request.Context(), "failed to value option batch", "batch_id", req.BatchID, "error", err)
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SolveImpliedVolatility 由市场价格反解隐含波动率。
func (h *PricingHandler) SolveImpliedVolatility(c *gin.Context) {
	var req ImpliedVolatilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request data", err.Error())
		return
	}

	vol, err := h.cmd.SolveImpliedVolatility(c.Request.Context(), application.SolveImpliedVolatilityCommand{
		Symbol:       req.Symbol,
		OptionType:   req.OptionType,
		Spot:         req.Spot,
		Strike:       req.Strike,
		Maturity:     req.Maturity,
		Rate:         req.Rate,
		Dividend:     req.Dividend,
		MarketPrice:  req.MarketPrice,
		InitialGuess: req.InitialGuess,
	})
	if err != nil {
		logging.Error(c.Request.Context(), "failed to solve implied volatility", "symbol", req.Symbol, "error", err)
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"implied_volatility": vol})
}

// GetGreeks 计算欧式合约的价格与全套敏感度。
func (h *PricingHandler) GetGreeks(c *gin.Context) {
	var req GreeksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request data", err.Error())
		return
	}

	greeks, err := h.query.GetGreeks(c.Request.Context(), application.GreeksQuery{
		OptionType: req.OptionType,
		Spot:       req.Spot,
		Strike:     req.Strike,
		Maturity:   req.Maturity,
		Volatility: req.Volatility,
		Rate:       req.Rate,
		Dividend:   req.Dividend,
	})
	if err != nil {
		logging.Error(c.Request.Context(), "failed to calculate greeks", "error", err)
		response.Error(c, err)
		return
	}

	response.Success(c, greeks)
}

// ExplainValuation 生成指定量的逐步代入推导。
func (h *PricingHandler) ExplainValuation(c *gin.Context) {
	var req ExplainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request data", err.Error())
		return
	}

	trace, err := h.query.ExplainValuation(c.Request.Context(), application.ExplainQuery{
		Quantity:   req.Quantity,
		OptionType: req.OptionType,
		Spot:       req.Spot,
		Strike:     req.Strike,
		Maturity:   req.Maturity,
		Volatility: req.Volatility,
		Rate:       req.Rate,
		Dividend:   req.Dividend,
		Digits:     req.Digits,
		Mode:       req.Mode,
	})
	if err != nil {
		logging.Error(c.Request.Context(), "failed to explain valuation", "quantity", req.Quantity, "error", err)
		response.Error(c, err)
		return
	}

	response.Success(c, trace)
}

// GetLatticeCalculation 返回二叉树估值的完整网格。
func (h *PricingHandler) GetLatticeCalculation(c *gin.Context) {
	var req LatticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid request data", err.Error())
		return
	}

	lattice, err := h.query.GetLatticeCalculation(c.Request.Context(), application.LatticeQuery{
		OptionType:  req.OptionType,
		OptionStyle: req.OptionStyle,
		Spot:        req.Spot,
		Strike:      req.Strike,
		Maturity:    req.Maturity,
		Volatility:  req.Volatility,
		Rate:        req.Rate,
		Dividend:    req.Dividend,
		TimeSteps:   req.TimeSteps,
	})
	if err != nil {
		logging.Error(c.Request.Context(), "failed to build lattice calculation", "error", err)
		response.Error(c, err)
		return
	}

	response.Success(c, lattice)
}

// GetLatestValuation 查询标的最近一次估值结果。
func (h *PricingHandler) GetLatestValuation(c *gin.Context) {
	symbol := c.Param("symbol")

	result, err := h.query.GetLatestValuation(c.Request.Context(), symbol)
	if err != nil {
		logging.Error(c.Request.Context(), "failed to get latest valuation", "symbol", symbol, "error", err)
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetValuationHistory 查询标的的估值历史。
func (h *PricingHandler) GetValuationHistory(c *gin.Context) {
	symbol := c.Param("symbol")

	limitStr := c.DefaultQuery("limit", "20")
	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid limit", "")
		return
	}

	results, err := h.query.GetValuationHistory(c.Request.Context(), symbol, limit)
	if err != nil {
		logging.Error(c.Request.Context(), "failed to get valuation history", "symbol", symbol, "error", err)
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"data": results})
}

// 辅助函数：请求体到应用命令的映射
func toValueOptionCommand(req ValueOptionRequest) application.ValueOptionCommand {
	return application.ValueOptionCommand{
		Symbol:      req.Symbol,
		OptionType:  req.OptionType,
		OptionStyle: req.OptionStyle,
		Method:      req.Method,
		Spot:        req.Spot,
		Strike:      req.Strike,
		Maturity:    req.Maturity,
		Volatility:  req.Volatility,
		Rate:        req.Rate,
		Dividend:    req.Dividend,
		TimeSteps:   req.TimeSteps,
	}
}
