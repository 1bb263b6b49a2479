// Package api exposes the order pipeline over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tradeOrchestrator/internal/app"
	"tradeOrchestrator/internal/domain"
	"tradeOrchestrator/internal/monitoring"
	"tradeOrchestrator/internal/ports"
)

const correlationHeader = "X-Correlation-Id"

// Server wires the orchestration service into HTTP handlers.
type Server struct {
	service *app.OrderService
	logger  ports.Logger
	engine  *gin.Engine
	http    *http.Server
}

// NewServer builds the router.
func NewServer(addr string, service *app.OrderService, logger ports.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		service: service,
		logger:  logger,
		engine:  engine,
		http: &http.Server{
			Addr:              addr,
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}

	engine.POST("/orders", s.placeOrder)
	engine.GET("/orders/:id", s.getOrder)
	engine.DELETE("/orders/:id", s.cancelOrder)
	engine.GET("/risk/:id", s.getAssessment)
	engine.GET("/trades", s.listTrades)
	engine.GET("/health", s.health)
	engine.GET("/metrics", gin.WrapH(monitoring.Handler()))

	return s
}

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run() error {
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func correlationID(c *gin.Context) string {
	if id := c.GetHeader(correlationHeader); id != "" {
		return id
	}
	return uuid.NewString()
}

type placeOrderRequest struct {
	Symbol   string `json:"symbol" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
	Side     string `json:"side" binding:"required,oneof=BUY SELL"`
	Workflow string `json:"workflow"`
}

func (s *Server) placeOrder(c *gin.Context) {
	corr := correlationID(c)
	c.Header(correlationHeader, corr)

	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "correlation_id": corr})
		return
	}

	workflow, ok := domain.ParseWorkflow(req.Workflow)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown workflow " + req.Workflow, "correlation_id": corr})
		return
	}

	order := &domain.Order{
		Symbol:   req.Symbol,
		Quantity: req.Quantity,
		Side:     domain.OrderSide(req.Side),
		Workflow: workflow,
	}

	report, err := s.service.PlaceOrder(c.Request.Context(), corr, order)
	if err != nil {
		s.logger.Error(c.Request.Context(), err, "placeOrder: saga start failed", map[string]interface{}{
			"correlationID": corr,
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "correlation_id": corr})
		return
	}

	c.JSON(statusCode(report.Status), report)
}

// statusCode maps a terminal order status onto an HTTP status. Rejections
// and failures still return the full report body.
func statusCode(status domain.OrderStatus) int {
	switch status {
	case domain.StatusExecuted:
		return http.StatusOK
	case domain.StatusPendingApproval:
		return http.StatusAccepted
	case domain.StatusRejected:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) getOrder(c *gin.Context) {
	order, err := s.service.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) cancelOrder(c *gin.Context) {
	corr := correlationID(c)
	c.Header(correlationHeader, corr)

	report, err := s.service.CancelOrder(c.Request.Context(), corr, c.Param("id"))
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "correlation_id": corr})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "correlation_id": corr})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) getAssessment(c *gin.Context) {
	assessment, err := s.service.GetAssessment(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if assessment == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "assessment not found"})
		return
	}
	c.JSON(http.StatusOK, assessment)
}

func (s *Server) listTrades(c *gin.Context) {
	trades, err := s.service.ListTrades(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trades": trades, "count": len(trades)})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
}
