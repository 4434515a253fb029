package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"posbridge/internal/domain"
	"posbridge/internal/service"
)

type Server struct {
	engine   *gin.Engine
	receipts *service.ReceiptService
	log      logrus.FieldLogger
}

// NewServer собирает gin-движок. Пустой corsOrigins разрешает все источники.
func NewServer(receipts *service.ReceiptService, logger logrus.FieldLogger, corsOrigins []string) *Server {
	r := gin.New()
	r.Use(correlationID(), requestLogger(logger), newCORS(corsOrigins), gin.Recovery())
	s := &Server{engine: r, receipts: receipts, log: logger}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	s.engine.GET("/healthz", s.health)

	api := s.engine.Group("/api/pos")
	{
		api.GET(":restaurantId/tables", s.listTables)
		api.GET(":restaurantId/tables/:tableId/receipt", s.getReceipt)
	}
}

type receiptResponse struct {
	Success bool            `json:"success"`
	Data    *domain.Receipt `json:"data"`
}

type tablesResponse struct {
	Success bool           `json:"success"`
	Data    []domain.Table `json:"data"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// @Summary Health check
// @Tags system
// @Success 204
// @Router /healthz [get]
func (s *Server) health(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// @Summary Current open receipt of a table
// @Tags pos
// @Produce json
// @Param restaurantId path string true "Restaurant ID"
// @Param tableId path string true "Table ID"
// @Success 200 {object} receiptResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /api/pos/{restaurantId}/tables/{tableId}/receipt [get]
func (s *Server) getReceipt(c *gin.Context) {
	restaurantID := c.Param("restaurantId")
	tableID := c.Param("tableId")
	r, err := s.receipts.GetReceiptForTable(c.Request.Context(), tableID, restaurantID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, receiptResponse{Success: true, Data: r})
}

// @Summary Tables configured for a restaurant
// @Tags pos
// @Produce json
// @Param restaurantId path string true "Restaurant ID"
// @Success 200 {object} tablesResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /api/pos/{restaurantId}/tables [get]
func (s *Server) listTables(c *gin.Context) {
	tables, err := s.receipts.ListTables(c.Request.Context(), c.Param("restaurantId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tablesResponse{Success: true, Data: tables})
}

func (s *Server) fail(c *gin.Context, err error) {
	status := mapErrorToStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.WithFields(logrus.Fields{
			"correlation_id": c.GetString(correlationKey),
			"path":           c.Request.URL.Path,
		}).WithError(err).Error("request failed")
	}
	c.JSON(status, errorResponse{Success: false, Error: err.Error()})
}

func mapErrorToStatus(err error) int {
	var (
		notFound    *domain.ConfigNotFoundError
		integration *domain.PosIntegrationError
	)
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &integration):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
