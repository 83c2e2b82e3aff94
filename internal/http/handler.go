package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/billboards-service/internal/http/middleware"
	"github.com/nurpe/billboards-service/internal/model"
	"github.com/nurpe/billboards-service/internal/service"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

type Handler struct {
	billboards     *service.BillboardService
	contracts      *service.ContractService
	customers      *service.CustomerService
	municipalities *service.MunicipalityService
	log            zerolog.Logger
}

func NewHandler(
	billboards *service.BillboardService,
	contracts *service.ContractService,
	customers *service.CustomerService,
	municipalities *service.MunicipalityService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		billboards:     billboards,
		contracts:      contracts,
		customers:      customers,
		municipalities: municipalities,
		log:            log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.GET("/billboards", h.searchBillboards)
	protected.POST("/billboards", h.createBillboard)
	protected.PUT("/billboards/:id", h.updateBillboard)
	protected.GET("/billboards/facets", h.billboardFacets)
	protected.POST("/billboards/import", h.importBillboards)

	protected.POST("/pricing/quote", h.quote)

	protected.GET("/contracts", h.listContracts)
	protected.POST("/contracts", h.createContract)
	protected.GET("/contracts/stats", h.contractStats)
	protected.GET("/contracts/next-number", h.nextContractNumber)
	protected.GET("/contracts/export", h.exportContracts)
	protected.GET("/contracts/:id", h.getContract)
	protected.PATCH("/contracts/:id", h.updateContract)
	protected.DELETE("/contracts/:id", h.deleteContract)
	protected.GET("/contracts/:id/settlement", h.settlement)
	protected.GET("/contracts/:id/pdf", h.contractPDF)
	protected.POST("/contracts/:id/billboards", h.addBillboards)
	protected.DELETE("/contracts/:id/billboards/:billboardId", h.removeBillboard)

	protected.GET("/customers", h.listCustomers)
	protected.POST("/customers", h.createCustomer)

	protected.GET("/municipalities", h.listMunicipalities)
	protected.POST("/municipalities", h.createMunicipality)
	protected.PUT("/municipalities/:id", h.updateMunicipality)
	protected.DELETE("/municipalities/:id", h.deleteMunicipality)
}

func (h *Handler) principal(c *gin.Context) (model.Principal, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
	}
	return principal, ok
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func sendFile(c *gin.Context, doc *service.Document, contentType string) {
	c.Header("Content-Disposition", "attachment; filename=\""+doc.FileName+"\"")
	c.Data(http.StatusOK, contentType, doc.Content)
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func parseOptionalUUID(raw *string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		"2006-01-02",
		time.RFC3339,
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			y, m, d := parsed.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}

// parseOptionalDate treats an empty value as "not given".
func parseOptionalDate(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, nil
	}
	return parseDate(raw)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
