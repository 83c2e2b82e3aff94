package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nurpe/billboards-service/internal/model"
	"github.com/nurpe/billboards-service/internal/service"
)

type customerRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
}

type municipalityRequest struct {
	Name string `json:"name" binding:"required"`
	Code string `json:"code" binding:"required"`
}

func toCustomerResponse(c model.Customer) gin.H {
	return gin.H{
		"id":      c.ID.String(),
		"name":    c.Name,
		"phone":   c.Phone,
		"company": c.Company,
	}
}

func toMunicipalityResponse(m model.Municipality) gin.H {
	resp := gin.H{"name": m.Name, "code": m.Code}
	if m.ID != uuid.Nil {
		resp["id"] = m.ID.String()
	}
	return resp
}

func (h *Handler) listCustomers(c *gin.Context) {
	if _, ok := h.principal(c); !ok {
		return
	}
	customers, err := h.customers.ListCustomers(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	items := make([]gin.H, 0, len(customers))
	for _, customer := range customers {
		items = append(items, toCustomerResponse(customer))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) createCustomer(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	customer, err := h.customers.CreateCustomer(c.Request.Context(), service.CreateCustomerInput{
		Principal: principal,
		Name:      req.Name,
		Phone:     req.Phone,
		Company:   req.Company,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCustomerResponse(*customer))
}

func (h *Handler) listMunicipalities(c *gin.Context) {
	if _, ok := h.principal(c); !ok {
		return
	}
	list, err := h.municipalities.ListMunicipalities(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	items := make([]gin.H, 0, len(list.Items))
	for _, m := range list.Items {
		items = append(items, toMunicipalityResponse(m))
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "read_only": list.ReadOnly})
}

func (h *Handler) createMunicipality(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req municipalityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	m, err := h.municipalities.CreateMunicipality(c.Request.Context(), service.MunicipalityInput{
		Principal: principal,
		Name:      req.Name,
		Code:      req.Code,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toMunicipalityResponse(*m))
}

func (h *Handler) updateMunicipality(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req municipalityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	m, err := h.municipalities.UpdateMunicipality(c.Request.Context(), id, service.MunicipalityInput{
		Principal: principal,
		Name:      req.Name,
		Code:      req.Code,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMunicipalityResponse(*m))
}

func (h *Handler) deleteMunicipality(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.municipalities.DeleteMunicipality(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
