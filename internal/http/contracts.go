package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/billboards-service/internal/installment"
	"github.com/nurpe/billboards-service/internal/model"
	"github.com/nurpe/billboards-service/internal/pricing"
	"github.com/nurpe/billboards-service/internal/service"
)

type discountRequest struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

type installmentRequest struct {
	Amount      float64 `json:"amount"`
	Months      int     `json:"months"`
	PaymentType string  `json:"payment_type"`
}

type quoteRequest struct {
	BillboardIDs     []int64         `json:"billboard_ids" binding:"required"`
	Tier             string          `json:"tier"`
	DurationMonths   int             `json:"duration_months" binding:"required"`
	StartDate        string          `json:"start_date"`
	RentCost         float64         `json:"rent_cost"`
	Discount         discountRequest `json:"discount"`
	InstallmentCount int             `json:"installment_count"`
}

type createContractRequest struct {
	CustomerID       *string              `json:"customer_id"`
	CustomerName     string               `json:"customer_name"`
	AdType           string               `json:"ad_type"`
	StartDate        string               `json:"start_date" binding:"required"`
	EndDate          string               `json:"end_date"`
	DurationMonths   int                  `json:"duration_months"`
	BillboardIDs     []int64              `json:"billboard_ids" binding:"required"`
	Tier             string               `json:"tier"`
	RentCost         float64              `json:"rent_cost"`
	Discount         discountRequest      `json:"discount"`
	Installments     []installmentRequest `json:"installments"`
	InstallmentCount int                  `json:"installment_count"`
}

type updateContractRequest struct {
	CustomerID   *string              `json:"customer_id"`
	CustomerName *string              `json:"customer_name"`
	AdType       *string              `json:"ad_type"`
	StartDate    *string              `json:"start_date"`
	EndDate      *string              `json:"end_date"`
	RentCost     *float64             `json:"rent_cost"`
	Discount     *float64             `json:"discount"`
	TotalPaid    *float64             `json:"total_paid"`
	Installments []installmentRequest `json:"installments"`
}

type billboardIDsRequest struct {
	BillboardIDs []int64 `json:"billboard_ids" binding:"required"`
}

type installmentResponse struct {
	Index       int     `json:"index"`
	Amount      float64 `json:"amount"`
	Months      int     `json:"months,omitempty"`
	PaymentType string  `json:"payment_type"`
	DueDate     string  `json:"due_date,omitempty"`
}

type contractResponse struct {
	ID            string                `json:"id"`
	Number        int64                 `json:"number"`
	CustomerID    *string               `json:"customer_id,omitempty"`
	CustomerName  string                `json:"customer_name"`
	AdType        string                `json:"ad_type,omitempty"`
	StartDate     string                `json:"start_date,omitempty"`
	EndDate       string                `json:"end_date,omitempty"`
	RentCost      float64               `json:"rent_cost"`
	Discount      float64               `json:"discount"`
	TotalPaid     float64               `json:"total_paid"`
	Remaining     float64               `json:"remaining"`
	Status        string                `json:"status"`
	DaysRemaining int                   `json:"days_remaining"`
	Installments  []installmentResponse `json:"installments"`
	BillboardIDs  []int64               `json:"billboard_ids"`
}

func toContractResponse(v service.ContractView) contractResponse {
	resp := contractResponse{
		ID:            v.ID.String(),
		Number:        v.Number,
		CustomerName:  v.CustomerName,
		AdType:        v.AdType,
		StartDate:     formatDate(v.StartDate),
		EndDate:       formatDate(v.EndDate),
		RentCost:      v.RentCost,
		Discount:      v.Discount,
		TotalPaid:     v.TotalPaid,
		Remaining:     v.Remaining(),
		Status:        string(v.Status),
		DaysRemaining: v.DaysRemaining,
		Installments:  make([]installmentResponse, 0, len(v.Installments)),
		BillboardIDs:  make([]int64, 0, len(v.Billboards)),
	}
	if v.CustomerID != nil {
		id := v.CustomerID.String()
		resp.CustomerID = &id
	}
	for i, row := range v.Installments {
		item := installmentResponse{
			Index:       i + 1,
			Amount:      row.Amount,
			Months:      row.Months,
			PaymentType: string(row.PaymentType),
		}
		if i < len(v.Schedule) {
			item.DueDate = formatDate(v.Schedule[i].DueDate)
		}
		resp.Installments = append(resp.Installments, item)
	}
	for _, b := range v.Billboards {
		resp.BillboardIDs = append(resp.BillboardIDs, b.ID)
	}
	return resp
}

func parseTier(raw string) (pricing.Tier, error) {
	if strings.TrimSpace(raw) == "" {
		return pricing.TierOrdinary, nil
	}
	return pricing.ParseTier(raw)
}

func (r discountRequest) toDiscount() (pricing.Discount, error) {
	switch strings.ToLower(strings.TrimSpace(r.Type)) {
	case "", "percent", "percentage":
		return pricing.Discount{Kind: pricing.DiscountPercent, Value: r.Value}, nil
	case "amount", "fixed":
		return pricing.Discount{Kind: pricing.DiscountAmount, Value: r.Value}, nil
	default:
		return pricing.Discount{}, service.ErrInvalidInput
	}
}

func toInstallments(rows []installmentRequest) ([]model.Installment, error) {
	if rows == nil {
		return nil, nil
	}
	plan := make([]model.Installment, 0, len(rows))
	for _, row := range rows {
		pt, err := installment.ParsePaymentType(row.PaymentType)
		if err != nil {
			return nil, err
		}
		plan = append(plan, model.Installment{Amount: row.Amount, Months: row.Months, PaymentType: pt})
	}
	return plan, nil
}

func (h *Handler) quote(c *gin.Context) {
	if _, ok := h.principal(c); !ok {
		return
	}
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	tier, err := parseTier(req.Tier)
	if err != nil {
		badRequest(c, "invalid tier")
		return
	}
	discount, err := req.Discount.toDiscount()
	if err != nil {
		badRequest(c, "invalid discount type")
		return
	}
	start, err := parseOptionalDate(req.StartDate)
	if err != nil {
		badRequest(c, "invalid start_date")
		return
	}

	result, err := h.contracts.Quote(c.Request.Context(), service.QuoteInput{
		BillboardIDs:     req.BillboardIDs,
		Tier:             tier,
		DurationMonths:   req.DurationMonths,
		StartDate:        start,
		RentCost:         req.RentCost,
		Discount:         discount,
		InstallmentCount: req.InstallmentCount,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	quotes := make([]gin.H, 0, len(result.Quotes))
	for _, q := range result.Quotes {
		quotes = append(quotes, gin.H{"billboard_id": q.BillboardID, "price": q.Price, "fallback": q.Fallback})
	}
	installments := make([]installmentResponse, 0, len(result.Installments))
	for i, row := range result.Installments {
		item := installmentResponse{Index: i + 1, Amount: row.Amount, Months: row.Months, PaymentType: string(row.PaymentType)}
		if i < len(result.Schedule) {
			item.DueDate = formatDate(result.Schedule[i].DueDate)
		}
		installments = append(installments, item)
	}
	c.JSON(http.StatusOK, gin.H{
		"quotes":          quotes,
		"estimated_total": result.EstimatedTotal,
		"base_total":      result.BaseTotal,
		"discount_amount": result.DiscountAmount,
		"final_total":     result.FinalTotal,
		"end_date":        formatDate(result.EndDate),
		"installments":    installments,
	})
}

func (h *Handler) listContracts(c *gin.Context) {
	if _, ok := h.principal(c); !ok {
		return
	}
	views, err := h.contracts.ListContracts(c.Request.Context(), service.ListContractsInput{
		Query:    c.Query("q"),
		Customer: c.Query("customer"),
		Status:   c.Query("status"),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	items := make([]contractResponse, 0, len(views))
	for _, v := range views {
		items = append(items, toContractResponse(v))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) createContract(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req createContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	customerID, err := parseOptionalUUID(req.CustomerID)
	if err != nil {
		badRequest(c, "invalid customer_id")
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		badRequest(c, "invalid start_date")
		return
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		badRequest(c, "invalid end_date")
		return
	}
	tier, err := parseTier(req.Tier)
	if err != nil {
		badRequest(c, "invalid tier")
		return
	}
	discount, err := req.Discount.toDiscount()
	if err != nil {
		badRequest(c, "invalid discount type")
		return
	}
	plan, err := toInstallments(req.Installments)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	created, err := h.contracts.CreateContract(c.Request.Context(), service.CreateContractInput{
		Principal:        principal,
		CustomerID:       customerID,
		CustomerName:     req.CustomerName,
		AdType:           req.AdType,
		StartDate:        start,
		EndDate:          end,
		DurationMonths:   req.DurationMonths,
		BillboardIDs:     req.BillboardIDs,
		Tier:             tier,
		RentCost:         req.RentCost,
		Discount:         discount,
		Installments:     plan,
		InstallmentCount: req.InstallmentCount,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	view, err := h.contracts.GetContract(c.Request.Context(), created.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toContractResponse(*view))
}

func (h *Handler) contractStats(c *gin.Context) {
	if _, ok := h.principal(c); !ok {
		return
	}
	stats, err := h.contracts.Stats(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total":    stats.Total,
		"active":   stats.Active,
		"expiring": stats.Expiring,
		"expired":  stats.Expired,
		"upcoming": stats.Upcoming,
	})
}

func (h *Handler) nextContractNumber(c *gin.Context) {
	if _, ok := h.principal(c); !ok {
		return
	}
	number, err := h.contracts.NextContractNumber(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"number": number})
}

func (h *Handler) exportContracts(c *gin.Context) {
	if _, ok := h.principal(c); !ok {
		return
	}
	doc, err := h.contracts.ExportRegister(c.Request.Context(), service.ListContractsInput{
		Query:    c.Query("q"),
		Customer: c.Query("customer"),
		Status:   c.Query("status"),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendFile(c, doc, contentTypeXLSX)
}

func (h *Handler) getContract(c *gin.Context) {
	if _, ok := h.principal(c); !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	view, err := h.contracts.GetContract(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContractResponse(*view))
}

func (h *Handler) updateContract(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req updateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	input := service.UpdateContractInput{
		Principal:    principal,
		CustomerName: req.CustomerName,
		AdType:       req.AdType,
		RentCost:     req.RentCost,
		Discount:     req.Discount,
		TotalPaid:    req.TotalPaid,
	}
	var err error
	if input.CustomerID, err = parseOptionalUUID(req.CustomerID); err != nil {
		badRequest(c, "invalid customer_id")
		return
	}
	if req.StartDate != nil {
		start, err := parseDate(*req.StartDate)
		if err != nil {
			badRequest(c, "invalid start_date")
			return
		}
		input.StartDate = &start
	}
	if req.EndDate != nil {
		end, err := parseDate(*req.EndDate)
		if err != nil {
			badRequest(c, "invalid end_date")
			return
		}
		input.EndDate = &end
	}
	if input.Installments, err = toInstallments(req.Installments); err != nil {
		badRequest(c, err.Error())
		return
	}

	view, err := h.contracts.UpdateContract(c.Request.Context(), id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContractResponse(*view))
}

func (h *Handler) deleteContract(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.contracts.DeleteContract(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) settlement(c *gin.Context) {
	if _, ok := h.principal(c); !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	asOf, err := parseOptionalDate(c.Query("date"))
	if err != nil {
		badRequest(c, "invalid date")
		return
	}
	result, err := h.contracts.Settlement(c.Request.Context(), id, asOf)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"contract_id": result.ContractID.String(),
		"as_of":       formatDate(result.AsOf),
		"final_total": result.FinalTotal,
		"amount":      result.Amount,
		"total_paid":  result.TotalPaid,
		"due":         result.Due,
	})
}

func (h *Handler) contractPDF(c *gin.Context) {
	if _, ok := h.principal(c); !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	doc, err := h.contracts.ContractPDF(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendFile(c, doc, contentTypePDF)
}

func (h *Handler) addBillboards(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req billboardIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if err := h.contracts.AddBillboards(c.Request.Context(), principal, id, req.BillboardIDs); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) removeBillboard(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	billboardID, err := strconv.ParseInt(c.Param("billboardId"), 10, 64)
	if err != nil {
		badRequest(c, "invalid billboardId")
		return
	}
	if err := h.contracts.RemoveBillboard(c.Request.Context(), principal, id, billboardID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
