package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/billboards-service/internal/model"
	"github.com/nurpe/billboards-service/internal/service"
)

type billboardRequest struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name" binding:"required"`
	City         string  `json:"city"`
	District     string  `json:"district"`
	Municipality string  `json:"municipality"`
	Size         string  `json:"size" binding:"required"`
	Level        string  `json:"level"`
	MonthlyPrice float64 `json:"monthly_price"`
	Status       string  `json:"status"`
	Faces        int     `json:"faces"`
	Landmark     string  `json:"landmark"`
	ImageURL     string  `json:"image_url"`
	GPS          string  `json:"gps"`
}

func (r billboardRequest) toInput(principal model.Principal) service.BillboardInput {
	return service.BillboardInput{
		Principal:    principal,
		ID:           r.ID,
		Name:         r.Name,
		City:         r.City,
		District:     r.District,
		Municipality: r.Municipality,
		Size:         r.Size,
		Level:        r.Level,
		MonthlyPrice: r.MonthlyPrice,
		Status:       model.BillboardStatus(r.Status),
		Faces:        r.Faces,
		Landmark:     r.Landmark,
		ImageURL:     r.ImageURL,
		GPS:          r.GPS,
	}
}

type billboardResponse struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	DisplayName   string  `json:"display_name"`
	City          string  `json:"city"`
	District      string  `json:"district,omitempty"`
	Municipality  string  `json:"municipality,omitempty"`
	Size          string  `json:"size"`
	Level         string  `json:"level,omitempty"`
	MonthlyPrice  float64 `json:"monthly_price"`
	Faces         int     `json:"faces"`
	Landmark      string  `json:"landmark,omitempty"`
	ImageURL      string  `json:"image_url,omitempty"`
	GPS           string  `json:"gps,omitempty"`
	Availability  string  `json:"availability"`
	ContractID    *string `json:"contract_id,omitempty"`
	CustomerName  string  `json:"customer_name,omitempty"`
	AdType        string  `json:"ad_type,omitempty"`
	RentStart     string  `json:"rent_start,omitempty"`
	RentEnd       string  `json:"rent_end,omitempty"`
	DaysRemaining *int    `json:"days_remaining,omitempty"`
}

func toBillboardResponse(v service.BillboardView) billboardResponse {
	resp := billboardResponse{
		ID:            v.ID,
		Name:          v.Name,
		DisplayName:   v.DisplayName(),
		City:          v.City,
		District:      v.District,
		Municipality:  v.Municipality,
		Size:          v.Size,
		Level:         v.Level,
		MonthlyPrice:  v.MonthlyPrice,
		Faces:         v.Faces,
		Landmark:      v.Landmark,
		ImageURL:      v.ImageURL,
		GPS:           v.GPS,
		Availability:  string(v.Availability),
		CustomerName:  v.CustomerName,
		AdType:        v.AdType,
		RentStart:     formatDate(v.RentStart),
		RentEnd:       formatDate(v.RentEnd),
		DaysRemaining: v.DaysRemaining,
	}
	if v.ContractID != nil {
		id := v.ContractID.String()
		resp.ContractID = &id
	}
	return resp
}

func (h *Handler) searchBillboards(c *gin.Context) {
	if _, ok := h.principal(c); !ok {
		return
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		badRequest(c, "invalid limit")
		return
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		badRequest(c, "invalid offset")
		return
	}

	views, err := h.billboards.Search(c.Request.Context(), service.SearchInput{
		Query:        c.Query("q"),
		City:         c.Query("city"),
		Size:         c.Query("size"),
		Municipality: c.Query("municipality"),
		AdType:       c.Query("ad_type"),
		Filter:       service.AvailabilityFilter(c.Query("filter")),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	items := make([]billboardResponse, 0, len(views))
	for _, v := range views {
		items = append(items, toBillboardResponse(v))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) billboardFacets(c *gin.Context) {
	if _, ok := h.principal(c); !ok {
		return
	}
	facets, err := h.billboards.Facets(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"cities":         facets.Cities,
		"sizes":          facets.Sizes,
		"municipalities": facets.Municipalities,
		"ad_types":       facets.AdTypes,
	})
}

func (h *Handler) createBillboard(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req billboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	view, err := h.billboards.CreateBillboard(c.Request.Context(), req.toInput(principal))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBillboardResponse(*view))
}

func (h *Handler) updateBillboard(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid id")
		return
	}
	var req billboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	view, err := h.billboards.UpdateBillboard(c.Request.Context(), id, req.toInput(principal))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBillboardResponse(*view))
}

func (h *Handler) importBillboards(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	result, err := h.billboards.Import(c.Request.Context(), principal, c.Request.Body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": result.Imported, "skipped": result.Skipped})
}
