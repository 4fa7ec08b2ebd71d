package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sangkips/pharmacy-pos-api/internal/application/service"
	"github.com/sangkips/pharmacy-pos-api/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/pharmacy-pos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/pharmacy-pos-api/pkg/pagination"
)

// CatalogHandler handles medicine batch HTTP requests
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// List handles listing batches (supports both page-based and cursor-based pagination)
func (h *CatalogHandler) List(c *gin.Context) {
	var req request.CatalogFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	if wantsCursor(c) {
		result, err := h.catalogService.ListItemsWithCursor(c.Request.Context(), &repository.CatalogCursorFilterParams{
			Cursor: &pagination.CursorParams{Cursor: req.Cursor, Limit: req.Limit},
			Search: req.Search,
			ShopID: req.ShopID,
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, "Medicines retrieved successfully", result)
		return
	}

	result, err := h.catalogService.ListItems(c.Request.Context(), &service.ListItemsInput{
		Pagination: pageParams(req.Page, req.PerPage),
		Search:     req.Search,
		ShopID:     req.ShopID,
		Expiry:     req.Expiry,
		LowStock:   req.LowStock,
		SortBy:     req.SortBy,
		SortOrder:  req.SortOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Medicines retrieved successfully", result)
}

// Search handles the billing screen's type-ahead
func (h *CatalogHandler) Search(c *gin.Context) {
	items, err := h.catalogService.SearchForBilling(c.Request.Context(), c.Query("term"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Medicines retrieved successfully", items)
}

// Expiring handles listing expired and soon-to-expire batches
func (h *CatalogHandler) Expiring(c *gin.Context) {
	items, err := h.catalogService.ExpiringItems(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Expiring medicines retrieved successfully", items)
}

// Create handles adding a batch
func (h *CatalogHandler) Create(c *gin.Context) {
	var req request.CatalogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	item, err := h.catalogService.CreateItem(c.Request.Context(), toCatalogInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Medicine added successfully", item)
}

// Get handles getting a single batch
func (h *CatalogHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id", "medicine")
	if !ok {
		return
	}

	item, err := h.catalogService.GetItem(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Medicine retrieved successfully", item)
}

// Update handles replacing a batch's details
func (h *CatalogHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id", "medicine")
	if !ok {
		return
	}

	var req request.CatalogItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	item, err := h.catalogService.UpdateItem(c.Request.Context(), id, toCatalogInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Medicine updated successfully", item)
}

// Delete handles deleting a batch
func (h *CatalogHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id", "medicine")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteItem(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

func toCatalogInput(req *request.CatalogItemRequest) *service.CatalogItemInput {
	return &service.CatalogItemInput{
		Barcode:      req.Barcode,
		Name:         req.Name,
		BatchNo:      req.BatchNo,
		CostPrice:    req.CostPrice,
		SellingPrice: req.SellingPrice,
		MfgDate:      req.MfgDate,
		ExpiryDate:   req.ExpiryDate,
		Quantity:     req.Quantity,
		Supplier:     req.Supplier,
		ShelfNo:      req.ShelfNo,
		BoxNo:        req.BoxNo,
		ShopID:       req.ShopID,
	}
}
