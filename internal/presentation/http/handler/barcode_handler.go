package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sangkips/pharmacy-pos-api/internal/application/service"
	"github.com/sangkips/pharmacy-pos-api/internal/presentation/http/dto/response"
)

// BarcodeHandler handles product lookups by barcode
type BarcodeHandler struct {
	barcodeService *service.BarcodeService
}

// NewBarcodeHandler creates a new barcode handler
func NewBarcodeHandler(barcodeService *service.BarcodeService) *BarcodeHandler {
	return &BarcodeHandler{barcodeService: barcodeService}
}

// Lookup returns product details to prefill a new catalog entry
func (h *BarcodeHandler) Lookup(c *gin.Context) {
	product, err := h.barcodeService.Lookup(c.Request.Context(), c.Param("upc"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product retrieved successfully", product)
}
