package service

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/sangkips/pharmacy-pos-api/pkg/apperror"
	"github.com/sangkips/pharmacy-pos-api/pkg/barcode"
)

// BarcodeLookup resolves a UPC/EAN code to product details
type BarcodeLookup interface {
	Lookup(ctx context.Context, upc string) (*barcode.Product, error)
}

// BarcodeService prefills catalog entries from a product database. It is
// never consulted while billing.
type BarcodeService struct {
	lookup BarcodeLookup
}

// NewBarcodeService creates a new barcode service
func NewBarcodeService(lookup BarcodeLookup) *BarcodeService {
	return &BarcodeService{lookup: lookup}
}

// Lookup returns the product registered for upc
func (s *BarcodeService) Lookup(ctx context.Context, upc string) (*barcode.Product, error) {
	upc = strings.TrimSpace(upc)
	if upc == "" {
		return nil, apperror.NewBadRequestError("Barcode is required")
	}

	product, err := s.lookup.Lookup(ctx, upc)
	switch {
	case err == nil:
		return product, nil
	case errors.Is(err, barcode.ErrNotFound):
		return nil, apperror.NewNotFoundError("Product for barcode " + upc)
	case errors.Is(err, barcode.ErrMalformed):
		log.Printf("Barcode lookup %s: %v", upc, err)
		return nil, apperror.NewUpstreamError(http.StatusBadGateway, "Barcode service returned an unreadable response", err)
	default:
		log.Printf("Barcode lookup %s: %v", upc, err)
		return nil, apperror.NewUpstreamError(http.StatusServiceUnavailable, "Barcode service is unavailable", err)
	}
}
