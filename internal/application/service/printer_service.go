package service

import (
	"context"
	"fmt"
	"log"

	"github.com/sangkips/pharmacy-pos-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos-api/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos-api/pkg/apperror"
	"github.com/sangkips/pharmacy-pos-api/pkg/money"
	"github.com/sangkips/pharmacy-pos-api/pkg/printer"
)

const receiptTimeLayout = "2006-01-02 15:04"

// PrinterService handles receipt formatting and thermal printing.
type PrinterService struct {
	printer      printer.Printer
	billRepo     repository.BillRepository
	settingsRepo repository.SettingsRepository
	payments     PaymentReferencer
	printerType  string
	charWidth    int
}

// NewPrinterService creates a new printer service.
func NewPrinterService(
	p printer.Printer,
	billRepo repository.BillRepository,
	settingsRepo repository.SettingsRepository,
	payments PaymentReferencer,
	printerType string,
	charWidth int,
) *PrinterService {
	return &PrinterService{
		printer:      p,
		billRepo:     billRepo,
		settingsRepo: settingsRepo,
		payments:     payments,
		printerType:  printerType,
		charWidth:    charWidth,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printerType != printer.TypeNone && s.printerType != "",
		Connected:  s.printer.IsConnected(),
		Type:       s.printerType,
	}
}

// TestPrint sends a test page to the printer.
// Returns the receipt data so the handler can return it as JSON when printer is disabled.
func (s *PrinterService) TestPrint(ctx context.Context) (*entity.Receipt, error) {
	receipt := &entity.Receipt{
		Header: s.header(ctx),
		BillNo: "TEST",
		Date:   "Test Date",
		Items: []entity.ReceiptItem{
			{Name: "Test Item 1", Quantity: 1, UnitPrice: 10.00, Total: 10.00},
			{Name: "Test Item 2", Quantity: 2, UnitPrice: 5.00, Total: 10.00},
		},
		Total: 20.00,
	}
	receipt.Header.StoreName = "PRINTER TEST"

	data := FormatReceipt(receipt, s.charWidth)
	if err := s.printer.Print(data); err != nil {
		return receipt, fmt.Errorf("test print failed: %w", err)
	}

	return receipt, nil
}

// BuildReceipt composes the printable view of a stored bill.
func (s *PrinterService) BuildReceipt(ctx context.Context, billID uint) (*entity.Receipt, error) {
	bill, err := s.billRepo.GetWithItems(ctx, billID)
	if err != nil {
		return nil, apperror.NewPersistenceError("load bill", err)
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}

	receipt := &entity.Receipt{
		Header:   s.header(ctx),
		BillNo:   fmt.Sprintf("%d", bill.ID),
		Date:     bill.CreatedAt.Local().Format(receiptTimeLayout),
		Customer: bill.CustomerLabel(),
		Total:    money.Float(bill.TotalAmount),
	}
	if bill.BilledFromShopID != nil {
		receipt.Shop = *bill.BilledFromShopID
	}

	for _, it := range bill.Items {
		receipt.Items = append(receipt.Items, entity.ReceiptItem{
			Name:      it.NameSnapshot,
			Quantity:  it.Quantity,
			UnitPrice: money.Float(it.UnitPrice),
			Total:     money.Float(it.LineTotal),
		})
	}

	if s.payments != nil {
		ref, err := s.payments.Reference(ctx, bill.TotalAmount, bill.ID)
		if err == nil {
			receipt.PaymentURI = ref.URI
			receipt.PaymentRef = ref.Note
		} else if !apperror.IsKind(err, apperror.KindConfiguration) {
			log.Printf("Receipt: payment reference for bill %d failed: %v", bill.ID, err)
		}
	}

	return receipt, nil
}

// PrintBillReceipt builds a bill's receipt and prints it.
func (s *PrinterService) PrintBillReceipt(ctx context.Context, billID uint) (*entity.Receipt, error) {
	receipt, err := s.BuildReceipt(ctx, billID)
	if err != nil {
		return nil, err
	}

	data := FormatReceipt(receipt, s.charWidth)
	if err := s.printer.Print(data); err != nil {
		log.Printf("Printer error (bill %d): %v", billID, err)
		return receipt, fmt.Errorf("failed to print receipt: %w", err)
	}

	return receipt, nil
}

func (s *PrinterService) header(ctx context.Context) entity.ReceiptHeader {
	values, err := s.settingsRepo.GetMany(ctx, entity.SettingStoreName, entity.SettingStoreAddress, entity.SettingStorePhone)
	if err != nil {
		log.Printf("Receipt: failed to load store header: %v", err)
		values = map[string]string{}
	}
	h := entity.ReceiptHeader{
		StoreName: values[entity.SettingStoreName],
		Address:   values[entity.SettingStoreAddress],
		Phone:     values[entity.SettingStorePhone],
	}
	if h.StoreName == "" {
		h.StoreName = "Pharmacy"
	}
	return h
}

// FormatReceipt converts a Receipt into ESC/POS bytes.
func FormatReceipt(r *entity.Receipt, charWidth int) []byte {
	doc := printer.NewDocument(charWidth)

	// Header
	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(r.Header.StoreName).
		SetFontSize(printer.FontNormal).
		SetBold(false)

	if r.Header.Address != "" {
		doc.Text(r.Header.Address)
	}
	if r.Header.Phone != "" {
		doc.Text(r.Header.Phone)
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('-')

	doc.KeyValue("Bill:", r.BillNo).
		KeyValue("Date:", r.Date)

	if r.Customer != "" {
		doc.KeyValue("Customer:", r.Customer)
	}
	if r.Shop != "" {
		doc.KeyValue("Shop:", r.Shop)
	}

	doc.Separator('-')

	for _, item := range r.Items {
		doc.ItemLine(item.Quantity, item.Name, fmt.Sprintf("%.2f", item.Total))
		if item.Quantity > 1 {
			doc.TextF("  @ %.2f each", item.UnitPrice)
		}
	}

	doc.Separator('-')

	doc.SetBold(true).
		KeyValue("TOTAL:", fmt.Sprintf("%.2f", r.Total)).
		SetBold(false)

	if r.PaymentURI != "" {
		doc.Separator('-').
			SetAlign(printer.AlignCenter).
			Text("Scan to pay (UPI)").
			QRCode(r.PaymentURI, 6).
			Text(r.PaymentRef).
			SetAlign(printer.AlignLeft)
	}

	doc.Separator('-')

	// Footer
	doc.SetAlign(printer.AlignCenter).
		LineFeed().
		Text("Get well soon!").
		LineFeed().
		SetAlign(printer.AlignLeft)

	doc.FeedLines(3).
		PartialCut()

	return doc.Bytes()
}
