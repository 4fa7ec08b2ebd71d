package service

import (
	"context"
	"errors"

	"github.com/sangkips/pharmacy-pos-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos-api/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos-api/pkg/apperror"
	"github.com/sangkips/pharmacy-pos-api/pkg/upi"
)

// PaymentService builds UPI payment references for committed bills
type PaymentService struct {
	settingsRepo repository.SettingsRepository
	billRepo     repository.BillRepository
	fallback     upi.Payee
}

// NewPaymentService creates a new payment service. fallback fills any payee
// field missing from the settings table.
func NewPaymentService(settingsRepo repository.SettingsRepository, billRepo repository.BillRepository, fallback upi.Payee) *PaymentService {
	return &PaymentService{
		settingsRepo: settingsRepo,
		billRepo:     billRepo,
		fallback:     fallback,
	}
}

// Payee resolves the current payee identity
func (s *PaymentService) Payee(ctx context.Context) (upi.Payee, error) {
	values, err := s.settingsRepo.GetMany(ctx, entity.SettingPayeeVPA, entity.SettingPayeeName, entity.SettingCurrency)
	if err != nil {
		return upi.Payee{}, apperror.NewPersistenceError("load payee settings", err)
	}

	payee := upi.Payee{
		VPA:      values[entity.SettingPayeeVPA],
		Name:     values[entity.SettingPayeeName],
		Currency: values[entity.SettingCurrency],
	}
	if payee.VPA == "" {
		payee.VPA = s.fallback.VPA
	}
	if payee.Name == "" {
		payee.Name = s.fallback.Name
	}
	if payee.Currency == "" {
		payee.Currency = s.fallback.Currency
	}
	return payee, nil
}

// Reference builds the payment artifact for an amount and bill id
func (s *PaymentService) Reference(ctx context.Context, amountCents int64, billID uint) (*upi.Reference, error) {
	payee, err := s.Payee(ctx)
	if err != nil {
		return nil, err
	}

	ref, err := upi.Generate(payee, amountCents, billID)
	if errors.Is(err, upi.ErrNotConfigured) {
		return nil, apperror.NewConfigurationError("UPI payee is not configured; set payee VPA and name in settings")
	}
	if err != nil {
		return nil, err
	}
	return ref, nil
}

// ReferenceForBill re-renders the payment artifact of an existing bill
func (s *PaymentService) ReferenceForBill(ctx context.Context, billID uint) (*upi.Reference, error) {
	bill, err := s.billRepo.GetWithItems(ctx, billID)
	if err != nil {
		return nil, apperror.NewPersistenceError("load bill", err)
	}
	if bill == nil {
		return nil, apperror.NewNotFoundError("Bill")
	}
	return s.Reference(ctx, bill.TotalAmount, bill.ID)
}
