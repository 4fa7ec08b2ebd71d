package service

import (
	"context"
	"strings"

	"github.com/sangkips/pharmacy-pos-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos-api/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos-api/pkg/apperror"
)

// SettingsService handles the runtime editable store settings
type SettingsService struct {
	settingsRepo repository.SettingsRepository
}

// NewSettingsService creates a new settings service
func NewSettingsService(settingsRepo repository.SettingsRepository) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
	}
}

// StoreSettings is the editable store profile and payee identity
type StoreSettings struct {
	StoreName    string `json:"store_name"`
	StoreAddress string `json:"store_address"`
	StorePhone   string `json:"store_phone"`
	PayeeVPA     string `json:"payee_vpa"`
	PayeeName    string `json:"payee_name"`
	Currency     string `json:"currency"`
}

var storeSettingKeys = []string{
	entity.SettingStoreName,
	entity.SettingStoreAddress,
	entity.SettingStorePhone,
	entity.SettingPayeeVPA,
	entity.SettingPayeeName,
	entity.SettingCurrency,
}

// GetSettings returns the current settings. Unset keys come back empty.
func (s *SettingsService) GetSettings(ctx context.Context) (*StoreSettings, error) {
	values, err := s.settingsRepo.GetMany(ctx, storeSettingKeys...)
	if err != nil {
		return nil, apperror.NewPersistenceError("load settings", err)
	}

	return &StoreSettings{
		StoreName:    values[entity.SettingStoreName],
		StoreAddress: values[entity.SettingStoreAddress],
		StorePhone:   values[entity.SettingStorePhone],
		PayeeVPA:     values[entity.SettingPayeeVPA],
		PayeeName:    values[entity.SettingPayeeName],
		Currency:     values[entity.SettingCurrency],
	}, nil
}

// UpdateSettingsInput represents the input for updating settings. Nil
// fields are left untouched.
type UpdateSettingsInput struct {
	StoreName    *string
	StoreAddress *string
	StorePhone   *string
	PayeeVPA     *string
	PayeeName    *string
	Currency     *string
}

// UpdateSettings validates and stores the given settings
func (s *SettingsService) UpdateSettings(ctx context.Context, input *UpdateSettingsInput) (*StoreSettings, error) {
	values := make(map[string]string)
	var fieldErrors []apperror.FieldError

	set := func(key string, v *string) {
		if v != nil {
			values[key] = strings.TrimSpace(*v)
		}
	}
	set(entity.SettingStoreName, input.StoreName)
	set(entity.SettingStoreAddress, input.StoreAddress)
	set(entity.SettingStorePhone, input.StorePhone)
	set(entity.SettingPayeeVPA, input.PayeeVPA)
	set(entity.SettingPayeeName, input.PayeeName)
	set(entity.SettingCurrency, input.Currency)

	if vpa, ok := values[entity.SettingPayeeVPA]; ok && vpa != "" && !strings.Contains(vpa, "@") {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "payee_vpa", Message: "must look like name@bank"})
	}
	if cur, ok := values[entity.SettingCurrency]; ok {
		if len(cur) != 3 {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: "currency", Message: "must be a 3 letter ISO code"})
		}
		values[entity.SettingCurrency] = strings.ToUpper(cur)
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	if err := s.settingsRepo.Upsert(ctx, values); err != nil {
		return nil, apperror.NewPersistenceError("save settings", err)
	}

	return s.GetSettings(ctx)
}
