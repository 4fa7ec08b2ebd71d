package service

import (
	"context"
	"strings"

	"github.com/sangkips/pharmacy-pos-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos-api/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos-api/pkg/apperror"
	"github.com/sangkips/pharmacy-pos-api/pkg/pagination"
)

// CustomerService handles customer-related operations
type CustomerService struct {
	customerRepo repository.CustomerRepository
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo repository.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// CreateCustomerInput represents the create customer input
type CreateCustomerInput struct {
	Name        string
	PhoneNumber string
	Email       *string
	Address     *string
}

// CreateCustomer registers a customer. Phone numbers must be unique.
func (s *CustomerService) CreateCustomer(ctx context.Context, input *CreateCustomerInput) (*entity.Customer, error) {
	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.PhoneNumber)

	var fieldErrors []apperror.FieldError
	if name == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "name", Message: "is required"})
	}
	if phone == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "phone_number", Message: "is required"})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	existing, err := s.customerRepo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, apperror.NewPersistenceError("check phone number", err)
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Phone \"" + phone + "\" already exists")
	}

	customer := &entity.Customer{
		Name:        name,
		PhoneNumber: phone,
		Email:       trimmedOrNil(input.Email),
		Address:     trimmedOrNil(input.Address),
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, apperror.NewPersistenceError("create customer", err)
	}

	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, id uint) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NewPersistenceError("load customer", err)
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// FindByPhone looks a customer up by phone number, as the billing screen does
func (s *CustomerService) FindByPhone(ctx context.Context, phone string) (*entity.Customer, error) {
	if strings.TrimSpace(phone) == "" {
		return nil, apperror.NewBadRequestError("Phone number is required")
	}
	customer, err := s.customerRepo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, apperror.NewPersistenceError("load customer", err)
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// ListCustomers lists customers by name
func (s *CustomerService) ListCustomers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Customer], error) {
	customers, total, err := s.customerRepo.List(ctx, params, search)
	if err != nil {
		return nil, apperror.NewPersistenceError("list customers", err)
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(customers, pag), nil
}

// UpdateCustomerInput represents the update customer input
type UpdateCustomerInput struct {
	ID          uint
	Name        *string
	PhoneNumber *string
	Email       *string
	Address     *string
}

// UpdateCustomer updates a customer's contact details
func (s *CustomerService) UpdateCustomer(ctx context.Context, input *UpdateCustomerInput) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, apperror.NewPersistenceError("load customer", err)
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}

	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" {
			customer.Name = name
		}
	}
	if input.PhoneNumber != nil {
		phone := strings.TrimSpace(*input.PhoneNumber)
		if phone != "" && phone != customer.PhoneNumber {
			other, err := s.customerRepo.GetByPhone(ctx, phone)
			if err != nil {
				return nil, apperror.NewPersistenceError("check phone number", err)
			}
			if other != nil {
				return nil, apperror.NewConflictError("Phone \"" + phone + "\" already exists")
			}
			customer.PhoneNumber = phone
		}
	}
	if input.Email != nil {
		customer.Email = trimmedOrNil(input.Email)
	}
	if input.Address != nil {
		customer.Address = trimmedOrNil(input.Address)
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, apperror.NewPersistenceError("update customer", err)
	}

	return customer, nil
}
