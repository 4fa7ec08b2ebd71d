package request

// CreateCustomerRequest represents a customer registration request
type CreateCustomerRequest struct {
	Name        string  `json:"name" binding:"required,max=255"`
	PhoneNumber string  `json:"phone_number" binding:"required,max=50"`
	Email       *string `json:"email" binding:"omitempty,email"`
	Address     *string `json:"address"`
}

// UpdateCustomerRequest represents a customer update request
type UpdateCustomerRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,max=50"`
	Email       *string `json:"email"`
	Address     *string `json:"address"`
}
