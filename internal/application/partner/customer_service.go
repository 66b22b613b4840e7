package partner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/taller/backend/internal/domain/partner"
	"github.com/taller/backend/internal/domain/shared"
)

// CreateCustomerRequest creates a customer
type CreateCustomerRequest struct {
	Name       string `json:"name" binding:"required"`
	DocumentID string `json:"document_id"`
	Phone      string `json:"phone"`
	Email      string `json:"email" binding:"omitempty,email"`
	Address    string `json:"address"`
}

// UpdateCustomerRequest updates a customer's contact information
type UpdateCustomerRequest struct {
	Name       string `json:"name" binding:"required"`
	DocumentID string `json:"document_id"`
	Phone      string `json:"phone"`
	Email      string `json:"email" binding:"omitempty,email"`
	Address    string `json:"address"`
}

// CustomerListFilter filters the customer listing
type CustomerListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// CustomerResponse is the API representation of a customer
type CustomerResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	DocumentID string    `json:"document_id,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Email      string    `json:"email,omitempty"`
	Address    string    `json:"address,omitempty"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToCustomerResponse converts a Customer aggregate to its API representation
func ToCustomerResponse(customer *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:         customer.ID,
		Name:       customer.Name,
		DocumentID: customer.DocumentID,
		Phone:      customer.Phone,
		Email:      customer.Email,
		Address:    customer.Address,
		Active:     customer.Active,
		CreatedAt:  customer.CreatedAt,
	}
}

// CustomerService handles customer CRUD
type CustomerService struct {
	customerRepo partner.CustomerRepository
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// Create creates a customer
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	if req.DocumentID != "" {
		exists, err := s.customerRepo.ExistsByDocumentID(ctx, req.DocumentID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewConflictError("DOCUMENT_TAKEN", "Document number is already registered")
		}
	}

	customer, err := partner.NewCustomer(req.Name, req.DocumentID, req.Phone, req.Email, req.Address)
	if err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Update updates a customer's contact information
func (s *CustomerService) Update(ctx context.Context, customerID uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if err := customer.Update(req.Name, req.DocumentID, req.Phone, req.Email, req.Address); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Deactivate marks a customer inactive instead of deleting it
func (s *CustomerService) Deactivate(ctx context.Context, customerID uuid.UUID) error {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return err
	}
	customer.Deactivate()
	return s.customerRepo.Save(ctx, customer)
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves customers with filtering and pagination
func (s *CustomerService) List(ctx context.Context, filter CustomerListFilter) ([]CustomerResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   filter.Search,
	}

	customers, err := s.customerRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.customerRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		responses = append(responses, ToCustomerResponse(&customers[i]))
	}
	return responses, total, nil
}
