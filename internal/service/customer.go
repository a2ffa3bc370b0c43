package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/cartify-platform/commerce-core/internal/apperr"
	"github.com/cartify-platform/commerce-core/internal/model"
	"github.com/cartify-platform/commerce-core/internal/store"
)

// Customers manages shopper records and their addresses.
type Customers struct {
	store store.Store
}

// NewCustomers returns a Customers service backed by st.
func NewCustomers(st store.Store) *Customers {
	return &Customers{store: st}
}

// Create registers a customer.
func (s *Customers) Create(ctx context.Context, c *model.Customer) error {
	if err := s.validateCustomer(c); err != nil {
		return err
	}
	return s.store.CreateCustomer(ctx, c)
}

// Update applies changes to a customer. The order aggregates are owned by
// checkout and carried over from the stored row.
func (s *Customers) Update(ctx context.Context, c *model.Customer) error {
	current, err := s.requireCustomer(ctx, c.TenantID, c.ID)
	if err != nil {
		return err
	}
	if err := s.validateCustomer(c); err != nil {
		return err
	}
	c.TotalSpent = current.TotalSpent
	c.TotalOrders = current.TotalOrders
	c.LastOrderAt = current.LastOrderAt
	return s.store.UpdateCustomer(ctx, c)
}

// Delete removes a customer. Orders and addresses that reference the
// customer block the delete.
func (s *Customers) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.requireCustomer(ctx, tenantID, id); err != nil {
		return err
	}
	orders, err := s.store.CountOrdersByCustomer(ctx, tenantID, id)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "customer", err)
	}
	if orders > 0 {
		return apperr.New(apperr.IntegrityViolation, "customer", "customer has %d orders", orders)
	}
	addresses, err := s.store.CountAddressesByCustomer(ctx, tenantID, id)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "customer", err)
	}
	if addresses > 0 {
		return apperr.New(apperr.IntegrityViolation, "customer", "customer has %d addresses", addresses)
	}
	return s.store.DeleteCustomer(ctx, tenantID, id)
}

// Customer fetches a customer by id.
func (s *Customers) Customer(ctx context.Context, tenantID, id uuid.UUID) (*model.Customer, error) {
	return s.requireCustomer(ctx, tenantID, id)
}

// List returns the tenant's customers.
func (s *Customers) List(ctx context.Context, tenantID uuid.UUID) ([]model.Customer, error) {
	return s.store.ListCustomers(ctx, tenantID)
}

// CreateAddress stores an address for a customer or a staff user.
func (s *Customers) CreateAddress(ctx context.Context, a *model.Address) error {
	if err := s.validateAddress(ctx, a); err != nil {
		return err
	}
	if err := s.store.CreateAddress(ctx, a); err != nil {
		return err
	}
	return s.demoteSiblings(ctx, a)
}

// UpdateAddress applies changes to an address. Ownership is immutable.
func (s *Customers) UpdateAddress(ctx context.Context, a *model.Address) error {
	current, err := s.store.AddressByID(ctx, a.TenantID, a.ID)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "address", err)
	}
	if current == nil {
		return apperr.New(apperr.NotFound, "address", "address %s not found", a.ID)
	}
	a.CustomerID = current.CustomerID
	a.UserID = current.UserID
	if err := s.validateAddress(ctx, a); err != nil {
		return err
	}
	if err := s.store.UpdateAddress(ctx, a); err != nil {
		return err
	}
	return s.demoteSiblings(ctx, a)
}

// demoteSiblings keeps at most one default address per owner and type.
func (s *Customers) demoteSiblings(ctx context.Context, a *model.Address) error {
	if !a.IsDefault {
		return nil
	}
	if err := s.store.ClearOtherDefaultAddresses(ctx, a); err != nil {
		return apperr.Wrap(apperr.Internal, "address", err)
	}
	return nil
}

// DeleteAddress removes an address.
func (s *Customers) DeleteAddress(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.store.DeleteAddress(ctx, tenantID, id)
}

// ListAddresses returns a customer's addresses.
func (s *Customers) ListAddresses(ctx context.Context, tenantID, customerID uuid.UUID) ([]model.Address, error) {
	return s.store.ListAddressesByCustomer(ctx, tenantID, customerID)
}

func (s *Customers) validateCustomer(c *model.Customer) error {
	if err := required("customer", "first_name", c.FirstName, 100); err != nil {
		return err
	}
	if err := required("customer", "last_name", c.LastName, 100); err != nil {
		return err
	}
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	if !isValidEmail(c.Email) {
		return apperr.Field("customer", "email", "%q is not a valid email address", c.Email)
	}
	return nil
}

func (s *Customers) validateAddress(ctx context.Context, a *model.Address) error {
	if err := required("address", "address_line1", a.AddressLine1, 200); err != nil {
		return err
	}
	if err := required("address", "city", a.City, 100); err != nil {
		return err
	}
	if err := required("address", "country", a.Country, 100); err != nil {
		return err
	}
	if a.Type != model.AddressShipping && a.Type != model.AddressBilling {
		return apperr.Field("address", "type", "%q is not a known address type", a.Type)
	}
	switch {
	case a.CustomerID != nil && a.UserID != nil:
		return apperr.Field("address", "customer_id", "address cannot belong to both a customer and a user")
	case a.CustomerID != nil:
		if _, err := s.requireCustomer(ctx, a.TenantID, *a.CustomerID); err != nil {
			return err
		}
	case a.UserID != nil:
		user, err := s.store.UserByID(ctx, *a.UserID)
		if err != nil {
			return apperr.Wrap(apperr.Internal, "address", err)
		}
		if user == nil {
			return apperr.Field("address", "user_id", "user %s not found", *a.UserID)
		}
		if user.TenantID == nil || *user.TenantID != a.TenantID {
			return apperr.Field("address", "user_id", "user belongs to a different tenant")
		}
	default:
		return apperr.Field("address", "customer_id", "address needs a customer or a user owner")
	}
	return nil
}

func (s *Customers) requireCustomer(ctx context.Context, tenantID, id uuid.UUID) (*model.Customer, error) {
	c, err := s.store.CustomerByID(ctx, tenantID, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "customer", err)
	}
	if c == nil {
		return nil, apperr.New(apperr.NotFound, "customer", "customer %s not found", id)
	}
	return c, nil
}
