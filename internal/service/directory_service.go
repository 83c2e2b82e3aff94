package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/billboards-service/internal/model"
)

type CustomerService struct {
	customers CustomerStore
}

func NewCustomerService(customers CustomerStore) *CustomerService {
	return &CustomerService{customers: customers}
}

func (s *CustomerService) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	return s.customers.ListCustomers(ctx)
}

type CreateCustomerInput struct {
	Principal model.Principal
	Name      string
	Phone     string
	Company   string
}

func (s *CustomerService) CreateCustomer(ctx context.Context, input CreateCustomerInput) (*model.Customer, error) {
	if !input.Principal.CanWrite() {
		return nil, ErrPermissionDenied
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalid("customer name is required")
	}
	return s.customers.CreateCustomer(ctx, model.Customer{
		Name:    name,
		Phone:   strings.TrimSpace(input.Phone),
		Company: strings.TrimSpace(input.Company),
	})
}

type MunicipalityList struct {
	Items    []model.Municipality
	ReadOnly bool
}

type MunicipalityService struct {
	municipalities MunicipalityStore
	boards         BillboardStore
	log            zerolog.Logger
}

func NewMunicipalityService(municipalities MunicipalityStore, boards BillboardStore, log zerolog.Logger) *MunicipalityService {
	return &MunicipalityService{municipalities: municipalities, boards: boards, log: log}
}

// ListMunicipalities falls back to the names used by the inventory when the
// municipalities table cannot be read. The fallback list is read-only.
func (s *MunicipalityService) ListMunicipalities(ctx context.Context) (*MunicipalityList, error) {
	items, err := s.municipalities.ListMunicipalities(ctx)
	if err == nil {
		return &MunicipalityList{Items: items}, nil
	}
	s.log.Warn().Err(err).Msg("municipalities table unavailable, using billboard inventory")

	names, ferr := s.boards.ListMunicipalityNames(ctx)
	if ferr != nil {
		return nil, err
	}
	list := &MunicipalityList{Items: make([]model.Municipality, 0, len(names)), ReadOnly: true}
	for _, name := range names {
		list.Items = append(list.Items, model.Municipality{Name: name, Code: name})
	}
	return list, nil
}

type MunicipalityInput struct {
	Principal model.Principal
	Name      string
	Code      string
}

func (in MunicipalityInput) normalize() (model.Municipality, error) {
	m := model.Municipality{
		Name: strings.TrimSpace(in.Name),
		Code: strings.TrimSpace(in.Code),
	}
	if m.Name == "" || m.Code == "" {
		return m, invalid("municipality name and code are required")
	}
	return m, nil
}

func (s *MunicipalityService) CreateMunicipality(ctx context.Context, input MunicipalityInput) (*model.Municipality, error) {
	if !input.Principal.CanWrite() {
		return nil, ErrPermissionDenied
	}
	m, err := input.normalize()
	if err != nil {
		return nil, err
	}
	return s.municipalities.CreateMunicipality(ctx, m)
}

func (s *MunicipalityService) UpdateMunicipality(ctx context.Context, id uuid.UUID, input MunicipalityInput) (*model.Municipality, error) {
	if !input.Principal.CanWrite() {
		return nil, ErrPermissionDenied
	}
	m, err := input.normalize()
	if err != nil {
		return nil, err
	}
	m.ID = id
	if err := s.municipalities.UpdateMunicipality(ctx, m); err != nil {
		return nil, mapStoreError(err)
	}
	return &m, nil
}

func (s *MunicipalityService) DeleteMunicipality(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if !principal.CanWrite() {
		return ErrPermissionDenied
	}
	return mapStoreError(s.municipalities.DeleteMunicipality(ctx, id))
}
