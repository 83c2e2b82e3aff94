package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/billboards-service/internal/model"
	"github.com/nurpe/billboards-service/internal/repository"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

var (
	admin   = model.Principal{UserID: uuid.New(), Role: model.UserRoleAdmin}
	manager = model.Principal{UserID: uuid.New(), Role: model.UserRoleManager}
	viewer  = model.Principal{UserID: uuid.New(), Role: model.UserRoleViewer}
)

type fakeBillboardStore struct {
	boards   map[int64]model.Billboard
	upserted []model.Billboard
	listErr  error
}

func newFakeBillboardStore(boards ...model.Billboard) *fakeBillboardStore {
	s := &fakeBillboardStore{boards: make(map[int64]model.Billboard)}
	for _, b := range boards {
		s.boards[b.ID] = b
	}
	return s
}

func (s *fakeBillboardStore) ListBillboards(ctx context.Context) ([]model.Billboard, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	result := make([]model.Billboard, 0, len(s.boards))
	for _, b := range s.boards {
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *fakeBillboardStore) GetBillboardsByIDs(ctx context.Context, ids []int64) ([]model.Billboard, error) {
	result := make([]model.Billboard, 0, len(ids))
	for _, id := range ids {
		if b, ok := s.boards[id]; ok {
			result = append(result, b)
		}
	}
	return result, nil
}

func (s *fakeBillboardStore) UpsertBillboards(ctx context.Context, boards []model.Billboard) (int, error) {
	s.upserted = append(s.upserted, boards...)
	for _, b := range boards {
		s.boards[b.ID] = b
	}
	return len(boards), nil
}

func (s *fakeBillboardStore) CreateBillboard(ctx context.Context, b model.Billboard) (*model.Billboard, error) {
	if b.ID == 0 {
		for id := range s.boards {
			b.ID = max(b.ID, id)
		}
		b.ID++
	}
	if _, taken := s.boards[b.ID]; taken {
		return nil, gorm.ErrDuplicatedKey
	}
	s.boards[b.ID] = b
	return &b, nil
}

// UpdateBillboard mirrors the repository: linked boards keep their status.
func (s *fakeBillboardStore) UpdateBillboard(ctx context.Context, b model.Billboard) error {
	current, ok := s.boards[b.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if current.HasContract() {
		b.Status = current.Status
	}
	b.ContractID = current.ContractID
	b.CustomerName = current.CustomerName
	b.RentStart = current.RentStart
	b.RentEnd = current.RentEnd
	b.AdType = current.AdType
	s.boards[b.ID] = b
	return nil
}

func (s *fakeBillboardStore) ListMunicipalityNames(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var names []string
	for _, b := range s.boards {
		if b.Municipality == "" {
			continue
		}
		if _, ok := seen[b.Municipality]; ok {
			continue
		}
		seen[b.Municipality] = struct{}{}
		names = append(names, b.Municipality)
	}
	sort.Strings(names)
	return names, nil
}

func (s *fakeBillboardStore) link(c model.Contract, ids []int64) {
	for _, id := range ids {
		b := s.boards[id]
		b.ContractID = &c.ID
		b.CustomerName = c.CustomerName
		b.RentStart = c.StartDate
		b.RentEnd = c.EndDate
		b.Status = model.BillboardStatusRented
		s.boards[id] = b
	}
}

func (s *fakeBillboardStore) release(match func(model.Billboard) bool) int {
	released := 0
	for id, b := range s.boards {
		if !match(b) {
			continue
		}
		b.ContractID = nil
		b.CustomerName = ""
		b.RentStart = time.Time{}
		b.RentEnd = time.Time{}
		b.Status = model.BillboardStatusAvailable
		s.boards[id] = b
		released++
	}
	return released
}

type fakeContractStore struct {
	contracts map[uuid.UUID]model.Contract
	boards    *fakeBillboardStore
	lastNum   int64
	createErr error
}

func newFakeContractStore(boards *fakeBillboardStore) *fakeContractStore {
	return &fakeContractStore{contracts: make(map[uuid.UUID]model.Contract), boards: boards}
}

func (s *fakeContractStore) NextContractNumber(ctx context.Context) (int64, error) {
	return s.lastNum + 1, nil
}

func (s *fakeContractStore) CreateContract(ctx context.Context, contract model.Contract, billboardIDs []int64) (*model.Contract, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.lastNum++
	contract.ID = uuid.New()
	contract.Number = s.lastNum
	s.contracts[contract.ID] = contract
	s.boards.link(contract, billboardIDs)
	return s.GetContract(ctx, contract.ID)
}

func (s *fakeContractStore) put(contract model.Contract) model.Contract {
	if contract.ID == uuid.Nil {
		contract.ID = uuid.New()
	}
	if contract.Number == 0 {
		s.lastNum++
		contract.Number = s.lastNum
	}
	s.contracts[contract.ID] = contract
	return contract
}

func (s *fakeContractStore) GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	c, ok := s.contracts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c.Billboards = nil
	for _, b := range s.boards.boards {
		if b.ContractID != nil && *b.ContractID == id {
			c.Billboards = append(c.Billboards, b)
		}
	}
	sort.Slice(c.Billboards, func(i, j int) bool { return c.Billboards[i].ID < c.Billboards[j].ID })
	return &c, nil
}

func (s *fakeContractStore) ListContracts(ctx context.Context, filter repository.ContractFilter) ([]model.Contract, error) {
	var result []model.Contract
	for id := range s.contracts {
		c, _ := s.GetContract(ctx, id)
		if name := strings.TrimSpace(filter.CustomerName); name != "" && c.CustomerName != name {
			continue
		}
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Number > result[j].Number })
	return result, nil
}

func (s *fakeContractStore) UpdateContract(ctx context.Context, contract model.Contract) error {
	if _, ok := s.contracts[contract.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.contracts[contract.ID] = contract
	return nil
}

func (s *fakeContractStore) DeleteContract(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.contracts[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.boards.release(func(b model.Billboard) bool { return b.ContractID != nil && *b.ContractID == id })
	delete(s.contracts, id)
	return nil
}

func (s *fakeContractStore) AttachBillboards(ctx context.Context, contract model.Contract, billboardIDs []int64) error {
	s.boards.link(contract, billboardIDs)
	return nil
}

func (s *fakeContractStore) ReleaseBillboard(ctx context.Context, contractID uuid.UUID, billboardID int64) error {
	n := s.boards.release(func(b model.Billboard) bool {
		return b.ID == billboardID && b.ContractID != nil && *b.ContractID == contractID
	})
	if n == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type fakeCustomerStore struct {
	customers map[uuid.UUID]model.Customer
}

func newFakeCustomerStore(customers ...model.Customer) *fakeCustomerStore {
	s := &fakeCustomerStore{customers: make(map[uuid.UUID]model.Customer)}
	for _, c := range customers {
		s.customers[c.ID] = c
	}
	return s
}

func (s *fakeCustomerStore) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	result := make([]model.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *fakeCustomerStore) GetCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := s.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (s *fakeCustomerStore) CreateCustomer(ctx context.Context, customer model.Customer) (*model.Customer, error) {
	customer.ID = uuid.New()
	s.customers[customer.ID] = customer
	return &customer, nil
}

type fakeMunicipalityStore struct {
	items map[uuid.UUID]model.Municipality
	err   error
}

func (s *fakeMunicipalityStore) ListMunicipalities(ctx context.Context) ([]model.Municipality, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := make([]model.Municipality, 0, len(s.items))
	for _, m := range s.items {
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *fakeMunicipalityStore) CreateMunicipality(ctx context.Context, m model.Municipality) (*model.Municipality, error) {
	if s.items == nil {
		s.items = make(map[uuid.UUID]model.Municipality)
	}
	m.ID = uuid.New()
	s.items[m.ID] = m
	return &m, nil
}

func (s *fakeMunicipalityStore) UpdateMunicipality(ctx context.Context, m model.Municipality) error {
	if _, ok := s.items[m.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.items[m.ID] = m
	return nil
}

func (s *fakeMunicipalityStore) DeleteMunicipality(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(s.items, id)
	return nil
}

type fakePDF struct {
	doc model.ContractDocument
}

func (f *fakePDF) Generate(doc model.ContractDocument) ([]byte, error) {
	f.doc = doc
	return []byte("%PDF-fake"), nil
}

type fakeExcel struct {
	register model.ContractRegister
}

func (f *fakeExcel) Generate(register model.ContractRegister) ([]byte, error) {
	f.register = register
	return []byte("xlsx"), nil
}

type fakeInventory struct {
	records []model.Record
	err     error
}

func (f *fakeInventory) ReadInventory(r io.Reader) ([]model.Record, error) {
	return f.records, f.err
}

var (
	errStoreDown = errors.New("store down")
	zeroTime     time.Time
)
