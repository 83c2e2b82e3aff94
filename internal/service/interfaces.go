package service

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/nurpe/billboards-service/internal/model"
	"github.com/nurpe/billboards-service/internal/repository"
)

type BillboardStore interface {
	ListBillboards(ctx context.Context) ([]model.Billboard, error)
	GetBillboardsByIDs(ctx context.Context, ids []int64) ([]model.Billboard, error)
	UpsertBillboards(ctx context.Context, boards []model.Billboard) (int, error)
	CreateBillboard(ctx context.Context, board model.Billboard) (*model.Billboard, error)
	UpdateBillboard(ctx context.Context, board model.Billboard) error
	ListMunicipalityNames(ctx context.Context) ([]string, error)
}

type ContractStore interface {
	NextContractNumber(ctx context.Context) (int64, error)
	CreateContract(ctx context.Context, contract model.Contract, billboardIDs []int64) (*model.Contract, error)
	GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	ListContracts(ctx context.Context, filter repository.ContractFilter) ([]model.Contract, error)
	UpdateContract(ctx context.Context, contract model.Contract) error
	DeleteContract(ctx context.Context, id uuid.UUID) error
	AttachBillboards(ctx context.Context, contract model.Contract, billboardIDs []int64) error
	ReleaseBillboard(ctx context.Context, contractID uuid.UUID, billboardID int64) error
}

type CustomerStore interface {
	ListCustomers(ctx context.Context) ([]model.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	CreateCustomer(ctx context.Context, customer model.Customer) (*model.Customer, error)
}

type MunicipalityStore interface {
	ListMunicipalities(ctx context.Context) ([]model.Municipality, error)
	CreateMunicipality(ctx context.Context, m model.Municipality) (*model.Municipality, error)
	UpdateMunicipality(ctx context.Context, m model.Municipality) error
	DeleteMunicipality(ctx context.Context, id uuid.UUID) error
}

type PDFGenerator interface {
	Generate(doc model.ContractDocument) ([]byte, error)
}

type ExcelGenerator interface {
	Generate(register model.ContractRegister) ([]byte, error)
}

type InventoryReader interface {
	ReadInventory(r io.Reader) ([]model.Record, error)
}
