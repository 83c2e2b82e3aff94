package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nurpe/billboards-service/internal/model"
	"github.com/nurpe/billboards-service/internal/pricing"
	"github.com/nurpe/billboards-service/internal/status"
)

type contractFixture struct {
	svc       *ContractService
	boards    *fakeBillboardStore
	contracts *fakeContractStore
	customers *fakeCustomerStore
	pdf       *fakePDF
	excel     *fakeExcel

	running  model.Contract // board 3, ends 2024-12-31
	expiring model.Contract // board 4, ends 2024-07-01
	customer model.Customer
}

// newContractFixture runs at 2024-06-15 with a small inventory:
// 1 free 12x4/A, 2 free board of an unpriced size, 3 rented,
// 4 rented but expiring soon, 5 in maintenance.
func newContractFixture() *contractFixture {
	f := &contractFixture{
		boards: newFakeBillboardStore(
			model.Billboard{ID: 1, Name: "Airport Road", Size: "12x4", Level: "A", MonthlyPrice: 3000, Status: model.BillboardStatusAvailable},
			model.Billboard{ID: 2, Name: "Harbour", Size: "9x9", MonthlyPrice: 1000, Status: model.BillboardStatusAvailable},
			model.Billboard{ID: 3, Name: "Centre", Size: "6x3", Level: "A", Status: model.BillboardStatusAvailable},
			model.Billboard{ID: 4, Name: "Ring Road", Size: "8x3", Level: "B", Status: model.BillboardStatusAvailable},
			model.Billboard{ID: 5, Name: "Old Bridge", Size: "4x3", Status: model.BillboardStatusMaintenance},
		),
		customer: model.Customer{ID: uuid.New(), Name: "Libyana"},
		pdf:      &fakePDF{},
		excel:    &fakeExcel{},
	}
	f.contracts = newFakeContractStore(f.boards)
	f.customers = newFakeCustomerStore(f.customer)

	f.running = f.contracts.put(model.Contract{
		CustomerName: "Madar",
		StartDate:    date(2024, 1, 1),
		EndDate:      date(2024, 12, 31),
		RentCost:     36500,
		TotalPaid:    10000,
		Installments: []model.Installment{{Amount: 18250, Months: 1, PaymentType: model.PaymentMonthly}, {Amount: 18250, Months: 5, PaymentType: model.PaymentMonthly}},
	})
	f.boards.link(f.running, []int64{3})
	f.expiring = f.contracts.put(model.Contract{
		CustomerName: "Al Waha",
		StartDate:    date(2024, 5, 1),
		EndDate:      date(2024, 7, 1),
		RentCost:     5000,
	})
	f.boards.link(f.expiring, []int64{4})

	f.svc = NewContractService(f.contracts, f.boards, f.customers, pricing.DefaultTable(), f.pdf, f.excel, "Al Fares")
	f.svc.now = fixedClock(date(2024, 6, 15).Add(9 * time.Hour))
	return f
}

func TestContractService_Quote(t *testing.T) {
	f := newContractFixture()

	result, err := f.svc.Quote(context.Background(), QuoteInput{
		BillboardIDs:     []int64{1, 2},
		Tier:             pricing.TierOrdinary,
		DurationMonths:   3,
		StartDate:        date(2024, 7, 1),
		Discount:         pricing.Discount{Kind: pricing.DiscountPercent, Value: 10},
		InstallmentCount: 3,
	})
	require.NoError(t, err)

	require.Len(t, result.Quotes, 2)
	assert.Equal(t, 9300.0, result.Quotes[0].Price)
	assert.False(t, result.Quotes[0].Fallback)
	assert.Equal(t, 3000.0, result.Quotes[1].Price)
	assert.True(t, result.Quotes[1].Fallback)

	assert.Equal(t, 12300.0, result.EstimatedTotal)
	assert.Equal(t, 12300.0, result.BaseTotal)
	assert.Equal(t, 1230.0, result.DiscountAmount)
	assert.Equal(t, 11070.0, result.FinalTotal)
	assert.Equal(t, date(2024, 10, 1), result.EndDate)

	require.Len(t, result.Installments, 3)
	assert.Equal(t, 11070.0, sumAmounts(result.Installments))
	require.Len(t, result.Schedule, 3)
	assert.Equal(t, date(2024, 8, 1), result.Schedule[0].DueDate)
}

func TestContractService_QuoteManualCostAndDefaultPlan(t *testing.T) {
	f := newContractFixture()

	result, err := f.svc.Quote(context.Background(), QuoteInput{
		BillboardIDs:   []int64{1},
		Tier:           pricing.TierOrdinary,
		DurationMonths: 1,
		RentCost:       5000,
		Discount:       pricing.Discount{Kind: pricing.DiscountAmount, Value: 1000},
	})
	require.NoError(t, err)

	assert.Equal(t, 3500.0, result.EstimatedTotal)
	assert.Equal(t, 5000.0, result.BaseTotal)
	assert.Equal(t, 4000.0, result.FinalTotal)
	assert.Equal(t, []model.Installment{
		{Amount: 2000, Months: 1, PaymentType: model.PaymentMonthly},
		{Amount: 2000, Months: 2, PaymentType: model.PaymentMonthly},
	}, result.Installments)
	assert.True(t, result.EndDate.IsZero())
	assert.Empty(t, result.Schedule)
}

func TestContractService_QuoteValidation(t *testing.T) {
	f := newContractFixture()
	ctx := context.Background()

	tests := []struct {
		name  string
		input QuoteInput
		err   error
	}{
		{"no boards", QuoteInput{Tier: pricing.TierOrdinary, DurationMonths: 1}, ErrInvalidInput},
		{"unknown tier", QuoteInput{BillboardIDs: []int64{1}, Tier: "vip", DurationMonths: 1}, ErrInvalidInput},
		{"zero duration", QuoteInput{BillboardIDs: []int64{1}, Tier: pricing.TierOrdinary}, ErrInvalidInput},
		{"missing board", QuoteInput{BillboardIDs: []int64{99}, Tier: pricing.TierOrdinary, DurationMonths: 1}, ErrNotFound},
		{"repeated board", QuoteInput{BillboardIDs: []int64{1, 2, 1}, Tier: pricing.TierOrdinary, DurationMonths: 1}, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Quote(ctx, tt.input)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestContractService_CreateContract(t *testing.T) {
	f := newContractFixture()
	ctx := context.Background()

	next, err := f.svc.NextContractNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), next)

	created, err := f.svc.CreateContract(ctx, CreateContractInput{
		Principal:      manager,
		CustomerID:     &f.customer.ID,
		AdType:         " Telecom ",
		StartDate:      date(2024, 7, 1),
		DurationMonths: 6,
		BillboardIDs:   []int64{1, 4},
		Tier:           pricing.TierCorporate,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3), created.Number)
	assert.Equal(t, "Libyana", created.CustomerName)
	assert.Equal(t, "Telecom", created.AdType)
	assert.Equal(t, date(2025, 1, 1), created.EndDate)
	assert.Equal(t, 23400.0, created.RentCost)
	assert.Zero(t, created.TotalPaid)
	assert.Equal(t, []model.Installment{
		{Amount: 11700, Months: 1, PaymentType: model.PaymentMonthly},
		{Amount: 11700, Months: 2, PaymentType: model.PaymentMonthly},
	}, created.Installments)
	require.Len(t, created.Billboards, 2)
	for _, b := range created.Billboards {
		assert.Equal(t, created.ID, *b.ContractID)
		assert.Equal(t, date(2024, 7, 1), b.RentStart)
	}
}

func TestContractService_CreateContractKeepsMismatchedPlan(t *testing.T) {
	f := newContractFixture()

	plan := []model.Installment{{Amount: 1000, Months: 1, PaymentType: model.PaymentQuarterly}}
	created, err := f.svc.CreateContract(context.Background(), CreateContractInput{
		Principal:    admin,
		CustomerName: "Walk-in",
		StartDate:    date(2024, 7, 1),
		EndDate:      date(2024, 9, 30),
		BillboardIDs: []int64{2},
		Tier:         pricing.TierOrdinary,
		RentCost:     5000,
		Installments: plan,
	})
	require.NoError(t, err)
	assert.Equal(t, plan, created.Installments)
	assert.Equal(t, 5000.0, created.RentCost)
}

func TestContractService_CreateContractErrors(t *testing.T) {
	ctx := context.Background()
	valid := func() CreateContractInput {
		return CreateContractInput{
			Principal:      manager,
			CustomerName:   "Libyana",
			StartDate:      date(2024, 7, 1),
			DurationMonths: 1,
			BillboardIDs:   []int64{1},
			Tier:           pricing.TierOrdinary,
		}
	}

	tests := []struct {
		name   string
		mutate func(*CreateContractInput)
		err    error
	}{
		{"viewer", func(in *CreateContractInput) { in.Principal = viewer }, ErrPermissionDenied},
		{"blank customer", func(in *CreateContractInput) { in.CustomerName = "  " }, ErrInvalidInput},
		{"unknown customer", func(in *CreateContractInput) { id := uuid.New(); in.CustomerID = &id }, ErrNotFound},
		{"no start", func(in *CreateContractInput) { in.StartDate = zeroTime }, ErrInvalidInput},
		{"end before start", func(in *CreateContractInput) { in.EndDate = date(2024, 6, 1) }, ErrInvalidInput},
		{"rented board", func(in *CreateContractInput) { in.BillboardIDs = []int64{3} }, ErrConflict},
		{"maintenance board", func(in *CreateContractInput) { in.BillboardIDs = []int64{5} }, ErrConflict},
		{"missing board", func(in *CreateContractInput) { in.BillboardIDs = []int64{1, 42} }, ErrNotFound},
		{"repeated board", func(in *CreateContractInput) { in.BillboardIDs = []int64{1, 1} }, ErrInvalidInput},
		{"broken plan", func(in *CreateContractInput) {
			in.Installments = []model.Installment{{Amount: 10, Months: 0, PaymentType: model.PaymentMonthly}}
		}, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newContractFixture()
			input := valid()
			tt.mutate(&input)
			_, err := f.svc.CreateContract(ctx, input)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestContractService_CreateContractStoreErrors(t *testing.T) {
	ctx := context.Background()
	input := CreateContractInput{
		Principal:      admin,
		CustomerName:   "Libyana",
		StartDate:      date(2024, 7, 1),
		DurationMonths: 1,
		BillboardIDs:   []int64{1, 2},
		Tier:           pricing.TierOrdinary,
	}

	tests := []struct {
		name     string
		storeErr error
		err      error
	}{
		{"number taken", fmt.Errorf("insert contract: %w", gorm.ErrDuplicatedKey), ErrConflict},
		{"board vanished", gorm.ErrRecordNotFound, ErrNotFound},
		{"store down", errStoreDown, errStoreDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newContractFixture()
			f.contracts.createErr = tt.storeErr
			_, err := f.svc.CreateContract(ctx, input)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestContractService_ListContractsByStatus(t *testing.T) {
	f := newContractFixture()
	ctx := context.Background()

	all, err := f.svc.ListContracts(ctx, ListContractsInput{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	expiring, err := f.svc.ListContracts(ctx, ListContractsInput{Status: "expiring"})
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, f.expiring.ID, expiring[0].ID)
	assert.Equal(t, status.ExpiringSoon, expiring[0].Status)
	assert.Equal(t, 16, expiring[0].DaysRemaining)

	_, err = f.svc.ListContracts(ctx, ListContractsInput{Status: "paused"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestContractService_ListContractsByCustomer(t *testing.T) {
	f := newContractFixture()
	ctx := context.Background()

	exact, err := f.svc.ListContracts(ctx, ListContractsInput{Customer: " Madar "})
	require.NoError(t, err)
	require.Len(t, exact, 1)
	assert.Equal(t, f.running.ID, exact[0].ID)

	partial, err := f.svc.ListContracts(ctx, ListContractsInput{Customer: "mad"})
	require.NoError(t, err)
	assert.Empty(t, partial)
}

func TestContractService_Stats(t *testing.T) {
	f := newContractFixture()
	f.contracts.put(model.Contract{CustomerName: "Old", StartDate: date(2023, 1, 1), EndDate: date(2023, 6, 1)})
	f.contracts.put(model.Contract{CustomerName: "Later", StartDate: date(2024, 9, 1), EndDate: date(2024, 12, 1)})
	f.contracts.put(model.Contract{CustomerName: "Draft"})

	stats, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.ContractStats{Total: 5, Active: 2, Expiring: 1, Expired: 1, Upcoming: 1}, *stats)
}

func TestContractService_GetContract(t *testing.T) {
	f := newContractFixture()
	ctx := context.Background()

	view, err := f.svc.GetContract(ctx, f.running.ID)
	require.NoError(t, err)
	assert.Equal(t, status.Active, view.Status)
	assert.Equal(t, 199, view.DaysRemaining)
	require.Len(t, view.Schedule, 2)
	assert.Equal(t, date(2024, 2, 1), view.Schedule[0].DueDate)
	assert.Equal(t, date(2024, 7, 1), view.Schedule[1].DueDate)
	assert.Equal(t, 26500.0, view.Remaining())
	require.Len(t, view.Billboards, 1)

	_, err = f.svc.GetContract(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContractService_UpdateContract(t *testing.T) {
	f := newContractFixture()
	ctx := context.Background()

	paid := 20000.0
	end := date(2025, 3, 31)
	plan := []model.Installment{{Amount: 36500, Months: 1, PaymentType: model.PaymentMonthly}}
	view, err := f.svc.UpdateContract(ctx, f.running.ID, UpdateContractInput{
		Principal:    manager,
		CustomerID:   &f.customer.ID,
		EndDate:      &end,
		TotalPaid:    &paid,
		Installments: plan,
	})
	require.NoError(t, err)
	assert.Equal(t, "Libyana", view.CustomerName)
	assert.Equal(t, end, view.EndDate)
	assert.Equal(t, 20000.0, view.TotalPaid)
	assert.Equal(t, plan, view.Installments)
	assert.Equal(t, status.Active, view.Status)

	stored, err := f.contracts.GetContract(ctx, f.running.ID)
	require.NoError(t, err)
	assert.Equal(t, end, stored.EndDate)

	badEnd := date(2023, 1, 1)
	_, err = f.svc.UpdateContract(ctx, f.running.ID, UpdateContractInput{Principal: manager, EndDate: &badEnd})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.UpdateContract(ctx, f.running.ID, UpdateContractInput{Principal: viewer})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = f.svc.UpdateContract(ctx, uuid.New(), UpdateContractInput{Principal: manager})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestContractService_Billboards(t *testing.T) {
	f := newContractFixture()
	ctx := context.Background()

	require.NoError(t, f.svc.AddBillboards(ctx, manager, f.running.ID, []int64{1}))
	assert.ErrorIs(t, f.svc.AddBillboards(ctx, manager, f.expiring.ID, []int64{3}), ErrConflict)
	assert.ErrorIs(t, f.svc.AddBillboards(ctx, manager, f.running.ID, nil), ErrInvalidInput)
	assert.ErrorIs(t, f.svc.AddBillboards(ctx, manager, f.running.ID, []int64{2, 2}), ErrInvalidInput)
	assert.Nil(t, f.boards.boards[2].ContractID)
	// boards already on the contract may be re-attached
	require.NoError(t, f.svc.AddBillboards(ctx, manager, f.running.ID, []int64{3}))

	view, err := f.svc.GetContract(ctx, f.running.ID)
	require.NoError(t, err)
	assert.Len(t, view.Billboards, 2)

	require.NoError(t, f.svc.RemoveBillboard(ctx, manager, f.running.ID, 1))
	assert.ErrorIs(t, f.svc.RemoveBillboard(ctx, manager, f.running.ID, 1), ErrNotFound)
	assert.ErrorIs(t, f.svc.RemoveBillboard(ctx, viewer, f.running.ID, 3), ErrPermissionDenied)
}

func TestContractService_DeleteContractReleasesBoards(t *testing.T) {
	f := newContractFixture()
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.DeleteContract(ctx, viewer, f.running.ID), ErrPermissionDenied)
	require.NoError(t, f.svc.DeleteContract(ctx, admin, f.running.ID))
	assert.Nil(t, f.boards.boards[3].ContractID)
	assert.ErrorIs(t, f.svc.DeleteContract(ctx, admin, f.running.ID), ErrNotFound)
}

func TestContractService_Settlement(t *testing.T) {
	f := newContractFixture()
	ctx := context.Background()

	result, err := f.svc.Settlement(ctx, f.running.ID, zeroTime)
	require.NoError(t, err)
	assert.Equal(t, date(2024, 6, 15), result.AsOf)
	assert.Equal(t, 16600.0, result.Amount)
	assert.Equal(t, 6600.0, result.Due)

	result, err = f.svc.Settlement(ctx, f.running.ID, date(2025, 6, 1))
	require.NoError(t, err)
	assert.Equal(t, 36500.0, result.Amount)

	draft := f.contracts.put(model.Contract{CustomerName: "Draft", RentCost: 100})
	_, err = f.svc.Settlement(ctx, draft.ID, zeroTime)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestContractService_Documents(t *testing.T) {
	f := newContractFixture()
	ctx := context.Background()

	doc, err := f.svc.ContractPDF(ctx, f.running.ID)
	require.NoError(t, err)
	assert.Equal(t, "contract-1.pdf", doc.FileName)
	assert.Equal(t, "Al Fares", f.pdf.doc.CompanyName)
	assert.Equal(t, "11 months", f.pdf.doc.DurationText)
	assert.Len(t, f.pdf.doc.Schedule, 2)

	export, err := f.svc.ExportRegister(ctx, ListContractsInput{Status: "active"})
	require.NoError(t, err)
	assert.Equal(t, "contracts-20240615-active.xlsx", export.FileName)
	require.Len(t, f.excel.register.Rows, 1)
	assert.Equal(t, "active", f.excel.register.Rows[0].Status)
	assert.Equal(t, 1, f.excel.register.Rows[0].BoardCount)
}

func sumAmounts(plan []model.Installment) float64 {
	cents := 0.0
	for _, row := range plan {
		cents += row.Amount * 100
	}
	return cents / 100
}
