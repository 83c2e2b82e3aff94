package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/billboards-service/internal/installment"
	"github.com/nurpe/billboards-service/internal/model"
	"github.com/nurpe/billboards-service/internal/pricing"
	"github.com/nurpe/billboards-service/internal/repository"
	"github.com/nurpe/billboards-service/internal/status"
)

type ContractService struct {
	contracts   ContractStore
	boards      BillboardStore
	customers   CustomerStore
	rates       *pricing.Table
	pdf         PDFGenerator
	excel       ExcelGenerator
	companyName string
	now         Clock
}

func NewContractService(
	contracts ContractStore,
	boards BillboardStore,
	customers CustomerStore,
	rates *pricing.Table,
	pdf PDFGenerator,
	excel ExcelGenerator,
	companyName string,
) *ContractService {
	return &ContractService{
		contracts:   contracts,
		boards:      boards,
		customers:   customers,
		rates:       rates,
		pdf:         pdf,
		excel:       excel,
		companyName: companyName,
		now:         time.Now,
	}
}

type QuoteInput struct {
	BillboardIDs     []int64
	Tier             pricing.Tier
	DurationMonths   int
	StartDate        time.Time
	RentCost         float64 // manual total; replaces the estimate when positive
	Discount         pricing.Discount
	InstallmentCount int
}

type QuoteResult struct {
	Quotes         []pricing.Quote
	EstimatedTotal float64
	BaseTotal      float64
	DiscountAmount float64
	FinalTotal     float64
	EndDate        time.Time
	Installments   []model.Installment
	Schedule       []model.ScheduledPayment
}

func (s *ContractService) Quote(ctx context.Context, input QuoteInput) (*QuoteResult, error) {
	if err := validateQuote(input); err != nil {
		return nil, err
	}
	boards, err := s.loadBoards(ctx, input.BillboardIDs)
	if err != nil {
		return nil, err
	}

	result := s.price(boards, input)
	if input.InstallmentCount > 0 {
		result.Installments = installment.DistributeEvenly(result.FinalTotal, input.InstallmentCount)
	} else {
		result.Installments = installment.DefaultPlan(result.FinalTotal)
	}
	if !input.StartDate.IsZero() {
		result.EndDate = input.StartDate.AddDate(0, input.DurationMonths, 0)
		schedule, err := installment.Schedule(input.StartDate, result.Installments)
		if err != nil {
			return nil, err
		}
		result.Schedule = schedule
	}
	return result, nil
}

func (s *ContractService) price(boards []model.Billboard, input QuoteInput) *QuoteResult {
	estimate, quotes := s.rates.Estimate(boards, input.Tier, input.DurationMonths)
	base := estimate
	if input.RentCost > 0 {
		base = input.RentCost
	}
	discount, final := pricing.ApplyDiscount(base, input.Discount)
	return &QuoteResult{
		Quotes:         quotes,
		EstimatedTotal: estimate,
		BaseTotal:      base,
		DiscountAmount: discount,
		FinalTotal:     final,
	}
}

type CreateContractInput struct {
	Principal        model.Principal
	CustomerID       *uuid.UUID
	CustomerName     string
	AdType           string
	StartDate        time.Time
	EndDate          time.Time
	DurationMonths   int
	BillboardIDs     []int64
	Tier             pricing.Tier
	RentCost         float64
	Discount         pricing.Discount
	Installments     []model.Installment
	InstallmentCount int
}

func (s *ContractService) CreateContract(ctx context.Context, input CreateContractInput) (*model.Contract, error) {
	if !input.Principal.CanWrite() {
		return nil, ErrPermissionDenied
	}

	customerName := strings.TrimSpace(input.CustomerName)
	if input.CustomerID != nil {
		customer, err := s.customers.GetCustomer(ctx, *input.CustomerID)
		if err != nil {
			return nil, mapStoreError(err)
		}
		if customerName == "" {
			customerName = customer.Name
		}
	}
	if customerName == "" {
		return nil, invalid("customer name is required")
	}
	if input.StartDate.IsZero() {
		return nil, invalid("start date is required")
	}

	start := dateOnly(input.StartDate)
	end := dateOnly(input.EndDate)
	if end.IsZero() {
		if input.DurationMonths <= 0 {
			return nil, invalid("end date or duration is required")
		}
		end = start.AddDate(0, input.DurationMonths, 0)
	}
	if end.Before(start) {
		return nil, invalid("end date must not be before start date")
	}
	months := input.DurationMonths
	if months <= 0 {
		months = monthsBetween(start, end)
	}

	quote := QuoteInput{
		BillboardIDs:   input.BillboardIDs,
		Tier:           input.Tier,
		DurationMonths: months,
		RentCost:       input.RentCost,
		Discount:       input.Discount,
	}
	if err := validateQuote(quote); err != nil {
		return nil, err
	}
	boards, err := s.loadBoards(ctx, input.BillboardIDs)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSelectable(boards, nil); err != nil {
		return nil, err
	}
	priced := s.price(boards, quote)

	plan, err := s.plan(priced.FinalTotal, input.Installments, input.InstallmentCount)
	if err != nil {
		return nil, err
	}

	created, err := s.contracts.CreateContract(ctx, model.Contract{
		CustomerID:   input.CustomerID,
		CustomerName: customerName,
		AdType:       strings.TrimSpace(input.AdType),
		StartDate:    start,
		EndDate:      end,
		RentCost:     priced.FinalTotal,
		Discount:     priced.DiscountAmount,
		Installments: plan,
	}, input.BillboardIDs)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return created, nil
}

func (s *ContractService) NextContractNumber(ctx context.Context) (int64, error) {
	return s.contracts.NextContractNumber(ctx)
}

type ContractView struct {
	model.Contract
	Status        status.ContractStatus
	DaysRemaining int
	Schedule      []model.ScheduledPayment
}

func (s *ContractService) GetContract(ctx context.Context, id uuid.UUID) (*ContractView, error) {
	contract, err := s.contracts.GetContract(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	view := s.view(today(s.now), *contract)
	return &view, nil
}

type ListContractsInput struct {
	Query    string
	Customer string
	Status   string
}

func (s *ContractService) ListContracts(ctx context.Context, input ListContractsInput) ([]ContractView, error) {
	var wanted status.ContractStatus
	if input.Status != "" && input.Status != "all" {
		parsed, ok := status.ParseContractStatus(input.Status)
		if !ok {
			return nil, invalid("unknown status %q", input.Status)
		}
		wanted = parsed
	}

	contracts, err := s.contracts.ListContracts(ctx, repository.ContractFilter{
		Query:        input.Query,
		CustomerName: input.Customer,
	})
	if err != nil {
		return nil, err
	}

	day := today(s.now)
	views := make([]ContractView, 0, len(contracts))
	for _, contract := range contracts {
		view := s.view(day, contract)
		if wanted != "" && view.Status != wanted {
			continue
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *ContractService) Stats(ctx context.Context) (*model.ContractStats, error) {
	contracts, err := s.contracts.ListContracts(ctx, repository.ContractFilter{})
	if err != nil {
		return nil, err
	}
	day := today(s.now)
	stats := &model.ContractStats{Total: len(contracts)}
	for _, c := range contracts {
		switch status.Classify(day, c.StartDate, c.EndDate) {
		case status.Active:
			stats.Active++
		case status.ExpiringSoon:
			stats.Active++
			stats.Expiring++
		case status.Expired:
			stats.Expired++
		case status.NotStarted:
			stats.Upcoming++
		}
	}
	return stats, nil
}

type UpdateContractInput struct {
	Principal    model.Principal
	CustomerID   *uuid.UUID
	CustomerName *string
	AdType       *string
	StartDate    *time.Time
	EndDate      *time.Time
	RentCost     *float64
	Discount     *float64
	TotalPaid    *float64
	Installments []model.Installment // nil keeps the stored plan
}

func (s *ContractService) UpdateContract(ctx context.Context, id uuid.UUID, input UpdateContractInput) (*ContractView, error) {
	if !input.Principal.CanWrite() {
		return nil, ErrPermissionDenied
	}
	current, err := s.contracts.GetContract(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	contract := *current

	if input.CustomerID != nil {
		customer, err := s.customers.GetCustomer(ctx, *input.CustomerID)
		if err != nil {
			return nil, mapStoreError(err)
		}
		contract.CustomerID = &customer.ID
		contract.CustomerName = customer.Name
	}
	if input.CustomerName != nil {
		name := strings.TrimSpace(*input.CustomerName)
		if name == "" {
			return nil, invalid("customer name must not be empty")
		}
		contract.CustomerName = name
	}
	if input.AdType != nil {
		contract.AdType = strings.TrimSpace(*input.AdType)
	}
	if input.StartDate != nil {
		contract.StartDate = dateOnly(*input.StartDate)
	}
	if input.EndDate != nil {
		contract.EndDate = dateOnly(*input.EndDate)
	}
	if !contract.StartDate.IsZero() && !contract.EndDate.IsZero() && contract.EndDate.Before(contract.StartDate) {
		return nil, invalid("end date must not be before start date")
	}
	if input.RentCost != nil {
		if *input.RentCost < 0 {
			return nil, invalid("rent cost must not be negative")
		}
		contract.RentCost = *input.RentCost
	}
	if input.Discount != nil {
		if *input.Discount < 0 {
			return nil, invalid("discount must not be negative")
		}
		contract.Discount = *input.Discount
	}
	if input.TotalPaid != nil {
		if *input.TotalPaid < 0 {
			return nil, invalid("total paid must not be negative")
		}
		contract.TotalPaid = *input.TotalPaid
	}
	if input.Installments != nil {
		if err := validatePlan(input.Installments, contract.RentCost); err != nil {
			return nil, err
		}
		contract.Installments = input.Installments
	}

	if err := s.contracts.UpdateContract(ctx, contract); err != nil {
		return nil, mapStoreError(err)
	}
	view := s.view(today(s.now), contract)
	return &view, nil
}

func (s *ContractService) DeleteContract(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if !principal.CanWrite() {
		return ErrPermissionDenied
	}
	return mapStoreError(s.contracts.DeleteContract(ctx, id))
}

func (s *ContractService) AddBillboards(ctx context.Context, principal model.Principal, id uuid.UUID, billboardIDs []int64) error {
	if !principal.CanWrite() {
		return ErrPermissionDenied
	}
	if len(billboardIDs) == 0 {
		return invalid("billboard_ids is required")
	}
	if err := checkDistinct(billboardIDs); err != nil {
		return err
	}
	contract, err := s.contracts.GetContract(ctx, id)
	if err != nil {
		return mapStoreError(err)
	}
	boards, err := s.loadBoards(ctx, billboardIDs)
	if err != nil {
		return err
	}
	if err := s.ensureSelectable(boards, &contract.ID); err != nil {
		return err
	}
	return mapStoreError(s.contracts.AttachBillboards(ctx, *contract, billboardIDs))
}

func (s *ContractService) RemoveBillboard(ctx context.Context, principal model.Principal, id uuid.UUID, billboardID int64) error {
	if !principal.CanWrite() {
		return ErrPermissionDenied
	}
	return mapStoreError(s.contracts.ReleaseBillboard(ctx, id, billboardID))
}

type SettlementResult struct {
	ContractID uuid.UUID
	AsOf       time.Time
	FinalTotal float64
	Amount     float64
	TotalPaid  float64
	Due        float64
}

// Settlement pro-rates the contract total at asOf (today when zero).
func (s *ContractService) Settlement(ctx context.Context, id uuid.UUID, asOf time.Time) (*SettlementResult, error) {
	contract, err := s.contracts.GetContract(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if asOf.IsZero() {
		asOf = today(s.now)
	}

	amount, err := installment.SettlementAmount(contract.StartDate, contract.EndDate, contract.RentCost, asOf)
	if err != nil {
		return nil, invalid("contract %d: %v", contract.Number, err)
	}
	due := amount - contract.TotalPaid
	if due < 0 {
		due = 0
	}
	return &SettlementResult{
		ContractID: contract.ID,
		AsOf:       asOf,
		FinalTotal: contract.RentCost,
		Amount:     amount,
		TotalPaid:  contract.TotalPaid,
		Due:        due,
	}, nil
}

type Document struct {
	FileName string
	Content  []byte
}

func (s *ContractService) ContractPDF(ctx context.Context, id uuid.UUID) (*Document, error) {
	contract, err := s.contracts.GetContract(ctx, id)
	if err != nil {
		return nil, mapStoreError(err)
	}

	doc := model.ContractDocument{
		Contract:     *contract,
		CompanyName:  s.companyName,
		IssuedAt:     today(s.now),
		BaseTotal:    contract.RentCost + contract.Discount,
		DurationText: durationText(contract.StartDate, contract.EndDate),
	}
	if contract.CustomerID != nil {
		if customer, err := s.customers.GetCustomer(ctx, *contract.CustomerID); err == nil {
			doc.Customer = customer
		}
	}
	if !contract.StartDate.IsZero() {
		if schedule, err := installment.Schedule(contract.StartDate, contract.Installments); err == nil {
			doc.Schedule = schedule
		}
	}

	content, err := s.pdf.Generate(doc)
	if err != nil {
		return nil, err
	}
	return &Document{
		FileName: fmt.Sprintf("contract-%d.pdf", contract.Number),
		Content:  content,
	}, nil
}

func (s *ContractService) ExportRegister(ctx context.Context, input ListContractsInput) (*Document, error) {
	views, err := s.ListContracts(ctx, input)
	if err != nil {
		return nil, err
	}

	register := model.ContractRegister{GeneratedAt: s.now()}
	for _, v := range views {
		register.Rows = append(register.Rows, model.RegisterRow{
			Contract:   v.Contract,
			Status:     string(v.Status),
			DaysLeft:   v.DaysRemaining,
			Schedule:   v.Schedule,
			BoardCount: len(v.Billboards),
		})
	}

	content, err := s.excel.Generate(register)
	if err != nil {
		return nil, err
	}
	name := "contracts-" + register.GeneratedAt.Format("20060102")
	if input.Status != "" {
		name += "-" + sanitizeFileName(input.Status)
	}
	return &Document{FileName: name + ".xlsx", Content: content}, nil
}

func (s *ContractService) view(day time.Time, contract model.Contract) ContractView {
	view := ContractView{
		Contract: contract,
		Status:   status.Classify(day, contract.StartDate, contract.EndDate),
	}
	if !contract.EndDate.IsZero() {
		view.DaysRemaining = status.DaysRemaining(day, contract.EndDate)
	}
	if !contract.StartDate.IsZero() {
		if schedule, err := installment.Schedule(contract.StartDate, contract.Installments); err == nil {
			view.Schedule = schedule
		}
	}
	return view
}

func (s *ContractService) loadBoards(ctx context.Context, ids []int64) ([]model.Billboard, error) {
	boards, err := s.boards.GetBillboardsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	found := make(map[int64]struct{}, len(boards))
	for _, b := range boards {
		found[b.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return nil, fmt.Errorf("%w: billboard %d", ErrNotFound, id)
		}
	}
	return boards, nil
}

// ensureSelectable rejects boards that are rented or in maintenance. Boards
// already linked to owner are accepted.
func (s *ContractService) ensureSelectable(boards []model.Billboard, owner *uuid.UUID) error {
	day := today(s.now)
	for _, b := range boards {
		if owner != nil && b.ContractID != nil && *b.ContractID == *owner {
			continue
		}
		availability := status.BillboardAvailability(day, b.HasContract(), b.RentStart, b.RentEnd, b.Status == model.BillboardStatusMaintenance)
		if !availability.Selectable() {
			return fmt.Errorf("%w: billboard %d is %s", ErrConflict, b.ID, availability)
		}
	}
	return nil
}

func (s *ContractService) plan(total float64, rows []model.Installment, count int) ([]model.Installment, error) {
	if len(rows) > 0 {
		if err := validatePlan(rows, total); err != nil {
			return nil, err
		}
		return rows, nil
	}
	if count > 0 {
		rows, err := installment.Distribute(total, count)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return rows, nil
	}
	return installment.DefaultPlan(total), nil
}

// validatePlan checks rows structurally. A plan that does not add up to the
// total is accepted; reconciling it is left to the operator.
func validatePlan(rows []model.Installment, total float64) error {
	if err := installment.Validate(rows, total); err != nil && !errors.Is(err, installment.ErrPlanMismatch) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func validateQuote(input QuoteInput) error {
	if len(input.BillboardIDs) == 0 {
		return invalid("at least one billboard is required")
	}
	if err := checkDistinct(input.BillboardIDs); err != nil {
		return err
	}
	if !input.Tier.Valid() {
		return invalid("unknown customer tier %q", input.Tier)
	}
	if input.DurationMonths <= 0 {
		return invalid("duration must be at least one month")
	}
	if input.RentCost < 0 {
		return invalid("rent cost must not be negative")
	}
	return nil
}

func checkDistinct(ids []int64) error {
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return invalid("billboard %d is listed more than once", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// monthsBetween counts whole calendar months from start to end, at least one.
func monthsBetween(start, end time.Time) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()-start.Month())
	if start.AddDate(0, months, 0).After(end) {
		months--
	}
	return max(1, months)
}

func durationText(start, end time.Time) string {
	if start.IsZero() || end.IsZero() {
		return ""
	}
	months := monthsBetween(start, end)
	if months == 1 {
		return "1 month"
	}
	return fmt.Sprintf("%d months", months)
}
