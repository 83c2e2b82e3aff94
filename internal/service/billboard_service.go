package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/nurpe/billboards-service/internal/model"
	"github.com/nurpe/billboards-service/internal/status"
)

const defaultSearchLimit = 20

type AvailabilityFilter string

const (
	FilterAll       AvailabilityFilter = "all"
	FilterAvailable AvailabilityFilter = "available"
	FilterRented    AvailabilityFilter = "rented"
)

type BillboardView struct {
	model.Billboard
	Availability  status.Availability
	DaysRemaining *int
}

type BillboardService struct {
	boards    BillboardStore
	inventory InventoryReader
	now       Clock
}

func NewBillboardService(boards BillboardStore, inventory InventoryReader) *BillboardService {
	return &BillboardService{boards: boards, inventory: inventory, now: time.Now}
}

type SearchInput struct {
	Query        string
	City         string
	Size         string
	Municipality string
	AdType       string
	Filter       AvailabilityFilter
	Limit        int
	Offset       int
}

// Search returns the boards for the booking view: available boards first,
// then the ones whose contract is about to expire, then the rest.
func (s *BillboardService) Search(ctx context.Context, input SearchInput) ([]BillboardView, error) {
	boards, err := s.boards.ListBillboards(ctx)
	if err != nil {
		return nil, err
	}

	filter := input.Filter
	if filter == "" {
		filter = FilterAvailable
	}
	switch filter {
	case FilterAll, FilterAvailable, FilterRented:
	default:
		return nil, invalid("unknown availability filter %q", filter)
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if input.Offset < 0 {
		return nil, invalid("offset must not be negative")
	}

	day := today(s.now)
	query := strings.ToLower(strings.TrimSpace(input.Query))
	views := make([]BillboardView, 0, len(boards))
	for _, b := range boards {
		if query != "" &&
			!strings.Contains(strings.ToLower(b.Name), query) &&
			!strings.Contains(strings.ToLower(b.Landmark), query) {
			continue
		}
		if input.City != "" && b.City != input.City {
			continue
		}
		if input.Size != "" && b.Size != input.Size {
			continue
		}
		if input.Municipality != "" && b.Municipality != input.Municipality {
			continue
		}
		if input.AdType != "" && b.AdType != input.AdType {
			continue
		}

		view := s.view(day, b)
		switch filter {
		case FilterAvailable:
			if !view.Availability.Selectable() {
				continue
			}
		case FilterRented:
			if view.Availability.Selectable() {
				continue
			}
		}
		views = append(views, view)
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].Availability.Rank() < views[j].Availability.Rank()
	})
	if input.Offset >= len(views) {
		return []BillboardView{}, nil
	}
	views = views[input.Offset:]
	if len(views) > limit {
		views = views[:limit]
	}
	return views, nil
}

type Facets struct {
	Cities         []string
	Sizes          []string
	Municipalities []string
	AdTypes        []string
}

// Facets lists the distinct filter values used by the inventory.
func (s *BillboardService) Facets(ctx context.Context) (*Facets, error) {
	boards, err := s.boards.ListBillboards(ctx)
	if err != nil {
		return nil, err
	}
	return &Facets{
		Cities:         distinct(boards, func(b model.Billboard) string { return b.City }),
		Sizes:          distinct(boards, func(b model.Billboard) string { return b.Size }),
		Municipalities: distinct(boards, func(b model.Billboard) string { return b.Municipality }),
		AdTypes:        distinct(boards, func(b model.Billboard) string { return b.AdType }),
	}, nil
}

type BillboardInput struct {
	Principal    model.Principal
	ID           int64
	Name         string
	City         string
	District     string
	Municipality string
	Size         string
	Level        string
	MonthlyPrice float64
	Status       model.BillboardStatus
	Faces        int
	Landmark     string
	ImageURL     string
	GPS          string
}

func (in BillboardInput) toModel() (model.Billboard, error) {
	b := model.Billboard{
		ID:           in.ID,
		Name:         strings.TrimSpace(in.Name),
		City:         strings.TrimSpace(in.City),
		District:     strings.TrimSpace(in.District),
		Municipality: strings.TrimSpace(in.Municipality),
		Size:         strings.TrimSpace(in.Size),
		Level:        strings.ToUpper(strings.TrimSpace(in.Level)),
		MonthlyPrice: in.MonthlyPrice,
		Status:       in.Status,
		Faces:        in.Faces,
		Landmark:     strings.TrimSpace(in.Landmark),
		ImageURL:     strings.TrimSpace(in.ImageURL),
		GPS:          strings.TrimSpace(in.GPS),
	}
	if b.ID < 0 {
		return b, invalid("billboard id must not be negative")
	}
	if b.Name == "" {
		return b, invalid("billboard name is required")
	}
	if b.Size == "" {
		return b, invalid("billboard size is required")
	}
	if b.MonthlyPrice < 0 {
		return b, invalid("monthly price must not be negative")
	}
	if b.Faces == 0 {
		b.Faces = 1
	}
	if b.Faces < 0 {
		return b, invalid("faces must be positive")
	}
	// rented is only ever set by linking a contract
	switch b.Status {
	case "":
		b.Status = model.BillboardStatusAvailable
	case model.BillboardStatusAvailable, model.BillboardStatusMaintenance:
	default:
		return b, invalid("status %q cannot be set directly", b.Status)
	}
	return b, nil
}

// CreateBillboard adds a single board to the inventory. A zero ID lets the
// store pick the next one.
func (s *BillboardService) CreateBillboard(ctx context.Context, input BillboardInput) (*BillboardView, error) {
	if !input.Principal.CanWrite() {
		return nil, ErrPermissionDenied
	}
	b, err := input.toModel()
	if err != nil {
		return nil, err
	}
	created, err := s.boards.CreateBillboard(ctx, b)
	if err != nil {
		return nil, mapStoreError(err)
	}
	view := s.view(today(s.now), *created)
	return &view, nil
}

// UpdateBillboard edits the inventory fields of a board. Contract links and
// rent dates are managed through contracts only.
func (s *BillboardService) UpdateBillboard(ctx context.Context, id int64, input BillboardInput) (*BillboardView, error) {
	if !input.Principal.CanWrite() {
		return nil, ErrPermissionDenied
	}
	if id <= 0 {
		return nil, invalid("billboard id must be positive")
	}
	input.ID = id
	b, err := input.toModel()
	if err != nil {
		return nil, err
	}
	if err := s.boards.UpdateBillboard(ctx, b); err != nil {
		return nil, mapStoreError(err)
	}
	boards, err := s.boards.GetBillboardsByIDs(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	if len(boards) == 0 {
		return nil, ErrNotFound
	}
	view := s.view(today(s.now), boards[0])
	return &view, nil
}

type ImportResult struct {
	Imported int
	Skipped  []string
}

// Import reads an inventory workbook and upserts its rows. Rows that cannot
// be mapped are reported and skipped.
func (s *BillboardService) Import(ctx context.Context, principal model.Principal, r io.Reader) (*ImportResult, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	records, err := s.inventory.ReadInventory(r)
	if err != nil {
		return nil, invalid("read inventory: %v", err)
	}

	result := &ImportResult{}
	boards := make([]model.Billboard, 0, len(records))
	seen := make(map[int64]struct{}, len(records))
	for i, rec := range records {
		b, err := model.BillboardFromRecord(rec)
		if err != nil {
			result.Skipped = append(result.Skipped, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}
		if _, dup := seen[b.ID]; dup {
			result.Skipped = append(result.Skipped, fmt.Sprintf("row %d: duplicate billboard id %d", i+2, b.ID))
			continue
		}
		seen[b.ID] = struct{}{}
		boards = append(boards, b)
	}
	if len(boards) == 0 {
		return result, nil
	}

	imported, err := s.boards.UpsertBillboards(ctx, boards)
	if err != nil {
		return nil, err
	}
	result.Imported = imported
	return result, nil
}

func (s *BillboardService) view(day time.Time, b model.Billboard) BillboardView {
	view := BillboardView{
		Billboard: b,
		Availability: status.BillboardAvailability(
			day,
			b.HasContract(),
			b.RentStart,
			b.RentEnd,
			b.Status == model.BillboardStatusMaintenance,
		),
	}
	if b.HasContract() && !b.RentEnd.IsZero() {
		days := status.DaysRemaining(day, b.RentEnd)
		view.DaysRemaining = &days
	}
	return view
}

func distinct(boards []model.Billboard, field func(model.Billboard) string) []string {
	seen := make(map[string]struct{})
	result := make([]string, 0)
	for _, b := range boards {
		v := strings.TrimSpace(field(b))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	sort.Strings(result)
	return result
}
