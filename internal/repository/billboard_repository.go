package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nurpe/billboards-service/internal/model"
)

type BillboardRepository struct {
	db *gorm.DB
}

func NewBillboardRepository(db *gorm.DB) *BillboardRepository {
	return &BillboardRepository{db: db}
}

// Linked contract dates take precedence over the dates copied onto the board.
const billboardSelect = `
	SELECT
		b.id,
		b.name,
		b.city,
		b.district,
		b.municipality,
		b.size,
		b.level,
		b.monthly_price,
		b.status,
		b.faces,
		b.landmark,
		b.image_url,
		b.gps,
		b.contract_id,
		COALESCE(c.customer_name, b.customer_name) AS customer_name,
		COALESCE(c.start_date, b.rent_start) AS rent_start,
		COALESCE(c.end_date, b.rent_end) AS rent_end,
		COALESCE(c.ad_type, '') AS ad_type
	FROM billboards b
	LEFT JOIN contracts c ON c.id = b.contract_id
`

func (r *BillboardRepository) ListBillboards(ctx context.Context) ([]model.Billboard, error) {
	var rows []billboardRow
	if err := r.db.WithContext(ctx).Raw(billboardSelect + ` ORDER BY b.id ASC`).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return toBillboards(rows), nil
}

func (r *BillboardRepository) GetBillboardsByIDs(ctx context.Context, ids []int64) ([]model.Billboard, error) {
	if len(ids) == 0 {
		return []model.Billboard{}, nil
	}
	var rows []billboardRow
	if err := r.db.WithContext(ctx).Raw(billboardSelect+` WHERE b.id IN ? ORDER BY b.id ASC`, ids).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return toBillboards(rows), nil
}

// billboardIDLock serializes id allocation for boards created without one.
const billboardIDLock int64 = 0x626f6172

// UpsertBillboards writes inventory columns. Status, customer and rent dates
// are only taken from the import for boards with no linked contract; linked
// boards keep what their contract wrote.
func (r *BillboardRepository) UpsertBillboards(ctx context.Context, boards []model.Billboard) (int, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, b := range boards {
			if err := tx.Exec(`
				INSERT INTO billboards (
					id, name, city, district, municipality, size, level,
					monthly_price, status, faces, landmark, image_url, gps,
					customer_name, rent_start, rent_end
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT (id) DO UPDATE SET
					name = EXCLUDED.name,
					city = EXCLUDED.city,
					district = EXCLUDED.district,
					municipality = EXCLUDED.municipality,
					size = EXCLUDED.size,
					level = EXCLUDED.level,
					monthly_price = EXCLUDED.monthly_price,
					status = CASE WHEN billboards.contract_id IS NULL THEN EXCLUDED.status ELSE billboards.status END,
					faces = EXCLUDED.faces,
					landmark = EXCLUDED.landmark,
					image_url = EXCLUDED.image_url,
					gps = EXCLUDED.gps,
					customer_name = CASE WHEN billboards.contract_id IS NULL THEN EXCLUDED.customer_name ELSE billboards.customer_name END,
					rent_start = CASE WHEN billboards.contract_id IS NULL THEN EXCLUDED.rent_start ELSE billboards.rent_start END,
					rent_end = CASE WHEN billboards.contract_id IS NULL THEN EXCLUDED.rent_end ELSE billboards.rent_end END
			`,
				b.ID, b.Name, b.City, b.District, b.Municipality, b.Size, b.Level,
				b.MonthlyPrice, string(b.Status), b.Faces, b.Landmark, b.ImageURL, b.GPS,
				nullableText(b.CustomerName), nullableDate(b.RentStart), nullableDate(b.RentEnd),
			).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(boards), nil
}

// CreateBillboard inserts a single board. A zero ID is replaced by the next
// free one.
func (r *BillboardRepository) CreateBillboard(ctx context.Context, b model.Billboard) (*model.Billboard, error) {
	var saved []billboardRow
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if b.ID == 0 {
			if err := tx.Exec(`SELECT pg_advisory_xact_lock(?)`, billboardIDLock).Error; err != nil {
				return err
			}
			if err := tx.Raw(`SELECT COALESCE(MAX(id), 0) + 1 FROM billboards`).Scan(&b.ID).Error; err != nil {
				return err
			}
		}
		if err := tx.Exec(`
			INSERT INTO billboards (
				id, name, city, district, municipality, size, level,
				monthly_price, status, faces, landmark, image_url, gps
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			b.ID, b.Name, b.City, b.District, b.Municipality, b.Size, b.Level,
			b.MonthlyPrice, string(b.Status), b.Faces, b.Landmark, b.ImageURL, b.GPS,
		).Error; err != nil {
			return err
		}
		return tx.Raw(billboardSelect+` WHERE b.id = ?`, b.ID).Scan(&saved).Error
	})
	if err != nil {
		return nil, err
	}
	if len(saved) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	result := saved[0].toModel()
	return &result, nil
}

// UpdateBillboard rewrites the inventory columns of one board. The status is
// left alone while the board is linked to a contract.
func (r *BillboardRepository) UpdateBillboard(ctx context.Context, b model.Billboard) error {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE billboards
		SET
			name = ?,
			city = ?,
			district = ?,
			municipality = ?,
			size = ?,
			level = ?,
			monthly_price = ?,
			status = CASE WHEN contract_id IS NULL THEN ? ELSE status END,
			faces = ?,
			landmark = ?,
			image_url = ?,
			gps = ?
		WHERE id = ?
	`,
		b.Name, b.City, b.District, b.Municipality, b.Size, b.Level,
		b.MonthlyPrice, string(b.Status), b.Faces, b.Landmark, b.ImageURL, b.GPS,
		b.ID,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListMunicipalityNames returns the distinct municipality names used by the
// inventory.
func (r *BillboardRepository) ListMunicipalityNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Raw(`
		SELECT DISTINCT TRIM(municipality)
		FROM billboards
		WHERE TRIM(municipality) <> ''
		ORDER BY 1
	`).Scan(&names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

func toBillboards(rows []billboardRow) []model.Billboard {
	result := make([]model.Billboard, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.toModel())
	}
	return result
}
