package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/billboards-service/internal/model"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

type ContractFilter struct {
	Query        string
	CustomerName string
}

const contractSelect = `
	SELECT
		id,
		contract_number,
		customer_id,
		customer_name,
		ad_type,
		start_date,
		end_date,
		rent_cost,
		discount,
		total_paid,
		created_at
	FROM contracts
`

func (r *ContractRepository) NextContractNumber(ctx context.Context) (int64, error) {
	return nextContractNumber(r.db.WithContext(ctx))
}

// contractNumberLock is the advisory lock key that serializes contract number
// allocation across concurrent CreateContract transactions.
const contractNumberLock int64 = 0x62696c6c

func nextContractNumber(db *gorm.DB) (int64, error) {
	var next int64
	if err := db.Raw(`SELECT COALESCE(MAX(contract_number), 0) + 1 FROM contracts`).Scan(&next).Error; err != nil {
		return 0, err
	}
	return next, nil
}

// CreateContract stores the contract with its installments and links the
// billboards to it. The contract number is allocated inside the transaction
// while holding contractNumberLock, which is released on commit or rollback.
func (r *ContractRepository) CreateContract(ctx context.Context, contract model.Contract, billboardIDs []int64) (*model.Contract, error) {
	var saved contractRow
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`SELECT pg_advisory_xact_lock(?)`, contractNumberLock).Error; err != nil {
			return err
		}
		number, err := nextContractNumber(tx)
		if err != nil {
			return err
		}

		err = tx.Raw(`
			INSERT INTO contracts (
				contract_number,
				customer_id,
				customer_name,
				ad_type,
				start_date,
				end_date,
				rent_cost,
				discount,
				total_paid
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING
				id,
				contract_number,
				customer_id,
				customer_name,
				ad_type,
				start_date,
				end_date,
				rent_cost,
				discount,
				total_paid,
				created_at
		`,
			number,
			contract.CustomerID,
			contract.CustomerName,
			contract.AdType,
			nullableDate(contract.StartDate),
			nullableDate(contract.EndDate),
			contract.RentCost,
			contract.Discount,
			contract.TotalPaid,
		).Scan(&saved).Error
		if err != nil {
			return translateError(tx, err)
		}

		if err := insertInstallments(tx, saved.ID, contract.Installments); err != nil {
			return err
		}
		return linkBillboards(tx, saved.toModel(), billboardIDs)
	})
	if err != nil {
		return nil, err
	}

	result := saved.toModel()
	result.Installments = contract.Installments
	return &result, nil
}

func (r *ContractRepository) GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var rows []contractRow
	if err := r.db.WithContext(ctx).Raw(contractSelect+` WHERE id = ? LIMIT 1`, id).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	contracts, err := r.hydrate(ctx, rows)
	if err != nil {
		return nil, err
	}
	return &contracts[0], nil
}

func (r *ContractRepository) ListContracts(ctx context.Context, filter ContractFilter) ([]model.Contract, error) {
	query := contractSelect
	var (
		conditions []string
		args       []interface{}
	)
	if q := strings.TrimSpace(filter.Query); q != "" {
		like := "%" + q + "%"
		conditions = append(conditions, `(customer_name ILIKE ? OR ad_type ILIKE ? OR contract_number::text LIKE ?)`)
		args = append(args, like, like, like)
	}
	if name := strings.TrimSpace(filter.CustomerName); name != "" {
		conditions = append(conditions, `customer_name = ?`)
		args = append(args, name)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY contract_number DESC"

	var rows []contractRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return r.hydrate(ctx, rows)
}

// UpdateContract rewrites the contract columns and its installments and
// copies the new dates onto the linked billboards.
func (r *ContractRepository) UpdateContract(ctx context.Context, contract model.Contract) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(`
			UPDATE contracts
			SET
				customer_id = ?,
				customer_name = ?,
				ad_type = ?,
				start_date = ?,
				end_date = ?,
				rent_cost = ?,
				discount = ?,
				total_paid = ?
			WHERE id = ?
		`,
			contract.CustomerID,
			contract.CustomerName,
			contract.AdType,
			nullableDate(contract.StartDate),
			nullableDate(contract.EndDate),
			contract.RentCost,
			contract.Discount,
			contract.TotalPaid,
			contract.ID,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Exec(`DELETE FROM contract_installments WHERE contract_id = ?`, contract.ID).Error; err != nil {
			return err
		}
		if err := insertInstallments(tx, contract.ID, contract.Installments); err != nil {
			return err
		}

		return tx.Exec(`
			UPDATE billboards
			SET rent_start = ?, rent_end = ?, customer_name = ?
			WHERE contract_id = ?
		`, nullableDate(contract.StartDate), nullableDate(contract.EndDate), contract.CustomerName, contract.ID).Error
	})
}

// DeleteContract releases the contract's billboards and removes it.
func (r *ContractRepository) DeleteContract(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := releaseBillboards(tx, `contract_id = ?`, id).Error; err != nil {
			return err
		}
		res := tx.Exec(`DELETE FROM contracts WHERE id = ?`, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *ContractRepository) AttachBillboards(ctx context.Context, contract model.Contract, billboardIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return linkBillboards(tx, contract, billboardIDs)
	})
}

// ReleaseBillboard unlinks one board from the contract. It fails with
// gorm.ErrRecordNotFound when the board is not linked to that contract.
func (r *ContractRepository) ReleaseBillboard(ctx context.Context, contractID uuid.UUID, billboardID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := releaseBillboards(tx, `contract_id = ? AND id = ?`, contractID, billboardID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *ContractRepository) hydrate(ctx context.Context, rows []contractRow) ([]model.Contract, error) {
	contracts := make([]model.Contract, 0, len(rows))
	if len(rows) == 0 {
		return contracts, nil
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	var installments []installmentRow
	if err := r.db.WithContext(ctx).Raw(`
		SELECT contract_id, position, amount, months, payment_type
		FROM contract_installments
		WHERE contract_id IN ?
		ORDER BY contract_id, position ASC
	`, ids).Scan(&installments).Error; err != nil {
		return nil, err
	}

	var boards []billboardRow
	if err := r.db.WithContext(ctx).Raw(billboardSelect+` WHERE b.contract_id IN ? ORDER BY b.id ASC`, ids).Scan(&boards).Error; err != nil {
		return nil, err
	}

	byContract := make(map[uuid.UUID][]model.Installment, len(rows))
	for _, row := range installments {
		byContract[row.ContractID] = append(byContract[row.ContractID], row.toModel())
	}
	boardsByContract := make(map[uuid.UUID][]model.Billboard, len(rows))
	for _, row := range boards {
		if row.ContractID == nil {
			continue
		}
		boardsByContract[*row.ContractID] = append(boardsByContract[*row.ContractID], row.toModel())
	}

	for _, row := range rows {
		contract := row.toModel()
		contract.Installments = byContract[row.ID]
		contract.Billboards = boardsByContract[row.ID]
		contracts = append(contracts, contract)
	}
	return contracts, nil
}

func insertInstallments(tx *gorm.DB, contractID uuid.UUID, plan []model.Installment) error {
	for i, row := range plan {
		paymentType := row.PaymentType
		if paymentType == "" {
			paymentType = model.PaymentMonthly
		}
		if err := tx.Exec(`
			INSERT INTO contract_installments (contract_id, position, amount, months, payment_type)
			VALUES (?, ?, ?, ?, ?)
		`, contractID, i+1, row.Amount, row.Months, string(paymentType)).Error; err != nil {
			return err
		}
	}
	return nil
}

func linkBillboards(tx *gorm.DB, contract model.Contract, billboardIDs []int64) error {
	billboardIDs = distinctIDs(billboardIDs)
	if len(billboardIDs) == 0 {
		return nil
	}
	res := tx.Exec(`
		UPDATE billboards
		SET
			contract_id = ?,
			rent_start = ?,
			rent_end = ?,
			customer_name = ?,
			status = ?
		WHERE id IN ?
	`,
		contract.ID,
		nullableDate(contract.StartDate),
		nullableDate(contract.EndDate),
		contract.CustomerName,
		string(model.BillboardStatusRented),
		billboardIDs,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != int64(len(billboardIDs)) {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func releaseBillboards(tx *gorm.DB, where string, args ...interface{}) *gorm.DB {
	return tx.Exec(`
		UPDATE billboards
		SET
			contract_id = NULL,
			rent_start = NULL,
			rent_end = NULL,
			customer_name = NULL,
			status = ?
		WHERE `+where, append([]interface{}{string(model.BillboardStatusAvailable)}, args...)...)
}

// translateError maps driver errors to gorm's sentinel errors. Exec does this
// on its own; errors returned by the query in a Raw scan skip the translator.
func translateError(db *gorm.DB, err error) error {
	if !db.Config.TranslateError {
		return err
	}
	if translator, ok := db.Dialector.(gorm.ErrorTranslator); ok {
		return translator.Translate(err)
	}
	return err
}

// distinctIDs drops repeated ids, keeping the first occurrence.
func distinctIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	result := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
