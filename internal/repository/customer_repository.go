package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/billboards-service/internal/model"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	var customers []model.Customer
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, phone, company, created_at
		FROM customers
		ORDER BY name ASC
	`).Scan(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *CustomerRepository) GetCustomer(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, phone, company, created_at
		FROM customers
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&customer).Error; err != nil {
		return nil, err
	}
	if customer.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &customer, nil
}

func (r *CustomerRepository) CreateCustomer(ctx context.Context, customer model.Customer) (*model.Customer, error) {
	var saved model.Customer
	if err := r.db.WithContext(ctx).Raw(`
		INSERT INTO customers (name, phone, company)
		VALUES (?, ?, ?)
		RETURNING id, name, phone, company, created_at
	`, customer.Name, customer.Phone, customer.Company).Scan(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

type MunicipalityRepository struct {
	db *gorm.DB
}

func NewMunicipalityRepository(db *gorm.DB) *MunicipalityRepository {
	return &MunicipalityRepository{db: db}
}

func (r *MunicipalityRepository) ListMunicipalities(ctx context.Context) ([]model.Municipality, error) {
	var items []model.Municipality
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, code
		FROM municipalities
		ORDER BY name ASC
	`).Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MunicipalityRepository) CreateMunicipality(ctx context.Context, m model.Municipality) (*model.Municipality, error) {
	var saved model.Municipality
	if err := r.db.WithContext(ctx).Raw(`
		INSERT INTO municipalities (name, code)
		VALUES (?, ?)
		RETURNING id, name, code
	`, m.Name, m.Code).Scan(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *MunicipalityRepository) UpdateMunicipality(ctx context.Context, m model.Municipality) error {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE municipalities SET name = ?, code = ? WHERE id = ?
	`, m.Name, m.Code, m.ID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *MunicipalityRepository) DeleteMunicipality(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Exec(`DELETE FROM municipalities WHERE id = ?`, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
