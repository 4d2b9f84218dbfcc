package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"catering_backend/internal/models"

	"github.com/lib/pq" // For pq.Error
)

// Record types stored in the listings table. The hosted marketplace
// store keeps every entity as a listing with an open-ended attribute
// bag; this repository is the boundary where that bag becomes the
// typed records the core works with.
const (
	RecordTypeOrder = "order"
	RecordTypePlan  = "plan"
)

// RecordRepository defines read-by-id and compare-and-update access to
// the listing store for the two records the lifecycle core touches.
type RecordRepository interface {
	CreateOrder(executor SQLExecutor, order *models.Order) error
	GetOrderByID(orderID string) (*models.Order, error)
	// UpdateOrder persists the order's attributes with a version check;
	// returns ErrVersionConflict when a concurrent writer got there first.
	UpdateOrder(executor SQLExecutor, order *models.Order) error

	CreatePlan(executor SQLExecutor, plan *models.Plan) error
	GetPlanByID(planID string) (*models.Plan, error)
	UpdatePlan(executor SQLExecutor, plan *models.Plan) error
}

type recordRepository struct {
	db *sql.DB
}

// NewRecordRepository creates a new instance of RecordRepository.
func NewRecordRepository(db *sql.DB) RecordRepository {
	return &recordRepository{db: db}
}

// --- Order records ---

func (r *recordRepository) CreateOrder(executor SQLExecutor, order *models.Order) error {
	attrs, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("%w: marshaling order %s: %v", ErrDatabaseError, order.ID, err)
	}
	if err := r.insert(executor, order.ID, RecordTypeOrder, attrs); err != nil {
		return err
	}
	order.Version = 1
	return nil
}

func (r *recordRepository) GetOrderByID(orderID string) (*models.Order, error) {
	attrs, version, err := r.fetch(orderID, RecordTypeOrder)
	if err != nil {
		return nil, err
	}
	order := &models.Order{}
	if err := json.Unmarshal(attrs, order); err != nil {
		return nil, fmt.Errorf("%w: decoding order %s attributes: %v", ErrDatabaseError, orderID, err)
	}
	order.ID = orderID
	order.Version = version
	return order, nil
}

func (r *recordRepository) UpdateOrder(executor SQLExecutor, order *models.Order) error {
	attrs, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("%w: marshaling order %s: %v", ErrDatabaseError, order.ID, err)
	}
	if err := r.update(executor, order.ID, RecordTypeOrder, attrs, order.Version); err != nil {
		return err
	}
	order.Version++
	return nil
}

// --- Plan records ---

func (r *recordRepository) CreatePlan(executor SQLExecutor, plan *models.Plan) error {
	attrs, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("%w: marshaling plan %s: %v", ErrDatabaseError, plan.ID, err)
	}
	if err := r.insert(executor, plan.ID, RecordTypePlan, attrs); err != nil {
		return err
	}
	plan.Version = 1
	return nil
}

func (r *recordRepository) GetPlanByID(planID string) (*models.Plan, error) {
	attrs, version, err := r.fetch(planID, RecordTypePlan)
	if err != nil {
		return nil, err
	}
	plan := &models.Plan{}
	if err := json.Unmarshal(attrs, plan); err != nil {
		return nil, fmt.Errorf("%w: decoding plan %s attributes: %v", ErrDatabaseError, planID, err)
	}
	plan.ID = planID
	plan.Version = version
	if plan.OrderDetail == nil {
		plan.OrderDetail = map[string]*models.DayRecord{}
	}
	return plan, nil
}

func (r *recordRepository) UpdatePlan(executor SQLExecutor, plan *models.Plan) error {
	attrs, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("%w: marshaling plan %s: %v", ErrDatabaseError, plan.ID, err)
	}
	if err := r.update(executor, plan.ID, RecordTypePlan, attrs, plan.Version); err != nil {
		return err
	}
	plan.Version++
	return nil
}

// --- Shared listing access ---

// executorOrDB lets callers pass nil when they have no transaction.
func (r *recordRepository) executorOrDB(executor SQLExecutor) SQLExecutor {
	if executor == nil {
		return r.db
	}
	return executor
}

func (r *recordRepository) insert(executor SQLExecutor, id, recordType string, attrs []byte) error {
	query := `INSERT INTO listings (id, record_type, attributes, version)
	          VALUES ($1, $2, $3, 1)`
	_, err := r.executorOrDB(executor).Exec(query, id, recordType, attrs)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateKey
		}
		return fmt.Errorf("%w: creating %s %s: %v", ErrDatabaseError, recordType, id, err)
	}
	return nil
}

func (r *recordRepository) fetch(id, recordType string) ([]byte, int64, error) {
	var attrs []byte
	var version int64
	query := `SELECT attributes, version FROM listings WHERE id = $1 AND record_type = $2`
	err := r.db.QueryRow(query, id, recordType).Scan(&attrs, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("%w: getting %s %s: %v", ErrDatabaseError, recordType, id, err)
	}
	return attrs, version, nil
}

// update applies a compare-and-update: the row must still carry the
// version the caller read. Zero rows affected means either a concurrent
// writer bumped the version or the record is gone; the two are told
// apart with a follow-up existence check.
func (r *recordRepository) update(executor SQLExecutor, id, recordType string, attrs []byte, version int64) error {
	query := `UPDATE listings SET attributes = $1, version = version + 1
	          WHERE id = $2 AND record_type = $3 AND version = $4`
	result, err := r.executorOrDB(executor).Exec(query, attrs, id, recordType, version)
	if err != nil {
		return fmt.Errorf("%w: updating %s %s: %v", ErrDatabaseError, recordType, id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: updating %s %s: %v", ErrDatabaseError, recordType, id, err)
	}
	if affected == 0 {
		if _, _, fetchErr := r.fetch(id, recordType); errors.Is(fetchErr, ErrNotFound) {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}
