package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ryotak125/parts-market/internal/core/domain"
	"github.com/ryotak125/parts-market/internal/port"
)

// MySQLStore implements port.Store on MySQL. All reads return
// (nil, nil) on absent rows; the conditional stock decrement reports
// a zero-row match instead of failing.
type MySQLStore struct {
	db *sqlx.DB
}

func NewMySQLStore(db *sqlx.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

func (s *MySQLStore) WithinTx(ctx context.Context, fn func(tx port.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&mysqlTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *MySQLStore) GetListing(ctx context.Context, listingID string) (*domain.Listing, error) {
	return getListing(ctx, s.db, listingID, false)
}

func (s *MySQLStore) GetLot(ctx context.Context, lotID string) (*domain.InventoryLot, error) {
	return getLot(ctx, s.db, lotID)
}

func (s *MySQLStore) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return getOrder(ctx, s.db, orderID, false)
}

func (s *MySQLStore) CreateLot(ctx context.Context, lot *domain.InventoryLot) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO lots (id, seller_id, part_number, manufacturer, date_code, source, cond, available_qty, location, created_at, updated_at)
		VALUES (:id, :seller_id, :part_number, :manufacturer, :date_code, :source, :cond, :available_qty, :location, :created_at, :updated_at)`,
		lot,
	)
	if err != nil {
		return fmt.Errorf("insert lot: %w", err)
	}
	return nil
}

func (s *MySQLStore) UpdateLot(ctx context.Context, lot *domain.InventoryLot) error {
	_, err := s.db.NamedExecContext(ctx, `
		UPDATE lots
		SET part_number = :part_number, manufacturer = :manufacturer, date_code = :date_code,
		    source = :source, cond = :cond, available_qty = :available_qty,
		    location = :location, updated_at = :updated_at
		WHERE id = :id`,
		lot,
	)
	if err != nil {
		return fmt.Errorf("update lot: %w", err)
	}
	return nil
}

func (s *MySQLStore) ListAvailableLots(ctx context.Context, sellerID string) ([]domain.InventoryLot, error) {
	var lots []domain.InventoryLot
	err := s.db.SelectContext(ctx, &lots, `
		SELECT * FROM lots
		WHERE seller_id = ? AND available_qty > 0
		ORDER BY updated_at DESC`, sellerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	return lots, nil
}

func (s *MySQLStore) CreateListing(ctx context.Context, listing *domain.Listing) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO listings (id, seller_id, part_number, manufacturer, quantity, unit_price_jpy, status, created_at, updated_at)
		VALUES (:id, :seller_id, :part_number, :manufacturer, :quantity, :unit_price_jpy, :status, :created_at, :updated_at)`,
		listing,
	)
	if err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

// mysqlTx is the transaction-scoped view. Order reads lock the row so
// concurrent lifecycle transitions on one order serialize.
type mysqlTx struct {
	tx *sqlx.Tx
}

func (t *mysqlTx) GetListing(ctx context.Context, listingID string) (*domain.Listing, error) {
	return getListing(ctx, t.tx, listingID, false)
}

func (t *mysqlTx) GetLot(ctx context.Context, lotID string) (*domain.InventoryLot, error) {
	return getLot(ctx, t.tx, lotID)
}

func (t *mysqlTx) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return getOrder(ctx, t.tx, orderID, true)
}

func (t *mysqlTx) DecrementLotStock(ctx context.Context, lotID string, qty int) (bool, error) {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE lots
		SET available_qty = available_qty - ?, updated_at = NOW()
		WHERE id = ? AND available_qty >= ?`,
		qty, lotID, qty,
	)
	if err != nil {
		return false, fmt.Errorf("decrement stock: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows > 0, nil
}

func (t *mysqlTx) IncrementLotStock(ctx context.Context, lotID string, qty int) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE lots
		SET available_qty = available_qty + ?, updated_at = NOW()
		WHERE id = ?`,
		qty, lotID,
	)
	if err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("increment stock: lot %s not found", lotID)
	}
	return nil
}

func (t *mysqlTx) InsertOrder(ctx context.Context, order *domain.Order) error {
	_, err := t.tx.NamedExecContext(ctx, `
		INSERT INTO orders (id, buyer_id, seller_id, listing_id, lot_id, quantity, unit_price_jpy, total_jpy, status, created_at, updated_at, paid_at, canceled_at, fulfilled_at)
		VALUES (:id, :buyer_id, :seller_id, :listing_id, :lot_id, :quantity, :unit_price_jpy, :total_jpy, :status, :created_at, :updated_at, :paid_at, :canceled_at, :fulfilled_at)`,
		order,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (t *mysqlTx) UpdateOrder(ctx context.Context, order *domain.Order) error {
	_, err := t.tx.NamedExecContext(ctx, `
		UPDATE orders
		SET status = :status, updated_at = :updated_at,
		    paid_at = :paid_at, canceled_at = :canceled_at, fulfilled_at = :fulfilled_at
		WHERE id = :id`,
		order,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	return nil
}

func (t *mysqlTx) UpdateListingProjection(ctx context.Context, listingID string, quantity int, status domain.ListingStatus) error {
	_, err := t.tx.ExecContext(ctx, `
		UPDATE listings
		SET quantity = ?, status = ?, updated_at = NOW()
		WHERE id = ?`,
		quantity, status, listingID,
	)
	if err != nil {
		return fmt.Errorf("update listing projection: %w", err)
	}
	return nil
}

func getListing(ctx context.Context, q sqlx.QueryerContext, listingID string, forUpdate bool) (*domain.Listing, error) {
	query := `SELECT * FROM listings WHERE id = ?`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var listing domain.Listing
	err := sqlx.GetContext(ctx, q, &listing, query, listingID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query listing: %w", err)
	}
	return &listing, nil
}

func getLot(ctx context.Context, q sqlx.QueryerContext, lotID string) (*domain.InventoryLot, error) {
	var lot domain.InventoryLot
	err := sqlx.GetContext(ctx, q, &lot, `SELECT * FROM lots WHERE id = ?`, lotID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query lot: %w", err)
	}
	return &lot, nil
}

func getOrder(ctx context.Context, q sqlx.QueryerContext, orderID string, forUpdate bool) (*domain.Order, error) {
	query := `SELECT * FROM orders WHERE id = ?`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var order domain.Order
	err := sqlx.GetContext(ctx, q, &order, query, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}
	return &order, nil
}
