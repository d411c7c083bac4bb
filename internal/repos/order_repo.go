package repos

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"kicks/internal/domain"
	"kicks/internal/pricing"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// orderRow is the flat orders table; Order nests user, pricing and address.
type orderRow struct {
	ID             string          `db:"id"`
	OrderNumber    string          `db:"order_number"`
	UserID         string          `db:"user_id"`
	UserName       string          `db:"user_name"`
	UserEmail      string          `db:"user_email"`
	Subtotal       decimal.Decimal `db:"subtotal"`
	GSTPercentage  decimal.Decimal `db:"gst_percentage"`
	GST            decimal.Decimal `db:"gst"`
	DeliveryCharge decimal.Decimal `db:"delivery_charge"`
	Total          decimal.Decimal `db:"total"`
	PaymentStatus  string          `db:"payment_status"`
	OrderStatus    string          `db:"order_status"`
	ShippingJSON   string          `db:"shipping_json"`
	CreatedAt      string          `db:"created_at"`
}

const orderCols = `id, order_number, user_id, user_name, user_email, subtotal, gst_percentage, gst,
	delivery_charge, total, payment_status, order_status, shipping_json, created_at`

func (row orderRow) order() domain.Order {
	o := domain.Order{
		ID:          row.ID,
		OrderNumber: row.OrderNumber,
		User:        domain.OrderUser{ID: row.UserID, Name: row.UserName, Email: row.UserEmail},
		Items:       []domain.OrderItem{},
		Pricing: pricing.Summary{
			Subtotal:       row.Subtotal,
			GSTPercentage:  row.GSTPercentage,
			GST:            row.GST,
			DeliveryCharge: row.DeliveryCharge,
			Total:          row.Total,
		},
		PaymentInfo:   domain.PaymentInfo{Status: domain.PaymentStatus(row.PaymentStatus)},
		OrderStatus:   domain.OrderStatus(row.OrderStatus),
		StatusHistory: []domain.StatusEntry{},
		CreatedAt:     row.CreatedAt,
	}
	_ = json.Unmarshal([]byte(row.ShippingJSON), &o.ShippingAddress)
	return o
}

// Create reserves stock for every line and writes the order, its items and
// its first history entry in one transaction. A line that cannot be covered
// aborts the whole order with ErrInsufficientStock.
func (r *OrderRepo) Create(o *domain.Order) error {
	ship, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return err
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, it := range o.Items {
		res, err := tx.Exec(`
			UPDATE variants SET stock = stock - ?
			WHERE id = ? AND product_id = ? AND stock >= ?
		`, it.Quantity, it.VariantID, it.ProductID, it.Quantity)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: %s (%s)", ErrInsufficientStock, it.ProductName, it.VariantDetails)
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO orders(`+orderCols+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, o.ID, o.OrderNumber, o.User.ID, o.User.Name, o.User.Email,
		o.Pricing.Subtotal, o.Pricing.GSTPercentage, o.Pricing.GST, o.Pricing.DeliveryCharge, o.Pricing.Total,
		o.PaymentInfo.Status, o.OrderStatus, string(ship), o.CreatedAt); err != nil {
		return dupOr(err)
	}

	for i, it := range o.Items {
		if _, err := tx.Exec(`
			INSERT INTO order_items(order_id, position, product_id, variant_id, product_name, variant_details, qty, price)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, o.ID, i, it.ProductID, it.VariantID, it.ProductName, it.VariantDetails, it.Quantity, it.Price); err != nil {
			return err
		}
	}
	for _, h := range o.StatusHistory {
		if err := insertHistory(tx, o.ID, h); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertHistory(tx *sqlx.Tx, orderID string, h domain.StatusEntry) error {
	_, err := tx.Exec(`
		INSERT INTO order_status_history(order_id, status, note, created_at)
		VALUES (?, ?, ?, ?)
	`, orderID, h.Status, h.Note, h.Timestamp)
	return err
}

func (r *OrderRepo) Get(id string) (*domain.Order, error) {
	var row orderRow
	if err := r.db.Get(&row, `SELECT `+orderCols+` FROM orders WHERE id = ?`, id); err != nil {
		return nil, err
	}
	out, err := r.hydrate([]orderRow{row})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// ListByUser returns a shopper's orders, newest first.
func (r *OrderRepo) ListByUser(userID string) ([]domain.Order, error) {
	var rows []orderRow
	if err := r.db.Select(&rows, `SELECT `+orderCols+` FROM orders WHERE user_id = ? ORDER BY created_at DESC, order_number DESC`, userID); err != nil {
		return nil, err
	}
	return r.hydrate(rows)
}

// ListLatest returns all orders newest first; limit <= 0 means no limit.
func (r *OrderRepo) ListLatest(limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = -1
	}
	var rows []orderRow
	if err := r.db.Select(&rows, `SELECT `+orderCols+` FROM orders ORDER BY created_at DESC, order_number DESC LIMIT ?`, limit); err != nil {
		return nil, err
	}
	return r.hydrate(rows)
}

func (r *OrderRepo) hydrate(rows []orderRow) ([]domain.Order, error) {
	out := make([]domain.Order, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	ids := make([]string, len(rows))
	idx := make(map[string]int, len(rows))
	for i, row := range rows {
		out[i] = row.order()
		ids[i] = row.ID
		idx[row.ID] = i
	}

	type itemRow struct {
		OrderID string `db:"order_id"`
		domain.OrderItem
	}
	q, args, err := sqlx.In(`
		SELECT order_id, product_id, variant_id, product_name, variant_details, qty, price
		FROM order_items WHERE order_id IN (?) ORDER BY order_id, position`, ids)
	if err != nil {
		return nil, err
	}
	var items []itemRow
	if err := r.db.Select(&items, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	for _, it := range items {
		o := &out[idx[it.OrderID]]
		o.Items = append(o.Items, it.OrderItem)
	}

	type histRow struct {
		OrderID string `db:"order_id"`
		domain.StatusEntry
	}
	q, args, err = sqlx.In(`
		SELECT order_id, status, note, created_at
		FROM order_status_history WHERE order_id IN (?) ORDER BY order_id, id`, ids)
	if err != nil {
		return nil, err
	}
	var hist []histRow
	if err := r.db.Select(&hist, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	for _, h := range hist {
		o := &out[idx[h.OrderID]]
		o.StatusHistory = append(o.StatusHistory, h.StatusEntry)
	}
	return out, nil
}

// AppendStatus moves the order from status from to h.Status and records h,
// in one transaction. ErrStaleStatus means the order is no longer in from.
func (r *OrderRepo) AppendStatus(id string, from domain.OrderStatus, h domain.StatusEntry) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`UPDATE orders SET order_status = ?, updated_at = ? WHERE id = ? AND order_status = ?`, h.Status, h.Timestamp, id, from)
	if err := oneRow(res, err); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var n int
			if qerr := tx.Get(&n, `SELECT COUNT(*) FROM orders WHERE id = ?`, id); qerr == nil && n > 0 {
				return ErrStaleStatus
			}
		}
		return err
	}
	if err := insertHistory(tx, id, h); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *OrderRepo) UpdatePayment(id string, status domain.PaymentStatus) error {
	res, err := r.db.Exec(`UPDATE orders SET payment_status = ?, updated_at = ? WHERE id = ?`, status, now(), id)
	return oneRow(res, err)
}

// Sales aggregates non-cancelled orders: all-time revenue, revenue since
// monthStart and order count since dayStart (RFC3339 UTC bounds).
func (r *OrderRepo) Sales(monthStart, dayStart string) (total, month decimal.Decimal, today int, err error) {
	var rows []struct {
		Total     decimal.Decimal `db:"total"`
		CreatedAt string          `db:"created_at"`
	}
	if err = r.db.Select(&rows, `SELECT total, created_at FROM orders WHERE order_status <> 'Cancelled'`); err != nil {
		return
	}
	for _, row := range rows {
		total = total.Add(row.Total)
		if row.CreatedAt >= monthStart {
			month = month.Add(row.Total)
		}
		if row.CreatedAt >= dayStart {
			today++
		}
	}
	return total, month, today, nil
}
