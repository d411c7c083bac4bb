// Package orderview turns orders into what the back-office and account
// screens display: badge classes, the status history timeline and the
// statuses an admin may pick next.
package orderview

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"kicks/internal/domain"
	"kicks/internal/orderstatus"
)

var badges = map[string]string{
	"Pending":    "badge-pending",
	"Confirmed":  "badge-confirmed",
	"Processing": "badge-processing",
	"Shipped":    "badge-shipped",
	"Delivered":  "badge-delivered",
	"Cancelled":  "badge-cancelled",
	"Completed":  "badge-completed",
	"Failed":     "badge-failed",
	"Refunded":   "badge-refunded",
}

// BadgeClass covers both order and payment statuses.
func BadgeClass(status string) string {
	if c, ok := badges[status]; ok {
		return c
	}
	return "badge-pending"
}

// StockBadge flags stock at or under the threshold.
func StockBadge(stock, threshold int) string {
	if stock <= threshold {
		return "badge-cancelled"
	}
	return "badge-delivered"
}

const timeLayout = "02 Jan 2006, 15:04"

// FormatTime renders an RFC 3339 timestamp in loc. Unparseable input is
// returned as is.
func FormatTime(ts string, loc *time.Location) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(timeLayout)
}

func Money(d decimal.Decimal) string { return "₹" + d.StringFixed(2) }

type TimelineEntry struct {
	Status string
	Badge  string
	When   string
	Note   string
}

// String is the one-line form; the note part appears only when there is one.
func (e TimelineEntry) String() string {
	if e.Note == "" {
		return fmt.Sprintf("%s  %s", e.Status, e.When)
	}
	return fmt.Sprintf("%s  %s  - %s", e.Status, e.When, e.Note)
}

func Timeline(o domain.Order, loc *time.Location) []TimelineEntry {
	out := make([]TimelineEntry, 0, len(o.StatusHistory))
	for _, h := range o.StatusHistory {
		e := TimelineEntry{
			Status: string(h.Status),
			Badge:  BadgeClass(string(h.Status)),
			When:   FormatTime(h.Timestamp, loc),
		}
		if h.Note != nil {
			e.Note = *h.Note
		}
		out = append(out, e)
	}
	return out
}

// Row is one line of an order table.
type Row struct {
	ID           string
	OrderNumber  string
	Customer     string
	Items        int
	Total        string
	Status       string
	StatusBadge  string
	Payment      string
	PaymentBadge string
	Placed       string
}

func Rows(orders []domain.Order, loc *time.Location) []Row {
	out := make([]Row, 0, len(orders))
	for _, o := range orders {
		n := 0
		for _, it := range o.Items {
			n += it.Quantity
		}
		customer := o.User.Name
		if customer == "" {
			customer = o.User.Email
		}
		out = append(out, Row{
			ID:           o.ID,
			OrderNumber:  o.OrderNumber,
			Customer:     customer,
			Items:        n,
			Total:        Money(o.Pricing.Total),
			Status:       string(o.OrderStatus),
			StatusBadge:  BadgeClass(string(o.OrderStatus)),
			Payment:      string(o.PaymentInfo.Status),
			PaymentBadge: BadgeClass(string(o.PaymentInfo.Status)),
			Placed:       FormatTime(o.CreatedAt, loc),
		})
	}
	return out
}

// NextStatuses lists what the status picker offers for an order.
func NextStatuses(p orderstatus.Policy, current domain.OrderStatus) []domain.OrderStatus {
	return p.Next(current)
}
