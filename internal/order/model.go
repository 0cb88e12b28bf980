package order

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/dinartr/storefront/internal/cart"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// Item is a line of a submitted order, copied out of the cart at checkout.
type Item struct {
	ProductID string          `json:"product_id"`
	Title     string          `json:"title"`
	Qty       int             `json:"qty"`
	Price     decimal.Decimal `json:"price"`
}

// Items is stored as a JSONB array.
type Items []Item

func (it Items) Value() (driver.Value, error) {
	if it == nil {
		it = Items{}
	}
	b, err := json.Marshal(it)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (it *Items) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*it = Items{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("order: cannot scan %T into Items", src)
	}
	return json.Unmarshal(data, it)
}

// Submission is what the storefront sends when a customer checks out.
type Submission struct {
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	CustomerPhone   string          `json:"customer_phone,omitempty"`
	ShippingAddress string          `json:"shipping_address,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	Items           []Item          `json:"items"`
	Total           decimal.Decimal `json:"total"`
	// Status is ignored on submission; new orders are always pending.
	Status Status `json:"status,omitempty"`
}

type Customer struct {
	Name            string
	Email           string
	Phone           string
	ShippingAddress string
	Notes           string
}

// NewSubmission snapshots cart lines into a submission. A line without a
// quantity is submitted with qty 1, while the total is taken as given.
func NewSubmission(c Customer, lines []cart.Item, total decimal.Decimal) Submission {
	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		qty := l.Qty
		if qty == 0 {
			qty = 1
		}
		items = append(items, Item{
			ProductID: l.ID,
			Title:     l.Title,
			Qty:       qty,
			Price:     l.Price,
		})
	}

	return Submission{
		CustomerName:    c.Name,
		CustomerEmail:   c.Email,
		CustomerPhone:   c.Phone,
		ShippingAddress: c.ShippingAddress,
		Notes:           c.Notes,
		Items:           items,
		Total:           total,
	}
}

// Order is a stored order record.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	CustomerName    string          `json:"customer_name" db:"customer_name"`
	CustomerEmail   string          `json:"customer_email" db:"customer_email"`
	CustomerPhone   string          `json:"customer_phone" db:"customer_phone"`
	ShippingAddress string          `json:"shipping_address" db:"shipping_address"`
	Notes           string          `json:"notes" db:"notes"`
	Items           Items           `json:"items" db:"items"`
	Total           decimal.Decimal `json:"total" db:"total"`
	Status          Status          `json:"status" db:"status"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// Result is the outcome of PlaceOrder. Failures carry a human readable
// message instead of an error value.
type Result struct {
	OK    bool   `json:"ok"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
}

func Failed(message string) Result {
	return Result{OK: false, Error: message}
}
