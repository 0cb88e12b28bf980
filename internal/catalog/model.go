package catalog

import (
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/dinartr/storefront/internal/datastore"
)

type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Title       string          `json:"title" db:"title"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	ImageURL    string          `json:"image_url" db:"image_url"`
	CategoryID  uuid.NullUUID   `json:"category_id" db:"category_id"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// CategoryPage is a category together with the products filed under it.
type CategoryPage struct {
	Category
	Products []Product `json:"products"`
}

type Banner struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ImageURL  string    `json:"image_url" db:"image_url"`
	Title     string    `json:"title" db:"title"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ServiceEntry is an offered service, addressed publicly by its slug.
type ServiceEntry struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Brief       string    `json:"brief" db:"brief"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ProductInput is the admin form for a product. An empty CategoryID stores
// NULL; a zero Price stores 0.
type ProductInput struct {
	Title       string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	CategoryID  string
}

func (in ProductInput) record() (datastore.Record, error) {
	rec := datastore.Record{
		"title":       strings.TrimSpace(in.Title),
		"description": in.Description,
		"price":       in.Price,
		"image_url":   strings.TrimSpace(in.ImageURL),
		"category_id": nil,
	}
	if c := strings.TrimSpace(in.CategoryID); c != "" {
		id, err := uuid.FromString(c)
		if err != nil {
			return nil, ErrUnknownCategory
		}
		rec["category_id"] = id
	}
	return rec, nil
}

type CategoryInput struct {
	Name        string
	Description string
	ImageURL    string
}

func (in CategoryInput) record() datastore.Record {
	return datastore.Record{
		"name":        strings.TrimSpace(in.Name),
		"description": in.Description,
		"image_url":   strings.TrimSpace(in.ImageURL),
	}
}

type BannerInput struct {
	ImageURL string
	Title    string
}

func (in BannerInput) record() datastore.Record {
	return datastore.Record{
		"image_url": strings.TrimSpace(in.ImageURL),
		"title":     in.Title,
	}
}

type ServiceInput struct {
	Title       string
	Brief       string
	Slug        string
	Description string
	ImageURL    string
}

func (in ServiceInput) record() datastore.Record {
	return datastore.Record{
		"title":       strings.TrimSpace(in.Title),
		"brief":       in.Brief,
		"slug":        strings.TrimSpace(in.Slug),
		"description": in.Description,
		"image_url":   strings.TrimSpace(in.ImageURL),
	}
}
