package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPrice    = errors.New("old price must be present and not negative")
	ErrInvalidDiscount = errors.New("discount cannot be greater than the old price")
)

// Game is a catalog entry. Values are built with NewGame or Replace and
// priced with WithCurrentPrice; callers never set CurrentPrice directly.
type Game struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null;uniqueIndex:idx_games_name" json:"name"`
	Description  string    `gorm:"not null" json:"description"`
	ReleaseDate  string    `gorm:"not null" json:"releaseDate"`
	Discount     *float64  `json:"discount"`
	OldPrice     *float64  `gorm:"not null" json:"oldPrice"`
	CurrentPrice float64   `gorm:"not null" json:"currentPrice"`
	Category     string    `json:"category"`
	Platform     string    `json:"platform"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// GameInput is the client-writable part of a Game, used for create and update.
type GameInput struct {
	Name        string   `json:"name" validate:"required,notblank"`
	Description string   `json:"description" validate:"required,notblank"`
	ReleaseDate string   `json:"releaseDate" validate:"required,notblank"`
	Discount    *float64 `json:"discount" validate:"omitempty,gte=0"`
	OldPrice    *float64 `json:"oldPrice" validate:"omitempty,gte=0"`
	Category    string   `json:"category"`
	Platform    string   `json:"platform"`
}

// NewGame builds an unsaved, unpriced record from client input.
func NewGame(in GameInput) Game {
	return Game{
		Name:        in.Name,
		Description: in.Description,
		ReleaseDate: in.ReleaseDate,
		Discount:    cloneFloat(in.Discount),
		OldPrice:    cloneFloat(in.OldPrice),
		Category:    in.Category,
		Platform:    in.Platform,
	}
}

// Replace returns the full replacement of g described by in. The identity
// and creation time of g are kept; everything else comes from in.
func (g Game) Replace(in GameInput) Game {
	next := NewGame(in)
	next.ID = g.ID
	next.CreatedAt = g.CreatedAt
	return next
}

// WithCurrentPrice returns a copy of g whose CurrentPrice is derived from
// OldPrice and Discount.
func (g Game) WithCurrentPrice() (Game, error) {
	price, err := ApplyPriceRule(g.OldPrice, g.Discount)
	if err != nil {
		return Game{}, err
	}
	g.CurrentPrice = price
	return g, nil
}

// ApplyPriceRule computes oldPrice - discount. A missing or negative
// discount counts as zero.
func ApplyPriceRule(oldPrice, discount *float64) (float64, error) {
	if oldPrice == nil || *oldPrice < 0 {
		return 0, ErrInvalidPrice
	}

	old := decimal.NewFromFloat(*oldPrice)
	off := decimal.Zero
	if discount != nil && *discount > 0 {
		off = decimal.NewFromFloat(*discount)
	}

	if off.GreaterThan(old) {
		return 0, ErrInvalidDiscount
	}

	return old.Sub(off).InexactFloat64(), nil
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
