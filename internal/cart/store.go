// Package cart holds a shopper's in-progress selection. It is the
// client-process counterpart of the order service: a synchronous,
// single-session store whose monetary summary is always derived from the
// current lines, never cached.
package cart

import (
	"errors"

	"github.com/hanu-sports/storefront/internal/domain"
	"github.com/rs/zerolog"
)

const (
	// TaxRate applied to the subtotal.
	TaxRate = 0.10
	// FlatShipping is charged whenever the cart is non-empty.
	FlatShipping = 10.0
)

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// Line is one cart entry. UnitPrice is the display price frozen when the
// shopper added the item; the server independently reprices at order time and
// its price is authoritative.
type Line struct {
	Key           string            `json:"key"`
	ProductID     string            `json:"productId"`
	Name          string            `json:"name"`
	UnitPrice     float64           `json:"unitPrice"`
	Quantity      int               `json:"quantity"`
	Size          string            `json:"size,omitempty"`
	Color         string            `json:"color,omitempty"`
	Customization map[string]string `json:"customization,omitempty"`
}

// Saver persists the cart after each mutation. A failed save is logged and
// otherwise ignored: the in-memory lines stay authoritative for the session.
type Saver interface {
	Save(lines []Line) error
}

// Store is an ordered set of lines keyed by variant identity. It is scoped to
// one shopper session and is not safe for concurrent use.
type Store struct {
	lines  []Line
	saver  Saver
	logger zerolog.Logger
}

func NewStore(saver Saver, logger zerolog.Logger) *Store {
	return &Store{saver: saver, logger: logger}
}

// NewStoreFrom restores a store from previously saved lines.
func NewStoreFrom(lines []Line, saver Saver, logger zerolog.Logger) *Store {
	s := NewStore(saver, logger)
	s.lines = append(s.lines, lines...)
	return s
}

// Add merges the product variant into the cart: an existing line with the
// same identity key has its quantity incremented, otherwise a new line is
// appended. Quantities below 1 are clamped to 1.
func (s *Store) Add(p *domain.Product, quantity int, size, color string, customization map[string]string) {
	if quantity < 1 {
		quantity = 1
	}

	key := domain.LineKey(p.ID, size, color, customization)
	for i := range s.lines {
		if s.lines[i].Key == key {
			s.lines[i].Quantity += quantity
			s.persist()
			return
		}
	}

	s.lines = append(s.lines, Line{
		Key:           key,
		ProductID:     p.ID,
		Name:          p.Name,
		UnitPrice:     p.EffectivePrice(),
		Quantity:      quantity,
		Size:          size,
		Color:         color,
		Customization: customization,
	})
	s.persist()
}

// Remove deletes the line with the given key. Removing an absent key is a
// no-op.
func (s *Store) Remove(key string) {
	for i := range s.lines {
		if s.lines[i].Key == key {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			s.persist()
			return
		}
	}
}

// UpdateQuantity sets the quantity of an existing line. Quantities below 1
// are rejected: setting a line to zero is not removal, callers must use
// Remove for that. An unknown key is a no-op.
func (s *Store) UpdateQuantity(key string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	for i := range s.lines {
		if s.lines[i].Key == key {
			s.lines[i].Quantity = quantity
			s.persist()
			return nil
		}
	}
	return nil
}

// Clear empties the cart. Called after a successful order placement.
func (s *Store) Clear() {
	s.lines = nil
	s.persist()
}

// Lines returns the cart contents in insertion order.
func (s *Store) Lines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Store) Subtotal() float64 {
	sum := 0.0
	for _, l := range s.lines {
		sum += l.UnitPrice * float64(l.Quantity)
	}
	return sum
}

func (s *Store) Tax() float64 {
	return s.Subtotal() * TaxRate
}

func (s *Store) Shipping() float64 {
	if s.Subtotal() > 0 {
		return FlatShipping
	}
	return 0
}

func (s *Store) Total() float64 {
	return s.Subtotal() + s.Tax() + s.Shipping()
}

// ItemCount is the sum of all line quantities.
func (s *Store) ItemCount() int {
	count := 0
	for _, l := range s.lines {
		count += l.Quantity
	}
	return count
}

func (s *Store) persist() {
	if s.saver == nil {
		return
	}
	if err := s.saver.Save(s.Lines()); err != nil {
		s.logger.Warn().Err(err).Msg("failed to persist cart")
	}
}
