package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanu-sports/storefront/internal/domain"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }
func intPtr(i int) *int         { return &i }
func boolPtr(b bool) *bool      { return &b }

func TestProductService_Create_Validation(t *testing.T) {
	repo := newMockProductRepo()
	svc := NewProductService(repo)

	err := svc.Create(context.Background(), &domain.Product{Name: "Scrum Cap", Price: 0, Stock: 5})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	err = svc.Create(context.Background(), &domain.Product{Name: "Scrum Cap", Price: 40, Stock: -1})
	assert.ErrorIs(t, err, ErrInvalidStock)

	err = svc.Create(context.Background(), &domain.Product{Name: "Scrum Cap", Price: 40, DiscountPrice: f64Ptr(50), Stock: 5})
	assert.ErrorIs(t, err, ErrInvalidDiscount)

	p := &domain.Product{ID: "p1", Name: "Scrum Cap", Price: 40, DiscountPrice: f64Ptr(35), Stock: 5}
	require.NoError(t, svc.Create(context.Background(), p))
	assert.True(t, p.IsActive)
}

func TestProductService_Update_MapsFieldsToStoredNames(t *testing.T) {
	repo := newMockProductRepo(&domain.Product{ID: "p1", Name: "Scrum Cap", Price: 40, Stock: 5})
	svc := NewProductService(repo)

	updated, err := svc.Update(context.Background(), "p1", ProductUpdate{
		Name:          strPtr("Pro Scrum Cap"),
		Price:         f64Ptr(45),
		DiscountPrice: f64Ptr(39),
		Stock:         intPtr(12),
		IsActive:      boolPtr(false),
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{
		"name":           "Pro Scrum Cap",
		"price":          45.0,
		"discount_price": 39.0,
		"stock":          12,
		"is_active":      false,
	}, repo.lastUpdate)

	assert.Equal(t, "Pro Scrum Cap", updated.Name)
	require.NotNil(t, updated.DiscountPrice)
	assert.Equal(t, 39.0, *updated.DiscountPrice)
}

func TestProductService_Update_DiscountNeverExceedsPrice(t *testing.T) {
	repo := newMockProductRepo(&domain.Product{ID: "p1", Name: "Scrum Cap", Price: 40, Stock: 5})
	svc := NewProductService(repo)

	_, err := svc.Update(context.Background(), "p1", ProductUpdate{DiscountPrice: f64Ptr(45)})
	assert.ErrorIs(t, err, ErrInvalidDiscount)
	assert.Nil(t, repo.lastUpdate, "rejected update must not reach the repository")

	// Setting both sides in one request is judged on the new values.
	_, err = svc.Update(context.Background(), "p1", ProductUpdate{Price: f64Ptr(30), DiscountPrice: f64Ptr(35)})
	assert.ErrorIs(t, err, ErrInvalidDiscount)

	_, err = svc.Update(context.Background(), "p1", ProductUpdate{DiscountPrice: f64Ptr(35)})
	require.NoError(t, err)

	// Lowering the list price below the standing discount is rejected too.
	_, err = svc.Update(context.Background(), "p1", ProductUpdate{Price: f64Ptr(30)})
	assert.ErrorIs(t, err, ErrInvalidDiscount)
}

func TestProductService_Update_NonPositiveDiscountClears(t *testing.T) {
	repo := newMockProductRepo(&domain.Product{ID: "p1", Name: "Scrum Cap", Price: 40, DiscountPrice: f64Ptr(35), Stock: 5})
	svc := NewProductService(repo)

	updated, err := svc.Update(context.Background(), "p1", ProductUpdate{DiscountPrice: f64Ptr(0)})
	require.NoError(t, err)
	assert.Nil(t, updated.DiscountPrice)

	val, present := repo.lastUpdate["discount_price"]
	require.True(t, present)
	assert.Nil(t, val)
}

func TestProductService_Update_RejectsNegativeStock(t *testing.T) {
	repo := newMockProductRepo(&domain.Product{ID: "p1", Name: "Scrum Cap", Price: 40, Stock: 5})
	svc := NewProductService(repo)

	_, err := svc.Update(context.Background(), "p1", ProductUpdate{Stock: intPtr(-1)})
	assert.ErrorIs(t, err, ErrInvalidStock)

	_, err = svc.Update(context.Background(), "p1", ProductUpdate{Price: f64Ptr(0)})
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestProductService_Update_NoFieldsIsANoop(t *testing.T) {
	repo := newMockProductRepo(&domain.Product{ID: "p1", Name: "Scrum Cap", Price: 40, Stock: 5})
	svc := NewProductService(repo)

	updated, err := svc.Update(context.Background(), "p1", ProductUpdate{})
	require.NoError(t, err)
	assert.Equal(t, "Scrum Cap", updated.Name)
	assert.Nil(t, repo.lastUpdate)
}
