package service

import (
	"context"
	"time"

	"github.com/hanu-sports/storefront/internal/domain"
	"github.com/hanu-sports/storefront/internal/repository"
)

// ProductService fronts the catalog repository and enforces the
// one-review-per-user rule.
type ProductService struct {
	products repository.ProductRepository
}

func NewProductService(products repository.ProductRepository) *ProductService {
	return &ProductService{products: products}
}

func (s *ProductService) List(ctx context.Context, filter repository.ProductFilter) (*repository.ProductPage, error) {
	return s.products.ListProducts(ctx, filter)
}

func (s *ProductService) ListByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	return s.products.ListByCategory(ctx, category)
}

func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.GetProduct(ctx, id)
}

func (s *ProductService) Create(ctx context.Context, p *domain.Product) error {
	if p.Price <= 0 {
		return ErrInvalidPrice
	}
	if p.Stock < 0 {
		return ErrInvalidStock
	}
	if p.DiscountPrice != nil && *p.DiscountPrice > p.Price {
		return ErrInvalidDiscount
	}
	p.IsActive = true
	return s.products.CreateProduct(ctx, p)
}

// ProductUpdate carries the admin-editable catalog fields. Nil leaves a field
// as it is; a DiscountPrice of zero or less clears the discount.
type ProductUpdate struct {
	Name                 *string
	Description          *string
	Category             *string
	Subcategory          *string
	Price                *float64
	DiscountPrice        *float64
	Stock                *int
	Images               *[]string
	Sizes                *[]string
	Colors               *[]string
	Features             *[]string
	Tags                 *[]string
	Customizable         *bool
	CustomizationOptions *map[string]string
	Brand                *string
	SKU                  *string
	IsActive             *bool
}

// Update validates the requested changes against the current document, then
// translates them to their stored field names. Only the fields listed on
// ProductUpdate can be written; the pricing invariant (discount never above
// the list price) holds whichever of the two sides the update moves.
func (s *ProductService) Update(ctx context.Context, id string, upd ProductUpdate) (*domain.Product, error) {
	current, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	price := current.Price
	if upd.Price != nil {
		if *upd.Price <= 0 {
			return nil, ErrInvalidPrice
		}
		price = *upd.Price
	}
	discount := current.DiscountPrice
	if upd.DiscountPrice != nil {
		if *upd.DiscountPrice <= 0 {
			discount = nil
		} else {
			discount = upd.DiscountPrice
		}
	}
	if discount != nil && *discount > price {
		return nil, ErrInvalidDiscount
	}
	if upd.Stock != nil && *upd.Stock < 0 {
		return nil, ErrInvalidStock
	}

	fields := map[string]interface{}{}
	if upd.Name != nil {
		fields["name"] = *upd.Name
	}
	if upd.Description != nil {
		fields["description"] = *upd.Description
	}
	if upd.Category != nil {
		fields["category"] = *upd.Category
	}
	if upd.Subcategory != nil {
		fields["subcategory"] = *upd.Subcategory
	}
	if upd.Price != nil {
		fields["price"] = *upd.Price
	}
	if upd.DiscountPrice != nil {
		if discount == nil {
			fields["discount_price"] = nil
		} else {
			fields["discount_price"] = *discount
		}
	}
	if upd.Stock != nil {
		fields["stock"] = *upd.Stock
	}
	if upd.Images != nil {
		fields["images"] = *upd.Images
	}
	if upd.Sizes != nil {
		fields["sizes"] = *upd.Sizes
	}
	if upd.Colors != nil {
		fields["colors"] = *upd.Colors
	}
	if upd.Features != nil {
		fields["features"] = *upd.Features
	}
	if upd.Tags != nil {
		fields["tags"] = *upd.Tags
	}
	if upd.Customizable != nil {
		fields["customizable"] = *upd.Customizable
	}
	if upd.CustomizationOptions != nil {
		fields["customization_options"] = *upd.CustomizationOptions
	}
	if upd.Brand != nil {
		fields["brand"] = *upd.Brand
	}
	if upd.SKU != nil {
		fields["sku"] = *upd.SKU
	}
	if upd.IsActive != nil {
		fields["is_active"] = *upd.IsActive
	}

	if len(fields) == 0 {
		return current, nil
	}
	return s.products.UpdateProduct(ctx, id, fields)
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	return s.products.DeleteProduct(ctx, id)
}

func (s *ProductService) AddReview(ctx context.Context, productID string, user *domain.User, rating int, comment string) error {
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return err
	}

	for _, review := range product.Reviews {
		if review.UserID == user.ID {
			return ErrAlreadyReviewed
		}
	}

	return s.products.AddReview(ctx, productID, domain.Review{
		UserID:    user.ID,
		Name:      user.FullName(),
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now(),
	})
}
