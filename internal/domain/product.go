package domain

import "time"

// Categories the catalog recognizes.
var ProductCategories = []string{"rugby", "volleyball", "field-hockey", "track-field", "soccer", "off-field"}

type Review struct {
	UserID    string    `bson:"user_id" json:"userId"`
	Name      string    `bson:"name" json:"name"`
	Rating    int       `bson:"rating" json:"rating"`
	Comment   string    `bson:"comment" json:"comment"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

type Product struct {
	ID                   string            `bson:"_id,omitempty" json:"id"`
	Name                 string            `bson:"name" json:"name"`
	Description          string            `bson:"description" json:"description"`
	Category             string            `bson:"category" json:"category"`
	Subcategory          string            `bson:"subcategory" json:"subcategory"`
	Price                float64           `bson:"price" json:"price"`
	DiscountPrice        *float64          `bson:"discount_price,omitempty" json:"discountPrice,omitempty"`
	Stock                int               `bson:"stock" json:"stock"`
	Images               []string          `bson:"images" json:"images"`
	Rating               float64           `bson:"rating" json:"rating"`
	NumReviews           int               `bson:"num_reviews" json:"numReviews"`
	Reviews              []Review          `bson:"reviews,omitempty" json:"reviews,omitempty"`
	Sizes                []string          `bson:"sizes,omitempty" json:"sizes,omitempty"`
	Colors               []string          `bson:"colors,omitempty" json:"colors,omitempty"`
	Features             []string          `bson:"features,omitempty" json:"features,omitempty"`
	Customizable         bool              `bson:"customizable" json:"customizable"`
	CustomizationOptions map[string]string `bson:"customization_options,omitempty" json:"customizationOptions,omitempty"`
	Brand                string            `bson:"brand" json:"brand"`
	SKU                  string            `bson:"sku" json:"sku"`
	Tags                 []string          `bson:"tags,omitempty" json:"tags,omitempty"`
	IsActive             bool              `bson:"is_active" json:"isActive"`
	CreatedAt            time.Time         `bson:"created_at" json:"createdAt"`
	UpdatedAt            time.Time         `bson:"updated_at" json:"updatedAt"`
}

// EffectivePrice is the price used when an order is created: the discount
// price when one is set, the list price otherwise. Resolved fresh at order
// time, never from a value captured in the cart.
func (p *Product) EffectivePrice() float64 {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

// RecalculateRating recomputes the aggregate rating from the review list.
func (p *Product) RecalculateRating() {
	if len(p.Reviews) == 0 {
		p.Rating = 0
		p.NumReviews = 0
		return
	}
	sum := 0
	for _, r := range p.Reviews {
		sum += r.Rating
	}
	p.Rating = float64(sum) / float64(len(p.Reviews))
	p.NumReviews = len(p.Reviews)
}
