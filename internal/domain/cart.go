package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type Cart struct {
	ID        string     `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    string     `bson:"user_id" json:"userId"`
	Items     []CartItem `bson:"items" json:"items"`
	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updatedAt"`
}

type CartItem struct {
	// ItemKey is the stored copy of Key(), kept on the document so array
	// updates can address one variant line.
	ItemKey       string            `bson:"item_key" json:"key"`
	ProductID     string            `bson:"product_id" json:"productId"`
	Quantity      int               `bson:"quantity" json:"quantity"`
	Size          string            `bson:"size,omitempty" json:"size,omitempty"`
	Color         string            `bson:"color,omitempty" json:"color,omitempty"`
	Customization map[string]string `bson:"customization,omitempty" json:"customization,omitempty"`
	AddedAt       time.Time         `bson:"added_at" json:"addedAt"`
}

// Key is the variant identity of the item: two items agree on Key exactly
// when they reference the same product in the same size, color and
// customization. Customization entries are serialized in sorted key order so
// map iteration order can't split identical variants.
func (i CartItem) Key() string {
	return LineKey(i.ProductID, i.Size, i.Color, i.Customization)
}

// LineKey builds the identity key for a (product, size, color, customization)
// variant.
func LineKey(productID, size, color string, customization map[string]string) string {
	var b strings.Builder
	b.WriteString(productID)
	b.WriteByte('|')
	b.WriteString(size)
	b.WriteByte('|')
	b.WriteString(color)
	if len(customization) > 0 {
		keys := make([]string, 0, len(customization))
		for k := range customization {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "|%s=%s", k, customization[k])
		}
	}
	return b.String()
}
