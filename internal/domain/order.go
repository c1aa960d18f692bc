package domain

import (
	"fmt"
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentPayPal       PaymentMethod = "paypal"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCreditCard, PaymentPayPal, PaymentBankTransfer:
		return true
	}
	return false
}

type RefundStatus string

const (
	RefundNone      RefundStatus = "none"
	RefundPending   RefundStatus = "pending"
	RefundCompleted RefundStatus = "completed"
)

type Address struct {
	Street  string `bson:"street" json:"street"`
	City    string `bson:"city" json:"city"`
	State   string `bson:"state" json:"state"`
	ZipCode string `bson:"zip_code" json:"zipCode"`
	Country string `bson:"country" json:"country"`
}

// OrderItem is a snapshot of a cart line taken at order creation, decoupled
// from the live product so later price or name changes don't rewrite history.
type OrderItem struct {
	ProductID     string            `bson:"product_id" json:"productId"`
	Name          string            `bson:"name" json:"name"`
	Quantity      int               `bson:"quantity" json:"quantity"`
	Price         float64           `bson:"price" json:"price"`
	Size          string            `bson:"size,omitempty" json:"size,omitempty"`
	Color         string            `bson:"color,omitempty" json:"color,omitempty"`
	Customization map[string]string `bson:"customization,omitempty" json:"customization,omitempty"`
}

// PaymentResult is the opaque blob returned by the payment provider. The
// service stores it verbatim; verifying it is the gateway's job, not ours.
type PaymentResult struct {
	ID           string `bson:"id,omitempty" json:"id,omitempty"`
	Status       string `bson:"status,omitempty" json:"status,omitempty"`
	UpdateTime   string `bson:"update_time,omitempty" json:"update_time,omitempty"`
	EmailAddress string `bson:"email_address,omitempty" json:"email_address,omitempty"`
}

type Order struct {
	ID              string         `bson:"_id,omitempty" json:"id"`
	UserID          string         `bson:"user_id" json:"userId"`
	Items           []OrderItem    `bson:"items" json:"items"`
	ShippingAddress Address        `bson:"shipping_address" json:"shippingAddress"`
	BillingAddress  Address        `bson:"billing_address" json:"billingAddress"`
	PaymentMethod   PaymentMethod  `bson:"payment_method" json:"paymentMethod"`
	PaymentResult   *PaymentResult `bson:"payment_result,omitempty" json:"paymentResult,omitempty"`
	Subtotal        float64        `bson:"subtotal" json:"subtotal"`
	TaxAmount       float64        `bson:"tax_amount" json:"taxAmount"`
	ShippingAmount  float64        `bson:"shipping_amount" json:"shippingAmount"`
	TotalAmount     float64        `bson:"total_amount" json:"totalAmount"`
	OrderStatus     OrderStatus    `bson:"order_status" json:"orderStatus"`
	IsPaid          bool           `bson:"is_paid" json:"isPaid"`
	PaidAt          *time.Time     `bson:"paid_at,omitempty" json:"paidAt,omitempty"`
	IsShipped       bool           `bson:"is_shipped" json:"isShipped"`
	ShippedAt       *time.Time     `bson:"shipped_at,omitempty" json:"shippedAt,omitempty"`
	IsDelivered     bool           `bson:"is_delivered" json:"isDelivered"`
	DeliveredAt     *time.Time     `bson:"delivered_at,omitempty" json:"deliveredAt,omitempty"`
	TrackingNumber  string         `bson:"tracking_number,omitempty" json:"trackingNumber,omitempty"`
	ShippingCarrier string         `bson:"shipping_carrier,omitempty" json:"shippingCarrier,omitempty"`
	Notes           string         `bson:"notes,omitempty" json:"notes,omitempty"`
	CancelReason    string         `bson:"cancel_reason,omitempty" json:"cancelReason,omitempty"`
	RefundStatus    RefundStatus   `bson:"refund_status" json:"refundStatus"`
	RefundAmount    float64        `bson:"refund_amount,omitempty" json:"refundAmount,omitempty"`
	RefundedAt      *time.Time     `bson:"refunded_at,omitempty" json:"refundedAt,omitempty"`
	CreatedAt       time.Time      `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time      `bson:"updated_at" json:"updatedAt"`
}

// OrderNumber is a short human-facing reference derived from the id suffix.
func (o *Order) OrderNumber() string {
	id := o.ID
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return fmt.Sprintf("ORD-%s", strings.ToUpper(id))
}

// CanCancel reports whether the order may still be cancelled. Once an order
// ships, or has already been cancelled, it cannot.
func (o *Order) CanCancel() bool {
	return o.OrderStatus == OrderStatusPending || o.OrderStatus == OrderStatusProcessing
}

// CanTransitionTo encodes the fulfilment state machine:
// pending -> processing -> shipped -> delivered, with cancellation possible
// until the order ships.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusProcessing || target == OrderStatusCancelled
	case OrderStatusProcessing:
		return target == OrderStatusShipped || target == OrderStatusCancelled
	case OrderStatusShipped:
		return target == OrderStatusDelivered
	default: // delivered and cancelled are terminal
		return false
	}
}

// ApplyStatus moves the order to the given status and applies the transition
// side effects: processing stamps paidAt for paid orders, shipped and
// delivered set their flags and timestamps.
func (o *Order) ApplyStatus(status OrderStatus, now time.Time) {
	o.OrderStatus = status

	switch status {
	case OrderStatusProcessing:
		if o.IsPaid && o.PaidAt == nil {
			o.PaidAt = &now
		}
	case OrderStatusShipped:
		o.IsShipped = true
		o.ShippedAt = &now
	case OrderStatusDelivered:
		o.IsDelivered = true
		o.DeliveredAt = &now
	}
	o.UpdatedAt = now
}
