package model

import (
	"time"

	"gorm.io/gorm"
)

// Subscription mirrors the authoritative Stripe subscription state into
// the local database. Rows are written only by the sync workflow and the
// webhook handler, keyed by the Stripe subscription ID.
type Subscription struct {
	gorm.Model
	UserID               uint       `json:"user_id" gorm:"index;not null"`
	StripeSubscriptionID string     `json:"stripe_subscription_id" gorm:"uniqueIndex;not null"`
	StripeCustomerID     string     `json:"stripe_customer_id" gorm:"index"`
	Status               string     `json:"status"` // active, trialing, canceled, expired, ...
	PriceID              string     `json:"price_id"`
	ProductID            string     `json:"product_id"`
	CurrentPeriodStart   *time.Time `json:"current_period_start"`
	CurrentPeriodEnd     *time.Time `json:"current_period_end" gorm:"index"`
	CancelAtPeriodEnd    bool       `json:"cancel_at_period_end" gorm:"default:false"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}

// Order statuses. Every writer uses these; ad-hoc status strings would
// break the revenue aggregation.
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
)

// Order records one completed payment. Immutable once created except for
// the refund fields and the checkout session backfill; the unique payment
// intent index keeps repeated syncs from inserting duplicates.
type Order struct {
	gorm.Model
	UserID                  uint    `json:"user_id" gorm:"index;not null"`
	StripeCustomerID        string  `json:"stripe_customer_id"`
	StripePaymentIntentID   string  `json:"stripe_payment_intent_id" gorm:"uniqueIndex;not null"`
	StripeCheckoutSessionID *string `json:"stripe_checkout_session_id"`
	Amount                  int64   `json:"amount"` // smallest currency unit
	Currency                string  `json:"currency" gorm:"default:'usd'"`
	Status                  string  `json:"status" gorm:"default:'pending'"` // pending, completed
	ProductName             string  `json:"product_name"`
	Refunded                bool    `json:"refunded" gorm:"default:false"`
	RefundAmount            int64   `json:"refund_amount" gorm:"default:0"`

	User User `json:"-" gorm:"foreignKey:UserID"`
}
