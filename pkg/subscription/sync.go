package subscription

import (
	"log"
	"time"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/customer"
	"github.com/stripe/stripe-go/v74/product"
	stripesub "github.com/stripe/stripe-go/v74/subscription"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cteskills_backend/internal/model"
)

// Service reconciles Stripe subscription state into the local tables:
// the subscriptions mirror, per-pathway access grants and order rows.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Result is the response of a sync run.
type Result struct {
	Synced         bool   `json:"synced"`
	SubscriptionID string `json:"subscription_id,omitempty"`
	Message        string `json:"message"`
}

// Status is the read-side subscription view used for UI gating. Built
// entirely from Stripe state; computing it performs no writes.
type Status struct {
	Subscribed          bool    `json:"subscribed"`
	SubscriptionStatus  string  `json:"subscription_status,omitempty"`
	ProductID           string  `json:"product_id,omitempty"`
	ProductName         string  `json:"product_name,omitempty"`
	PriceID             string  `json:"price_id,omitempty"`
	Plan                Plan    `json:"plan,omitempty"`
	SubscriptionEnd     *string `json:"subscription_end"`
	SubscriptionEndUnix int64   `json:"subscription_end_unix,omitempty"`
	StripeCustomerID    string  `json:"stripe_customer_id,omitempty"`
}

// lookupCustomerID returns the Stripe customer ID for a user: the cached
// profile value when present, otherwise an email lookup. Empty result
// with nil error means no customer exists, which is a normal state.
func (s *Service) lookupCustomerID(user *model.User) (string, error) {
	if user.StripeCustomerID != "" {
		return user.StripeCustomerID, nil
	}

	params := &stripe.CustomerListParams{Email: stripe.String(user.Email)}
	params.Limit = stripe.Int64(1)

	it := customer.List(params)
	if it.Next() {
		return it.Customer().ID, nil
	}
	if err := it.Err(); err != nil {
		return "", err
	}
	return "", nil
}

// listSubscriptions fetches up to 100 of the customer's subscriptions
// with the latest invoice expanded.
func (s *Service) listSubscriptions(customerID string) ([]*stripe.Subscription, error) {
	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(customerID),
		Status:   stripe.String("all"),
	}
	params.Limit = stripe.Int64(100)
	params.AddExpand("data.latest_invoice")

	var subs []*stripe.Subscription
	it := stripesub.List(params)
	for it.Next() {
		subs = append(subs, it.Subscription())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}

// Check computes the current subscription view without touching local
// storage.
func (s *Service) Check(user *model.User) (*Status, error) {
	customerID, err := s.lookupCustomerID(user)
	if err != nil {
		return nil, err
	}
	if customerID == "" {
		log.Printf("[CHECK-SUBSCRIPTION] no customer for %s, returning unsubscribed state", user.Email)
		return &Status{Subscribed: false}, nil
	}

	subs, err := s.listSubscriptions(customerID)
	if err != nil {
		return nil, err
	}

	selected := SelectCurrent(subs)
	if selected == nil {
		return &Status{Subscribed: false, StripeCustomerID: customerID}, nil
	}

	status := &Status{
		Subscribed:         true,
		SubscriptionStatus: string(selected.Status),
		StripeCustomerID:   customerID,
	}

	if end := NormalizeEpoch(selected.CurrentPeriodEnd); !end.IsZero() {
		iso := end.Format(time.RFC3339)
		status.SubscriptionEnd = &iso
		status.SubscriptionEndUnix = selected.CurrentPeriodEnd
	}

	if item := firstItem(selected); item != nil && item.Price != nil {
		status.PriceID = item.Price.ID
		status.Plan = PlanForPrice(item.Price.ID)
		if item.Price.Product != nil {
			status.ProductID = item.Price.Product.ID

			// Product name is cosmetic; a lookup failure must not fail
			// the whole check.
			if p, err := product.Get(item.Price.Product.ID, nil); err != nil {
				log.Printf("[CHECK-SUBSCRIPTION] could not fetch product %s: %v", item.Price.Product.ID, err)
			} else {
				status.ProductName = p.Name
			}
		}
	}

	return status, nil
}

// Sync mirrors the user's authoritative Stripe subscription into local
// tables and grants pathway access. Steps are independent round trips;
// the first error aborts the remaining steps without rolling back the
// ones already applied.
func (s *Service) Sync(user *model.User) (*Result, error) {
	customerID, err := s.lookupCustomerID(user)
	if err != nil {
		return nil, err
	}
	if customerID == "" {
		return &Result{Synced: false, Message: "No Stripe customer found"}, nil
	}

	// Cache the resolved customer ID on the profile. Best-effort.
	if user.StripeCustomerID != customerID {
		if err := s.db.Model(&model.User{}).Where("id = ?", user.ID).
			Update("stripe_customer_id", customerID).Error; err != nil {
			log.Printf("[SYNC-SUBSCRIPTION] could not cache customer id for user %d: %v", user.ID, err)
		}
	}

	subs, err := s.listSubscriptions(customerID)
	if err != nil {
		return nil, err
	}

	selected := SelectCurrent(subs)
	if selected == nil {
		log.Printf("[SYNC-SUBSCRIPTION] no active subscription for customer %s", customerID)
		return &Result{Synced: false, Message: "No active subscription"}, nil
	}

	periodStart := NormalizeEpoch(selected.CurrentPeriodStart)
	periodEnd := NormalizeEpoch(selected.CurrentPeriodEnd)

	if err := s.upsertSubscription(user, customerID, selected, periodStart, periodEnd); err != nil {
		return nil, err
	}

	if err := s.grantPathwayAccess(user.ID, periodEnd); err != nil {
		return nil, err
	}

	if err := s.recordOrderFromInvoice(user, customerID, selected); err != nil {
		return nil, err
	}

	log.Printf("[SYNC-SUBSCRIPTION] synced %s for user %d", selected.ID, user.ID)
	return &Result{
		Synced:         true,
		SubscriptionID: selected.ID,
		Message:        "Subscription data synced successfully",
	}, nil
}

func (s *Service) upsertSubscription(user *model.User, customerID string, sub *stripe.Subscription, periodStart, periodEnd time.Time) error {
	row := model.Subscription{
		UserID:               user.ID,
		StripeSubscriptionID: sub.ID,
		StripeCustomerID:     customerID,
		Status:               string(sub.Status),
		CancelAtPeriodEnd:    sub.CancelAtPeriodEnd,
	}
	if item := firstItem(sub); item != nil && item.Price != nil {
		row.PriceID = item.Price.ID
		if item.Price.Product != nil {
			row.ProductID = item.Price.Product.ID
		}
	}
	if !periodStart.IsZero() {
		row.CurrentPeriodStart = &periodStart
	}
	if !periodEnd.IsZero() {
		row.CurrentPeriodEnd = &periodEnd
	}

	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "stripe_subscription_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"user_id", "stripe_customer_id", "status", "price_id", "product_id",
			"current_period_start", "current_period_end", "cancel_at_period_end", "updated_at",
		}),
	}).Create(&row).Error
}

// grantPathwayAccess upserts one access row per active pathway, keyed on
// (user_id, pathway_id), so concurrent syncs for the same user cannot
// double-insert or lose an expiry update.
func (s *Service) grantPathwayAccess(userID uint, periodEnd time.Time) error {
	var pathways []model.Pathway
	if err := s.db.Where("is_active = ?", true).Find(&pathways).Error; err != nil {
		return err
	}

	var expiresAt *time.Time
	if !periodEnd.IsZero() {
		expiresAt = &periodEnd
	}

	for _, pathway := range pathways {
		access := model.VideoAccess{
			UserID:     userID,
			PathwayID:  pathway.ID,
			AccessType: "subscription",
			ExpiresAt:  expiresAt,
		}
		err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "pathway_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"expires_at", "updated_at"}),
		}).Create(&access).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// recordOrderFromInvoice creates an order row for the subscription's
// latest invoice. Skips invoices without a payment intent; the unique
// payment intent index makes repeated syncs idempotent.
func (s *Service) recordOrderFromInvoice(user *model.User, customerID string, sub *stripe.Subscription) error {
	invoice := sub.LatestInvoice
	if invoice == nil {
		return nil
	}

	paymentIntentID := ""
	if invoice.PaymentIntent != nil {
		paymentIntentID = invoice.PaymentIntent.ID
	}
	if paymentIntentID == "" {
		log.Printf("[SYNC-SUBSCRIPTION] invoice %s has no payment intent, skipping order", invoice.ID)
		return nil
	}

	status := orderStatus(invoice.Status)

	productName := "Subscription"
	if item := firstItem(sub); item != nil && item.Price != nil && item.Price.Nickname != "" {
		productName = item.Price.Nickname
	}

	currency := "usd"
	if invoice.Currency != "" {
		currency = string(invoice.Currency)
	}

	order := model.Order{
		UserID:                user.ID,
		StripeCustomerID:      customerID,
		StripePaymentIntentID: paymentIntentID,
		Amount:                invoice.AmountPaid,
		Currency:              currency,
		Status:                status,
		ProductName:           productName,
	}

	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stripe_payment_intent_id"}},
		DoNothing: true,
	}).Create(&order).Error
}

// orderStatus maps an invoice status onto the order status vocabulary.
func orderStatus(invoiceStatus stripe.InvoiceStatus) string {
	if invoiceStatus == stripe.InvoiceStatusPaid {
		return model.OrderStatusCompleted
	}
	return model.OrderStatusPending
}

// AttachCheckoutSession backfills the checkout session ID onto the order
// created for its payment intent.
func (s *Service) AttachCheckoutSession(paymentIntentID, sessionID string) error {
	return s.db.Model(&model.Order{}).
		Where("stripe_payment_intent_id = ?", paymentIntentID).
		Update("stripe_checkout_session_id", sessionID).Error
}

// RenewalBillingReason reports whether an invoice billing reason marks a
// renewal rather than a first payment.
func RenewalBillingReason(reason string) bool {
	return reason == "subscription_cycle"
}

func firstItem(sub *stripe.Subscription) *stripe.SubscriptionItem {
	if sub == nil || sub.Items == nil || len(sub.Items.Data) == 0 {
		return nil
	}
	return sub.Items.Data[0]
}
