package controller

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/charge"
	"github.com/stripe/stripe-go/v74/customer"
	"github.com/stripe/stripe-go/v74/refund"
	stripesub "github.com/stripe/stripe-go/v74/subscription"

	"cteskills_backend/internal/model"
	"cteskills_backend/pkg/database"
	"cteskills_backend/pkg/email"
)

type AdminCustomer struct {
	ID           string             `json:"id"`
	Email        string             `json:"email"`
	Name         string             `json:"name"`
	Created      int64              `json:"created"`
	Subscription *AdminSubscription `json:"subscription"`
	Charges      []AdminCharge      `json:"charges"`
}

type AdminSubscription struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	CurrentPeriodEnd  int64  `json:"current_period_end"`
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
}

type AdminCharge struct {
	ID            string `json:"id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Status        string `json:"status"`
	Refunded      bool   `json:"refunded"`
	PaymentIntent string `json:"payment_intent"`
	Created       int64  `json:"created"`
}

type RefundInput struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}

type AdminCancelInput struct {
	SubscriptionID string `json:"subscription_id" validate:"required"`
	Immediately    bool   `json:"immediately"`
}

// AdminListCustomers proxies the Stripe customer list, attaching each
// customer's latest subscription and recent charges.
func AdminListCustomers(c *fiber.Ctx) error {
	limit, err := strconv.ParseInt(c.Query("limit", "50"), 10, 64)
	if err != nil || limit <= 0 || limit > 100 {
		limit = 50
	}
	emailFilter := c.Query("email")

	params := &stripe.CustomerListParams{}
	params.Limit = stripe.Int64(limit)
	if emailFilter != "" {
		params.Email = stripe.String(emailFilter)
	}

	customers := []AdminCustomer{}
	it := customer.List(params)
	for it.Next() {
		cust := it.Customer()
		entry := AdminCustomer{
			ID:      cust.ID,
			Email:   cust.Email,
			Name:    cust.Name,
			Created: cust.Created,
			Charges: []AdminCharge{},
		}

		subParams := &stripe.SubscriptionListParams{
			Customer: stripe.String(cust.ID),
			Status:   stripe.String("all"),
		}
		subParams.Limit = stripe.Int64(1)
		subIt := stripesub.List(subParams)
		if subIt.Next() {
			sub := subIt.Subscription()
			entry.Subscription = &AdminSubscription{
				ID:                sub.ID,
				Status:            string(sub.Status),
				CurrentPeriodEnd:  sub.CurrentPeriodEnd,
				CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
			}
		}

		chargeParams := &stripe.ChargeListParams{
			Customer: stripe.String(cust.ID),
		}
		chargeParams.Limit = stripe.Int64(10)
		chargeIt := charge.List(chargeParams)
		for chargeIt.Next() {
			ch := chargeIt.Charge()
			entryCharge := AdminCharge{
				ID:       ch.ID,
				Amount:   ch.Amount,
				Currency: string(ch.Currency),
				Status:   string(ch.Status),
				Refunded: ch.Refunded,
				Created:  ch.Created,
			}
			if ch.PaymentIntent != nil {
				entryCharge.PaymentIntent = ch.PaymentIntent.ID
			}
			entry.Charges = append(entry.Charges, entryCharge)
		}

		customers = append(customers, entry)
	}
	if err := it.Err(); err != nil {
		log.Printf("Could not list Stripe customers: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not fetch customers",
		})
	}

	return c.JSON(fiber.Map{
		"customers": customers,
	})
}

// AdminRefund issues a full refund for a payment intent and marks the
// matching local order refunded.
func AdminRefund(c *fiber.Ctx) error {
	input := new(RefundInput)
	if err := c.BodyParser(input); err != nil || input.PaymentIntentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "payment_intent_id is required",
		})
	}

	ref, err := refund.New(&stripe.RefundParams{
		PaymentIntent: stripe.String(input.PaymentIntentID),
	})
	if err != nil {
		log.Printf("Could not refund payment intent %s: %v", input.PaymentIntentID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not process refund",
		})
	}

	// Mirror the refund onto the local order row; the order is the only
	// mutable-after-create record, and only in these fields.
	var order model.Order
	if err := database.GetDB().Preload("User").
		Where("stripe_payment_intent_id = ?", input.PaymentIntentID).
		First(&order).Error; err == nil {
		updates := map[string]interface{}{
			"refunded":      true,
			"refund_amount": ref.Amount,
		}
		if err := database.GetDB().Model(&order).Updates(updates).Error; err != nil {
			log.Printf("Could not update order %d after refund: %v", order.ID, err)
		}

		if email.GlobalEmailService != nil {
			err := email.GlobalEmailService.SendRefundProcessedEmail(
				order.User.Email,
				order.User.FullName,
				ref.Amount,
				order.Currency,
			)
			if err != nil {
				log.Printf("Could not send refund email: %v", err)
			}
		}
	}

	return c.JSON(fiber.Map{
		"refund": fiber.Map{
			"id":     ref.ID,
			"amount": ref.Amount,
			"status": string(ref.Status),
		},
	})
}

// AdminCancelSubscription cancels any subscription, immediately or at
// period end.
func AdminCancelSubscription(c *fiber.Ctx) error {
	input := new(AdminCancelInput)
	if err := c.BodyParser(input); err != nil || input.SubscriptionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "subscription_id is required",
		})
	}

	if input.Immediately {
		if _, err := stripesub.Cancel(input.SubscriptionID, nil); err != nil {
			log.Printf("Could not cancel subscription %s: %v", input.SubscriptionID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not cancel subscription",
			})
		}

		database.GetDB().Model(&model.Subscription{}).
			Where("stripe_subscription_id = ?", input.SubscriptionID).
			Update("status", "canceled")
	} else {
		_, err := stripesub.Update(input.SubscriptionID, &stripe.SubscriptionParams{
			CancelAtPeriodEnd: stripe.Bool(true),
		})
		if err != nil {
			log.Printf("Could not schedule cancellation for %s: %v", input.SubscriptionID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not cancel subscription",
			})
		}

		database.GetDB().Model(&model.Subscription{}).
			Where("stripe_subscription_id = ?", input.SubscriptionID).
			Update("cancel_at_period_end", true)
	}

	return c.JSON(fiber.Map{
		"message":     "Subscription cancelled",
		"immediately": input.Immediately,
	})
}
