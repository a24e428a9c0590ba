package controller

import (
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v74"
	portalsession "github.com/stripe/stripe-go/v74/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v74/checkout/session"
	stripeinvoice "github.com/stripe/stripe-go/v74/invoice"
	stripesub "github.com/stripe/stripe-go/v74/subscription"
	"github.com/stripe/stripe-go/v74/webhook"

	"cteskills_backend/internal/model"
	"cteskills_backend/pkg/config"
	"cteskills_backend/pkg/database"
	"cteskills_backend/pkg/email"
	"cteskills_backend/pkg/subscription"
	"cteskills_backend/pkg/utils/jwt"
)

var (
	subscriptionService *subscription.Service
	frontendURL         string
	stripeWebhookSecret string
)

func InitSubscriptionController(cfg *config.Config) {
	subscriptionService = subscription.NewService(database.GetDB())
	frontendURL = cfg.Server.FrontendURL
	stripeWebhookSecret = cfg.Stripe.WebhookSecret
}

type CheckoutInput struct {
	Plan string `json:"plan" validate:"required"` // monthly, annual
}

// CheckSubscription returns the caller's computed subscription view
// straight from Stripe. Read-only; never mutates local tables.
func CheckSubscription(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var user model.User
	if err := database.GetDB().First(&user, claims.UserID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	status, err := subscriptionService.Check(&user)
	if err != nil {
		log.Printf("[CHECK-SUBSCRIPTION] error for user %d: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not check subscription",
		})
	}

	return c.JSON(status)
}

// SyncSubscription reconciles the caller's Stripe state into the local
// subscription, access and order tables.
func SyncSubscription(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var user model.User
	if err := database.GetDB().First(&user, claims.UserID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	result, err := subscriptionService.Sync(&user)
	if err != nil {
		log.Printf("[SYNC-SUBSCRIPTION] error for user %d: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not sync subscription",
		})
	}

	return c.JSON(result)
}

// GetMySubscription returns the locally mirrored subscription row.
func GetMySubscription(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var sub model.Subscription
	if err := database.GetDB().
		Where("user_id = ? AND status IN ?", claims.UserID, []string{"active", "trialing"}).
		Order("current_period_end DESC").
		First(&sub).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No active subscription found",
		})
	}

	return c.JSON(sub)
}

func CreateCheckoutSession(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(CheckoutInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid input",
		})
	}

	priceID, ok := subscription.PriceForPlan(subscription.Plan(input.Plan))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown plan",
		})
	}

	var user model.User
	if err := database.GetDB().First(&user, claims.UserID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(frontendURL + "/account?checkout=success"),
		CancelURL:  stripe.String(frontendURL + "/pricing?checkout=cancelled"),
	}
	if user.StripeCustomerID != "" {
		params.Customer = stripe.String(user.StripeCustomerID)
	} else {
		params.CustomerEmail = stripe.String(user.Email)
	}

	session, err := checkoutsession.New(params)
	if err != nil {
		log.Printf("Could not create checkout session for user %d: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create checkout session",
		})
	}

	return c.JSON(fiber.Map{
		"url": session.URL,
	})
}

func CreatePortalSession(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var user model.User
	if err := database.GetDB().First(&user, claims.UserID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	if user.StripeCustomerID == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No Stripe customer found",
		})
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(user.StripeCustomerID),
		ReturnURL: stripe.String(frontendURL + "/account"),
	}

	session, err := portalsession.New(params)
	if err != nil {
		log.Printf("Could not create portal session for user %d: %v", user.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not create portal session",
		})
	}

	return c.JSON(fiber.Map{
		"url": session.URL,
	})
}

// CancelMySubscription schedules the caller's subscription to end at the
// current period end.
func CancelMySubscription(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var sub model.Subscription
	if err := database.GetDB().
		Where("user_id = ? AND status IN ?", claims.UserID, []string{"active", "trialing"}).
		Preload("User").
		Order("current_period_end DESC").
		First(&sub).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No active subscription found",
		})
	}

	_, err := stripesub.Update(sub.StripeSubscriptionID, &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	})
	if err != nil {
		log.Printf("Could not cancel Stripe subscription %s: %v", sub.StripeSubscriptionID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not cancel subscription",
		})
	}

	if err := database.GetDB().Model(&sub).Update("cancel_at_period_end", true).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not update subscription status",
		})
	}

	if email.GlobalEmailService != nil && sub.CurrentPeriodEnd != nil {
		err := email.GlobalEmailService.SendSubscriptionCancelledEmail(
			sub.User.Email,
			sub.User.FullName,
			string(subscription.PlanForPrice(sub.PriceID)),
			*sub.CurrentPeriodEnd,
		)
		if err != nil {
			log.Printf("Could not send subscription cancellation email: %v", err)
		}
	}

	return c.JSON(fiber.Map{
		"message": "Subscription will be cancelled at the end of the billing period",
	})
}

// HandleStripeWebhook re-mirrors subscription state on Stripe events.
func HandleStripeWebhook(c *fiber.Ctx) error {
	payload := c.Body()
	signatureHeader := c.Get("Stripe-Signature")

	event, err := webhook.ConstructEvent(payload, signatureHeader, stripeWebhookSecret)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook signature",
		})
	}

	log.Printf("Processing Stripe webhook event: %s", event.Type)

	switch event.Type {
	case "customer.subscription.updated":
		var subData struct {
			ID                string `json:"id"`
			Status            string `json:"status"`
			CurrentPeriodEnd  int64  `json:"current_period_end"`
			CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
		}
		if err := json.Unmarshal(event.Data.Raw, &subData); err != nil {
			return c.Status(fiber.StatusBadRequest).Send(nil)
		}

		updates := map[string]interface{}{
			"status":               subData.Status,
			"cancel_at_period_end": subData.CancelAtPeriodEnd,
		}
		if end := subscription.NormalizeEpoch(subData.CurrentPeriodEnd); !end.IsZero() {
			updates["current_period_end"] = end
		}

		if err := database.GetDB().Model(&model.Subscription{}).
			Where("stripe_subscription_id = ?", subData.ID).
			Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not update subscription",
			})
		}

		// Keep access grant expiries in step with the new period end.
		if end := subscription.NormalizeEpoch(subData.CurrentPeriodEnd); !end.IsZero() {
			var sub model.Subscription
			if err := database.GetDB().Where("stripe_subscription_id = ?", subData.ID).
				First(&sub).Error; err == nil {
				database.GetDB().Model(&model.VideoAccess{}).
					Where("user_id = ? AND access_type = ?", sub.UserID, "subscription").
					Update("expires_at", end)
			}
		}

	case "customer.subscription.deleted":
		var subData struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(event.Data.Raw, &subData); err != nil {
			return c.Status(fiber.StatusBadRequest).Send(nil)
		}

		var sub model.Subscription
		if err := database.GetDB().Where("stripe_subscription_id = ?", subData.ID).
			First(&sub).Error; err != nil {
			// Unknown subscription; nothing to mirror.
			return c.SendStatus(fiber.StatusOK)
		}

		if err := database.GetDB().Model(&sub).Update("status", "canceled").Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not update subscription status",
			})
		}

		database.GetDB().
			Where("user_id = ? AND access_type = ?", sub.UserID, "subscription").
			Delete(&model.VideoAccess{})

		log.Printf("Subscription %s cancelled", subData.ID)

	case "invoice.payment_succeeded":
		var invoiceData struct {
			Customer      string `json:"customer"`
			BillingReason string `json:"billing_reason"`
		}
		if err := json.Unmarshal(event.Data.Raw, &invoiceData); err != nil {
			return c.Status(fiber.StatusBadRequest).Send(nil)
		}

		// A fresh payment changes the authoritative state; re-run the
		// full sync for the owning user so the mirror, access grants and
		// order rows all converge.
		var user model.User
		if err := database.GetDB().Where("stripe_customer_id = ?", invoiceData.Customer).
			First(&user).Error; err == nil {
			if _, err := subscriptionService.Sync(&user); err != nil {
				log.Printf("Webhook-triggered sync failed for user %d: %v", user.ID, err)
				break
			}

			var sub model.Subscription
			if err := database.GetDB().
				Where("user_id = ? AND status IN ?", user.ID, []string{"active", "trialing"}).
				Order("current_period_end DESC").
				First(&sub).Error; err == nil &&
				email.GlobalEmailService != nil && sub.CurrentPeriodEnd != nil {
				err := email.GlobalEmailService.SendSubscriptionStartedEmail(
					user.Email,
					user.FullName,
					string(subscription.PlanForPrice(sub.PriceID)),
					*sub.CurrentPeriodEnd,
					subscription.RenewalBillingReason(invoiceData.BillingReason),
				)
				if err != nil {
					log.Printf("Could not send subscription started email: %v", err)
				}
			}
		}

	case "checkout.session.completed":
		var sessionData struct {
			ID            string `json:"id"`
			Customer      string `json:"customer"`
			PaymentIntent string `json:"payment_intent"`
			Invoice       string `json:"invoice"`
		}
		if err := json.Unmarshal(event.Data.Raw, &sessionData); err != nil {
			return c.Status(fiber.StatusBadRequest).Send(nil)
		}

		var user model.User
		if err := database.GetDB().Where("stripe_customer_id = ?", sessionData.Customer).
			First(&user).Error; err == nil {
			if _, err := subscriptionService.Sync(&user); err != nil {
				log.Printf("Webhook-triggered sync failed for user %d: %v", user.ID, err)
			}
		}

		// Subscription-mode sessions have no payment intent of their own;
		// it lives on the invoice.
		paymentIntentID := sessionData.PaymentIntent
		if paymentIntentID == "" && sessionData.Invoice != "" {
			if inv, err := stripeinvoice.Get(sessionData.Invoice, nil); err != nil {
				log.Printf("Could not fetch invoice %s: %v", sessionData.Invoice, err)
			} else if inv.PaymentIntent != nil {
				paymentIntentID = inv.PaymentIntent.ID
			}
		}
		if paymentIntentID != "" {
			if err := subscriptionService.AttachCheckoutSession(paymentIntentID, sessionData.ID); err != nil {
				log.Printf("Could not attach checkout session %s: %v", sessionData.ID, err)
			}
		}
	}

	return c.SendStatus(fiber.StatusOK)
}
