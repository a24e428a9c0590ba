package subscription

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"cteskills_backend/internal/model"
)

func newMockService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return NewService(db), mock
}

func paidSubscription(paymentIntentID string) *stripe.Subscription {
	return &stripe.Subscription{
		ID: "sub_test",
		LatestInvoice: &stripe.Invoice{
			ID:            "in_test",
			Status:        stripe.InvoiceStatusPaid,
			Currency:      stripe.CurrencyUSD,
			AmountPaid:    1900,
			PaymentIntent: &stripe.PaymentIntent{ID: paymentIntentID},
		},
	}
}

func TestOrderStatusVocabulary(t *testing.T) {
	// The dashboard revenue query filters on OrderStatusCompleted; the
	// invoice mapping must write the same value.
	assert.Equal(t, model.OrderStatusCompleted, orderStatus(stripe.InvoiceStatusPaid))
	assert.Equal(t, model.OrderStatusPending, orderStatus(stripe.InvoiceStatusOpen))
	assert.Equal(t, model.OrderStatusPending, orderStatus(stripe.InvoiceStatusDraft))
}

func TestRenewalBillingReason(t *testing.T) {
	assert.True(t, RenewalBillingReason("subscription_cycle"))
	assert.False(t, RenewalBillingReason("subscription_create"))
	assert.False(t, RenewalBillingReason(""))
}

func TestRecordOrderInsertsWithConflictGuard(t *testing.T) {
	svc, mock := newMockService(t)
	user := &model.User{Model: gorm.Model{ID: 7}, Email: "jamie@example.com"}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "orders" .+ON CONFLICT \("stripe_payment_intent_id"\) DO NOTHING`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	err := svc.recordOrderFromInvoice(user, "cus_test", paidSubscription("pi_first"))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordOrderIdempotentPerPaymentIntent(t *testing.T) {
	// Simulates a re-sync hitting the unique payment intent index: the
	// conflict clause swallows the duplicate and no error surfaces.
	svc, mock := newMockService(t)
	user := &model.User{Model: gorm.Model{ID: 7}, Email: "jamie@example.com"}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "orders" .+ON CONFLICT \("stripe_payment_intent_id"\) DO NOTHING`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	err := svc.recordOrderFromInvoice(user, "cus_test", paidSubscription("pi_repeat"))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordOrderSkipsInvoiceWithoutPaymentIntent(t *testing.T) {
	svc, mock := newMockService(t)
	user := &model.User{Model: gorm.Model{ID: 7}}

	sub := paidSubscription("")
	sub.LatestInvoice.PaymentIntent = nil

	err := svc.recordOrderFromInvoice(user, "cus_test", sub)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet(), "no order row may be written")
}

func TestAttachCheckoutSession(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "orders" SET .*"stripe_checkout_session_id"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := svc.AttachCheckoutSession("pi_first", "cs_test")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
