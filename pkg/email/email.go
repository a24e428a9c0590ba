package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"time"
)

type EmailService struct {
	apiKey    string
	from      string
	templates *template.Template
}

type EmailData struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Html    string `json:"html"`
}

// Template data structures
type WelcomeEmailData struct {
	Name string
}

type SubscriptionEmailData struct {
	Name      string
	PlanName  string
	ExpiresAt time.Time
	IsRenewal bool
}

type SubscriptionCancelledData struct {
	Name      string
	PlanName  string
	ExpiresAt time.Time
}

type SubscriptionExpiryWarningData struct {
	Name       string
	PlanName   string
	DaysLeft   int
	ExpiryDate time.Time
}

type RefundProcessedData struct {
	Name     string
	Amount   float64
	Currency string
}

type InquiryNotificationData struct {
	Name      string
	WorkEmail string
	School    string
	Role      string
	Message   string
}

func NewEmailService(apiKey string) (*EmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend API key is required")
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("error loading email templates: %v", err)
	}

	return &EmailService{
		apiKey:    apiKey,
		from:      "CTE Skills <noreply@cteskills.com>",
		templates: templates,
	}, nil
}

func (s *EmailService) sendTemplateEmail(to, subject, templateName string, data interface{}) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("template execution error: %v", err)
	}

	emailData := EmailData{
		From:    s.from,
		To:      to,
		Subject: subject,
		Html:    body.String(),
	}

	jsonData, err := json.Marshal(emailData)
	if err != nil {
		return fmt.Errorf("error marshaling email data: %v", err)
	}

	req, err := http.NewRequest("POST", "https://api.resend.com/emails", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %v", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending email: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("resend API error: %s", string(respBody))
	}

	log.Printf("Sent %q email to %s", subject, to)
	return nil
}

// Email sending methods
func (s *EmailService) SendWelcomeEmail(email, name string) error {
	data := WelcomeEmailData{
		Name: name,
	}
	return s.sendTemplateEmail(email, "Welcome to CTE Skills! 🎉", "welcome.html", data)
}

func (s *EmailService) SendSubscriptionStartedEmail(email, name, planName string, expiresAt time.Time, isRenewal bool) error {
	data := SubscriptionEmailData{
		Name:      name,
		PlanName:  planName,
		ExpiresAt: expiresAt,
		IsRenewal: isRenewal,
	}

	subject := "Your CTE Skills Subscription Is Active 🎉"
	if isRenewal {
		subject = "Your CTE Skills Subscription Has Been Renewed 🔄"
	}

	return s.sendTemplateEmail(email, subject, "subscription_started.html", data)
}

func (s *EmailService) SendSubscriptionCancelledEmail(email, name, planName string, expiresAt time.Time) error {
	data := SubscriptionCancelledData{
		Name:      name,
		PlanName:  planName,
		ExpiresAt: expiresAt,
	}
	return s.sendTemplateEmail(email, "Your Subscription Has Been Cancelled", "subscription_cancelled.html", data)
}

func (s *EmailService) SendSubscriptionExpiryWarning(email, name, planName string, expiryDate time.Time, daysLeft int) error {
	data := SubscriptionExpiryWarningData{
		Name:       name,
		PlanName:   planName,
		DaysLeft:   daysLeft,
		ExpiryDate: expiryDate,
	}
	return s.sendTemplateEmail(
		email,
		fmt.Sprintf("Your Subscription Expires in %d Days ⚠️", daysLeft),
		"subscription_expiry_warning.html",
		data,
	)
}

func (s *EmailService) SendRefundProcessedEmail(email, name string, amountCents int64, currency string) error {
	data := RefundProcessedData{
		Name:     name,
		Amount:   float64(amountCents) / 100,
		Currency: currency,
	}
	return s.sendTemplateEmail(email, "Your Refund Has Been Processed", "refund_processed.html", data)
}

func (s *EmailService) SendInquiryNotification(adminEmail, name, workEmail, school, role, message string) error {
	data := InquiryNotificationData{
		Name:      name,
		WorkEmail: workEmail,
		School:    school,
		Role:      role,
		Message:   message,
	}
	return s.sendTemplateEmail(adminEmail, "New School Licensing Inquiry 📋", "inquiry_notification.html", data)
}
