package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type notificationService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewNotificationService(apiKey, fromEmail, fromName string) NotificationService {
	return &notificationService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *notificationService) send(to, toName, subject, body string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)

	message := mail.NewSingleEmail(from, subject, recipient, body, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *notificationService) SendPaymentApproved(ctx context.Context, email, name string, bookingID, amountCents int64) error {
	subject := "Payment received"
	body := fmt.Sprintf("Hello %s,\n\nYour payment of %d for booking #%d was approved. The funds are held until the class is completed and confirmed by both sides.\n\nThe TutorLink Team", name, amountCents, bookingID)
	return s.send(email, name, subject, body)
}

func (s *notificationService) SendEscrowReleased(ctx context.Context, email, name string, bookingID, amountNetCents int64) error {
	subject := "Class payment released"
	body := fmt.Sprintf("Hello %s,\n\nBooking #%d is complete and %d has been credited to your balance.\n\nThe TutorLink Team", name, bookingID, amountNetCents)
	return s.send(email, name, subject, body)
}

func (s *notificationService) SendEscrowRefunded(ctx context.Context, email, name string, bookingID int64, reason string) error {
	subject := "Booking refunded"
	body := fmt.Sprintf("Hello %s,\n\nYour payment for booking #%d was refunded in full.", name, bookingID)
	if reason != "" {
		body += fmt.Sprintf("\n\nReason: %s", reason)
	}
	body += "\n\nThe TutorLink Team"
	return s.send(email, name, subject, body)
}

func (s *notificationService) SendDisputeOpened(ctx context.Context, email, name string, bookingID int64, openedBy, reason string) error {
	subject := fmt.Sprintf("Dispute opened on booking #%d", bookingID)
	body := fmt.Sprintf("Hello %s,\n\nA dispute was opened on booking #%d by the %s. The payment is frozen until an administrator resolves it.\n\nReason: %s\n\nThe TutorLink Team", name, bookingID, openedBy, reason)
	return s.send(email, name, subject, body)
}

func (s *notificationService) SendDisputeResolved(ctx context.Context, email, name string, bookingID int64, decision string) error {
	subject := fmt.Sprintf("Dispute resolved on booking #%d", bookingID)
	body := fmt.Sprintf("Hello %s,\n\nThe dispute on booking #%d has been resolved with decision: %s.\n\nThe TutorLink Team", name, bookingID, decision)
	return s.send(email, name, subject, body)
}

func (s *notificationService) SendBookingCancelled(ctx context.Context, email, name string, bookingID int64, reason string) error {
	subject := fmt.Sprintf("Booking #%d cancelled", bookingID)
	body := fmt.Sprintf("Hello %s,\n\nBooking #%d has been cancelled.", name, bookingID)
	if reason != "" {
		body += fmt.Sprintf("\n\nReason: %s", reason)
	}
	body += "\n\nThe TutorLink Team"
	return s.send(email, name, subject, body)
}
