package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/wneessen/go-mail"
)

// Sender turns booking events into notification mails for the booking contact.
type Sender struct {
	from    string
	deliver func(ctx context.Context, msgs ...*mail.Msg) error
}

func NewSender(cfg config.SMTPConfig) (*Sender, error) {
	opts := []mail.Option{mail.WithPort(cfg.Port)}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("init smtp client: %w", err)
	}
	return &Sender{from: cfg.From, deliver: client.DialAndSendWithContext}, nil
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	msg, err := s.compose(event)
	if err != nil {
		return err
	}
	if msg == nil {
		return nil
	}
	return s.deliver(ctx, msg)
}

// compose returns nil for event types nobody gets mailed about.
func (s *Sender) compose(event kafka.BookingEvent) (*mail.Msg, error) {
	var subject string
	switch event.Type {
	case kafka.EventBookingCreated:
		subject = fmt.Sprintf("Booking confirmed: PNR %s", event.PNR)
	case kafka.EventBookingCancelled:
		subject = fmt.Sprintf("Booking cancelled: PNR %s", event.PNR)
	default:
		return nil, nil
	}

	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return nil, fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(event.ContactEmail); err != nil {
		return nil, fmt.Errorf("set to %q: %w", event.ContactEmail, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body(event))
	return msg, nil
}

func body(event kafka.BookingEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", event.ContactName)
	switch event.Type {
	case kafka.EventBookingCreated:
		fmt.Fprintf(&b, "Your %s booking for %d passenger(s) is confirmed.\n", strings.ToLower(strings.ReplaceAll(event.TripType, "_", "-")), event.Passengers)
	case kafka.EventBookingCancelled:
		fmt.Fprintf(&b, "Your booking for %d passenger(s) has been cancelled.\n", event.Passengers)
	}
	fmt.Fprintf(&b, "PNR: %s (flight %d)\n", event.PNR, event.OutboundFlightID)
	if event.ReturnPNR != "" {
		fmt.Fprintf(&b, "Return PNR: %s (flight %d)\n", event.ReturnPNR, event.ReturnFlightID)
	}
	return b.String()
}
