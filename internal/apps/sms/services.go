package sms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode"
)

var (
	ErrPhoneRequired = errors.New("phone number is required")
	ErrInvalidPhone  = errors.New("invalid phone number format")
	ErrNotConfigured = errors.New("sms provider is not configured")
)

// northAmerican is the strict format accepted by the test-send endpoint.
var northAmerican = regexp.MustCompile(`^\+1\d{10}$`)

// NormalizePhone strips everything but digits and formats 10-digit numbers
// and 11-digit numbers with a leading 1 as +1XXXXXXXXXX.
func NormalizePhone(raw string) (string, bool) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)

	switch {
	case len(digits) == 10:
		return "+1" + digits, true
	case len(digits) == 11 && digits[0] == '1':
		return "+" + digits, true
	default:
		return "", false
	}
}

type SMSService struct {
	provider SMSProvider
	from     string
	appName  string
	now      func() time.Time
}

// NewSMSService accepts a nil provider; test sends then fail with
// ErrNotConfigured.
func NewSMSService(provider SMSProvider, from, appName string) *SMSService {
	return &SMSService{provider: provider, from: from, appName: appName, now: time.Now}
}

// DefaultMessage is sent when the caller does not supply one.
func (s *SMSService) DefaultMessage() string {
	return fmt.Sprintf("Test message from %s! Sent at %s", s.appName, s.now().UTC().Format(time.RFC3339))
}

func (s *SMSService) SendTest(ctx context.Context, phone, message string) (*Message, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, ErrPhoneRequired
	}
	if !northAmerican.MatchString(phone) {
		return nil, ErrInvalidPhone
	}
	if s.provider == nil || s.from == "" {
		return nil, ErrNotConfigured
	}
	if strings.IndexFunc(message, func(r rune) bool { return !unicode.IsSpace(r) }) < 0 {
		message = s.DefaultMessage()
	}

	msg, err := s.provider.SendMessage(ctx, phone, s.from, message)
	if err != nil {
		return nil, err
	}

	slog.Info("test sms sent", "message_sid", msg.SID, "status", msg.Status)
	return msg, nil
}
