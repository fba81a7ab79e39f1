package sms

import (
	"context"
	"errors"
	"fmt"

	"github.com/arsmn/go-smsir/smsir"
	"github.com/nyaruka/phonenumbers"

	"github.com/mediconnect/mediconnect_backend/config"
)

var ErrInvalidPhone = errors.New("invalid phone number")

// Kind selects the sms.ir template used for a message.
type Kind string

const (
	KindBooked      Kind = "booked"
	KindCancelled   Kind = "cancelled"
	KindRescheduled Kind = "rescheduled"
)

// Client sends templated SMS through sms.ir. A disabled client accepts and
// drops every message.
type Client struct {
	client    *smsir.Client
	enabled   bool
	region    string
	templates map[Kind]string
}

func NewFromConfig(cfg config.SMSConfig) (*Client, error) {
	region := cfg.DefaultRegion
	if region == "" {
		region = "CL"
	}
	if !cfg.Enabled {
		return &Client{enabled: false, region: region}, nil
	}

	if cfg.SMSIR.APIKey == "" {
		return nil, fmt.Errorf("sms.ir API key required when SMS enabled")
	}

	return &Client{
		client:  smsir.NewClient().WithAuthentication(cfg.SMSIR.APIKey, cfg.SMSIR.SecretKey),
		enabled: true,
		region:  region,
		templates: map[Kind]string{
			KindBooked:      cfg.SMSIR.Templates.Booked,
			KindCancelled:   cfg.SMSIR.Templates.Cancelled,
			KindRescheduled: cfg.SMSIR.Templates.Rescheduled,
		},
	}, nil
}

// Send renders the template configured for kind with params. Kinds without a
// template are skipped.
func (c *Client) Send(ctx context.Context, phone string, kind Kind, params map[string]string) error {
	if !c.enabled {
		return nil
	}
	templateID := c.templates[kind]
	if templateID == "" {
		return nil
	}

	mobile, err := NormalizePhone(phone, c.region)
	if err != nil {
		return err
	}

	req := &smsir.UltraFastSendRequest{
		Mobile:     mobile,
		TemplateID: templateID,
	}
	for k, v := range params {
		req.Parameters = append(req.Parameters, smsir.UltraFastParameter{Key: k, Value: v})
	}

	if _, err := c.client.Verification.UltraFastSend(ctx, req); err != nil {
		return fmt.Errorf("sms.ir send failed: %w", err)
	}
	return nil
}

func (c *Client) IsEnabled() bool {
	return c.enabled
}

// NormalizePhone parses phone in the given default region and returns it in
// E.164 form.
func NormalizePhone(phone, region string) (string, error) {
	if phone == "" {
		return "", ErrInvalidPhone
	}
	num, err := phonenumbers.Parse(phone, region)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPhone, err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidPhone
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
