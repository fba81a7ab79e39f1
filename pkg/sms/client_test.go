package sms

import (
	"context"
	"errors"
	"testing"

	"github.com/mediconnect/mediconnect_backend/config"
)

func TestNewFromConfig_Disabled(t *testing.T) {
	client, err := NewFromConfig(config.SMSConfig{Enabled: false})
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	if client.IsEnabled() {
		t.Error("Expected client to be disabled")
	}
	if err := client.Send(context.Background(), "not a phone", KindBooked, nil); err != nil {
		t.Errorf("disabled client must drop messages, got %v", err)
	}
}

func TestNewFromConfig_EnabledWithoutAPIKey(t *testing.T) {
	_, err := NewFromConfig(config.SMSConfig{Enabled: true})
	if err == nil {
		t.Error("Expected error when API key is missing")
	}
}

func TestNewFromConfig_EnabledWithAPIKey(t *testing.T) {
	client, err := NewFromConfig(config.SMSConfig{
		Enabled: true,
		SMSIR: config.SMSIRConfig{
			APIKey:    "test-api-key",
			SecretKey: "test-secret-key",
			Templates: config.SMSTemplateConfig{Booked: "100"},
		},
	})
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	if !client.IsEnabled() {
		t.Error("Expected client to be enabled")
	}
	// No template for cancellations: skipped without calling the provider.
	if err := client.Send(context.Background(), "+56221234567", KindCancelled, nil); err != nil {
		t.Errorf("Send without template: %v", err)
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		region  string
		want    string
		wantErr bool
	}{
		{"chilean landline local", "2 2123 4567", "CL", "+56221234567", false},
		{"already e164", "+16502530000", "CL", "+16502530000", false},
		{"us national", "(650) 253-0000", "US", "+16502530000", false},
		{"iranian mobile", "09121234567", "IR", "+989121234567", false},
		{"empty", "", "CL", "", true},
		{"garbage", "abc", "CL", "", true},
		{"too short", "123", "CL", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.phone, tt.region)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPhone) {
					t.Errorf("expected ErrInvalidPhone, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.phone, got, tt.want)
			}
		})
	}
}
