package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestReceipt_TotalsConsistent(t *testing.T) {
	tip := 3.0
	r := Receipt{Subtotal: 10.10, Tax: 0.81, Total: 13.91, Gratuity: &tip}
	if !r.TotalsConsistent() {
		t.Fatalf("expected consistent totals")
	}
	r.Gratuity = nil
	if r.TotalsConsistent() {
		t.Fatalf("expected mismatch without gratuity")
	}
	r.Total = 10.91
	if !r.TotalsConsistent() {
		t.Fatalf("expected consistent totals without gratuity")
	}
}

func TestReceipt_TotalsConsistentThreeDecimals(t *testing.T) {
	// KWD: 1.250 + 0.063 = 1.313
	r := Receipt{Subtotal: 1.25, Tax: 0.063, Total: 1.313}
	if !r.TotalsConsistent() {
		t.Fatalf("expected consistent fils totals")
	}
	r.Total = 1.31
	if r.TotalsConsistent() {
		t.Fatalf("a missing fil must count as a mismatch")
	}
}

func TestPOSProvider_Valid(t *testing.T) {
	for _, p := range Providers() {
		if !p.Valid() {
			t.Fatalf("%s should be valid", p)
		}
		if p.DisplayName() == string(p) {
			t.Fatalf("%s has no display name", p)
		}
	}
	if POSProvider("clover").Valid() {
		t.Fatalf("clover should not be valid")
	}
}

func TestPosIntegrationError_Message(t *testing.T) {
	err := NewPosIntegrationError(ProviderLoyverse, errors.New("boom"))
	if err.Error() != "Failed to fetch receipt from Loyverse: boom" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if NewPosIntegrationError(ProviderSquare, nil).Error() != "Failed to fetch receipt from Square: Unknown error" {
		t.Fatalf("unexpected message for nil cause")
	}
	wrapped := NewPosIntegrationError(ProviderToast, fmt.Errorf("call: %w", context.DeadlineExceeded))
	if !errors.Is(wrapped, context.DeadlineExceeded) {
		t.Fatalf("expected deadline to be unwrappable")
	}
}

func TestRestaurantPOSConfig_Clone(t *testing.T) {
	c := RestaurantPOSConfig{
		RestaurantID: "r1",
		Provider:     ProviderSquare,
		Credentials:  map[string]string{"apiKey": "k"},
		Tables:       []Table{{ID: "1", Name: "Table 1"}},
	}
	cp := c.Clone()
	cp.Credentials["apiKey"] = "changed"
	cp.Tables[0].Name = "changed"
	if c.Credentials["apiKey"] != "k" || c.Tables[0].Name != "Table 1" {
		t.Fatalf("clone shares state with original")
	}
}
