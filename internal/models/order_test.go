package models

import "testing"

func TestParseOrderStatus(t *testing.T) {
	tests := []struct {
		raw    string
		want   OrderStatus
		wantOK bool
	}{
		{"pending", OrderStatusPending, true},
		{"DELIVERED", OrderStatusDelivered, true},
		{" Shipped ", OrderStatusShipped, true},
		{"refunded", OrderStatus("refunded"), false},
		{"", OrderStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseOrderStatus(tt.raw)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseOrderStatus(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestOrderStatusIsTerminal(t *testing.T) {
	for _, s := range OrderStatuses {
		want := s == OrderStatusCompleted || s == OrderStatusCancelled
		if s.IsTerminal() != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", s, s.IsTerminal(), want)
		}
	}
}
