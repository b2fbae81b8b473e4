package application

import "testing"

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	t.Run("accepts a complete booking", func(t *testing.T) {
		t.Parallel()

		params := CreateBookingParams{
			ServiceID:   1,
			BookerName:  "Anne",
			BookerPhone: "0900",
			BookerEmail: "anne@example.com",
			CheckIn:     "2024-12-24",
			CheckOut:    "2024-12-26",
			Options:     BookingOptions{Adults: 2, AddOns: []string{"Breakfast", "Late Check-out"}},
		}
		if vErr := validateStruct(params); vErr.HasErrors() {
			t.Fatalf("unexpected validation errors: %v", vErr.FieldErrors)
		}
	})

	t.Run("reports fields by form name", func(t *testing.T) {
		t.Parallel()

		params := CreateBookingParams{
			ServiceID:   1,
			BookerEmail: "not-an-email",
			CheckIn:     "24/12/2024",
			CheckOut:    "2024-12-26",
			Options:     BookingOptions{Adults: 0, Children: -1, AddOns: []string{"Spa"}},
		}
		vErr := validateStruct(params)

		want := map[string]string{
			"name":     "name is required",
			"phone":    "phone is required",
			"email":    "email is invalid",
			"check_in": "check in must be a date (YYYY-MM-DD)",
			"adults":   "adults must be at least 1",
			"children": "children must be at least 0",
			"addons":   "addons contains an unknown option",
		}
		for field, msg := range want {
			if got := vErr.FieldErrors[field]; got != msg {
				t.Errorf("field %s: got %q, want %q", field, got, msg)
			}
		}
		if _, ok := vErr.FieldErrors["check_out"]; ok {
			t.Errorf("check_out should be valid")
		}
	})

	t.Run("optional search dates", func(t *testing.T) {
		t.Parallel()

		if vErr := validateStruct(SearchQuery{}); vErr.HasErrors() {
			t.Fatalf("empty search should be valid, got %v", vErr.FieldErrors)
		}
		vErr := validateStruct(SearchQuery{From: "yesterday"})
		if vErr.FieldErrors["start_date"] == "" {
			t.Fatalf("expected start_date error, got %v", vErr.FieldErrors)
		}
	})
}
