package application

import (
	"fmt"
	"strings"
)

// NoAddOns is written in place of the add-on list when none were selected.
const NoAddOns = "None"

// AvailableAddOns lists the extras offered on the booking form, in display order.
var AvailableAddOns = []string{"Breakfast", "Airport Pickup", "Late Check-out", "Extra Bed"}

// DefaultBookingOptions returns the options used when the form omits guest counts.
func DefaultBookingOptions() BookingOptions {
	return BookingOptions{Adults: 1, Children: 0}
}

// FormatDetails renders booking options into the details text stored with a booking.
func FormatDetails(opts BookingOptions) string {
	addOns := NoAddOns
	if len(opts.AddOns) > 0 {
		addOns = strings.Join(opts.AddOns, ", ")
	}
	return fmt.Sprintf("Guests: %d Adults, %d Children | Add-ons: %s | Note: %s",
		opts.Adults, opts.Children, addOns, opts.Note)
}
