package booking

import (
	"context"
	"time"

	"hotelbooking/internal/modules/pricing"
)

// Quoter prices a stay night by night.
type Quoter interface {
	QuoteStay(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (*pricing.Quote, error)
}
