// ABOUTME: Rental limit hook consulted before a book is issued
// ABOUTME: The rule itself lives outside the store; MaxActiveRents is the configured default

package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrRentLimitExceeded is returned when a reader may not take another book.
var ErrRentLimitExceeded = errors.New("rent limit exceeded")

// RentLimiter decides whether a reader holding active rents may rent one more.
type RentLimiter interface {
	AllowRent(ctx context.Context, readerID int64, active int) error
}

// RentLimiterFunc adapts a function to RentLimiter.
type RentLimiterFunc func(ctx context.Context, readerID int64, active int) error

// AllowRent calls f.
func (f RentLimiterFunc) AllowRent(ctx context.Context, readerID int64, active int) error {
	return f(ctx, readerID, active)
}

// Unlimited allows every rent.
func Unlimited() RentLimiter {
	return RentLimiterFunc(func(context.Context, int64, int) error { return nil })
}

// MaxActiveRents allows a rent while the reader holds fewer than limit books.
// A limit of zero or less disables the check.
func MaxActiveRents(limit int) RentLimiter {
	if limit <= 0 {
		return Unlimited()
	}
	return RentLimiterFunc(func(_ context.Context, _ int64, active int) error {
		if active >= limit {
			return fmt.Errorf("%w: user already has %d rented books", ErrRentLimitExceeded, limit)
		}
		return nil
	})
}
