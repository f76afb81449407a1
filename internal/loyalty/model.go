package loyalty

import (
	"errors"
	"time"
)

// Account is a user's loyalty account. CardCode is the public-safe string a
// customer presents as a QR payload at pickup; it is never a row id.
type Account struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	CardCode      string    `json:"card_code"`
	PointsBalance *int64    `json:"points_balance,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// LedgerEntry is one append-only points movement. PointsDelta is positive for
// credits and negative for redemptions.
type LedgerEntry struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	OrderID     string    `json:"order_id,omitempty"`
	LocationID  string    `json:"location_id,omitempty"`
	PointsDelta int64     `json:"points_delta"`
	Reason      string    `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Balance prefers the balance cached on the account and falls back to summing
// the ledger when the account doesn't carry one.
func Balance(acct *Account, ledger []LedgerEntry) int64 {
	if acct != nil && acct.PointsBalance != nil {
		return *acct.PointsBalance
	}
	var sum int64
	for _, e := range ledger {
		sum += e.PointsDelta
	}
	return sum
}

// Settings is the singleton row of global loyalty parameters.
type Settings struct {
	PointsPerEur    float64   `json:"points_per_eur"`
	EurPer100Points float64   `json:"eur_per_100_points"`
	DiscountPercent float64   `json:"discount_percent"`
	CashbackPercent float64   `json:"cashback_percent"`
	UpdatedAt       time.Time `json:"updated_at"`
	UpdatedBy       string    `json:"updated_by,omitempty"`
}

func (s Settings) Validate() error {
	if s.PointsPerEur <= 0 {
		return errors.New("points_per_eur must be > 0")
	}
	if s.EurPer100Points < 0 {
		return errors.New("eur_per_100_points must be >= 0")
	}
	if s.DiscountPercent < 0 || s.DiscountPercent > 100 {
		return errors.New("discount_percent must be 0..100")
	}
	if s.CashbackPercent < 0 || s.CashbackPercent > 100 {
		return errors.New("cashback_percent must be 0..100")
	}
	return nil
}
