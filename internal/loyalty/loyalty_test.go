package loyalty

import "testing"

func int64p(v int64) *int64 { return &v }

func TestBalance_PrefersCachedAccountBalance(t *testing.T) {
	acct := &Account{PointsBalance: int64p(120)}
	ledger := []LedgerEntry{{PointsDelta: 50}, {PointsDelta: -10}}
	if got := Balance(acct, ledger); got != 120 {
		t.Fatalf("Balance=%d, want cached 120", got)
	}
}

func TestBalance_FallsBackToLedgerSum(t *testing.T) {
	ledger := []LedgerEntry{{PointsDelta: 50}, {PointsDelta: -10}, {PointsDelta: 5}}
	if got := Balance(&Account{}, ledger); got != 45 {
		t.Fatalf("Balance=%d, want 45", got)
	}
	if got := Balance(nil, ledger); got != 45 {
		t.Fatalf("Balance without account=%d, want 45", got)
	}
	if got := Balance(nil, nil); got != 0 {
		t.Fatalf("empty Balance=%d, want 0", got)
	}
}

func TestSettingsValidate(t *testing.T) {
	ok := Settings{PointsPerEur: 1, EurPer100Points: 5, DiscountPercent: 10, CashbackPercent: 2}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid settings rejected: %v", err)
	}

	cases := []Settings{
		{PointsPerEur: 0, EurPer100Points: 5, DiscountPercent: 10, CashbackPercent: 2},
		{PointsPerEur: 1, EurPer100Points: -1, DiscountPercent: 10, CashbackPercent: 2},
		{PointsPerEur: 1, EurPer100Points: 5, DiscountPercent: 101, CashbackPercent: 2},
		{PointsPerEur: 1, EurPer100Points: 5, DiscountPercent: 10, CashbackPercent: -0.5},
	}
	for i, s := range cases {
		if err := s.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error for %+v", i, s)
		}
	}
}
