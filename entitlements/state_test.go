package entitlements

import (
	"testing"
	"time"
)

func TestDerive_NilRecordIsEmptyTrial(t *testing.T) {
	v := Derive(nil, time.Now())
	if v.Tier != TierTrial {
		t.Fatalf("expected trial tier, got %q", v.Tier)
	}
	if v.TrialStartedAt != 0 || v.TrialExpiresAt != 0 {
		t.Fatalf("expected zero trial timestamps, got %d/%d", v.TrialStartedAt, v.TrialExpiresAt)
	}
	if v.PremiumExpiresAt != nil {
		t.Fatal("expected nil premium_expires_at")
	}
}

func TestDerive_LifetimeWinsOverEverything(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	rec := &Record{
		UserID:           "u1",
		Lifetime:         true,
		PremiumActive:    true,
		PremiumExpiresAt: &future,
		TrialStartedAt:   now.Add(-40 * 24 * time.Hour),
		TrialExpiresAt:   now.Add(-10 * 24 * time.Hour),
	}
	v := Derive(rec, now)
	if v.Tier != TierLifetime {
		t.Fatalf("expected lifetime tier, got %q", v.Tier)
	}
}

func TestDerive_PremiumActiveOnlyWhenUnexpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Second)
	future := now.Add(time.Minute)

	rec := &Record{UserID: "u2", PremiumActive: true, PremiumExpiresAt: &past}
	if v := Derive(rec, now); v.PremiumActive {
		t.Fatal("expired premium must not be active")
	}
	if v := Derive(rec, now); v.Tier != TierTrial {
		t.Fatalf("expired premium must fall back to trial, got %q", v.Tier)
	}

	rec.PremiumExpiresAt = &future
	v := Derive(rec, now)
	if !v.PremiumActive {
		t.Fatal("unexpired premium must be active")
	}
	if v.Tier != TierPremium {
		t.Fatalf("expected premium tier, got %q", v.Tier)
	}
}

func TestDerive_PremiumFlagWithoutExpiryIsNotActive(t *testing.T) {
	v := Derive(&Record{UserID: "u3", PremiumActive: true}, time.Now())
	if v.PremiumActive {
		t.Fatal("premiumActive without premiumExpiresAt must not be active")
	}
}

// An unambiguously elapsed trial with no premium/lifetime still reports
// "trial": trial is the permanent default bucket. This pins the policy so a
// future change to an explicit lapsed tier is deliberate.
func TestDerive_ExpiredTrialStillReportsTrialTier(t *testing.T) {
	now := time.Now()
	rec := &Record{
		UserID:         "u4",
		TrialStartedAt: now.Add(-60 * 24 * time.Hour),
		TrialExpiresAt: now.Add(-30 * 24 * time.Hour),
	}
	v := Derive(rec, now)
	if v.Tier != TierTrial {
		t.Fatalf("expected trial tier for lapsed trial, got %q", v.Tier)
	}
}

func TestCaps_Derivation(t *testing.T) {
	cases := []struct {
		name          string
		tier          Tier
		lifetime      bool
		premiumActive bool
		want          []Capability
	}{
		{"trial", TierTrial, false, false, []Capability{CapLocalRead}},
		{"premium", TierPremium, false, true, []Capability{CapLocalRead, CapLocalWrite, CapCloudSync}},
		{"lifetime", TierLifetime, true, false, []Capability{CapLocalRead, CapLocalWrite}},
		{"lifetime with premium", TierLifetime, true, true, []Capability{CapLocalRead, CapLocalWrite, CapCloudSync}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Caps(tc.tier, tc.lifetime, tc.premiumActive)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestCaps_Monotonic(t *testing.T) {
	tiers := []Tier{TierTrial, TierPremium, TierLifetime}
	bools := []bool{false, true}
	for _, tier := range tiers {
		for _, lt := range bools {
			for _, pa := range bools {
				// Skip input combinations Derive can never produce: premium
				// activity always implies a premium or lifetime tier.
				if pa && tier == TierTrial {
					continue
				}
				caps := Caps(tier, lt, pa)
				has := map[Capability]bool{}
				for _, c := range caps {
					has[c] = true
				}
				if has[CapCloudSync] && (!has[CapLocalWrite] || !has[CapLocalRead]) {
					t.Fatalf("cloud:sync without implied caps: %v (tier=%s lifetime=%v premium=%v)", caps, tier, lt, pa)
				}
				if has[CapLocalWrite] && !has[CapLocalRead] {
					t.Fatalf("local:write without local:read: %v", caps)
				}
				if !has[CapLocalRead] {
					t.Fatalf("local:read missing: %v", caps)
				}
			}
		}
	}
}
