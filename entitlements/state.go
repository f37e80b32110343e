package entitlements

import "time"

// Tier is the caller's subscription standing.
type Tier string

const (
	TierTrial    Tier = "trial"
	TierPremium  Tier = "premium"
	TierLifetime Tier = "lifetime"
)

// Capability is a discrete permission granted by a tier.
type Capability string

const (
	CapLocalRead  Capability = "local:read"
	CapLocalWrite Capability = "local:write"
	CapCloudSync  Capability = "cloud:sync"
)

// TrialDuration is the fixed trial window seeded on first issuance.
const TrialDuration = 30 * 24 * time.Hour

// Record is the persisted entitlement row, one per user.
// Trial timestamps are set once at issuance and never mutated.
type Record struct {
	UserID           string
	Lifetime         bool
	PremiumActive    bool
	TrialStartedAt   time.Time
	TrialExpiresAt   time.Time
	PremiumExpiresAt *time.Time
	UpdatedAt        time.Time
}

// View is the derived, transient entitlement state returned to callers.
// It is a pure function of (Record, now) and is never persisted.
type View struct {
	Tier             Tier   `json:"tier"`
	Lifetime         bool   `json:"lifetime"`
	PremiumActive    bool   `json:"premium_active"`
	TrialStartedAt   int64  `json:"trial_started_at"`
	TrialExpiresAt   int64  `json:"trial_expires_at"`
	PremiumExpiresAt *int64 `json:"premium_expires_at"`
}

// Derive computes the current View for a record. A nil record is a caller
// with no entitlement row yet (zero timestamps, trial tier).
func Derive(rec *Record, now time.Time) View {
	if rec == nil {
		return View{Tier: TierTrial}
	}
	premiumNow := rec.PremiumActive && rec.PremiumExpiresAt != nil && rec.PremiumExpiresAt.After(now)
	tier := TierTrial
	switch {
	case rec.Lifetime:
		tier = TierLifetime
	case premiumNow:
		tier = TierPremium
	}
	// Note: an elapsed trial with no premium/lifetime still reports "trial";
	// trial is the permanent default bucket and clients gate on
	// trial_expires_at themselves.
	v := View{
		Tier:           tier,
		Lifetime:       rec.Lifetime,
		PremiumActive:  premiumNow,
		TrialStartedAt: toMillis(rec.TrialStartedAt),
		TrialExpiresAt: toMillis(rec.TrialExpiresAt),
	}
	if rec.PremiumExpiresAt != nil {
		ms := rec.PremiumExpiresAt.UnixMilli()
		v.PremiumExpiresAt = &ms
	}
	return v
}

// Caps derives the capability set for a view. It is the single shared
// implementation for every response shape that carries capabilities.
// The set is monotonic: cloud:sync implies local:write implies local:read.
func Caps(tier Tier, lifetime, premiumActive bool) []Capability {
	caps := []Capability{CapLocalRead}
	if tier == TierLifetime || tier == TierPremium || lifetime {
		caps = append(caps, CapLocalWrite)
	}
	if tier == TierPremium || premiumActive {
		caps = append(caps, CapCloudSync)
	}
	return caps
}

// CapsForView is a convenience wrapper over Caps.
func CapsForView(v View) []Capability {
	return Caps(v.Tier, v.Lifetime, v.PremiumActive)
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
