package events

const (
	// TypeCreateReferralCode is emitted when an account registers a new
	// referral code (spec §3 supplemented referrals subsystem).
	TypeCreateReferralCode = "create_referral_code"
	// TypeSetReferralCode is emitted when an account attaches itself to a
	// referrer's code.
	TypeSetReferralCode = "set_referral_code"
	// TypeSetReferrerTier is emitted when an admin changes a referral
	// code's tier.
	TypeSetReferrerTier = "set_referrer_tier"
)

// CreateReferralCode captures a newly registered referral code and its owner.
type CreateReferralCode struct {
	AccountID    string
	ReferralCode string
}

// EventType implements the Event interface.
func (CreateReferralCode) EventType() string { return TypeCreateReferralCode }

// SetReferralCode captures an account associating itself with a referrer's
// code for downstream fee-rebate accounting.
type SetReferralCode struct {
	AccountID    string
	ReferralCode string
}

// EventType implements the Event interface.
func (SetReferralCode) EventType() string { return TypeSetReferralCode }

// SetReferrerTier captures an admin-issued tier change for a referral code.
type SetReferrerTier struct {
	AccountID    string
	ReferralCode string
	Tier         string
}

// EventType implements the Event interface.
func (SetReferrerTier) EventType() string { return TypeSetReferrerTier }
