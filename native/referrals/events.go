package referrals

import "perpcore/core/events"

func newCreateReferralCodeEvent(account, code string) events.CreateReferralCode {
	return events.CreateReferralCode{AccountID: account, ReferralCode: code}
}

func newSetReferralCodeEvent(account, code string) events.SetReferralCode {
	return events.SetReferralCode{AccountID: account, ReferralCode: code}
}

func newSetReferrerTierEvent(account, code string, tier Tier) events.SetReferrerTier {
	return events.SetReferrerTier{AccountID: account, ReferralCode: code, Tier: tier.String()}
}
