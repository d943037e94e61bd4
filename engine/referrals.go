package engine

import (
	"perpcore/native/referrals"

	"github.com/holiman/uint256"
)

// referralsEngine lazily builds a referrals.Engine bound to the store,
// sharing its emitter so referral events flow through the same sink as
// every other entry operation.
func (e *Engine) referralsEngine() *referrals.Engine {
	eng := referrals.New(e.state)
	eng.SetEmitter(e.state)
	return eng
}

// CreateReferralCode implements the create_referral_code entry operation
// (SPEC_FULL.md §3, supplemented from original_source's referrals
// subsystem): registers a new referral code owned by account, refunding
// any attached amount over the fixed creation fee.
func (e *Engine) CreateReferralCode(account, code string, attached *uint256.Int) (refund *uint256.Int, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, refund, err = e.referralsEngine().CreateReferralCode(account, code, attached)
	if err != nil {
		e.warnOp("create_referral_code", err, "account", account)
		return nil, err
	}
	e.logOp("create_referral_code", "account", account, "code", code)
	return refund, nil
}

// SetReferralCode implements the set_referral_code entry operation:
// associates account with a referrer's code for downstream fee-rebate
// accounting, refunding any attached amount over the fixed fee.
func (e *Engine) SetReferralCode(account, code string, attached *uint256.Int) (refund *uint256.Int, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	refund, err = e.referralsEngine().SetUserReferralCode(account, code, attached)
	if err != nil {
		e.warnOp("set_referral_code", err, "account", account)
		return nil, err
	}
	e.logOp("set_referral_code", "account", account, "code", code)
	return refund, nil
}

// SetReferrerTier implements the set_referrer_tier admin operation: raises
// or lowers an existing code's rebate tier.
func (e *Engine) SetReferrerTier(code string, tier referrals.Tier) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := e.referralsEngine().SetReferrerTier(code, tier)
	if err != nil {
		e.warnOp("set_referrer_tier", err, "code", code)
		return err
	}
	e.logOp("set_referrer_tier", "code", code, "tier", tier.String())
	return nil
}
