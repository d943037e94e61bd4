package referrals

import (
	"sync"

	"perpcore/core/events"

	"github.com/holiman/uint256"
)

// MaxCodeLength bounds a referral code's length (original_source:
// referrals.rs MAX_REFERRAL_CODE_LENGTH).
const MaxCodeLength = 32

// yocto is NEAR's native 24-decimal denomination, used for the flat
// registration fees below.
var yocto = new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(24))

// CreateFeeNative and SetFeeNative are the flat native-token fees
// original_source charges for registering and attaching a referral code
// (0.05 NEAR / 0.01 NEAR). Neither is named in spec.md; carried forward
// from original_source since nothing in spec.md's Non-goals excludes them.
var (
	CreateFeeNative = divExact(yocto, 20)  // 0.05 NEAR
	SetFeeNative    = divExact(yocto, 100) // 0.01 NEAR
)

func divExact(n *uint256.Int, d uint64) *uint256.Int {
	return new(uint256.Int).Div(n, uint256.NewInt(d))
}

// Store persists referral codes and per-account code assignments. A
// concrete implementation lives in the engine's state layer; this package
// only declares the shape it needs.
type Store interface {
	GetReferralCode(code string) (*Code, bool, error)
	PutReferralCode(c *Code) error
	GetUserReferralCode(account string) (string, bool, error)
	PutUserReferralCode(account, code string) error
}

// Engine implements the three referral entry operations (spec §3
// supplement): create_referral_code, set_referral_code, set_referrer_tier.
type Engine struct {
	mu      sync.Mutex
	state   Store
	emitter events.Emitter
}

// New constructs a referrals engine bound to state.
func New(state Store) *Engine {
	return &Engine{state: state, emitter: events.NoopEmitter{}}
}

// SetEmitter configures the event sink used by the engine.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(evt events.Event) {
	if e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

func checkCode(code string) error {
	if len(code) == 0 {
		return ErrEmptyCode
	}
	if len(code) > MaxCodeLength {
		return ErrCodeTooLong
	}
	return nil
}

// CreateReferralCode registers code as owned by account at Tier1. attached
// is the native amount the caller deposited with the call; the returned
// refund is whatever exceeded CreateFeeNative and must be returned to
// account by the caller.
func (e *Engine) CreateReferralCode(account, code string, attached *uint256.Int) (*Code, *uint256.Int, error) {
	if e.state == nil {
		return nil, nil, ErrNilState
	}
	if err := checkCode(code); err != nil {
		return nil, nil, err
	}
	if attached == nil || attached.Cmp(CreateFeeNative) < 0 {
		return nil, nil, ErrInsufficientFee
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok, err := e.state.GetReferralCode(code); err != nil {
		return nil, nil, err
	} else if ok {
		return nil, nil, ErrCodeExists
	}

	rc := &Code{Code: code, Owner: account, Tier: Tier1}
	if err := e.state.PutReferralCode(rc); err != nil {
		return nil, nil, err
	}

	refund := new(uint256.Int).Sub(attached, CreateFeeNative)
	e.emit(newCreateReferralCodeEvent(account, code))
	return rc, refund, nil
}

// SetUserReferralCode associates account with a referrer's code for
// downstream fee-rebate accounting. Mirrors original_source's
// set_user_referral_code: it validates the code's shape only, not that a
// registered owner exists for it, since the original contract never
// checks referral_code_owners here either.
func (e *Engine) SetUserReferralCode(account, code string, attached *uint256.Int) (*uint256.Int, error) {
	if e.state == nil {
		return nil, ErrNilState
	}
	if err := checkCode(code); err != nil {
		return nil, err
	}
	if attached == nil || attached.Cmp(SetFeeNative) < 0 {
		return nil, ErrInsufficientFee
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.state.PutUserReferralCode(account, code); err != nil {
		return nil, err
	}

	refund := new(uint256.Int).Sub(attached, SetFeeNative)
	e.emit(newSetReferralCodeEvent(account, code))
	return refund, nil
}

// SetReferrerTier changes an existing code's tier. The caller is
// responsible for admin authorization before calling this. Unlike
// original_source's silent no-op on an unknown code, this reports
// ErrCodeNotFound so callers can distinguish a no-op from a real update.
func (e *Engine) SetReferrerTier(code string, tier Tier) (*Code, error) {
	if e.state == nil {
		return nil, ErrNilState
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	existing, ok, err := e.state.GetReferralCode(code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCodeNotFound
	}

	updated := &Code{Code: code, Owner: existing.Owner, Tier: tier}
	if err := e.state.PutReferralCode(updated); err != nil {
		return nil, err
	}

	e.emit(newSetReferrerTierEvent(existing.Owner, code, tier))
	return updated, nil
}

// ReferralCodeOwner looks up the account that registered code, if any.
func (e *Engine) ReferralCodeOwner(code string) (string, bool, error) {
	if e.state == nil {
		return "", false, ErrNilState
	}
	rc, ok, err := e.state.GetReferralCode(code)
	if err != nil || !ok {
		return "", ok, err
	}
	return rc.Owner, true, nil
}

// UserReferralCode looks up the code an account has attached itself to.
func (e *Engine) UserReferralCode(account string) (string, bool, error) {
	if e.state == nil {
		return "", false, ErrNilState
	}
	return e.state.GetUserReferralCode(account)
}
