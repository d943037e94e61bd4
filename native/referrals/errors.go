package referrals

import "errors"

var (
	ErrNilState        = errors.New("referrals: state not configured")
	ErrEmptyCode       = errors.New("referrals: referral code length can not be 0")
	ErrCodeTooLong     = errors.New("referrals: referral code exceeds maximum length")
	ErrCodeExists      = errors.New("referrals: referral code already exists")
	ErrCodeNotFound    = errors.New("referrals: referral code not found")
	ErrInsufficientFee = errors.New("referrals: attached amount below required fee")
)
