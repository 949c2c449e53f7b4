package errors

import "errors"

var (
	ErrInvalidCampaignInput   = errors.New("campaign input is invalid")
	ErrCampaignNotFound       = errors.New("campaign not found")
	ErrPublisherNotRegistered = errors.New("publisher is not registered")
	ErrInvalidStateTransition = errors.New("invalid campaign state transition")
	ErrUnauthorizedCaller     = errors.New("caller is not authorized for this transition")
	ErrExpiryDeadlineNotDue   = errors.New("pending-expiry deadline has not passed")
	ErrInsufficientBudget     = errors.New("amount exceeds remaining campaign budget")
	ErrDailyCapExceeded       = errors.New("amount exceeds remaining daily spend cap")
)
