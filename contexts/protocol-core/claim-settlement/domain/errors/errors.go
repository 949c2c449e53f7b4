package errors

import "errors"

var (
	ErrInvalidBatchInput  = errors.New("invalid claim batch input")
	ErrBatchTooLarge      = errors.New("claim batch exceeds maximum size")
	ErrUnauthorizedCaller = errors.New("caller is not authorized for this operation")
	ErrNothingToWithdraw  = errors.New("no withdrawable balance for this address")
	ErrChainStateNotFound = errors.New("no accepted claims for this user and campaign")
	ErrBudgetUnavailable  = errors.New("ledger refused the budget deduction")
)
