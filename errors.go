package main

import "errors"

// Expected rejection reasons. These are reported to the player with the
// profile left unchanged; they never halt the tap loop.
var (
	ErrInsufficientFunds = errors.New("INSUFFICIENT_FUNDS")
	ErrMaxLevelReached   = errors.New("MAX_LEVEL_REACHED")
	ErrAlreadyClaimed    = errors.New("ALREADY_CLAIMED")
	ErrRequirementNotMet = errors.New("REQUIREMENT_NOT_MET")
	ErrOutOfEnergy       = errors.New("OUT_OF_ENERGY")
	ErrUnknownID         = errors.New("UNKNOWN_ID")
)

func rejectReason(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
