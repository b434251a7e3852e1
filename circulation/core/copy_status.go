package core

import (
	"fmt"
	"strings"
)

// CopyStatus is the lifecycle state of a physical copy.
type CopyStatus string

const (
	StatusAvailable CopyStatus = "Available"
	StatusIssued    CopyStatus = "Issued"
	StatusDamaged   CopyStatus = "Damaged"
	StatusLost      CopyStatus = "Lost"
)

// ParseCopyStatus accepts the status names case-insensitively.
func ParseCopyStatus(s string) (CopyStatus, error) {
	for _, status := range []CopyStatus{StatusAvailable, StatusIssued, StatusDamaged, StatusLost} {
		if strings.EqualFold(s, string(status)) {
			return status, nil
		}
	}

	return "", fmt.Errorf("unknown copy status %q", s)
}

// ReturnCondition describes the state a copy comes back in.
type ReturnCondition string

const (
	ConditionGood    ReturnCondition = "Good"
	ConditionDamaged ReturnCondition = "Damaged"
	ConditionLost    ReturnCondition = "Lost"
)

// ParseReturnCondition maps user input to a ReturnCondition, empty means Good.
func ParseReturnCondition(s string) (ReturnCondition, error) {
	if s == "" {
		return ConditionGood, nil
	}

	for _, condition := range []ReturnCondition{ConditionGood, ConditionDamaged, ConditionLost} {
		if strings.EqualFold(s, string(condition)) {
			return condition, nil
		}
	}

	return "", fmt.Errorf("unknown return condition %q", s)
}
