package aiquota

import "errors"

// ErrQuotaExhausted is returned when a user has no AI questions left for the
// current month.
var ErrQuotaExhausted = errors.New("ai question quota exhausted")

// DefaultQuota is the number of free-form AI questions granted per month.
const DefaultQuota = 100
