package model

import "time"

// Charge is a single debit read from a bank or card statement.
type Charge struct {
	Date      time.Time
	ID        string
	Payee     string
	AccountID string
	Currency  string
	Amount    float64 // Always positive
}
