package domain

import "time"

// MaxPending bounds the submissions waiting behind the one in flight.
const MaxPending = 32

// Record is one gameplay outcome to report.
type Record struct {
	SessionID    string
	LevelID      int
	LevelName    string
	LevelCreator string
	Percentage   int
	Attempts     int
	Passed       bool
	Practice     bool
	Coins        []bool
}

type Identity struct {
	AccountID int
	Username  string
}

// Payload is the body of POST /api/scores. Coins keep their order and
// length; a level without coins sends an empty array.
type Payload struct {
	AuthToken      string `json:"auth_token"`
	AccountID      int    `json:"gd_account_id"`
	Username       string `json:"gd_username"`
	LevelID        int    `json:"level_id"`
	Percentage     int    `json:"percentage"`
	Attempts       int    `json:"attempts"`
	Passed         bool   `json:"passed"`
	IsPractice     bool   `json:"is_practice"`
	CoinsCollected []bool `json:"coins_collected"`
}

func NewPayload(token string, who Identity, r Record) Payload {
	coins := make([]bool, len(r.Coins))
	copy(coins, r.Coins)
	return Payload{
		AuthToken:      token,
		AccountID:      who.AccountID,
		Username:       who.Username,
		LevelID:        r.LevelID,
		Percentage:     r.Percentage,
		Attempts:       r.Attempts,
		Passed:         r.Passed,
		IsPractice:     r.Practice,
		CoinsCollected: coins,
	}
}

type Status string

const (
	StatusSent      Status = "sent"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
	StatusSkipped   Status = "skipped"
)

// Entry is the local history line kept for every submission attempt.
type Entry struct {
	ID          int64
	Record      Record
	Status      Status
	Detail      string
	SubmittedAt time.Time
}
