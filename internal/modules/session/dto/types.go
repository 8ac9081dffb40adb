package dto

import (
	"time"

	"yuki/internal/platform/task"
)

type EnterInput struct {
	LevelID      int
	LevelName    string
	LevelCreator string
	CoinCount    int
	Practice     bool
}

type SessionOutput struct {
	SessionID    string
	LevelID      int
	LevelName    string
	LevelCreator string
	Practice     bool
	State        string
	Attempts     int
	Current      int
	Best         int
	Completed    bool
	Coins        []bool
	Reports      int
	StartedAt    time.Time
}

type AttemptOutput struct {
	Incremented     bool
	DeathPercentage int
	Attempts        int
	Submitted       bool
}

type OutcomeOutput struct {
	Submitted bool
}

type ExitOutput struct {
	Session     SessionOutput
	EndedBy     string
	EndedAt     time.Time
	JournalPath string
	// Outstanding holds the submissions still in flight when the session
	// ended. Waiting on them is optional.
	Outstanding []*task.Handle
}
