package domain

import "time"

const SchemaVersion = 1

type State int

const (
	StateFresh State = iota
	StateInProgress
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateInProgress:
		return "in_progress"
	case StateCompleted:
		return "completed"
	default:
		return "fresh"
	}
}

// Level identifies what is being played. It never changes during a session.
type Level struct {
	ID        int
	Name      string
	Creator   string
	CoinCount int
}

// Session is the bookkeeping of one continuous play sequence on a level,
// from entry to exit. It is owned by a single goroutine and is not safe for
// concurrent use.
//
// Invariants: 0 <= current <= best <= 100 (current is 0 right after a
// reset), len(coins) == Level.CoinCount, and once completed the session no
// longer counts attempts.
type Session struct {
	id         string
	level      Level
	practice   bool
	startedAt  time.Time
	attempts   int
	current    int
	best       int
	completed  bool
	touched    bool
	coins      []bool
	lastSubmit time.Time
	reports    int
}

// Start opens a session. The last submit time is backdated by rateWindow so
// the first death is eligible right away.
func Start(id string, level Level, practice bool, now time.Time, rateWindow time.Duration) *Session {
	if level.CoinCount < 0 {
		level.CoinCount = 0
	}
	return &Session{
		id:         id,
		level:      level,
		practice:   practice,
		startedAt:  now,
		coins:      make([]bool, level.CoinCount),
		lastSubmit: now.Add(-rateWindow),
	}
}

// OnProgress records the percentage reached in the current attempt. It runs
// every frame, so it only touches two integers.
func (s *Session) OnProgress(percentage int) {
	percentage = clampPercent(percentage)
	s.touched = true
	s.current = percentage
	if percentage > s.best {
		s.best = percentage
	}
}

// OnAttemptEnd closes the current attempt and returns the percentage it
// reached. The attempt that finished the level is not a reset, so a completed
// session keeps its attempt count.
func (s *Session) OnAttemptEnd() (incremented bool, deathPercentage int) {
	s.touched = true
	deathPercentage = s.current
	if !s.completed {
		s.attempts++
		incremented = true
	}
	s.current = 0
	return incremented, deathPercentage
}

// OnCompletion marks the level finished and rebuilds the coin flags from the
// verified coin count; earlier flags are discarded.
func (s *Session) OnCompletion(verifiedCoins int) {
	s.touched = true
	s.completed = true
	s.best = 100
	for i := range s.coins {
		s.coins[i] = i < verifiedCoins
	}
}

// MarkSubmitted stamps an accepted submission.
func (s *Session) MarkSubmitted(now time.Time) {
	s.lastSubmit = now
	s.reports++
}

func (s *Session) State() State {
	switch {
	case s.completed:
		return StateCompleted
	case s.touched:
		return StateInProgress
	default:
		return StateFresh
	}
}

func (s *Session) ID() string            { return s.id }
func (s *Session) Level() Level          { return s.level }
func (s *Session) Practice() bool        { return s.practice }
func (s *Session) StartedAt() time.Time  { return s.startedAt }
func (s *Session) Attempts() int         { return s.attempts }
func (s *Session) Current() int          { return s.current }
func (s *Session) Best() int             { return s.best }
func (s *Session) Completed() bool       { return s.completed }
func (s *Session) LastSubmit() time.Time { return s.lastSubmit }
func (s *Session) Reports() int          { return s.reports }

// Coins returns a copy of the per-coin flags.
func (s *Session) Coins() []bool {
	out := make([]bool, len(s.coins))
	copy(out, s.coins)
	return out
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// Summary is what is kept of a session after exit.
type Summary struct {
	SessionID string
	Level     Level
	Practice  bool
	StartedAt time.Time
	EndedAt   time.Time
	EndedBy   string
	Attempts  int
	Best      int
	Completed bool
	Coins     []bool
	Reports   int
}

// Ways a session can end.
const (
	EndedByExit = "exit"
	EndedByQuit = "quit"
)

func (s *Session) Summarize(endedAt time.Time, endedBy string) Summary {
	return Summary{
		SessionID: s.id,
		Level:     s.level,
		Practice:  s.practice,
		StartedAt: s.startedAt,
		EndedAt:   endedAt,
		EndedBy:   endedBy,
		Attempts:  s.attempts,
		Best:      s.best,
		Completed: s.completed,
		Coins:     s.Coins(),
		Reports:   s.reports,
	}
}
