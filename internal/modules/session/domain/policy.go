package domain

import "time"

const (
	MinPercentageToSubmit    = 5
	MinSecondsBetweenSubmits = 5 * time.Second
)

// Settings are the inputs of a submission decision besides the session.
// SubmitFails only matters for deaths.
type Settings struct {
	AutoSubmit  bool
	SubmitFails bool
	Linked      bool
}

// ShouldSubmitDeath decides whether the attempt that just failed at
// deathPercentage gets reported. Practice runs and completed sessions never
// report deaths; otherwise the player must have opted in, be linked, have
// reached the minimum percentage and be outside the rate limit window.
func ShouldSubmitDeath(s *Session, deathPercentage int, settings Settings, now time.Time) bool {
	if s.practice || s.completed {
		return false
	}
	if !settings.AutoSubmit || !settings.SubmitFails || !settings.Linked {
		return false
	}
	if deathPercentage < MinPercentageToSubmit {
		return false
	}
	return now.Sub(s.lastSubmit) >= MinSecondsBetweenSubmits
}

// ShouldSubmitOutcome decides whether a pass (end screen) or fail outcome is
// reported. Practice passes are allowed, practice fails are not. No rate
// limit applies: the end screen fires once per completion.
func ShouldSubmitOutcome(s *Session, passed bool, settings Settings) bool {
	if s.practice && !passed {
		return false
	}
	return settings.Linked && settings.AutoSubmit
}

// ScoreRecord is the report handed to the submission client.
type ScoreRecord struct {
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

// DeathRecord reports the attempt that failed at deathPercentage. Deaths are
// never reported from practice, so the record is never a practice one.
func DeathRecord(s *Session, deathPercentage int) ScoreRecord {
	return s.record(deathPercentage, false, false)
}

// OutcomeRecord reports a pass at 100% or a fail at the best percentage.
func OutcomeRecord(s *Session, passed bool) ScoreRecord {
	pct := s.best
	if passed {
		pct = 100
	}
	return s.record(pct, passed, s.practice)
}

func (s *Session) record(pct int, passed, practice bool) ScoreRecord {
	return ScoreRecord{
		SessionID:    s.id,
		LevelID:      s.level.ID,
		LevelName:    s.level.Name,
		LevelCreator: s.level.Creator,
		Percentage:   pct,
		Attempts:     s.attempts,
		Passed:       passed,
		Practice:     practice,
		Coins:        s.Coins(),
	}
}
