package dto

import "time"

type SubmitInput struct {
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

type HistoryEntry struct {
	LevelID     int
	LevelName   string
	Percentage  int
	Attempts    int
	Passed      bool
	Practice    bool
	Coins       []bool
	Status      string
	Detail      string
	SubmittedAt time.Time
}
