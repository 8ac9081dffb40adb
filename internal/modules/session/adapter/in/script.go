package in

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "yuki/internal/platform/errors"
)

// Script is a recorded level session: the level being played and the
// host callbacks in the order they fired. Offsets are relative to entry.
//
//	level: {id: 128, name: Stereo Madness, creator: RobTop, coins: 3}
//	practice: false
//	events:
//	  - {at: 1s, progress: 42}
//	  - {at: 2s, reset: true}
//	  - {at: 40s, complete: 2}
//	  - {at: 41s, end_screen: true}
//	  - {at: 45s, quit: true}
type Script struct {
	Level    ScriptLevel `yaml:"level"`
	Practice bool        `yaml:"practice"`
	Events   []Event     `yaml:"events"`
}

type ScriptLevel struct {
	ID      int    `yaml:"id"`
	Name    string `yaml:"name"`
	Creator string `yaml:"creator"`
	Coins   int    `yaml:"coins"`
}

// Event is one host callback. Exactly one action is set.
type Event struct {
	At        time.Duration `yaml:"at"`
	Progress  *int          `yaml:"progress"`
	Reset     bool          `yaml:"reset"`
	Complete  *int          `yaml:"complete"`
	EndScreen bool          `yaml:"end_screen"`
	Fail      bool          `yaml:"fail"`
	Quit      bool          `yaml:"quit"`
}

const (
	KindProgress  = "progress"
	KindReset     = "reset"
	KindComplete  = "complete"
	KindEndScreen = "end_screen"
	KindFail      = "fail"
	KindQuit      = "quit"
)

// Kind names the event's action, or "" when none or several are set.
func (e Event) Kind() string {
	kinds := make([]string, 0, 1)
	if e.Progress != nil {
		kinds = append(kinds, KindProgress)
	}
	if e.Reset {
		kinds = append(kinds, KindReset)
	}
	if e.Complete != nil {
		kinds = append(kinds, KindComplete)
	}
	if e.EndScreen {
		kinds = append(kinds, KindEndScreen)
	}
	if e.Fail {
		kinds = append(kinds, KindFail)
	}
	if e.Quit {
		kinds = append(kinds, KindQuit)
	}
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

func ParseScript(r io.Reader) (Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var s Script
	if err := dec.Decode(&s); err != nil {
		if err == io.EOF {
			return Script{}, fmt.Errorf("%w: empty script", apperrors.ErrInvalidInput)
		}
		return Script{}, fmt.Errorf("%w: decode script: %v", apperrors.ErrInvalidInput, err)
	}
	if err := s.Validate(); err != nil {
		return Script{}, err
	}
	return s, nil
}

func (s Script) Validate() error {
	if s.Level.ID == 0 {
		return fmt.Errorf("%w: level id is required", apperrors.ErrInvalidInput)
	}
	if s.Level.Coins < 0 {
		return fmt.Errorf("%w: negative coin count", apperrors.ErrInvalidInput)
	}
	var last time.Duration
	for idx, e := range s.Events {
		kind := e.Kind()
		if kind == "" {
			return fmt.Errorf("%w: event %d must set exactly one action", apperrors.ErrInvalidInput, idx)
		}
		if e.At < last {
			return fmt.Errorf("%w: event %d goes back in time", apperrors.ErrInvalidInput, idx)
		}
		last = e.At
		if kind == KindQuit && idx != len(s.Events)-1 {
			return fmt.Errorf("%w: quit must be the last event", apperrors.ErrInvalidInput)
		}
	}
	return nil
}
