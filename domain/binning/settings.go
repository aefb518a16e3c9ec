package binning

import (
	"fmt"
	"time"

	"phenolab/domain/colony"
	"phenolab/domain/core"
)

// Mode selects which binning strategy is active
type Mode string

const (
	ModeIntervals Mode = "intervals"
	ModeCycles    Mode = "cycles"
	ModePhases    Mode = "phases"
)

// Valid reports whether the mode is a supported binning strategy
func (m Mode) Valid() bool {
	switch m {
	case ModeIntervals, ModeCycles, ModePhases:
		return true
	}
	return false
}

// Unit is the base width of a fixed binning interval
type Unit string

const (
	UnitDay    Unit = "day"
	UnitHour   Unit = "hour"
	UnitMinute Unit = "minute"
)

// Duration returns the time.Duration for one unit
func (u Unit) Duration() time.Duration {
	switch u {
	case UnitDay:
		return 24 * time.Hour
	case UnitHour:
		return time.Hour
	case UnitMinute:
		return time.Minute
	default:
		return time.Hour
	}
}

// IntervalsSettings configures fixed-width interval binning
type IntervalsSettings struct {
	Unit  Unit `json:"unit"`
	Delta int  `json:"delta"`

	// Origin anchors the resampling grid at a fixed elapsed-time offset.
	// When nil, each animal's grid is anchored at elapsed time zero.
	Origin *time.Duration `json:"origin,omitempty"`
}

// Interval returns the bin width
func (s IntervalsSettings) Interval() time.Duration {
	return time.Duration(s.Delta) * s.Unit.Duration()
}

// Validate checks that the interval is positive
func (s IntervalsSettings) Validate() error {
	if s.Delta <= 0 {
		return fmt.Errorf("%w: delta %d %s", core.ErrInvalidInterval, s.Delta, s.Unit)
	}
	return nil
}

// ClockTime is a wall-clock time of day expressed as an offset from midnight
type ClockTime time.Duration

// ParseClock parses "HH:MM" into a ClockTime
func ParseClock(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return ClockTime(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute), nil
}

// Duration returns the offset from midnight
func (c ClockTime) Duration() time.Duration { return time.Duration(c) }

// OfTime returns the ClockTime of a timestamp
func OfTime(t time.Time) ClockTime {
	return ClockTime(time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond()))
}

func (c ClockTime) String() string {
	d := time.Duration(c)
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

// CyclesSettings configures light/dark cycle binning.
//
// Classification is the single test lightStart <= t < darkStart. When
// DarkStart precedes LightStart on the 24h clock the same literal test still
// applies; adding a wrap-around case would re-bin every existing report.
type CyclesSettings struct {
	LightStart ClockTime `json:"light_start"`
	DarkStart  ClockTime `json:"dark_start"`
}

// PhasesSettings configures user-named phase binning
type PhasesSettings struct {
	Phases []colony.TimePhase `json:"phases"`
}

// Sorted returns the phases ordered ascending by start offset without
// mutating the stored list
func (s PhasesSettings) Sorted() []colony.TimePhase {
	return colony.SortPhases(s.Phases)
}

// Settings is the discriminated binning configuration. Only the sub-object
// matching Mode is consulted when Apply is true.
type Settings struct {
	Apply     bool              `json:"apply"`
	Mode      Mode              `json:"mode"`
	Intervals IntervalsSettings `json:"intervals"`
	Cycles    CyclesSettings    `json:"cycles"`
	Phases    PhasesSettings    `json:"phases"`
}

// DefaultSettings returns binning disabled with one-hour intervals and a
// 07:00/19:00 light cycle
func DefaultSettings() Settings {
	return Settings{
		Apply: false,
		Mode:  ModeIntervals,
		Intervals: IntervalsSettings{
			Unit:  UnitHour,
			Delta: 1,
		},
		Cycles: CyclesSettings{
			LightStart: ClockTime(7 * time.Hour),
			DarkStart:  ClockTime(19 * time.Hour),
		},
	}
}
