package wizard

import (
	"errors"
	"fmt"
	"time"
)

type ValidityPreset string

const (
	PresetNone    ValidityPreset = ""
	Preset30Days  ValidityPreset = "30days"
	Preset6Months ValidityPreset = "6months"
	Preset9Months ValidityPreset = "9months"
	Preset1Year   ValidityPreset = "1year"
	PresetCustom  ValidityPreset = "custom"
)

var ErrUnknownPreset = errors.New("unknown validity preset")

// EndFrom returns the end date the preset derives from now. Custom and the
// empty preset derive nothing.
func (p ValidityPreset) EndFrom(now time.Time) (time.Time, bool) {
	switch p {
	case Preset30Days:
		return now.AddDate(0, 0, 30), true
	case Preset6Months:
		return now.AddDate(0, 6, 0), true
	case Preset9Months:
		return now.AddDate(0, 9, 0), true
	case Preset1Year:
		return now.AddDate(1, 0, 0), true
	default:
		return time.Time{}, false
	}
}

func (p ValidityPreset) IsValid() bool {
	switch p {
	case Preset30Days, Preset6Months, Preset9Months, Preset1Year, PresetCustom:
		return true
	default:
		return false
	}
}

// SelectPreset applies a validity preset. A fixed preset always overwrites both
// dates with now and now+offset, discarding manual edits. Custom only switches
// the preset and keeps whatever dates are already chosen.
func SelectPreset(s State, preset ValidityPreset, now time.Time) (State, error) {
	if !preset.IsValid() {
		return s, fmt.Errorf("%w: %q", ErrUnknownPreset, preset)
	}

	out := s.clone()
	out.Draft.ValidityPreset = preset
	end, ok := preset.EndFrom(now)
	if !ok {
		return out, nil
	}
	start := now
	out.Draft.StartDate = &start
	out.Draft.EndDate = &end
	return out, nil
}

// SetCustomDates writes manually entered dates and marks the period custom.
// A nil date clears that side of the period.
func SetCustomDates(s State, start, end *time.Time) State {
	out := s.clone()
	out.Draft.ValidityPreset = PresetCustom
	out.Draft.StartDate = copyTime(start)
	out.Draft.EndDate = copyTime(end)
	return out
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
