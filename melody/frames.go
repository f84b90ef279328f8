package melody

import (
	"fmt"
	"math"
)

// NewPitchTrack zips the parallel arrays returned by a pitch tracker into
// frames. When times is nil the frame times are derived from the hop. When
// hop is zero it is taken from the first two timestamps.
func NewPitchTrack(times, freqs, confs []float64, hop float64) (PitchTrack, error) {
	if len(freqs) != len(confs) {
		return PitchTrack{}, &MalformedInputError{Index: -1,
			Reason: fmt.Sprintf("frequency/confidence length mismatch: %d vs %d", len(freqs), len(confs))}
	}
	if times != nil && len(times) != len(freqs) {
		return PitchTrack{}, &MalformedInputError{Index: -1,
			Reason: fmt.Sprintf("time/frequency length mismatch: %d vs %d", len(times), len(freqs))}
	}
	if hop == 0 && len(times) >= 2 {
		hop = times[1] - times[0]
	}
	if times == nil && len(freqs) > 0 && !(hop > 0) {
		return PitchTrack{}, &MalformedInputError{Index: -1, Reason: fmt.Sprintf("hop must be positive, got %v", hop)}
	}

	frames := make([]PitchFrame, len(freqs))
	for i := range freqs {
		t := float64(i) * hop
		if times != nil {
			t = times[i]
		}
		frames[i] = PitchFrame{Time: t, FrequencyHz: freqs[i], Confidence: confs[i]}
	}
	track := PitchTrack{Hop: hop, Frames: frames}
	if err := ValidateFrames(track.Frames); err != nil {
		return PitchTrack{}, err
	}
	return track, nil
}

// ValidateFrames checks ordering and numeric ranges. It reports the first
// offending frame and does no partial work.
func ValidateFrames(frames []PitchFrame) error {
	for i, f := range frames {
		switch {
		case math.IsNaN(f.Time) || math.IsInf(f.Time, 0):
			return &MalformedInputError{Index: i, Reason: "time is not finite"}
		case math.IsNaN(f.FrequencyHz) || math.IsInf(f.FrequencyHz, 0) || f.FrequencyHz < 0:
			return &MalformedInputError{Index: i, Reason: fmt.Sprintf("frequency %v out of range", f.FrequencyHz)}
		case math.IsNaN(f.Confidence) || f.Confidence < 0 || f.Confidence > 1:
			return &MalformedInputError{Index: i, Reason: fmt.Sprintf("confidence %v outside [0,1]", f.Confidence)}
		case i > 0 && f.Time <= frames[i-1].Time:
			return &MalformedInputError{Index: i, Reason: fmt.Sprintf("time %v not after %v", f.Time, frames[i-1].Time)}
		}
	}
	return nil
}
