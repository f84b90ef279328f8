package melody

// DefaultPhraseBreak is the silence, in seconds, that ends a phrase.
const DefaultPhraseBreak = 0.3

// SegmentPhrases splits notes wherever the gap between one note's end and
// the next note's start exceeds breakThreshold. Every note lands in exactly
// one phrase and order is kept.
func SegmentPhrases(notes []Note, breakThreshold float64) []Phrase {
	phrases := []Phrase{}
	if len(notes) == 0 {
		return phrases
	}

	start := 0
	for i := 1; i < len(notes); i++ {
		if notes[i].StartTime-notes[i-1].EndTime > breakThreshold {
			phrases = append(phrases, Phrase{Notes: notes[start:i:i]})
			start = i
		}
	}
	return append(phrases, Phrase{Notes: notes[start:len(notes):len(notes)]})
}
