package melody

import "math"

// DefaultSyllablesPerSecond is the singing rate used for the total target.
const DefaultSyllablesPerSecond = 3.0

// Budget derives syllable targets from phrase structure.
//
// Each note carries one syllable, so a phrase's target is its note count.
// The overall target is total note duration times syllablesPerSecond,
// rounded. The two figures come from different rules and are reported side
// by side without being reconciled.
func Budget(phrases []Phrase, syllablesPerSecond float64) SyllableBudget {
	perPhrase := make([]int, len(phrases))
	var total float64
	for i, p := range phrases {
		perPhrase[i] = len(p.Notes)
		for _, n := range p.Notes {
			total += n.Duration
		}
	}
	return SyllableBudget{
		TargetTotalSyllables: int(math.Round(total * syllablesPerSecond)),
		PerPhraseTargets:     perPhrase,
		PhraseCount:          len(phrases),
	}
}
