package melody

import (
	"strings"
	"unicode"
)

// CountSyllables approximates the syllable count of text by counting
// maximal runs of the letters a, e, i, o, u and y. It is not phonetic and
// knows nothing about silent letters, so "there" counts as two. Any
// non-empty text counts as at least one; empty text counts as zero.
func CountSyllables(text string) int {
	if text == "" {
		return 0
	}
	count := 0
	prevVowel := false
	for _, r := range text {
		v := isVowel(unicode.ToLower(r))
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}
	return max(count, 1)
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

// ScoreLyrics counts syllables line by line. Blank lines are skipped and
// each remaining line counts for at least one syllable. The score is for
// reporting only.
func ScoreLyrics(text string) LyricScore {
	score := LyricScore{Lines: []string{}, PerLine: []int{}}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		n := CountSyllables(line)
		score.Lines = append(score.Lines, line)
		score.PerLine = append(score.PerLine, n)
		score.Total += n
	}
	return score
}
