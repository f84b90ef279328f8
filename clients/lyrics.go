package clients

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/maastricht-university/melody-pipeline/melody"
)

// CreativeParams is the free-text direction for a lyric request.
type CreativeParams struct {
	Prompt string `json:"prompt" yaml:"prompt"`
	Genre  string `json:"genre" yaml:"genre"`
	Theme  string `json:"theme,omitempty" yaml:"theme,omitempty"`
	Mood   string `json:"mood,omitempty" yaml:"mood,omitempty"`
	Style  string `json:"style,omitempty" yaml:"style,omitempty"`
}

// LyricRequest carries everything a lyric writer needs about the melody.
type LyricRequest struct {
	Budget   melody.SyllableBudget `json:"budget" yaml:"budget"`
	Summary  melody.MelodySummary  `json:"summary" yaml:"summary"`
	Creative CreativeParams        `json:"creative" yaml:"creative"`
}

const lyricSystemPrompt = `You are an expert songwriter and lyricist. Your task is to write lyrics that match a specific melody structure.

Key Requirements:
1. Match the syllable count as closely as possible to the melody structure
2. Create natural, flowing lyrics that sound good when sung
3. Stay true to the genre, theme, and mood requested
4. Use simple, singable words (avoid complex consonant clusters)
5. Consider the melody's rhythm when choosing words

Output Format:
Return ONLY the lyrics, with each line on a new line. No explanations, no metadata, just the lyrics.`

// BuildLyricPrompt renders the system and user messages for a request.
func BuildLyricPrompt(req LyricRequest) (system, user string) {
	genre := req.Creative.Genre
	if genre == "" {
		genre = "pop"
	}
	perPhrase := make([]string, len(req.Budget.PerPhraseTargets))
	for i, n := range req.Budget.PerPhraseTargets {
		perPhrase[i] = strconv.Itoa(n)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Write lyrics for a %s song with the following specifications:\n\n", genre)
	b.WriteString("MELODY STRUCTURE:\n")
	fmt.Fprintf(&b, "- Total duration: %.1f seconds\n", req.Summary.TotalDuration)
	fmt.Fprintf(&b, "- Number of melodic phrases: %d\n", req.Budget.PhraseCount)
	fmt.Fprintf(&b, "- Estimated total syllables: %d\n", req.Budget.TargetTotalSyllables)
	fmt.Fprintf(&b, "- Syllables per phrase: %s\n", strings.Join(perPhrase, ", "))
	if req.Summary.KeyEstimate != "" && req.Summary.KeyEstimate != melody.UnknownKey {
		fmt.Fprintf(&b, "- Tonal center: %s\n", req.Summary.KeyEstimate)
	}
	b.WriteString("\nCREATIVE DIRECTION:\n")
	fmt.Fprintf(&b, "- Main idea/prompt: %s\n", req.Creative.Prompt)
	if req.Creative.Theme != "" {
		fmt.Fprintf(&b, "- Theme: %s\n", req.Creative.Theme)
	}
	if req.Creative.Mood != "" {
		fmt.Fprintf(&b, "- Mood: %s\n", req.Creative.Mood)
	}
	if req.Creative.Style != "" {
		fmt.Fprintf(&b, "- Style reference: %s\n", req.Creative.Style)
	}
	b.WriteString("\nGenerate lyrics that match the melody structure. ")
	b.WriteString("Each phrase should have approximately the syllable count specified. ")
	b.WriteString("Make the lyrics catchy, memorable, and appropriate for the genre.\n\nLYRICS:")

	return lyricSystemPrompt, b.String()
}
