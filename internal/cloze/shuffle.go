package cloze

import "math/rand"

// Shuffle reorders the questions of a cloze text uniformly at random and
// renumbers its blanks. The returned answers follow the new numbering.
func Shuffle(text string, answers []string, rng *rand.Rand) (string, []string) {
	questions := Parse(text)
	rng.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
	return Render(questions, answers)
}
