package models

import "time"

// Verdict is the outcome of grading one answer.
type Verdict string

const (
	VerdictCorrect       Verdict = "correct"
	VerdictAlmostCorrect Verdict = "almost_correct"
	VerdictIncorrect     Verdict = "incorrect"
)

// Direction controls which side of a practice item is asked for.
// Forward shows the word and expects the translation; Reverse the opposite.
type Direction string

const (
	DirectionForward Direction = "forward"
	DirectionReverse Direction = "reverse"
)

func (d Direction) Valid() bool {
	return d == DirectionForward || d == DirectionReverse
}

type Settings struct {
	IncorrectRepetitions     int `json:"incorrect_repetitions"`
	AlmostCorrectRepetitions int `json:"almost_correct_repetitions"`
	PreviewDelay             int `json:"preview_delay"`
}

type Score struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

func (s Score) Add(o Score) Score {
	return Score{Correct: s.Correct + o.Correct, Total: s.Total + o.Total}
}

type SessionResult struct {
	ID         int64     `json:"id"`
	DeckID     int64     `json:"deck_id"`
	Direction  Direction `json:"direction"`
	Correct    int       `json:"correct"`
	Total      int       `json:"total"`
	FinishedAt time.Time `json:"finished_at"`
}
