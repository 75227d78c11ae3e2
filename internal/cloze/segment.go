// Package cloze splits cloze-test text into questions and reorders them
// while keeping every blank paired with its answer.
package cloze

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	blankRe = regexp.MustCompile(`\((\d+)\)`)

	numberedQuestionRe = regexp.MustCompile(`\n\s*\d+\. `)
	blankLineRe        = regexp.MustCompile(`\n\s*\n`)
	capitalLineRe      = regexp.MustCompile(`\n\p{Lu}`)
)

// Fragment is either literal text or a blank. For blanks, Blank is the index
// into the original answer list.
type Fragment struct {
	Text    string
	Blank   int
	IsBlank bool
}

// Question is one shuffle unit: its fragments in original order.
type Question struct {
	Fragments []Fragment
}

// Blanks returns the original answer indices referenced by q, in order.
func (q Question) Blanks() []int {
	var out []int
	for _, f := range q.Fragments {
		if f.IsBlank {
			out = append(out, f.Blank)
		}
	}
	return out
}

// empty reports whether q has no blanks and nothing but whitespace.
func (q Question) empty() bool {
	for _, f := range q.Fragments {
		if f.IsBlank || strings.TrimSpace(f.Text) != "" {
			return false
		}
	}
	return true
}

type token struct {
	text  string
	blank int
	isTxt bool
}

// tokenize alternates text and blank tokens. Blank "(n)" maps to index n-1.
func tokenize(text string) []token {
	var toks []token
	last := 0
	for _, m := range blankRe.FindAllStringSubmatchIndex(text, -1) {
		toks = append(toks, token{text: text[last:m[0]], isTxt: true})
		n, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			// Out of int range; keep it as plain text.
			toks[len(toks)-1].text += text[m[0]:m[1]]
			last = m[1]
			continue
		}
		toks = append(toks, token{blank: n - 1})
		last = m[1]
	}
	return append(toks, token{text: text[last:], isTxt: true})
}

// splitBoundary checks the text that follows a blank for the start of a new
// question. It returns the part that closes the current question, the part
// that opens the next one, and whether a boundary was found. Rules are tried
// in order: a numbered line ("\n2. "), a blank line, a line starting with a
// capital letter.
func splitBoundary(text string) (closing, opening string, ok bool) {
	if loc := numberedQuestionRe.FindStringIndex(text); loc != nil {
		return text[:loc[0]], text[loc[0]:], true
	}
	if loc := blankLineRe.FindStringIndex(text); loc != nil {
		return text[:loc[0]], text[loc[1]:], true
	}
	if loc := capitalLineRe.FindStringIndex(text); loc != nil {
		return text[:loc[0]], text[loc[0]+1:], true
	}
	return text, "", false
}

// Parse splits cloze text into questions. Text before the first blank
// belongs to the first question; each text run after a blank may close the
// current question and open the next.
func Parse(text string) []Question {
	var (
		questions []Question
		current   Question
		seenBlank bool
	)
	for _, tok := range tokenize(text) {
		if !tok.isTxt {
			current.Fragments = append(current.Fragments, Fragment{Blank: tok.blank, IsBlank: true})
			seenBlank = true
			continue
		}
		if !seenBlank {
			current.Fragments = appendText(current.Fragments, tok.text)
			continue
		}
		closing, opening, ok := splitBoundary(tok.text)
		current.Fragments = appendText(current.Fragments, closing)
		if !ok {
			continue
		}
		questions = append(questions, current)
		current = Question{Fragments: appendText(nil, opening)}
		seenBlank = false
	}
	if !current.empty() {
		questions = append(questions, current)
	}
	return questions
}

func appendText(frags []Fragment, text string) []Fragment {
	if text == "" {
		return frags
	}
	return append(frags, Fragment{Text: text})
}

// Render writes questions back to text, numbering blanks from 1 in reading
// order, and returns the answers in that order. Blank indices outside
// answers yield empty answers. The first question loses its leading
// newlines; every later one starts with exactly one.
func Render(questions []Question, answers []string) (string, []string) {
	var (
		sb      strings.Builder
		out     []string
		counter = 1
	)
	for qi, q := range questions {
		var qb strings.Builder
		for _, f := range q.Fragments {
			if !f.IsBlank {
				qb.WriteString(f.Text)
				continue
			}
			qb.WriteString("(" + strconv.Itoa(counter) + ")")
			counter++
			if f.Blank >= 0 && f.Blank < len(answers) {
				out = append(out, answers[f.Blank])
			} else {
				out = append(out, "")
			}
		}
		body := strings.TrimLeft(qb.String(), "\n")
		if qi > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(body)
	}
	return sb.String(), out
}
