package quizgen

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
)

// MaxStemLen bounds the length of a stem.
const MaxStemLen = 120

var materialTag = regexp.MustCompile(`^\s*\[[^\]]*\]\s*`)

// Fingerprinter derives duplicate-detection identities from questions.
// The zero value ignores a leading "[material]" tag on the question text,
// so the same content requested under two labels is still a duplicate.
type Fingerprinter struct {
	IncludeMaterialTag bool
}

// Fingerprint returns the hex SHA-1 of the question's normalized,
// type-relevant fields.
func (f Fingerprinter) Fingerprint(q Question) string {
	var b strings.Builder
	b.WriteString(Normalize(f.text(q)))
	b.WriteByte('|')
	b.WriteString(Normalize(q.Passage))

	switch q.Type {
	case TypeMCQ, TypeReadingMCQ:
		for _, c := range q.Choices {
			b.WriteByte('|')
			b.WriteString(Normalize(c))
		}
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(q.CorrectIndex))
	case TypeTF:
		b.WriteByte('|')
		b.WriteString(strconv.FormatBool(q.Truth))
	case TypeFill:
		b.WriteByte('|')
		b.WriteString(Normalize(q.Answer))
	case TypeReorder:
		for _, w := range q.Words {
			b.WriteByte('|')
			b.WriteString(Normalize(w))
		}
		b.WriteByte('|')
		b.WriteString(Normalize(q.Answer))
	}

	sum := sha1.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// Stem returns the normalized question text and passage used for
// avoid-repetition matching, capped at MaxStemLen.
func (f Fingerprinter) Stem(q Question) string {
	stem := strings.TrimSpace(Normalize(f.text(q)) + " " + Normalize(q.Passage))
	return truncateStem(stem)
}

func (f Fingerprinter) text(q Question) string {
	if f.IncludeMaterialTag {
		return q.Text
	}
	return StripMaterialTag(q.Text)
}

// StripMaterialTag removes a leading "[label]" tag from question text.
func StripMaterialTag(text string) string {
	return materialTag.ReplaceAllString(text, "")
}

// Fingerprint uses the default policy.
func Fingerprint(q Question) string {
	return Fingerprinter{}.Fingerprint(q)
}

// Stem uses the default policy.
func Stem(q Question) string {
	return Fingerprinter{}.Stem(q)
}

// NormalizeStem canonicalizes a caller-supplied avoid entry so it can be
// compared against Stem output. Entries may be raw question text or stems
// returned earlier.
func (f Fingerprinter) NormalizeStem(s string) string {
	if !f.IncludeMaterialTag {
		s = StripMaterialTag(s)
	}
	return truncateStem(Normalize(s))
}

// Normalized text is ASCII, so byte truncation never splits a rune.
func truncateStem(s string) string {
	if len(s) > MaxStemLen {
		return s[:MaxStemLen]
	}
	return s
}
