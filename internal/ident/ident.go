// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

// Package ident converts protobuf names into the Rust identifiers prost
// generates for them.
//
// Word segmentation follows the heck crate, which prost-build uses: a name is
// split on every rune that is not a letter or number, and each remaining run
// is split again between a lower case rune and a following upper case rune,
// and before the last upper case rune of an upper case run that is followed by
// a lower case rune. Runes that are neither upper nor lower case, such as
// digits, belong to the word they follow.
package ident

import (
	"context"
	"strings"
	"unicode"

	"gopkg.microglot.org/prostgen.go/internal/iter"
)

// ToUpperCamel converts a name to the UpperCamelCase type identifier prost
// generates for it.
func ToUpperCamel(s string) string {
	ident := transform(s, capitalize, "")
	if ident == selfType {
		ident += "_"
	}
	return ident
}

// ToSnake converts a camelCase or SCREAMING_SNAKE_CASE name to the
// lower_snake_case identifier prost generates for it, escaping Rust keywords.
func ToSnake(s string) string {
	ident := transform(s, lower, "_")
	switch {
	case rawKeywords[ident]:
		ident = rawPrefix + ident
	case suffixKeywords[ident]:
		ident += "_"
	}
	return ident
}

type wordMode uint8

const (
	modeBoundary wordMode = iota
	modeLower
	modeUpper
)

func transform(s string, word func(*strings.Builder, []rune), sep string) string {
	ctx := context.Background()
	var b strings.Builder
	first := true
	emit := func(w []rune) {
		if !first {
			b.WriteString(sep)
		}
		first = false
		word(&b, w)
	}
	for _, field := range strings.FieldsFunc(s, isSeparator) {
		look := iter.NewLookahead(iter.NewRunes(field), 1)
		var current []rune
		mode := modeBoundary
		for c := look.Next(ctx); c.IsPresent(); c = look.Next(ctx) {
			r := c.Value()
			current = append(current, r)
			next := look.Lookahead(ctx, 1)
			if !next.IsPresent() {
				emit(current)
				break
			}
			nextMode := mode
			if unicode.IsLower(r) {
				nextMode = modeLower
			} else if unicode.IsUpper(r) {
				nextMode = modeUpper
			}
			switch {
			case nextMode == modeLower && unicode.IsUpper(next.Value()):
				emit(current)
				current = nil
				mode = modeBoundary
			case mode == modeUpper && unicode.IsUpper(r) && unicode.IsLower(next.Value()):
				emit(current[:len(current)-1])
				current = []rune{r}
				mode = modeBoundary
			default:
				mode = nextMode
			}
		}
	}
	if first {
		// Nothing but separators.
		return s
	}
	return b.String()
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsNumber(r)
}

func lower(b *strings.Builder, w []rune) {
	for _, r := range w {
		b.WriteRune(unicode.ToLower(r))
	}
}

func capitalize(b *strings.Builder, w []rune) {
	b.WriteRune(unicode.ToUpper(w[0]))
	lower(b, w[1:])
}
