// © 2024 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package ident

// These tables mirror the keyword handling in prost-build's ident module. The
// generated code must use exactly the identifiers prost emits, so any change
// to prost's rules has to be reflected here as well.
// https://doc.rust-lang.org/reference/keywords.html

// rawKeywords can be used as identifiers when written with the r# prefix.
var rawKeywords = map[string]bool{
	// 2015 strict keywords.
	"as": true, "break": true, "const": true, "continue": true, "else": true,
	"enum": true, "false": true, "fn": true, "for": true, "if": true,
	"impl": true, "in": true, "let": true, "loop": true, "match": true,
	"mod": true, "move": true, "mut": true, "pub": true, "ref": true,
	"return": true, "static": true, "struct": true, "trait": true, "true": true,
	"type": true, "unsafe": true, "use": true, "where": true, "while": true,
	// 2018 strict keywords.
	"dyn": true,
	// 2015 reserved keywords.
	"abstract": true, "become": true, "box": true, "do": true, "final": true,
	"macro": true, "override": true, "priv": true, "typeof": true,
	"unsized": true, "virtual": true, "yield": true,
	// 2018 reserved keywords.
	"async": true, "await": true, "try": true,
}

// suffixKeywords are not accepted as raw identifiers and get a trailing
// underscore instead.
var suffixKeywords = map[string]bool{
	"self":   true,
	"super":  true,
	"extern": true,
	"crate":  true,
}

// selfType is the type keyword that cannot be a raw identifier.
const selfType = "Self"

const rawPrefix = "r#"

// Keywords returns every lower case word ToSnake escapes.
func Keywords() []string {
	out := make([]string, 0, len(rawKeywords)+len(suffixKeywords))
	for k := range rawKeywords {
		out = append(out, k)
	}
	for k := range suffixKeywords {
		out = append(out, k)
	}
	return out
}
