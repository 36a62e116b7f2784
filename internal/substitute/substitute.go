// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package substitute replaces placeholder tokens such as $JOB_NAME in command
// templates and comment blocks.
//
// Replacement is literal and global. Pairs are applied in order, and each pair
// only ever sees text that came from the template itself: a value inserted by
// an earlier pair is never matched again. This makes the first pair for a
// token win, which is how precedence between built-ins, per-job and global
// variables is expressed.
package substitute

import (
	"strings"
)

// Pair maps a token to the literal value that replaces it.
type Pair struct {
	Token string `json:"variable" yaml:"variable" hcl:"variable"`
	Value string `json:"value" yaml:"value" hcl:"value"`
}

// P is shorthand for Pair{Token: token, Value: value}.
func P(token, value string) Pair {
	return Pair{Token: token, Value: value}
}

type segment struct {
	text     string
	inserted bool
}

// Apply substitutes every occurrence of each pair's token in template.
// Tokens that are empty are ignored; tokens with no pair are left verbatim.
func Apply(template string, pairs ...Pair) string {
	segs := []segment{{text: template}}

	for _, p := range pairs {
		if p.Token == "" {
			continue
		}

		next := make([]segment, 0, len(segs))

		for _, s := range segs {
			if s.inserted || !strings.Contains(s.text, p.Token) {
				next = append(next, s)
				continue
			}

			parts := strings.Split(s.text, p.Token)
			for i, part := range parts {
				if i > 0 {
					next = append(next, segment{text: p.Value, inserted: true})
				}

				if part != "" {
					next = append(next, segment{text: part})
				}
			}
		}

		segs = next
	}

	var sb strings.Builder
	for _, s := range segs {
		sb.WriteString(s.text)
	}

	return sb.String()
}

// Resolve produces the concrete command for one job.
//
// A non-empty override replaces global entirely. The chosen template is then
// substituted with builtins first, then jobVars, then globalVars, so a
// built-in always beats a variable of the same name and a per-job variable
// beats a global one.
func Resolve(global, override string, builtins, jobVars, globalVars []Pair) string {
	tmpl := global
	if override != "" {
		tmpl = override
	}

	pairs := make([]Pair, 0, len(builtins)+len(jobVars)+len(globalVars))
	pairs = append(pairs, builtins...)
	pairs = append(pairs, jobVars...)
	pairs = append(pairs, globalVars...)

	return Apply(tmpl, pairs...)
}
