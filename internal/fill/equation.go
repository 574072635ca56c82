package fill

import "strings"

// tokenizeEquation splits a cell equation into its grammar tokens:
// "(", ")", ":", and signed/complement name references. Mirrors
// internal/card's private tokenizer; duplicated here rather than
// exported across packages since each package only ever rewrites
// equations for its own purpose (macro expansion there, lattice
// translation here).
func tokenizeEquation(eq string) []string {
	var toks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for _, r := range eq {
		switch r {
		case '(', ')', ':':
			flush()
			toks = append(toks, string(r))
		case ' ', '\t':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return toks
}

// translateEquation rewrites every surface-name reference in eq via
// rename, preserving each token's leading sign ("+"/"-") and passing
// "(", ")", ":" and "#"-complement tokens through unchanged (a
// complement refers to a cell, not a surface, so it is never
// translated here).
func translateEquation(eq string, rename func(name string) (string, error)) (string, error) {
	toks := tokenizeEquation(eq)
	out := make([]string, 0, len(toks))
	for _, t := range toks {
		switch t {
		case "(", ")", ":":
			out = append(out, t)
			continue
		}
		if strings.HasPrefix(t, "#") {
			out = append(out, t)
			continue
		}
		sign := ""
		bare := t
		if strings.HasPrefix(bare, "+") || strings.HasPrefix(bare, "-") {
			sign = bare[:1]
			bare = bare[1:]
		}
		renamed, err := rename(bare)
		if err != nil {
			return "", err
		}
		out = append(out, sign+renamed)
	}
	return joinEquation(out), nil
}

// joinEquation reassembles tokens with single-space separation, except
// no space is introduced directly after "(" or directly before ")".
func joinEquation(toks []string) string {
	var b strings.Builder
	for _, t := range toks {
		if b.Len() > 0 {
			last := b.String()[b.Len()-1]
			if last != '(' && t != ")" {
				b.WriteByte(' ')
			}
		}
		b.WriteString(t)
	}
	return b.String()
}
