package card

import (
	"strings"

	"github.com/cpmech/mcgeom/internal/geomerr"
)

type kvPair struct {
	key   string
	value string
}

// splitKeyValueTail splits text into its leading positional fields and
// a trailing sequence of key=value pairs (spec.md §6's `(<key>=<value>)*`
// tail). A value may contain a balanced, possibly nested `(...)` group
// (itself possibly containing `{...}`), which is kept intact rather
// than split on whitespace.
func splitKeyValueTail(text string) ([]string, []kvPair, error) {
	toks, err := splitRespectingGroups(text)
	if err != nil {
		return nil, nil, err
	}

	var positional []string
	var kvs []kvPair
	for _, tok := range toks {
		if eq := strings.IndexByte(tok, '='); eq > 0 && isKeyToken(tok[:eq]) {
			kvs = append(kvs, kvPair{key: strings.ToLower(tok[:eq]), value: tok[eq+1:]})
			continue
		}
		if len(kvs) > 0 {
			return nil, nil, geomerr.New(geomerr.BadCard, "positional token %q found after key=value tail began", tok)
		}
		positional = append(positional, tok)
	}
	return positional, kvs, nil
}

// isKeyToken reports whether s looks like a bare identifier (letters,
// ':' for imp:* style keys, '_', '/', '*') rather than a signed number;
// digits are not accepted.
func isKeyToken(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == ':', r == '_', r == '/', r == '*':
		default:
			return false
		}
	}
	return true
}

// splitRespectingGroups tokenizes on whitespace, except inside
// balanced ()/{} groups (which may nest), so that `fill=(1 2 3)` and
// `trcl=({1+1} 2 3)` each remain a single token.
func splitRespectingGroups(text string) ([]string, error) {
	var toks []string
	var cur strings.Builder
	depth := 0
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		switch r {
		case '(', '{':
			depth++
			cur.WriteRune(r)
		case ')', '}':
			depth--
			if depth < 0 {
				return nil, geomerr.New(geomerr.BadCard, "unbalanced parentheses in %q", text)
			}
			cur.WriteRune(r)
		case ' ', '\t':
			if depth == 0 {
				flush()
			} else {
				cur.WriteRune(r)
			}
		default:
			cur.WriteRune(r)
		}
	}
	if depth != 0 {
		return nil, geomerr.New(geomerr.BadCard, "unbalanced parentheses in %q", text)
	}
	flush()
	return toks, nil
}
