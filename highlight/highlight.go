// Copyright 2025 Texelview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: highlight/highlight.go
// Summary: Syntax highlighting for viewport content: Chroma tokens
// mapped to tcell styles as byte spans, with language detection via
// go-enry and lexer fallback by content analysis.

package highlight

import (
	"path/filepath"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gdamore/tcell/v2"
	"github.com/go-enry/go-enry/v2"

	"github.com/framegrace/texelview/viewport"
)

const defaultStyleName = "catppuccin-mocha"

// TokenSpan is a styled half-open byte range within one line of
// content. Spans are ordered and non-overlapping.
type TokenSpan struct {
	Start int
	End   int
	Style tcell.Style
}

// Config selects the lexer and color style.
type Config struct {
	// LexerName is a Chroma lexer name ("go", "json", ...). Empty
	// means auto-detect per line.
	LexerName string

	// StyleName is a Chroma style name. Empty uses the default.
	StyleName string
}

// Highlighter tokenizes content lines into styled spans.
type Highlighter struct {
	config Config
	style  *chroma.Style
	base   chroma.Colour
}

// New creates a highlighter for the given config.
func New(config Config) *Highlighter {
	st := styles.Get(config.StyleName)
	if config.StyleName == "" {
		st = styles.Get(defaultStyleName)
	}
	if st == nil {
		st = styles.Fallback
	}
	return &Highlighter{
		config: config,
		style:  st,
		base:   st.Get(chroma.Text).Colour,
	}
}

// ForFile creates a highlighter whose lexer is detected from the file
// name and a content sample, via go-enry's language classifier.
func ForFile(path string, sample []byte, styleName string) *Highlighter {
	lang := enry.GetLanguage(filepath.Base(path), sample)
	name := ""
	if lang != "" && lang != enry.OtherLanguage {
		if l := lexers.Get(lang); l != nil {
			name = lang
		}
	}
	return New(Config{LexerName: name, StyleName: styleName})
}

// LexerName returns the configured lexer name ("" when auto-detecting).
func (h *Highlighter) LexerName() string { return h.config.LexerName }

// Line tokenizes a single content line and returns styled spans. Only
// tokens that differ from the style's base text color (or carry
// attributes) produce spans; plain text renders in the widget's
// default style.
func (h *Highlighter) Line(content string) []TokenSpan {
	if content == "" {
		return nil
	}

	lexer := h.lexerFor(content)
	it, err := lexer.Tokenise(nil, content)
	if err != nil {
		return nil
	}

	var spans []TokenSpan
	pos := 0
	for tok := it(); tok != chroma.EOF; tok = it() {
		n := len(tok.Value)
		if st, distinct := h.tokenStyle(tok.Type); distinct {
			spans = append(spans, TokenSpan{Start: pos, End: pos + n, Style: st})
		}
		pos += n
	}
	return spans
}

func (h *Highlighter) lexerFor(content string) chroma.Lexer {
	var lexer chroma.Lexer
	if h.config.LexerName != "" {
		lexer = lexers.Get(h.config.LexerName)
	}
	if lexer == nil {
		lexer = lexers.Analyse(content)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

// tokenStyle maps a chroma token type to a tcell style. distinct is
// false when the token renders identically to base text.
func (h *Highlighter) tokenStyle(t chroma.TokenType) (tcell.Style, bool) {
	entry := h.style.Get(t)

	st := tcell.StyleDefault
	distinct := false
	if entry.Colour.IsSet() && entry.Colour != h.base {
		st = st.Foreground(tcell.NewRGBColor(
			int32(entry.Colour.Red()),
			int32(entry.Colour.Green()),
			int32(entry.Colour.Blue()),
		))
		distinct = true
	}
	if entry.Bold == chroma.Yes {
		st = st.Bold(true)
		distinct = true
	}
	if entry.Italic == chroma.Yes {
		st = st.Italic(true)
		distinct = true
	}
	if entry.Underline == chroma.Yes {
		st = st.Underline(true)
		distinct = true
	}
	return st, distinct
}

// MergeMatches overlays search match spans on top of token spans:
// within a match the match style wins, outside it token styling is
// preserved. Output spans are ordered and non-overlapping.
func MergeMatches(tokens []TokenSpan, matches []viewport.Span, matchStyle tcell.Style) []TokenSpan {
	if len(matches) == 0 {
		return tokens
	}

	var out []TokenSpan
	mi := 0
	covered := 0 // end of the last emitted span
	emitMatchesBefore := func(limit int) {
		for mi < len(matches) && matches[mi].End <= limit {
			out = append(out, TokenSpan{Start: matches[mi].Start, End: matches[mi].End, Style: matchStyle})
			covered = matches[mi].End
			mi++
		}
	}

	for _, tok := range tokens {
		emitMatchesBefore(tok.Start)

		// A match straddling the previous token boundary was already
		// emitted; skip the covered prefix.
		cur := tok.Start
		if cur < covered {
			cur = covered
		}
		for cur < tok.End {
			if mi >= len(matches) || matches[mi].Start >= tok.End {
				// No match intersects the rest of this token.
				out = append(out, TokenSpan{Start: cur, End: tok.End, Style: tok.Style})
				break
			}
			m := matches[mi]
			if m.Start > cur {
				out = append(out, TokenSpan{Start: cur, End: m.Start, Style: tok.Style})
				cur = m.Start
				continue
			}
			// Inside the match: emit it once, covering any token overlap.
			out = append(out, TokenSpan{Start: m.Start, End: m.End, Style: matchStyle})
			covered = m.End
			mi++
			if m.End > cur {
				cur = m.End
			}
		}
	}
	emitMatchesBefore(1 << 30)
	return out
}
