// Package lexer turns OtterLang source text into a token stream,
// including synthetic NEWLINE/INDENT/DEDENT layout markers and
// f-string sub-tokenization.
package lexer

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/otterlang/otterc/internal/diag"
	"github.com/otterlang/otterc/internal/token"
)

type Lexer struct {
	pos      token.Position
	reader   *bufio.Reader
	diags    *diag.Bag
	pending  []token.Token // queued layout/f-string tokens to drain before reading more
	indents  []int         // indentation-column stack, starts at [0]
	atLineStart bool
	parenDepth  int // bracket nesting suppresses layout tokens
	sawTokenOnLine bool
}

func New(r io.Reader, filename string, diags *diag.Bag) *Lexer {
	return &Lexer{
		pos:         token.Position{Line: 1, Column: 0, Filename: filename},
		reader:      bufio.NewReader(r),
		diags:       diags,
		indents:     []int{0},
		atLineStart: true,
	}
}

func (l *Lexer) kinded(k token.Kind, lit string, from token.Position) token.Token {
	return token.Token{Kind: k, Literal: lit, Span: token.Span{From: from, To: l.pos}}
}

func (l *Lexer) errorf(span token.Span, code diag.Code, format string, args ...any) {
	l.diags.Add(diag.Diagnostic{Stage: diag.Lex, Code: code, Span: span, Message: fmt.Sprintf(format, args...)})
}

func (l *Lexer) readRune() (rune, error) {
	r, _, err := l.reader.ReadRune()
	if err == nil {
		l.pos.Column++
		l.pos.Offset++
	}
	return r, err
}

func (l *Lexer) backup() {
	if err := l.reader.UnreadRune(); err != nil {
		panic(err)
	}
	l.pos.Column--
	l.pos.Offset--
}

func (l *Lexer) peekByte() (byte, bool) {
	b, err := l.reader.Peek(1)
	if err != nil {
		return 0, false
	}
	return b[0], true
}

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }
func isIdentCont(r rune) bool  { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) }

// Next returns the next token, draining any queued layout or
// f-string sub-tokens first.
func (l *Lexer) Next() token.Token {
	if len(l.pending) > 0 {
		t := l.pending[0]
		l.pending = l.pending[1:]
		return t
	}

	if l.atLineStart && l.parenDepth == 0 {
		if t, ok := l.lexIndentation(); ok {
			return t
		}
	}

	return l.lexOne()
}

// lexIndentation measures leading whitespace on a fresh line and
// emits INDENT/DEDENT as the indentation stack (spec §3.1, steps 3-5)
// dictates; the NEWLINE ending the previous line has already come from
// lexOne. Returns ok=false once the line's layout has been fully
// resolved and a real token should be lexed.
func (l *Lexer) lexIndentation() (token.Token, bool) {
	start := l.pos
	col := 0
	for {
		r, err := l.readRune()
		if err != nil {
			l.atLineStart = false
			return token.Token{}, false
		}
		switch r {
		case ' ':
			col++
		case '\t':
			col += 8 - (col % 8)
		case '\n':
			l.pos.Line++
			l.pos.Column = 0
			col = 0
			start = l.pos
			continue
		case '#':
			l.skipComment()
			continue
		default:
			l.backup()
			l.atLineStart = false
			top := l.indents[len(l.indents)-1]
			switch {
			case col == top:
				if l.sawTokenOnLine {
					return l.kinded(token.NEWLINE, "", start), true
				}
				return token.Token{}, false
			case col > top:
				l.indents = append(l.indents, col)
				return l.kinded(token.INDENT, "", l.pos), true
			default:
				var dedents []token.Token
				for len(l.indents) > 1 && l.indents[len(l.indents)-1] > col {
					l.indents = l.indents[:len(l.indents)-1]
					dedents = append(dedents, l.kinded(token.DEDENT, "", l.pos))
				}
				if l.indents[len(l.indents)-1] != col {
					l.errorf(token.SingleCharSpan(l.pos), diag.BadIndent, "indentation does not match any enclosing block")
				}
				l.pending = append(l.pending, dedents[1:]...)
				return dedents[0], true
			}
		}
	}
}

func (l *Lexer) skipComment() {
	for {
		r, err := l.readRune()
		if err != nil || r == '\n' {
			if r == '\n' {
				l.backup()
			}
			return
		}
	}
}

func (l *Lexer) lexOne() token.Token {
	for {
		from := l.pos
		r, err := l.readRune()
		if err != nil {
			if err == io.EOF {
				// Final NEWLINE + DEDENTs to balance the layout stack (spec §8
				// "layout well-bracketedness" — every INDENT gets its DEDENT).
				if l.sawTokenOnLine {
					l.sawTokenOnLine = false
					for len(l.indents) > 1 {
						l.indents = l.indents[:len(l.indents)-1]
						l.pending = append(l.pending, l.kinded(token.DEDENT, "", l.pos))
					}
					return l.kinded(token.NEWLINE, "", from)
				}
				for len(l.indents) > 1 {
					l.indents = l.indents[:len(l.indents)-1]
					l.pending = append(l.pending, l.kinded(token.DEDENT, "", l.pos))
				}
				if len(l.pending) > 0 {
					t := l.pending[0]
					l.pending = l.pending[1:]
					return t
				}
				return l.kinded(token.EOF, "", from)
			}
			panic(err)
		}

		switch r {
		case '\n':
			l.pos.Line++
			l.pos.Column = 0
			if l.parenDepth == 0 {
				l.atLineStart = true
				if l.sawTokenOnLine {
					l.sawTokenOnLine = false
					return l.kinded(token.NEWLINE, "", from)
				}
				return l.lexOne()
			}
			continue
		case '#':
			l.skipComment()
			continue
		case ' ', '\t', '\r':
			continue
		}

		if r == '"' || r == '\'' {
			return l.finishToken(l.lexString(r, from))
		}
		if r == 'f' {
			if b, ok := l.peekByte(); ok && (b == '"' || b == '\'') {
				quote, _ := l.readRune()
				l.pending = append(l.pending, l.lexFString(quote)...)
				t := l.pending[0]
				l.pending = l.pending[1:]
				return l.finishToken(t)
			}
		}
		if unicode.IsDigit(r) {
			return l.finishToken(l.lexNumber(r, from))
		}
		if isIdentStart(r) {
			return l.finishToken(l.lexIdent(r, from))
		}

		if t, ok := l.lexOperator(r, from); ok {
			return l.finishToken(t)
		}

		l.errorf(token.SingleCharSpan(from), diag.ExpectedToken, "unexpected character %q", r)
		return l.finishToken(l.kinded(token.ILLEGAL, string(r), from))
	}
}

func (l *Lexer) finishToken(t token.Token) token.Token {
	l.sawTokenOnLine = true
	switch t.Kind {
	case token.LPAREN, token.LBRACKET, token.LBRACE:
		l.parenDepth++
	case token.RPAREN, token.RBRACKET, token.RBRACE:
		if l.parenDepth > 0 {
			l.parenDepth--
		}
	}
	return t
}

func (l *Lexer) lexOperator(r rune, from token.Position) (token.Token, bool) {
	two := func(next rune, yes, no token.Kind) token.Token {
		if b, ok := l.peekByte(); ok && rune(b) == next {
			l.readRune()
			return l.kinded(yes, string(r)+string(next), from)
		}
		return l.kinded(no, string(r), from)
	}
	switch r {
	case ':':
		return l.kinded(token.COLON, ":", from), true
	case ',':
		return l.kinded(token.COMMA, ",", from), true
	case '.':
		return l.kinded(token.PERIOD, ".", from), true
	case '(':
		return l.kinded(token.LPAREN, "(", from), true
	case ')':
		return l.kinded(token.RPAREN, ")", from), true
	case '[':
		return l.kinded(token.LBRACKET, "[", from), true
	case ']':
		return l.kinded(token.RBRACKET, "]", from), true
	case '{':
		return l.kinded(token.LBRACE, "{", from), true
	case '}':
		return l.kinded(token.RBRACE, "}", from), true
	case '+':
		return l.kinded(token.PLUS, "+", from), true
	case '-':
		return two('>', token.ARROW, token.MINUS), true
	case '*':
		return two('*', token.STARSTAR, token.STAR), true
	case '/':
		return l.kinded(token.SLASH, "/", from), true
	case '%':
		return l.kinded(token.PERCENT, "%", from), true
	case '|':
		return l.kinded(token.PIPE, "|", from), true
	case '=':
		if b, ok := l.peekByte(); ok {
			if b == '=' {
				l.readRune()
				return l.kinded(token.EQ, "==", from), true
			}
			if b == '>' {
				l.readRune()
				return l.kinded(token.FATARROW, "=>", from), true
			}
		}
		return l.kinded(token.EQUALS, "=", from), true
	case '!':
		if b, ok := l.peekByte(); ok && b == '=' {
			l.readRune()
			return l.kinded(token.NE, "!=", from), true
		}
		return token.Token{}, false
	case '<':
		return two('=', token.LE, token.LT), true
	case '>':
		return two('=', token.GE, token.GT), true
	}
	return token.Token{}, false
}

func (l *Lexer) lexNumber(first rune, from token.Position) token.Token {
	var sb strings.Builder
	sb.WriteRune(first)
	isFloat := false
	for {
		r, err := l.readRune()
		if err != nil {
			break
		}
		if unicode.IsDigit(r) {
			sb.WriteRune(r)
			continue
		}
		if r == '.' && !isFloat {
			isFloat = true
			sb.WriteRune(r)
			continue
		}
		l.backup()
		break
	}
	kind := token.INT
	if isFloat {
		kind = token.FLOAT
	}
	return l.kinded(kind, sb.String(), from)
}

func (l *Lexer) lexIdent(first rune, from token.Position) token.Token {
	var sb strings.Builder
	sb.WriteRune(first)
	for {
		r, err := l.readRune()
		if err != nil {
			break
		}
		if !isIdentCont(r) {
			l.backup()
			break
		}
		sb.WriteRune(r)
	}
	lit := sb.String()
	if kind, ok := token.Keywords[lit]; ok {
		return l.kinded(kind, lit, from)
	}
	return l.kinded(token.IDENT, lit, from)
}

// lexString scans a plain (non-f) quoted string, honoring the escape
// set from spec §3.1 (\n \t \r \\ \" \' \0 \xHH \u{HHHH}).
func (l *Lexer) lexString(quote rune, from token.Position) token.Token {
	var sb strings.Builder
	for {
		r, err := l.readRune()
		if err != nil {
			l.errorf(token.Span{From: from, To: l.pos}, diag.UnterminatedLayer, "unterminated string literal")
			break
		}
		if r == quote {
			break
		}
		if r == '\\' {
			sb.WriteString(l.lexEscape())
			continue
		}
		sb.WriteRune(r)
	}
	return l.kinded(token.STRING, sb.String(), from)
}

func (l *Lexer) lexEscape() string {
	r, err := l.readRune()
	if err != nil {
		return ""
	}
	switch r {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case '\\':
		return "\\"
	case '"':
		return "\""
	case '\'':
		return "'"
	case '0':
		return "\x00"
	case 'x':
		var hex strings.Builder
		for i := 0; i < 2; i++ {
			r, err := l.readRune()
			if err != nil {
				break
			}
			hex.WriteRune(r)
		}
		return decodeHexByte(hex.String())
	case 'u':
		if b, ok := l.peekByte(); ok && b == '{' {
			l.readRune()
			var hex strings.Builder
			for {
				r, err := l.readRune()
				if err != nil || r == '}' {
					break
				}
				hex.WriteRune(r)
			}
			return decodeUnicodeEscape(hex.String())
		}
		return "u"
	default:
		return string(r)
	}
}

// lexFString tokenizes an f-string into the spec's F_BEGIN STRING_PART
// EMBED_BEGIN ... EMBED_END STRING_PART ... F_END sequence by
// recursively lexing each {expr} against a nested instance of this
// same lexer so embedded expressions reuse the full token grammar.
func (l *Lexer) lexFString(quote rune) []token.Token {
	begin := l.kinded(token.F_BEGIN, "", l.pos)
	toks := []token.Token{begin}
	var part strings.Builder
	flushPart := func() {
		toks = append(toks, l.kinded(token.STRING_PART, part.String(), l.pos))
		part.Reset()
	}
	for {
		r, err := l.readRune()
		if err != nil {
			l.errorf(token.SingleCharSpan(l.pos), diag.UnterminatedLayer, "unterminated f-string")
			break
		}
		if r == quote {
			break
		}
		if r == '\\' {
			part.WriteString(l.lexEscape())
			continue
		}
		if r == '{' {
			if b, ok := l.peekByte(); ok && b == '{' {
				l.readRune()
				part.WriteByte('{')
				continue
			}
			flushPart()
			toks = append(toks, l.kinded(token.EMBED_BEGIN, "", l.pos))
			depth := 1
			var expr strings.Builder
			for depth > 0 {
				r, err := l.readRune()
				if err != nil {
					break
				}
				if r == '{' {
					depth++
				}
				if r == '}' {
					depth--
					if depth == 0 {
						break
					}
				}
				expr.WriteRune(r)
			}
			sub := New(strings.NewReader(expr.String()), l.pos.Filename, l.diags)
			for {
				t := sub.lexOne()
				if t.Kind == token.EOF {
					break
				}
				if t.Kind == token.NEWLINE {
					continue
				}
				toks = append(toks, t)
			}
			toks = append(toks, l.kinded(token.EMBED_END, "", l.pos))
			continue
		}
		part.WriteRune(r)
	}
	flushPart()
	toks = append(toks, l.kinded(token.F_END, "", l.pos))
	return toks
}

func decodeHexByte(hex string) string {
	var v int
	for _, r := range hex {
		v *= 16
		v += hexDigit(r)
	}
	return string(rune(v))
}

func decodeUnicodeEscape(hex string) string {
	var v int
	for _, r := range hex {
		v *= 16
		v += hexDigit(r)
	}
	return string(rune(v))
}

func hexDigit(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10
	case r >= 'A' && r <= 'F':
		return int(r-'A') + 10
	}
	return 0
}
