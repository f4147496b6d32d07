package lexer

import (
	"strings"
	"testing"

	"github.com/otterlang/otterc/internal/diag"
	"github.com/otterlang/otterc/internal/token"
)

func FuzzLexer(f *testing.F) {
	seeds := []string{
		"let x = 1\n",
		"def f(a: Int) -> Int:\n    return a + 1\n",
		`f"{a}{b}"` + "\n",
		"match x:\n    case 1:\n        pass\n",
		"struct Point:\n    x: Int\n    y: Int\n",
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, src string) {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("lexer panicked on %q: %v", src, r)
			}
		}()
		bag := diag.NewBag()
		l := New(strings.NewReader(src), "fuzz", bag)
		for i := 0; i < 20000; i++ {
			tok := l.Next()
			if tok.Kind == token.EOF {
				break
			}
		}
	})
}
