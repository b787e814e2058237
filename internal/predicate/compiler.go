package predicate

import (
	"regexp"

	"github.com/cyphriot-garp/gsearch/internal/fuzzy"
	"github.com/cyphriot-garp/gsearch/internal/near"
	"github.com/cyphriot-garp/gsearch/internal/rx"
)

// Mode selects whether fuzzy matching applies to boolean Term atoms and to
// Term atoms nested inside NEAR, independent of each other.
type Mode struct {
	FuzzyBoolean  bool
	FuzzyNear     bool
	CaseSensitive bool
	WholeWord     bool
}

// Matcher is a compiled, reusable content predicate. It is safe to call
// concurrently from multiple goroutines on distinct content values: all
// state it closes over (the shared rx.Compiler, fuzzy.Matcher, and
// near.Evaluator) is internally synchronized.
type Matcher func(content string) (bool, error)

// Compiler wires PredicateCompiler's shared components: a regex compiler,
// fuzzy matcher, and NEAR evaluator, reused across every Compile call so
// their caches stay warm across an entire search run.
type Compiler struct {
	rx    *rx.Compiler
	fz    *fuzzy.Matcher
	nearE *near.Evaluator
}

// NewCompiler wires a PredicateCompiler over the given shared components.
func NewCompiler(rxc *rx.Compiler, fz *fuzzy.Matcher, nearE *near.Evaluator) *Compiler {
	return &Compiler{rx: rxc, fz: fz, nearE: nearE}
}

// Compile parses the string mini-language form and produces a Matcher.
// A non-nil ParseError means no Matcher was produced.
func (c *Compiler) Compile(query string, mode Mode) (Matcher, *ParseError) {
	node, err := Parse(query, ParseMode{CaseSensitive: mode.CaseSensitive, WholeWord: mode.WholeWord})
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			return nil, pe
		}
		return nil, &ParseError{Message: err.Error()}
	}
	return c.CompileNode(node, mode), nil
}

// CompileNode compiles an already-built structured AST (the "structured
// form" input) directly, skipping the lexer/parser.
func (c *Compiler) CompileNode(node Node, mode Mode) Matcher {
	return func(content string) (bool, error) {
		return c.eval(node, content, mode)
	}
}

func (c *Compiler) eval(node Node, content string, mode Mode) (bool, error) {
	switch n := node.(type) {
	case AtomNode:
		return c.evalAtom(n.Atom, content, mode)
	case And:
		left, err := c.eval(n.Left, content, mode)
		if err != nil {
			return false, err
		}
		if !left {
			return false, nil
		}
		return c.eval(n.Right, content, mode)
	case Or:
		left, err := c.eval(n.Left, content, mode)
		if err != nil {
			return false, err
		}
		if left {
			return true, nil
		}
		return c.eval(n.Right, content, mode)
	case Not:
		operand, err := c.eval(n.Operand, content, mode)
		if err != nil {
			return false, err
		}
		return !operand, nil
	default:
		return false, nil
	}
}

func (c *Compiler) evalAtom(atom Atom, content string, mode Mode) (bool, error) {
	switch a := atom.(type) {
	case Term:
		if mode.FuzzyBoolean {
			res := c.fz.Search(content, a.Text, fuzzy.Options{
				CaseSensitive: a.CaseSensitive,
				WholeWord:     a.WholeWord,
			})
			return res.Matched, nil
		}
		return c.exactTerm(content, a)
	case Regex:
		re, err := c.rx.Compile(a.Pattern, a.Flags)
		if err != nil {
			return false, err
		}
		return re.MatchString(content), nil
	case Near:
		leftAtom, err := toNearAtom(a.Left)
		if err != nil {
			return false, err
		}
		rightAtom, err := toNearAtom(a.Right)
		if err != nil {
			return false, err
		}
		return c.nearE.Evaluate(content, leftAtom, rightAtom, a.K, mode.FuzzyNear)
	default:
		return false, nil
	}
}

// exactTerm matches a Term atom literally (optionally whole-word,
// optionally case-insensitive) via the shared regex cache, so non-fuzzy
// boolean terms don't pay FuzzyMatcher's normalization overhead.
func (c *Compiler) exactTerm(content string, a Term) (bool, error) {
	pattern := regexp.QuoteMeta(a.Text)
	if a.WholeWord {
		pattern = `\b` + pattern + `\b`
	}
	flags := ""
	if !a.CaseSensitive {
		flags = "i"
	}
	re, err := c.rx.Compile(pattern, flags)
	if err != nil {
		return false, err
	}
	return re.MatchString(content), nil
}

func toNearAtom(a Atom) (near.Atom, error) {
	switch t := a.(type) {
	case Term:
		return near.Atom{Kind: near.AtomTerm, Text: t.Text, CaseSensitive: t.CaseSensitive, WholeWord: t.WholeWord}, nil
	case Regex:
		return near.Atom{Kind: near.AtomRegex, Text: t.Pattern, Flags: t.Flags}, nil
	default:
		return near.Atom{}, &ParseError{Message: "NEAR accepts only Term or Regex atoms"}
	}
}
