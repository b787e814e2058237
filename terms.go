package gsearch

import "github.com/cyphriot-garp/gsearch/internal/predicate"

// literalTerms walks node and collects every Term.Text it contains, for
// excerpt extraction; Regex and Near atoms contribute nothing since
// they have no single literal substring to anchor an excerpt on.
func literalTerms(node predicate.Node) []string {
	var out []string
	var walk func(predicate.Node)
	walk = func(n predicate.Node) {
		switch v := n.(type) {
		case predicate.AtomNode:
			if t, ok := v.Atom.(predicate.Term); ok {
				out = append(out, t.Text)
			}
		case predicate.And:
			walk(v.Left)
			walk(v.Right)
		case predicate.Or:
			walk(v.Left)
			walk(v.Right)
		case predicate.Not:
			walk(v.Operand)
		}
	}
	walk(node)
	return out
}
