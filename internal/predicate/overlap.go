package predicate

// fuzzySampleWindow mirrors fuzzy.sampleWindowSize; duplicated here
// (rather than imported) to keep this package's overlap estimate a pure
// function of the AST with no dependency on the fuzzy package's cache
// machinery.
const fuzzySampleWindow = 5_000

// avgWordLen is the same conservative per-word character estimate used
// by internal/near for its chunked NEAR evaluation overlap.
const avgWordLen = 32

// RequiredOverlap walks node and returns the largest span, in
// characters, that a single atom evaluation might need to see across a
// chunk boundary: the widest NEAR span in characters, the longest
// Term/regex pattern length, and the fuzzy sampling window when fuzzy
// matching is enabled for mode. FileProcessor uses this as its
// chunk-overlap size so matches straddling a chunk boundary are never
// missed.
func RequiredOverlap(node Node, mode Mode) int {
	overlap := 0
	walkOverlap(node, mode, &overlap)
	if mode.FuzzyBoolean || mode.FuzzyNear {
		if fuzzySampleWindow > overlap {
			overlap = fuzzySampleWindow
		}
	}
	return overlap
}

func walkOverlap(node Node, mode Mode, overlap *int) {
	switch n := node.(type) {
	case AtomNode:
		walkAtomOverlap(n.Atom, overlap)
	case And:
		walkOverlap(n.Left, mode, overlap)
		walkOverlap(n.Right, mode, overlap)
	case Or:
		walkOverlap(n.Left, mode, overlap)
		walkOverlap(n.Right, mode, overlap)
	case Not:
		walkOverlap(n.Operand, mode, overlap)
	}
}

func walkAtomOverlap(atom Atom, overlap *int) {
	switch a := atom.(type) {
	case Term:
		if n := len(a.Text); n > *overlap {
			*overlap = n
		}
	case Regex:
		if n := len(a.Pattern); n > *overlap {
			*overlap = n
		}
	case Near:
		span := int(a.K) * avgWordLen
		if span > *overlap {
			*overlap = span
		}
		walkAtomOverlap(a.Left, overlap)
		walkAtomOverlap(a.Right, overlap)
	}
}
