package grammar

import "errors"

var (
	// ErrMalformedGrammar is returned when the grammar JSON cannot be decoded
	// into a node tree.
	ErrMalformedGrammar = errors.New("malformed grammar")
	// ErrDuplicateDefine is returned when two defines share a name and
	// neither declares a combine method.
	ErrDuplicateDefine = errors.New("duplicate define")
	// ErrUnresolvedRef marks a ref whose name has no matching define.
	// It is only ever reported through Store.Warnings.
	ErrUnresolvedRef = errors.New("unresolved ref")
	// ErrNoStart is returned by operations that need a start pattern.
	ErrNoStart = errors.New("grammar has no start pattern")
)
