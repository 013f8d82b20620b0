package grammar

import (
	"fmt"
	"io"
	"log/slog"
)

// Store holds one annotated schema grammar plus its side indexes. It is
// immutable once built; switching schema means building a new Store.
type Store struct {
	root   *Node
	logger *slog.Logger

	// define name -> define nodes (more than one only with combine=)
	defines map[string][]*Node
	// define name -> refs naming it
	refs map[string][]*Node
	// element name -> element declarations in document order
	elements map[string][]*Node
	starts   []*Node
	warnings []error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for unresolved-reference warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// Load decodes, annotates and indexes a grammar in one step.
func Load(r io.Reader, opts ...Option) (*Store, error) {
	root, err := Decode(r)
	if err != nil {
		return nil, err
	}
	return NewStore(Annotate(root), opts...)
}

// NewStore indexes an already decoded tree. The tree is annotated if it
// has not been yet.
func NewStore(root *Node, opts ...Option) (*Store, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil root", ErrMalformedGrammar)
	}
	s := &Store{
		root:     root,
		logger:   slog.Default(),
		defines:  make(map[string][]*Node),
		refs:     make(map[string][]*Node),
		elements: make(map[string][]*Node),
	}
	for _, opt := range opts {
		opt(s)
	}
	if root.ID == "" {
		Annotate(root)
	}

	var indexErr error
	root.Walk(func(n *Node) bool {
		if indexErr != nil {
			return false
		}
		switch n.Kind {
		case KindDefine:
			if n.Name == "" {
				indexErr = fmt.Errorf("%w: define without name at %s", ErrMalformedGrammar, n.FullPath)
				return false
			}
			if existing := s.defines[n.Name]; len(existing) > 0 && n.Attr("combine") == "" && existing[0].Attr("combine") == "" {
				indexErr = fmt.Errorf("%w: %q at %s", ErrDuplicateDefine, n.Name, n.FullPath)
				return false
			}
			s.defines[n.Name] = append(s.defines[n.Name], n)
		case KindRef:
			s.refs[n.Name] = append(s.refs[n.Name], n)
		case KindElement:
			if n.Name != "" {
				s.elements[n.Name] = append(s.elements[n.Name], n)
			}
		case KindStart:
			s.starts = append(s.starts, n)
		}
		return true
	})
	if indexErr != nil {
		return nil, indexErr
	}

	for name, refs := range s.refs {
		if _, ok := s.defines[name]; ok {
			continue
		}
		err := fmt.Errorf("%w: %q (%d references)", ErrUnresolvedRef, name, len(refs))
		s.warnings = append(s.warnings, err)
		s.logger.Warn("Unresolved grammar reference", slog.String("ref", name), slog.Int("count", len(refs)))
	}
	return s, nil
}

// Root returns the grammar root.
func (s *Store) Root() *Node { return s.root }

// Logger returns the store's logger.
func (s *Store) Logger() *slog.Logger { return s.logger }

// Warnings lists load-time data errors that did not prevent use, such as
// refs without a define.
func (s *Store) Warnings() []error { return s.warnings }

// Starts returns the start patterns in document order.
func (s *Store) Starts() []*Node { return s.starts }

// Define returns the define called name, or nil.
func (s *Store) Define(name string) *Node {
	if parts := s.defines[name]; len(parts) > 0 {
		return parts[0]
	}
	return nil
}

// Definitions returns every define part called name. Parts beyond the first
// only exist for combine= defines.
func (s *Store) Definitions(name string) []*Node {
	return s.defines[name]
}

// Resolve follows a ref to its define parts. An unresolved ref is logged and
// yields nothing.
func (s *Store) Resolve(ref *Node) []*Node {
	parts := s.defines[ref.Name]
	if len(parts) == 0 {
		s.logger.Warn("Unresolved grammar reference", slog.String("ref", ref.Name), slog.String("at", ref.FullPath.String()))
	}
	return parts
}

// RefsTo returns the refs naming the define called name.
func (s *Store) RefsTo(name string) []*Node { return s.refs[name] }

// Elements returns every element declared with name, in document order.
func (s *Store) Elements(name string) []*Node { return s.elements[name] }

// ElementNames lists declared element names in first-declaration order.
func (s *Store) ElementNames() []string {
	var names []string
	seen := make(map[string]bool, len(s.elements))
	s.root.Walk(func(n *Node) bool {
		if n.Kind == KindElement && n.Name != "" && !seen[n.Name] {
			seen[n.Name] = true
			names = append(names, n.Name)
		}
		return true
	})
	return names
}

// DefinedElement returns the element a define wraps when the define's
// content is exactly one element (ignoring documentation), else nil.
func (s *Store) DefinedElement(define *Node) *Node {
	if define == nil {
		return nil
	}
	var found *Node
	for _, c := range define.Children {
		switch c.Kind {
		case KindDocumentation, KindCharData:
			continue
		case KindElement:
			if found != nil {
				return nil
			}
			found = c
		default:
			return nil
		}
	}
	return found
}

// RefElement returns the element a ref ultimately names, or nil when the
// ref points at a pattern define or is unresolved.
func (s *Store) RefElement(ref *Node) *Node {
	parts := s.defines[ref.Name]
	if len(parts) != 1 {
		return nil
	}
	return s.DefinedElement(parts[0])
}

// Node returns the node at a full path, or nil.
func (s *Store) Node(path FullPath) *Node {
	n := s.root
	for _, idx := range path {
		if idx < 0 || idx >= len(n.Children) {
			return nil
		}
		n = n.Children[idx]
	}
	return n
}
