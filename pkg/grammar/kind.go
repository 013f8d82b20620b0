package grammar

import "fmt"

// Kind is the variant tag of a grammar node.
type Kind uint8

const (
	KindUnknown Kind = 0

	// Technical
	KindDocument Kind = 1
	KindCharData Kind = 2

	// Declarations
	KindGrammar   Kind = 10
	KindStart     Kind = 11
	KindDefine    Kind = 12
	KindRef       Kind = 13
	KindElement   Kind = 14
	KindAttribute Kind = 15
	KindDiv       Kind = 16

	// Occurrence patterns
	KindGroup      Kind = 20
	KindOneOrMore  Kind = 21
	KindZeroOrMore Kind = 22
	KindOptional   Kind = 23
	KindChoice     Kind = 24
	KindInterleave Kind = 25
	KindMixed      Kind = 26

	// Leaves
	KindText          Kind = 30
	KindEmpty         Kind = 31
	KindValue         Kind = 32
	KindData          Kind = 33
	KindParam         Kind = 34
	KindList          Kind = 35
	KindNotAllowed    Kind = 36
	KindDocumentation Kind = 37

	// Name classes
	KindName    Kind = 40
	KindAnyName Kind = 41
	KindNsName  Kind = 42
	KindExcept  Kind = 43
)

var kindNames = map[Kind]string{
	KindUnknown:       "unknown",
	KindDocument:      "document",
	KindCharData:      "#text",
	KindGrammar:       "grammar",
	KindStart:         "start",
	KindDefine:        "define",
	KindRef:           "ref",
	KindElement:       "element",
	KindAttribute:     "attribute",
	KindDiv:           "div",
	KindGroup:         "group",
	KindOneOrMore:     "oneOrMore",
	KindZeroOrMore:    "zeroOrMore",
	KindOptional:      "optional",
	KindChoice:        "choice",
	KindInterleave:    "interleave",
	KindMixed:         "mixed",
	KindText:          "text",
	KindEmpty:         "empty",
	KindValue:         "value",
	KindData:          "data",
	KindParam:         "param",
	KindList:          "list",
	KindNotAllowed:    "notAllowed",
	KindDocumentation: "documentation",
	KindName:          "name",
	KindAnyName:       "anyName",
	KindNsName:        "nsName",
	KindExcept:        "except",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames)+1)
	for k, name := range kindNames {
		m[name] = k
	}
	// RelaxNG annotations arrive namespaced from the converter.
	m["a:documentation"] = KindDocumentation
	return m
}()

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind maps a converter node name to its Kind. Unrecognised names
// return KindUnknown so the node is kept rather than dropped.
func ParseKind(s string) Kind {
	if k, ok := kindsByName[s]; ok {
		return k
	}
	return KindUnknown
}

// IsPattern reports whether k is recorded in a pattern path:
// oneOrMore, zeroOrMore, optional or group.
func (k Kind) IsPattern() bool {
	switch k {
	case KindOneOrMore, KindZeroOrMore, KindOptional, KindGroup:
		return true
	}
	return false
}

// IsRepeat reports whether k allows more than one occurrence.
func (k Kind) IsRepeat() bool {
	return k == KindOneOrMore || k == KindZeroOrMore
}

// IsNamed reports whether nodes of kind k carry a name attribute.
func (k Kind) IsNamed() bool {
	switch k {
	case KindElement, KindAttribute, KindRef, KindDefine:
		return true
	}
	return false
}

// MarshalText renders the kind by name so candidates serialise readably.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed := ParseKind(string(b))
	if parsed == KindUnknown && string(b) != "unknown" {
		return fmt.Errorf("unknown grammar kind %q", string(b))
	}
	*k = parsed
	return nil
}
