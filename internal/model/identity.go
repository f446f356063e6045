// Package model defines the call-graph data model shared by every pipeline
// stage: method identity, nodes, call edges, and the graph container itself.
package model

import (
	"fmt"
	"strings"
)

// ExternalFile marks a MethodNode declared outside the analyzed compilation.
// Such nodes may only appear as callees and are never rewritten.
const ExternalFile = "external"

// MethodIdentity is a method's stable identity: the containing type display,
// method name, and ordered parameter type displays, normalized to the
// original (uninstantiated) generic definition. Two instantiations of the
// same generic method share one identity.
type MethodIdentity struct {
	TypeDisplay   string
	Name          string
	ParamDisplays []string
}

// String renders the canonical "{type}.{name}({param_types_csv})" form used
// as the map key throughout the graph and as the on-wire identity string.
func (id MethodIdentity) String() string {
	var b strings.Builder

	b.WriteString(id.TypeDisplay)
	b.WriteByte('.')
	b.WriteString(id.Name)
	b.WriteByte('(')
	b.WriteString(strings.Join(id.ParamDisplays, ", "))
	b.WriteByte(')')

	return b.String()
}

// Equal reports whether id and other denote the same method identity.
func (id MethodIdentity) Equal(other MethodIdentity) bool {
	return id.String() == other.String()
}

// ParseMethodIdentity parses the "{type}.{name}({param_types_csv})" form
// String produces, the inverse used wherever an identity arrives as a plain
// string: user-supplied config roots (internal/jobconfig) and on-wire job
// payloads (internal/jobapi).
func ParseMethodIdentity(s string) (MethodIdentity, error) {
	s = strings.TrimSpace(s)

	if !strings.HasSuffix(s, ")") {
		return MethodIdentity{}, fmt.Errorf("method identity %q: missing closing parenthesis", s)
	}

	open := topLevelOpenParen(s)
	if open < 0 {
		return MethodIdentity{}, fmt.Errorf("method identity %q: missing opening parenthesis", s)
	}

	head := s[:open]
	paramsCSV := s[open+1 : len(s)-1]

	dot := topLevelLastDot(head)
	if dot < 0 {
		return MethodIdentity{}, fmt.Errorf("method identity %q: missing type/name separator", s)
	}

	var params []string
	if strings.TrimSpace(paramsCSV) != "" {
		params = splitTopLevelCommas(paramsCSV)
	}

	return MethodIdentity{
		TypeDisplay:   head[:dot],
		Name:          head[dot+1:],
		ParamDisplays: params,
	}, nil
}

// topLevelOpenParen finds the "(" that opens the parameter list: the first
// one at bracket depth 0, i.e. not nested inside a generic instantiation's
// own parentheses (which TypeDisplay/ParamDisplays text never has at depth
// 0, since Go type displays use square brackets for generics).
func topLevelOpenParen(s string) int {
	depth := 0

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		case '(':
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}

// topLevelLastDot finds the last "." not nested inside a bracketed generic
// instantiation, separating a (possibly package-qualified, possibly
// generic) TypeDisplay from the method Name.
func topLevelLastDot(s string) int {
	depth := 0
	last := -1

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		case '.':
			if depth == 0 {
				last = i
			}
		}
	}

	return last
}

// splitTopLevelCommas splits s on commas not nested inside a bracket pair,
// so "A, Mapper[B, C]" splits into ["A", "Mapper[B, C]"].
func splitTopLevelCommas(s string) []string {
	var (
		parts []string
		depth int
		start int
	)

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}

	parts = append(parts, strings.TrimSpace(s[start:]))

	return parts
}
