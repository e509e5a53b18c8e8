// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package exc

import "fmt"

// Kind groups exception codes into the categories callers act on.
type Kind uint8

const (
	KindIO Kind = iota
	KindSyntax
	KindDuplicateDefinition
	KindKindMismatch
	KindUnresolvedReference
	KindCycle
	KindInvalidTypePlacement
	KindArgumentOrdering
	KindExtendedAttribute
	KindOverloadAmbiguity
)

var kindNames = map[Kind]string{
	KindIO:                   "IO",
	KindSyntax:               "Syntax",
	KindDuplicateDefinition:  "DuplicateDefinition",
	KindKindMismatch:         "KindMismatch",
	KindUnresolvedReference:  "UnresolvedReference",
	KindCycle:                "Cycle",
	KindInvalidTypePlacement: "InvalidTypePlacement",
	KindArgumentOrdering:     "ArgumentOrdering",
	KindExtendedAttribute:    "ExtendedAttribute",
	KindOverloadAmbiguity:    "OverloadAmbiguity",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Diagnostic is the caller facing summary of one exception.
type Diagnostic struct {
	Kind       Kind
	Code       string
	Identifier string
	Message    string
	Location   Location
}

func (d Diagnostic) String() string {
	if d.Identifier == "" {
		return fmt.Sprintf("%s: %s [%s]: %s", d.Location, d.Kind, d.Code, d.Message)
	}
	return fmt.Sprintf("%s: %s [%s] %s: %s", d.Location, d.Kind, d.Code, d.Identifier, d.Message)
}

// Diagnostics converts a set of exceptions, typically the output of
// Reporter.Reported, into diagnostics.
func Diagnostics(reported []Exception) []Diagnostic {
	out := make([]Diagnostic, 0, len(reported))
	for _, e := range reported {
		out = append(out, Diagnostic{
			Kind:       e.Kind(),
			Code:       e.Code(),
			Identifier: e.Subject(),
			Message:    e.Message(),
			Location:   e.Location(),
		})
	}
	return out
}

// CountKind returns the number of exceptions of the given kind.
func CountKind(reported []Exception, kind Kind) int {
	count := 0
	for _, e := range reported {
		if e.Kind() == kind {
			count = count + 1
		}
	}
	return count
}
