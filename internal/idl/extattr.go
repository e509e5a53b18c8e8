// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package idl

import (
	"fmt"
	"strings"
)

// ExtendedAttributeShape is the syntactic form an extended attribute was
// written in.
type ExtendedAttributeShape uint8

const (
	ShapeNoArgs       ExtendedAttributeShape = iota // [A]
	ShapeIdent                                      // [A=B]
	ShapeIdentList                                  // [A=(B,C)]
	ShapeArgList                                    // [A(long x)]
	ShapeNamedArgList                               // [A=B(long x)]
	ShapeString                                     // [A="b"]
	ShapeWildcard                                   // [A=*]
)

var shapeNames = map[ExtendedAttributeShape]string{
	ShapeNoArgs:       "none",
	ShapeIdent:        "ident",
	ShapeIdentList:    "ident-list",
	ShapeArgList:      "args",
	ShapeNamedArgList: "named-args",
	ShapeString:       "string",
	ShapeWildcard:     "wildcard",
}

func (s ExtendedAttributeShape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("shape-%d", s)
}

// ParseShape is the inverse of ExtendedAttributeShape.String.
func ParseShape(name string) (ExtendedAttributeShape, bool) {
	for shape, n := range shapeNames {
		if n == name {
			return shape, true
		}
	}
	return 0, false
}

type ExtendedAttribute struct {
	Name      string
	Shape     ExtendedAttributeShape
	Value     string
	Values    []string
	Arguments []*Argument
	Location  Location
}

// Equal compares the written form of two attributes, ignoring location.
func (a *ExtendedAttribute) Equal(b *ExtendedAttribute) bool {
	return a.String() == b.String()
}

func (a *ExtendedAttribute) String() string {
	var b strings.Builder
	b.WriteString(a.Name)
	switch a.Shape {
	case ShapeIdent:
		b.WriteString("=")
		b.WriteString(a.Value)
	case ShapeString:
		fmt.Fprintf(&b, "=%q", a.Value)
	case ShapeWildcard:
		b.WriteString("=*")
	case ShapeIdentList:
		b.WriteString("=(")
		b.WriteString(strings.Join(a.Values, ","))
		b.WriteString(")")
	case ShapeNamedArgList:
		b.WriteString("=")
		b.WriteString(a.Value)
		b.WriteString(argumentList(a.Arguments))
	case ShapeArgList:
		b.WriteString(argumentList(a.Arguments))
	}
	return b.String()
}

type ExtendedAttributes []*ExtendedAttribute

func (as ExtendedAttributes) Get(name string) (*ExtendedAttribute, bool) {
	for _, a := range as {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

func (as ExtendedAttributes) Has(name string) bool {
	_, ok := as.Get(name)
	return ok
}

func (as ExtendedAttributes) String() string {
	if len(as) == 0 {
		return ""
	}
	parts := make([]string, 0, len(as))
	for _, a := range as {
		parts = append(parts, a.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func argumentList(args []*Argument) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		parts = append(parts, arg.String())
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
