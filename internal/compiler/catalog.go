// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"gopkg.in/yaml.v3"

	"gopkg.microglot.org/webidl.go/internal/idl"
)

// Context is a place an extended attribute may be written.
type Context uint8

const (
	ContextNone Context = iota
	ContextInterface
	ContextMixin
	ContextNamespace
	ContextDictionary
	ContextCallback
	ContextEnum
	ContextTypedef
	ContextAttribute
	ContextOperation
	ContextConstant
	ContextArgument
	ContextDictionaryMember
	// ContextType admits an attribute anywhere a type is written: arguments,
	// attributes, dictionary members, typedefs and iterables.
	ContextType
)

var contextNames = map[Context]string{
	ContextInterface:        "interface",
	ContextMixin:            "mixin",
	ContextNamespace:        "namespace",
	ContextDictionary:       "dictionary",
	ContextCallback:         "callback",
	ContextEnum:             "enum",
	ContextTypedef:          "typedef",
	ContextAttribute:        "attribute",
	ContextOperation:        "operation",
	ContextConstant:         "constant",
	ContextArgument:         "argument",
	ContextDictionaryMember: "dictionary member",
	ContextType:             "type",
}

func (c Context) String() string {
	if name, ok := contextNames[c]; ok {
		return name
	}
	return fmt.Sprintf("context-%d", c)
}

func ParseContext(name string) (Context, bool) {
	for c, n := range contextNames {
		if n == name {
			return c, true
		}
	}
	return ContextNone, false
}

func (c Context) carriesType() bool {
	switch c {
	case ContextArgument, ContextAttribute, ContextDictionaryMember, ContextTypedef:
		return true
	}
	return false
}

// CatalogEntry describes one recognised extended attribute.
type CatalogEntry struct {
	Name     string
	Shapes   []idl.ExtendedAttributeShape
	Contexts []Context
}

func (e *CatalogEntry) AcceptsShape(shape idl.ExtendedAttributeShape) bool {
	return slices.Contains(e.Shapes, shape)
}

func (e *CatalogEntry) Allows(ctx Context) bool {
	if slices.Contains(e.Contexts, ctx) {
		return true
	}
	return ctx.carriesType() && slices.Contains(e.Contexts, ContextType)
}

// Catalog is the set of extended attributes the checker accepts. A Catalog
// is not modified after construction and may be shared between sessions.
type Catalog struct {
	entries map[string]*CatalogEntry
}

func (c *Catalog) Lookup(name string) (*CatalogEntry, bool) {
	e, ok := c.entries[name]
	return e, ok
}

// Names returns the recognised attribute names in sorted order.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.entries))
	for name := range c.entries {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

type catalogFile struct {
	Attributes []catalogFileEntry `yaml:"attributes"`
}

type catalogFileEntry struct {
	Name     string   `yaml:"name"`
	Shapes   []string `yaml:"shapes"`
	Contexts []string `yaml:"contexts"`
}

// Extend returns a new catalog holding the receiver's entries overlaid with
// those decoded from a YAML document. Entries with an existing name replace
// the existing entry.
func (c *Catalog) Extend(r io.Reader) (*Catalog, error) {
	var doc catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	out := &Catalog{entries: make(map[string]*CatalogEntry, len(c.entries)+len(doc.Attributes))}
	for name, e := range c.entries {
		out.entries[name] = e
	}
	for x, raw := range doc.Attributes {
		if raw.Name == "" {
			return nil, fmt.Errorf("invalid catalog: attribute %d has no name", x)
		}
		entry := &CatalogEntry{Name: raw.Name}
		for _, s := range raw.Shapes {
			shape, ok := idl.ParseShape(s)
			if !ok {
				return nil, fmt.Errorf("invalid catalog: attribute %s has unknown shape %q", raw.Name, s)
			}
			entry.Shapes = append(entry.Shapes, shape)
		}
		if len(entry.Shapes) == 0 {
			entry.Shapes = []idl.ExtendedAttributeShape{idl.ShapeNoArgs}
		}
		for _, s := range raw.Contexts {
			ctx, ok := ParseContext(s)
			if !ok {
				return nil, fmt.Errorf("invalid catalog: attribute %s has unknown context %q", raw.Name, s)
			}
			entry.Contexts = append(entry.Contexts, ctx)
		}
		if len(entry.Contexts) == 0 {
			return nil, fmt.Errorf("invalid catalog: attribute %s has no contexts", raw.Name)
		}
		out.entries[raw.Name] = entry
	}
	return out, nil
}

// LoadCatalog decodes a YAML catalog and overlays it on the default catalog.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	return DefaultCatalog().Extend(r)
}

var (
	shapesNone      = []idl.ExtendedAttributeShape{idl.ShapeNoArgs}
	shapesIdent     = []idl.ExtendedAttributeShape{idl.ShapeIdent}
	shapesString    = []idl.ExtendedAttributeShape{idl.ShapeString}
	shapesExposure  = []idl.ExtendedAttributeShape{idl.ShapeIdent, idl.ShapeIdentList, idl.ShapeWildcard}
	shapesIdentish  = []idl.ExtendedAttributeShape{idl.ShapeIdent, idl.ShapeIdentList}
	shapesFactory   = []idl.ExtendedAttributeShape{idl.ShapeNamedArgList, idl.ShapeIdent}
	shapesGlobal    = []idl.ExtendedAttributeShape{idl.ShapeNoArgs, idl.ShapeIdent, idl.ShapeIdentList}
	shapesThrows    = []idl.ExtendedAttributeShape{idl.ShapeNoArgs, idl.ShapeIdent}
	shapesNoneOrArg = []idl.ExtendedAttributeShape{idl.ShapeNoArgs, idl.ShapeArgList}

	contextsExposure = []Context{ContextInterface, ContextMixin, ContextNamespace, ContextCallback, ContextAttribute, ContextOperation, ContextConstant, ContextDictionary, ContextDictionaryMember}
	contextsMembers  = []Context{ContextAttribute, ContextOperation}
	contextsCoercion = []Context{ContextArgument, ContextAttribute}
)

var defaultCatalogEntries = []*CatalogEntry{
	{Name: "AllowShared", Shapes: shapesNone, Contexts: []Context{ContextType}},
	{Name: "CEReactions", Shapes: shapesNone, Contexts: contextsMembers},
	{Name: "Clamp", Shapes: shapesNone, Contexts: []Context{ContextType}},
	{Name: "Constructor", Shapes: shapesNoneOrArg, Contexts: []Context{ContextInterface}},
	{Name: "CrossOriginIsolated", Shapes: shapesNone, Contexts: contextsExposure},
	{Name: "Default", Shapes: shapesNone, Contexts: []Context{ContextOperation}},
	{Name: "EnforceRange", Shapes: shapesNone, Contexts: []Context{ContextType}},
	{Name: "Exposed", Shapes: shapesExposure, Contexts: contextsExposure},
	{Name: "Func", Shapes: shapesString, Contexts: contextsExposure},
	{Name: "Global", Shapes: shapesGlobal, Contexts: []Context{ContextInterface}},
	{Name: "HTMLConstructor", Shapes: shapesNone, Contexts: []Context{ContextOperation}},
	{Name: "LegacyFactoryFunction", Shapes: shapesFactory, Contexts: []Context{ContextInterface}},
	{Name: "LegacyLenientSetter", Shapes: shapesNone, Contexts: []Context{ContextAttribute}},
	{Name: "LegacyLenientThis", Shapes: shapesNone, Contexts: []Context{ContextAttribute}},
	{Name: "LegacyNamespace", Shapes: shapesIdent, Contexts: []Context{ContextInterface}},
	{Name: "LegacyNoInterfaceObject", Shapes: shapesNone, Contexts: []Context{ContextInterface}},
	{Name: "LegacyNullToEmptyString", Shapes: shapesNone, Contexts: contextsCoercion},
	{Name: "LegacyOverrideBuiltIns", Shapes: shapesNone, Contexts: []Context{ContextInterface}},
	{Name: "LegacyTreatNonObjectAsNull", Shapes: shapesNone, Contexts: []Context{ContextCallback}},
	{Name: "LegacyUnenumerableNamedProperties", Shapes: shapesNone, Contexts: []Context{ContextInterface}},
	{Name: "LegacyUnforgeable", Shapes: shapesNone, Contexts: []Context{ContextInterface, ContextAttribute, ContextOperation}},
	{Name: "LegacyWindowAlias", Shapes: shapesIdentish, Contexts: []Context{ContextInterface}},
	{Name: "NamedConstructor", Shapes: shapesFactory, Contexts: []Context{ContextInterface}},
	{Name: "NewObject", Shapes: shapesNone, Contexts: []Context{ContextOperation}},
	{Name: "NoInterfaceObject", Shapes: shapesNone, Contexts: []Context{ContextInterface}},
	{Name: "Pref", Shapes: shapesString, Contexts: contextsExposure},
	{Name: "PutForwards", Shapes: shapesIdent, Contexts: []Context{ContextAttribute}},
	{Name: "Replaceable", Shapes: shapesNone, Contexts: []Context{ContextAttribute}},
	{Name: "SameObject", Shapes: shapesNone, Contexts: []Context{ContextAttribute}},
	{Name: "SecureContext", Shapes: shapesNone, Contexts: contextsExposure},
	{Name: "Serializable", Shapes: shapesNone, Contexts: []Context{ContextInterface}},
	{Name: "StringContext", Shapes: shapesIdent, Contexts: []Context{ContextType}},
	{Name: "Throws", Shapes: shapesThrows, Contexts: contextsMembers},
	{Name: "Transferable", Shapes: shapesNone, Contexts: []Context{ContextInterface}},
	{Name: "TreatNullAs", Shapes: shapesIdent, Contexts: contextsCoercion},
	{Name: "TreatUndefinedAs", Shapes: shapesIdent, Contexts: contextsCoercion},
	{Name: "Unforgeable", Shapes: shapesNone, Contexts: []Context{ContextInterface, ContextAttribute, ContextOperation}},
	{Name: "Unscopable", Shapes: shapesNone, Contexts: contextsMembers},
}

// DefaultCatalog returns the built in catalog of standard and widely used
// legacy extended attributes.
func DefaultCatalog() *Catalog {
	c := &Catalog{entries: make(map[string]*CatalogEntry, len(defaultCatalogEntries))}
	for _, e := range defaultCatalogEntries {
		c.entries[e.Name] = e
	}
	return c
}
