// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package compiler

import (
	"fmt"
	"slices"

	"gopkg.microglot.org/webidl.go/internal/exc"
	"gopkg.microglot.org/webidl.go/internal/idl"
)

// check() validates a linked model. Every production is checked and every
// problem reported; the checker never stops early. Some fixups are applied
// in place: namespace members become static, trailing dictionary arguments
// become optional and stringifier attributes gain a synthesized operation.
// reports: type placement, argument ordering, extended attribute legality,
// duplicate members, ambiguous overloads
func check(model *idl.Model, catalog *Catalog, reporter exc.Reporter) {
	checker := modelChecker{
		model:    model,
		catalog:  catalog,
		reporter: reporter,
		seen:     map[string]bool{},
	}
	checker.check()
}

type modelChecker struct {
	model    *idl.Model
	catalog  *Catalog
	reporter exc.Reporter
	// seen suppresses identical reports, such as a problem inside a mixin
	// found again through every interface that includes it.
	seen map[string]bool
}

func (c *modelChecker) report(owner *idl.Declaration, loc idl.Location, code string, subject string, message string) {
	l := location(owner.URI, loc)
	key := fmt.Sprintf("%s|%s|%s|%s", l, code, subject, message)
	if c.seen[key] {
		return
	}
	c.seen[key] = true
	_ = c.reporter.Report(exc.NewSubject(l, code, subject, message))
}

func (c *modelChecker) check() {
	for _, production := range c.model.Productions {
		c.prepare(production)
	}
	for _, production := range c.model.Productions {
		decl := production.Decl()
		switch p := production.(type) {
		case *idl.Interface:
			if p.Mixin {
				c.checkExtendedAttributes(decl, decl.ExtendedAttributes, ContextMixin, decl.Identifier.QualifiedName())
			} else {
				c.checkExtendedAttributes(decl, decl.ExtendedAttributes, ContextInterface, decl.Identifier.QualifiedName())
			}
			c.checkInterface(p)
		case *idl.Namespace:
			c.checkExtendedAttributes(decl, decl.ExtendedAttributes, ContextNamespace, decl.Identifier.QualifiedName())
			c.checkNamespace(p)
		case *idl.CallbackInterface:
			c.checkExtendedAttributes(decl, decl.ExtendedAttributes, ContextCallback, decl.Identifier.QualifiedName())
			c.checkMembers(decl, p.Members)
			c.checkUniqueMembers(decl, p.Members)
			c.checkOverloads(decl, p.Members)
		case *idl.Dictionary:
			c.checkExtendedAttributes(decl, decl.ExtendedAttributes, ContextDictionary, decl.Identifier.QualifiedName())
			c.checkDictionary(p)
		case *idl.Callback:
			c.checkExtendedAttributes(decl, decl.ExtendedAttributes, ContextCallback, decl.Identifier.QualifiedName())
			c.checkType(decl, decl.Location, decl.Identifier.QualifiedName(), p.Return, true)
			c.checkArguments(decl, decl.Identifier.QualifiedName(), p.Arguments)
		case *idl.Enum:
			c.checkExtendedAttributes(decl, decl.ExtendedAttributes, ContextEnum, decl.Identifier.QualifiedName())
			c.checkEnum(p)
		case *idl.Typedef:
			c.checkExtendedAttributes(decl, decl.ExtendedAttributes, ContextTypedef, decl.Identifier.QualifiedName())
			c.checkType(decl, decl.Location, decl.Identifier.QualifiedName(), p.Type, false)
		}
	}
}

// prepare applies the in-place fixups to a production. Every production is
// prepared before any is checked so that an interface sees the final form of
// the mixins it includes regardless of declaration order.
func (c *modelChecker) prepare(production idl.Production) {
	switch p := production.(type) {
	case *idl.Interface:
		c.synthesizeStringifiers(p)
		prepareOperations(p.Members)
	case *idl.Namespace:
		for _, member := range p.Members {
			switch m := member.(type) {
			case *idl.Attribute:
				m.Static = true
			case *idl.Operation:
				m.Static = true
			}
		}
		prepareOperations(p.Members)
	case *idl.CallbackInterface:
		prepareOperations(p.Members)
	case *idl.Callback:
		implicitlyOptional(p.Arguments)
	}
}

func prepareOperations(members []idl.Member) {
	for _, member := range members {
		if op, ok := member.(*idl.Operation); ok {
			implicitlyOptional(op.Arguments)
		}
	}
}

// implicitlyOptional makes a trailing required dictionary argument optional.
func implicitlyOptional(args []*idl.Argument) {
	if len(args) == 0 {
		return
	}
	arg := args[len(args)-1]
	if idl.ContainsDictionary(arg.Type) && !idl.IncludesNullable(arg.Type) && !arg.Optional && !arg.Variadic {
		arg.Optional = true
		arg.ImplicitlyOptional = true
	}
}

func (c *modelChecker) checkInterface(iface *idl.Interface) {
	decl := &iface.Declaration
	c.checkMembers(decl, iface.Members)

	members := slices.Clone(iface.Members)
	if !iface.Mixin {
		for _, mixin := range c.model.Mixins(iface.Name()) {
			members = append(members, mixin.Members...)
		}
	}
	c.checkStringifiers(iface)
	c.checkUniqueMembers(decl, members)
	c.checkIterables(decl, members)
	c.checkOverloads(decl, members)
}

func (c *modelChecker) checkNamespace(ns *idl.Namespace) {
	decl := &ns.Declaration
	for _, member := range ns.Members {
		md := member.MemberDecl()
		switch m := member.(type) {
		case *idl.Attribute:
			if m.StaticKeyword {
				c.report(decl, md.Location, exc.CodeStaticInNamespace, md.Identifier.QualifiedName(), "static modifier not allowed in namespace")
			}
		case *idl.Operation:
			if m.StaticKeyword {
				c.report(decl, md.Location, exc.CodeStaticInNamespace, md.Identifier.QualifiedName(), "static modifier not allowed in namespace")
			}
		}
	}
	c.checkMembers(decl, ns.Members)
	c.checkUniqueMembers(decl, ns.Members)
	c.checkOverloads(decl, ns.Members)
}

func (c *modelChecker) checkMembers(owner *idl.Declaration, members []idl.Member) {
	for _, member := range members {
		md := member.MemberDecl()
		subject := md.Identifier.QualifiedName()
		switch m := member.(type) {
		case *idl.Attribute:
			c.checkExtendedAttributes(owner, md.ExtendedAttributes, ContextAttribute, subject)
			c.checkType(owner, md.Location, subject, m.Type, false)
			c.checkAttributeType(owner, m)
		case *idl.Operation:
			if m.Synthesized {
				continue
			}
			c.checkExtendedAttributes(owner, md.ExtendedAttributes, ContextOperation, subject)
			c.checkType(owner, md.Location, subject, m.Return, true)
			c.checkArguments(owner, subject, m.Arguments)
		case *idl.Constant:
			c.checkExtendedAttributes(owner, md.ExtendedAttributes, ContextConstant, subject)
			c.checkType(owner, md.Location, subject, m.Type, false)
			c.checkConstantType(owner, m)
		case *idl.Iterable:
			c.checkExtendedAttributes(owner, md.ExtendedAttributes, ContextNone, subject)
			c.checkType(owner, md.Location, subject, m.Key, false)
			c.checkType(owner, md.Location, subject, m.Value, false)
		}
	}
}

func (c *modelChecker) checkAttributeType(owner *idl.Declaration, attr *idl.Attribute) {
	bad := func(t idl.Type) bool {
		switch t.(type) {
		case *idl.SequenceType, *idl.RecordType:
			return true
		}
		return idl.IsDictionary(t)
	}
	t := idl.StripNullable(attr.Type)
	invalid := bad(t)
	if u, ok := t.(*idl.UnionType); ok {
		for _, m := range idl.FlattenedMembers(u) {
			invalid = invalid || bad(m)
		}
	}
	if invalid {
		c.report(owner, attr.Location, exc.CodeInvalidAttributeType, attr.Identifier.QualifiedName(),
			fmt.Sprintf("attribute %s cannot be of type %s", attr.Name(), attr.Type))
	}
}

func (c *modelChecker) checkConstantType(owner *idl.Declaration, constant *idl.Constant) {
	t, ok := idl.StripNullable(constant.Type).(*idl.PrimitiveType)
	if ok && (t.Kind == idl.PrimitiveBoolean || t.IsNumeric()) {
		return
	}
	c.report(owner, constant.Location, exc.CodeInvalidConstantType, constant.Identifier.QualifiedName(),
		fmt.Sprintf("constant %s cannot be of type %s", constant.Name(), constant.Type))
}

// checkArguments validates an argument list. A required dictionary argument
// is only allowed last, where prepare has already made it optional.
func (c *modelChecker) checkArguments(owner *idl.Declaration, subject string, args []*idl.Argument) {
	last := len(args) - 1
	seenOptional := false
	for x, arg := range args {
		c.checkExtendedAttributes(owner, arg.ExtendedAttributes, ContextArgument, subject)
		c.checkType(owner, arg.Location, subject, arg.Type, false)

		if idl.ContainsDictionary(arg.Type) && !idl.IncludesNullable(arg.Type) && !arg.Optional && !arg.Variadic {
			for _, after := range args[x+1:] {
				if after.Optional || after.Variadic {
					c.report(owner, arg.Location, exc.CodeArgumentOrdering, subject,
						fmt.Sprintf("dictionary argument %s must be optional because it is followed by optional argument %s", arg.Name, after.Name))
					break
				}
			}
		}
		if arg.Variadic && x != last {
			c.report(owner, arg.Location, exc.CodeArgumentOrdering, subject,
				fmt.Sprintf("variadic argument %s must be the last argument", arg.Name))
		}
		if !arg.Optional && !arg.Variadic && seenOptional {
			c.report(owner, arg.Location, exc.CodeArgumentOrdering, subject,
				fmt.Sprintf("required argument %s follows an optional argument", arg.Name))
		}
		if arg.Optional {
			seenOptional = true
		}
	}
}

// checkType validates the shape of a type as written. Types behind typedef
// references are checked once at the typedef.
func (c *modelChecker) checkType(owner *idl.Declaration, loc idl.Location, subject string, t idl.Type, allowUndefined bool) {
	if t == nil {
		return
	}
	switch n := t.(type) {
	case *idl.PrimitiveType:
		if n.Kind == idl.PrimitiveUndefined && !allowUndefined {
			c.report(owner, loc, exc.CodeUndefinedPlacement, subject, "undefined is only allowed as a return type")
		}
	case *idl.NullableType:
		c.checkNullable(owner, loc, subject, n)
		c.checkType(owner, loc, subject, n.Inner, false)
	case *idl.UnionType:
		c.checkUnion(owner, loc, subject, n)
		for _, m := range n.Members {
			c.checkType(owner, loc, subject, m, false)
		}
	case *idl.SequenceType:
		c.checkType(owner, loc, subject, n.Element, false)
	case *idl.FrozenArrayType:
		c.checkType(owner, loc, subject, n.Element, false)
	case *idl.RecordType:
		if key, ok := idl.Resolve(n.Key).(*idl.PrimitiveType); !ok || !key.IsString() {
			c.report(owner, loc, exc.CodeInvalidTypePlacement, subject, fmt.Sprintf("record key type %s is not a string type", n.Key))
		}
		c.checkType(owner, loc, subject, n.Value, false)
	case *idl.PromiseType:
		c.checkType(owner, loc, subject, n.Result, true)
	}
}

func (c *modelChecker) checkNullable(owner *idl.Declaration, loc idl.Location, subject string, n *idl.NullableType) {
	inner := idl.Resolve(n.Inner)
	switch i := inner.(type) {
	case *idl.NullableType:
		c.report(owner, loc, exc.CodeInvalidNullable, subject, fmt.Sprintf("%s: nullable type cannot wrap a nullable type", n))
		return
	case *idl.PromiseType:
		c.report(owner, loc, exc.CodeInvalidNullable, subject, fmt.Sprintf("%s: promise types cannot be nullable", n))
		return
	case *idl.PrimitiveType:
		if i.Kind == idl.PrimitiveAny {
			c.report(owner, loc, exc.CodeInvalidNullable, subject, fmt.Sprintf("%s: any cannot be nullable", n))
		}
		return
	case *idl.UnionType:
		if idl.NullableMemberCount(i) > 0 {
			c.report(owner, loc, exc.CodeInvalidNullable, subject, fmt.Sprintf("%s: nullable union cannot have a nullable member", n))
			return
		}
	}
	if idl.ContainsDictionary(inner) {
		c.report(owner, loc, exc.CodeInvalidTypePlacement, subject, fmt.Sprintf("%s: dictionary types cannot be nullable", n))
	}
}

func (c *modelChecker) checkUnion(owner *idl.Declaration, loc idl.Location, subject string, u *idl.UnionType) {
	if count := idl.NullableMemberCount(u); count > 1 {
		c.report(owner, loc, exc.CodeInvalidUnion, subject, fmt.Sprintf("%s: union has %d nullable member types", u, count))
	} else if count == 1 && idl.ContainsDictionary(u) {
		c.report(owner, loc, exc.CodeInvalidTypePlacement, subject, fmt.Sprintf("%s: union with a nullable member cannot contain a dictionary", u))
	}
	members := idl.FlattenedMembers(u)
	for a := 0; a < len(members); a = a + 1 {
		if idl.IsPrimitive(members[a], idl.PrimitiveAny) {
			c.report(owner, loc, exc.CodeInvalidUnion, subject, fmt.Sprintf("%s: any cannot be a union member type", u))
			return
		}
	}
	for a := 0; a < len(members); a = a + 1 {
		for b := a + 1; b < len(members); b = b + 1 {
			if !c.model.IsDistinguishableFrom(members[a], members[b]) {
				c.report(owner, loc, exc.CodeInvalidUnion, subject,
					fmt.Sprintf("%s: member types %s and %s are not distinguishable", u, members[a], members[b]))
				return
			}
		}
	}
}

// synthesizeStringifiers adds the operation implied by a stringifier
// attribute. The operation is added once even if the model is checked again.
func (c *modelChecker) synthesizeStringifiers(iface *idl.Interface) {
	for _, member := range iface.Members {
		if op, ok := member.(*idl.Operation); ok && op.Synthesized && op.Name() == idl.StringifierOperationName {
			return
		}
	}
	for _, member := range iface.Members {
		attr, ok := member.(*idl.Attribute)
		if !ok || !attr.Stringifier {
			continue
		}
		if !idl.IsPrimitive(attr.Type, idl.PrimitiveDOMString) && !idl.IsPrimitive(attr.Type, idl.PrimitiveUSVString) {
			c.report(&iface.Declaration, attr.Location, exc.CodeInvalidStringifier, attr.Identifier.QualifiedName(),
				fmt.Sprintf("stringifier attribute %s must be DOMString or USVString, not %s", attr.Name(), attr.Type))
			continue
		}
		iface.Members = append(iface.Members, &idl.Operation{
			MemberDeclaration: idl.MemberDeclaration{
				Identifier: idl.NewIdentifier(iface.MemberScope(), idl.StringifierOperationName),
				Location:   attr.Location,
			},
			Special:     idl.SpecialStringifier,
			Return:      attr.Type,
			Static:      attr.Static,
			Synthesized: true,
		})
	}
}

func isStringifier(member idl.Member) bool {
	switch m := member.(type) {
	case *idl.Attribute:
		return m.Stringifier
	case *idl.Operation:
		return m.Special == idl.SpecialStringifier && !m.Synthesized
	}
	return false
}

// checkStringifiers allows one stringifier across an interface and the
// mixins it includes. A mixin that declares several on its own is reported
// when the mixin is checked.
func (c *modelChecker) checkStringifiers(iface *idl.Interface) {
	sources := [][]idl.Member{iface.Members}
	if !iface.Mixin {
		for _, mixin := range c.model.Mixins(iface.Name()) {
			sources = append(sources, mixin.Members)
		}
	}
	found := []idl.Member{}
	counts := make([]int, len(sources))
	for x, members := range sources {
		for _, member := range members {
			if isStringifier(member) {
				found = append(found, member)
				counts[x] = counts[x] + 1
			}
		}
	}
	if len(found) < 2 {
		return
	}
	for x := 1; x < len(counts); x = x + 1 {
		if counts[x] == len(found) {
			return
		}
	}
	second := found[1].MemberDecl()
	c.report(&iface.Declaration, second.Location, exc.CodeMultipleStringifiers, iface.Identifier.QualifiedName(),
		fmt.Sprintf("%s %s declares %d stringifiers", idl.Describe(iface), iface.Name(), len(found)))
}

// checkUniqueMembers rejects members that share a name unless they are all
// operations.
func (c *modelChecker) checkUniqueMembers(owner *idl.Declaration, members []idl.Member) {
	byName := map[string]idl.Member{}
	for _, member := range members {
		name := member.MemberDecl().Name()
		if name == "" || member.MemberKind() == idl.MemberKindIterable {
			continue
		}
		if op, ok := member.(*idl.Operation); ok && (op.Synthesized || op.Special == idl.SpecialConstructor) {
			continue
		}
		existing, ok := byName[name]
		if !ok {
			byName[name] = member
			continue
		}
		if existing.MemberKind() == idl.MemberKindOperation && member.MemberKind() == idl.MemberKindOperation {
			continue
		}
		md := member.MemberDecl()
		c.report(owner, md.Location, exc.CodeDuplicateMember, md.Identifier.QualifiedName(),
			fmt.Sprintf("%s %s duplicates %s %s", member.MemberKind(), name, existing.MemberKind(), existing.MemberDecl().Identifier.QualifiedName()))
	}
}

func (c *modelChecker) checkIterables(owner *idl.Declaration, members []idl.Member) {
	var first *idl.Iterable
	for _, member := range members {
		it, ok := member.(*idl.Iterable)
		if !ok {
			continue
		}
		if first == nil {
			first = it
			continue
		}
		c.report(owner, it.Location, exc.CodeDuplicateIterable, owner.Identifier.QualifiedName(),
			fmt.Sprintf("%s declaration conflicts with earlier %s declaration", it.IterableKind, first.IterableKind))
	}
}

func (c *modelChecker) checkDictionary(dict *idl.Dictionary) {
	decl := &dict.Declaration
	inherited := map[string]*idl.Dictionary{}
	for _, ancestor := range c.model.ParentChain(dict.Name()) {
		parent, ok := ancestor.(*idl.Dictionary)
		if !ok {
			continue
		}
		for _, member := range parent.Members {
			if _, exists := inherited[member.Name()]; !exists {
				inherited[member.Name()] = parent
			}
		}
	}
	own := map[string]bool{}
	for _, member := range dict.Members {
		subject := member.Identifier.QualifiedName()
		c.checkExtendedAttributes(decl, member.ExtendedAttributes, ContextDictionaryMember, subject)
		c.checkType(decl, member.Location, subject, member.Type, false)
		if own[member.Name()] {
			c.report(decl, member.Location, exc.CodeDuplicateMember, subject,
				fmt.Sprintf("dictionary %s declares member %s more than once", dict.Name(), member.Name()))
			continue
		}
		own[member.Name()] = true
		if parent, ok := inherited[member.Name()]; ok {
			c.report(decl, member.Location, exc.CodeDuplicateMember, subject,
				fmt.Sprintf("dictionary member %s is already declared by ancestor %s", member.Name(), parent.Name()))
		}
	}
}

func (c *modelChecker) checkEnum(enum *idl.Enum) {
	seen := map[string]bool{}
	for _, value := range enum.Values {
		if seen[value] {
			c.report(&enum.Declaration, enum.Location, exc.CodeDuplicateEnumValue, enum.Identifier.QualifiedName(),
				fmt.Sprintf("enum %s has duplicate value %q", enum.Name(), value))
			continue
		}
		seen[value] = true
	}
}

// checkExtendedAttributes validates attributes against the catalog. ctx is
// ContextNone for places with no context restriction.
func (c *modelChecker) checkExtendedAttributes(owner *idl.Declaration, attrs idl.ExtendedAttributes, ctx Context, subject string) {
	for _, attr := range attrs {
		walkArguments(attr.Arguments, func(node interface{}) {
			if arg, ok := node.(*idl.Argument); ok {
				c.checkType(owner, arg.Location, subject, arg.Type, false)
			}
		})
		entry, ok := c.catalog.Lookup(attr.Name)
		if !ok {
			c.report(owner, attr.Location, exc.CodeUnknownExtendedAttribute, subject,
				fmt.Sprintf("unknown extended attribute [%s]", attr.Name))
			continue
		}
		if !entry.AcceptsShape(attr.Shape) {
			c.report(owner, attr.Location, exc.CodeExtendedAttributeShape, subject,
				fmt.Sprintf("extended attribute [%s] does not accept the %s form", attr, attr.Shape))
			continue
		}
		if ctx != ContextNone && !entry.Allows(ctx) {
			c.report(owner, attr.Location, exc.CodeExtendedAttributeContext, subject,
				fmt.Sprintf("extended attribute [%s] is not allowed on a %s", attr.Name, ctx))
		}
	}
}
