package compiler

import (
	"gopkg.microglot.org/webidl.go/internal/idl"
)

// walkMember visits every node reachable from a member. Types are visited
// outermost first and the member itself last. Nodes are members,
// *idl.DictionaryMember, *idl.Argument, *idl.ExtendedAttribute and every
// idl.Type.
func walkMember(member idl.Member, f func(interface{})) {
	walkExtendedAttributes(member.MemberDecl().ExtendedAttributes, f)
	switch n := member.(type) {
	case *idl.Attribute:
		walkType(n.Type, f)
	case *idl.Operation:
		walkType(n.Return, f)
		walkArguments(n.Arguments, f)
	case *idl.Constant:
		walkType(n.Type, f)
	case *idl.Iterable:
		walkType(n.Key, f)
		walkType(n.Value, f)
	}
	f(member)
}

func walkDictionaryMember(member *idl.DictionaryMember, f func(interface{})) {
	walkExtendedAttributes(member.ExtendedAttributes, f)
	walkType(member.Type, f)
	f(member)
}

func walkArguments(args []*idl.Argument, f func(interface{})) {
	for _, arg := range args {
		walkExtendedAttributes(arg.ExtendedAttributes, f)
		walkType(arg.Type, f)
		f(arg)
	}
}

func walkExtendedAttributes(attrs idl.ExtendedAttributes, f func(interface{})) {
	for _, attr := range attrs {
		walkArguments(attr.Arguments, f)
		f(attr)
	}
}

func walkType(t idl.Type, f func(interface{})) {
	if t == nil {
		return
	}
	idl.WalkType(t, func(t idl.Type) {
		f(t)
	})
}
