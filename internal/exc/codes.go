package exc

const (
	CodeUnknownFatal                   = "W0000"
	CodeFileNotFound                   = "W0001"
	CodeUnsupportedFileSystemOperation = "W0002"
	CodePermissionDenied               = "W0003"
	CodeUnsupportedFileFormat          = "W0004"
	CodeUnexpectedEOF                  = "W0005"
	CodeSyntaxError                    = "W0006"
	CodeInvalidNumber                  = "W0007"
	CodeInvalidCatalog                 = "W0008"
)

const (
	CodeDuplicateDefinition = "W0100"
	CodeDuplicateMember     = "W0101"
	CodeDuplicateEnumValue  = "W0102"
	CodeDuplicateIterable   = "W0103"

	CodeKindMismatch        = "W0110"
	CodePartialKindMismatch = "W0111"

	CodeUnresolvedReference = "W0120"
	CodeNoPrimaryDefinition = "W0121"

	CodeInheritanceCycle = "W0130"
	CodeDictionaryCycle  = "W0131"
	CodeTypedefCycle     = "W0132"

	CodeInvalidTypePlacement = "W0140"
	CodeInvalidNullable      = "W0141"
	CodeInvalidUnion         = "W0142"
	CodeUndefinedPlacement   = "W0143"
	CodeInvalidAttributeType = "W0144"
	CodeInvalidConstantType  = "W0145"
	CodeInvalidStringifier   = "W0146"

	CodeArgumentOrdering = "W0150"

	CodeUnknownExtendedAttribute  = "W0160"
	CodeExtendedAttributeShape    = "W0161"
	CodeExtendedAttributeContext  = "W0162"
	CodeExtendedAttributeConflict = "W0163"
	CodeStaticInNamespace         = "W0164"
	CodeMultipleStringifiers      = "W0165"

	CodeOverloadAmbiguity = "W0170"
	CodeMixedStatic       = "W0171"
)

const (
	CodeEOF = "_EOF_"
)

var (
	defaultNonFatal = map[string]bool{}
)

var codeKinds = map[string]Kind{
	CodeUnknownFatal:                   KindIO,
	CodeFileNotFound:                   KindIO,
	CodeUnsupportedFileSystemOperation: KindIO,
	CodePermissionDenied:               KindIO,
	CodeUnsupportedFileFormat:          KindIO,
	CodeInvalidCatalog:                 KindIO,
	CodeUnexpectedEOF:                  KindSyntax,
	CodeSyntaxError:                    KindSyntax,
	CodeInvalidNumber:                  KindSyntax,
	CodeEOF:                            KindSyntax,

	CodeDuplicateDefinition: KindDuplicateDefinition,
	CodeDuplicateMember:     KindDuplicateDefinition,
	CodeDuplicateEnumValue:  KindDuplicateDefinition,
	CodeDuplicateIterable:   KindDuplicateDefinition,

	CodeKindMismatch:        KindKindMismatch,
	CodePartialKindMismatch: KindKindMismatch,

	CodeUnresolvedReference: KindUnresolvedReference,
	CodeNoPrimaryDefinition: KindUnresolvedReference,

	CodeInheritanceCycle: KindCycle,
	CodeDictionaryCycle:  KindCycle,
	CodeTypedefCycle:     KindCycle,

	CodeInvalidTypePlacement: KindInvalidTypePlacement,
	CodeInvalidNullable:      KindInvalidTypePlacement,
	CodeInvalidUnion:         KindInvalidTypePlacement,
	CodeUndefinedPlacement:   KindInvalidTypePlacement,
	CodeInvalidAttributeType: KindInvalidTypePlacement,
	CodeInvalidConstantType:  KindInvalidTypePlacement,
	CodeInvalidStringifier:   KindInvalidTypePlacement,

	CodeArgumentOrdering: KindArgumentOrdering,

	CodeUnknownExtendedAttribute:  KindExtendedAttribute,
	CodeExtendedAttributeShape:    KindExtendedAttribute,
	CodeExtendedAttributeContext:  KindExtendedAttribute,
	CodeExtendedAttributeConflict: KindExtendedAttribute,
	CodeStaticInNamespace:         KindExtendedAttribute,
	CodeMultipleStringifiers:      KindExtendedAttribute,

	CodeOverloadAmbiguity: KindOverloadAmbiguity,
	CodeMixedStatic:       KindOverloadAmbiguity,
}

// KindOf maps a code to its error kind. Unknown codes map to KindIO.
func KindOf(code string) Kind {
	if k, ok := codeKinds[code]; ok {
		return k
	}
	return KindIO
}
