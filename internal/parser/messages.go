package parser

// Error messages. Every compile failure is an *expr.ParseError carrying one
// of these and the offset of the offending token.
const (
	msgExpressionTypeMismatch     = "Expression of type '%s' expected"
	msgExpressionExpected         = "Expression expected"
	msgInvalidIntegerLiteral      = "Invalid integer literal '%s'"
	msgInvalidRealLiteral         = "Invalid real literal '%s'"
	msgUnknownIdentifier          = "Unknown identifier '%s'"
	msgUnsupportedValue           = "Value of identifier '%s' has unsupported type '%s'"
	msgNoItInScope                = "No 'it' is in scope"
	msgIifRequiresThreeArgs       = "The 'iif' function requires three arguments"
	msgFirstExprMustBeBool        = "The first expression must be of type 'Boolean'"
	msgBothTypesConvertToOther    = "Both of the types '%s' and '%s' convert to the other"
	msgNeitherTypeConvertsToOther = "Neither of the types '%s' and '%s' converts to the other"
	msgMissingAsClause            = "Expression is missing an 'as' clause"
	msgDuplicateField             = "The identifier '%s' was defined more than once"
	msgArgsIncompatibleWithLambda = "Argument list incompatible with lambda expression"
	msgTypeHasNoNullableForm      = "Type '%s' has no nullable form"
	msgNoMatchingConstructor      = "No matching constructor in type '%s'"
	msgAmbiguousConstructor       = "Ambiguous invocation of '%s' constructor"
	msgCannotConvertValue         = "A value of type '%s' cannot be converted to type '%s'"
	msgNoApplicableMethod         = "No applicable method '%s' exists in type '%s'"
	msgMethodsAreInaccessible     = "Methods on type '%s' are not accessible"
	msgMethodIsVoid               = "Method '%s' in type '%s' does not return a value"
	msgAmbiguousMethod            = "Ambiguous invocation of method '%s' in type '%s'"
	msgUnknownPropertyOrField     = "No property or field '%s' exists in type '%s'"
	msgNoApplicableAggregate      = "No applicable aggregate method '%s' exists"
	msgCannotIndexMultiDimArray   = "Indexing of multi-dimensional arrays is not supported"
	msgInvalidIndex               = "Array index must be an integer expression"
	msgNoApplicableIndexer        = "No applicable indexer exists in type '%s'"
	msgAmbiguousIndexer           = "Ambiguous invocation of indexer in type '%s'"
	msgIncompatibleOperand        = "Operator '%s' incompatible with operand type '%s'"
	msgIncompatibleOperands       = "Operator '%s' incompatible with operand types '%s' and '%s'"
	msgSyntaxError                = "Syntax error"
	msgColonExpected              = "':' expected"
	msgOpenParenExpected          = "'(' expected"
	msgCloseParenOrOperator       = "')' or operator expected"
	msgCloseParenOrComma          = "')' or ',' expected"
	msgDotOrOpenParenExpected     = "'.' or '(' expected"
	msgOpenBracketExpected        = "'[' expected"
	msgCloseBracketOrComma        = "']' or ',' expected"
	msgIdentifierExpected         = "Identifier expected"
)
