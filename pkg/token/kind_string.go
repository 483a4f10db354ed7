package token

var kindNames = map[Kind]string{
	EOF:          "end of input",
	Illegal:      "illegal token",
	Ident:        "identifier",
	Constant:     "constant",
	Attribute:    "attribute",
	Integer:      "integer",
	Float:        "float",
	String:       "string",
	Comment:      "comment",
	KwSelf:       "'self'",
	KwLet:        "'let'",
	KwVar:        "'var'",
	KwFn:         "'fn'",
	KwClass:      "'class'",
	KwTrait:      "'trait'",
	KwImpl:       "'impl'",
	KwImport:     "'import'",
	KwAs:         "'as'",
	KwElse:       "'else'",
	KwReturn:     "'return'",
	KwThrow:      "'throw'",
	KwTry:        "'try'",
	KwType:       "'type'",
	KwTrue:       "'true'",
	KwFalse:      "'false'",
	KwNil:        "'nil'",
	LParen:       "'('",
	RParen:       "')'",
	LBracket:     "'['",
	RBracket:     "']'",
	LBrace:       "'{'",
	RBrace:       "'}'",
	HashOpen:     "'#{'",
	Comma:        "','",
	Dot:          "'.'",
	Colon:        "':'",
	ColonColon:   "'::'",
	Assign:       "'='",
	Arrow:        "'->'",
	TypeArgsOpen: "'!('",
	Plus:         "'+'",
	Minus:        "'-'",
	Star:         "'*'",
	Slash:        "'/'",
	Percent:      "'%'",
	Pow:          "'**'",
	Amp:          "'&'",
	Pipe:         "'|'",
	Caret:        "'^'",
	Shl:          "'<<'",
	Shr:          "'>>'",
	Eq:           "'=='",
	NotEq:        "'!='",
	Lt:           "'<'",
	LtEq:         "'<='",
	Gt:           "'>'",
	GtEq:         "'>='",
	AndAnd:       "'&&'",
	OrOr:         "'||'",
	DotDot:       "'..'",
	DotDotEq:     "'..='",
}

// String renders a Kind the way it should read in a parse failure message.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown token"
}

var namesByIdentifier = map[string]Kind{
	"EOF": EOF, "Illegal": Illegal, "Ident": Ident, "Constant": Constant,
	"Attribute": Attribute, "Integer": Integer, "Float": Float, "String": String,
	"Comment": Comment, "KwSelf": KwSelf, "KwLet": KwLet, "KwVar": KwVar,
	"KwFn": KwFn, "KwClass": KwClass, "KwTrait": KwTrait, "KwImpl": KwImpl,
	"KwImport": KwImport, "KwAs": KwAs, "KwElse": KwElse, "KwReturn": KwReturn,
	"KwThrow": KwThrow, "KwTry": KwTry, "KwType": KwType, "KwTrue": KwTrue,
	"KwFalse": KwFalse, "KwNil": KwNil, "LParen": LParen, "RParen": RParen,
	"LBracket": LBracket, "RBracket": RBracket, "LBrace": LBrace, "RBrace": RBrace,
	"HashOpen": HashOpen, "Comma": Comma, "Dot": Dot, "Colon": Colon,
	"ColonColon": ColonColon, "Assign": Assign, "Arrow": Arrow,
	"TypeArgsOpen": TypeArgsOpen, "Plus": Plus, "Minus": Minus, "Star": Star,
	"Slash": Slash, "Percent": Percent, "Pow": Pow, "Amp": Amp, "Pipe": Pipe,
	"Caret": Caret, "Shl": Shl, "Shr": Shr, "Eq": Eq, "NotEq": NotEq,
	"Lt": Lt, "LtEq": LtEq, "Gt": Gt, "GtEq": GtEq, "AndAnd": AndAnd,
	"OrOr": OrOr, "DotDot": DotDot, "DotDotEq": DotDotEq,
}

// KindByName looks up a Kind by its Go identifier, for token sources (like
// weftc's JSON token file) that name kinds by their symbolic name rather
// than their numeric value.
func KindByName(name string) (Kind, bool) {
	k, ok := namesByIdentifier[name]
	return k, ok
}
