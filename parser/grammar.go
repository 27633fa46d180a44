package parser

import "github.com/alecthomas/participle/lexer"

var minicLexer = lexer.Must(lexer.Regexp(`(\s+)` +
	`|(//[^\n]*)` +
	`|(?P<Float>\d+\.\d+(?:[eE][-+]?\d+)?)` +
	`|(?P<Int>\d+)` +
	`|(?P<Ident>[a-zA-Z_][a-zA-Z0-9_]*)` +
	`|(?P<Arrow>->)` +
	`|(?P<Punct>[-+*/%=(){},;:<>])`,
))

type program struct {
	TopLevels []*topLevel `@@*`
}

type topLevel struct {
	Extern   *externDecl   `  @@`
	Function *functionDecl `| @@`
}

type ident struct {
	Pos  lexer.Position
	Name string `@Ident`
}

type param struct {
	Name *ident `@@ ":"`
	Type *ident `@@`
}

type externDecl struct {
	Pos     lexer.Position
	Name    *ident   `"extern" "function" @@`
	Params  []*param `"(" ( @@ ( "," @@ )* )? ")"`
	Returns *ident   `( "->" @@ )? ";"`
}

type functionDecl struct {
	Pos     lexer.Position
	Name    *ident   `"function" @@`
	Params  []*param `"(" ( @@ ( "," @@ )* )? ")"`
	Returns *ident   `( "->" @@ )?`
	Body    *block   `@@`
}

type block struct {
	Pos        lexer.Position
	Statements []*statement `"{" @@* "}"`
}

type statement struct {
	Var    *varDecl    `  @@`
	Return *returnStmt `| @@`
	Block  *block      `| @@`
	Expr   *expression `| @@ ";"`
}

type varDecl struct {
	Pos   lexer.Position
	Name  *ident      `"var" @@ ":"`
	Type  *ident      `@@`
	Value *expression `( "=" @@ )? ";"`
}

type returnStmt struct {
	Pos   lexer.Position
	Value *expression `"return" @@? ";"`
}

type expression struct {
	Assign *assignment `  @@`
	Sum    *sum        `| @@`
}

type assignment struct {
	Pos   lexer.Position
	To    *ident      `@@ "="`
	Value *expression `@@`
}

type sum struct {
	Left *product `@@`
	Rest []*sumOp `@@*`
}

type sumOp struct {
	Pos   lexer.Position
	Op    string   `@("+" | "-")`
	Right *product `@@`
}

type product struct {
	Left *primary     `@@`
	Rest []*productOp `@@*`
}

// The comparison operators parse but have no lowering rule.
type productOp struct {
	Pos   lexer.Position
	Op    string   `@("*" | "/" | "%" | "<" | ">")`
	Right *primary `@@`
}

type primary struct {
	Pos   lexer.Position
	Float *float64    `  @Float`
	Int   *int64      `| @Int`
	Call  *call       `| @@`
	Ident *string     `| @Ident`
	Sub   *expression `| "(" @@ ")"`
}

type call struct {
	Pos  lexer.Position
	Name *ident        `@@ "("`
	Args []*expression `( @@ ( "," @@ )* )? ")"`
}
