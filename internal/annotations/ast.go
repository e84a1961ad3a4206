package annotations

import "github.com/alecthomas/participle/v2/lexer"

// The grammar covers the declaration surface of C#. Statement and expression bodies are
// consumed as balanced token runs and never interpreted.

// File is the root of one parsed compilation unit
type File struct {
	Entries []*Entry `parser:"@@*"`
}

// Entry is a top-level or namespace-level item
type Entry struct {
	Using     *Using           `parser:"  @@"`
	Namespace *Namespace       `parser:"| @@"`
	Global    *GlobalAttribute `parser:"| @@"`
	Member    *Member          `parser:"| @@"`
	Empty     bool             `parser:"| @';'"`
}

// Using is a using directive, optionally global, static or aliased
type Using struct {
	Pos    lexer.Position
	Global bool     `parser:"@'global'? 'using'"`
	Static bool     `parser:"@'static'?"`
	Alias  string   `parser:"( @Ident '=' )?"`
	Target *TypeRef `parser:"@@ ';'"`
}

// Namespace is a block or file-scoped namespace declaration
type Namespace struct {
	Pos        lexer.Position
	Name       []string `parser:"'namespace' @Ident ( '.' @Ident )*"`
	FileScoped bool     `parser:"(   @';'"`
	Entries    []*Entry `parser:"    @@* | '{' @@* '}' )"`
}

// GlobalAttribute is an assembly or module level attribute section
type GlobalAttribute struct {
	Target     string       `parser:"'[' @( 'assembly' | 'module' ) ':'"`
	Attributes []*Attribute `parser:"@@ ( ',' @@ )* ','? ']'"`
}

// AttributeSection is one bracketed attribute list
type AttributeSection struct {
	Target     string       `parser:"'[' ( @Ident ':' )?"`
	Attributes []*Attribute `parser:"@@ ( ',' @@ )* ','? ']'"`
}

// Attribute is a single attribute application
type Attribute struct {
	Pos       lexer.Position
	Name      *TypeRef        `parser:"@@"`
	Arguments []*AttributeArg `parser:"( '(' ( @@ ( ',' @@ )* )? ')' )?"`
}

// AttributeArg is one attribute argument. Name is set for `name: value` and
// `Name = value` forms, Assign distinguishes the two.
type AttributeArg struct {
	Pos    lexer.Position
	Name   string      `parser:"( @Ident"`
	Assign string      `parser:"  @( ':' | '=' ) )?"`
	Value  *ArgValue   `parser:"@@"`
	Rest   []*ArgToken `parser:"@@*"`
}

// ArgValue is the leading term of an attribute argument
type ArgValue struct {
	TypeOf *TypeRef  `parser:"  'typeof' '(' @@ ')'"`
	NameOf *TypeRef  `parser:"| 'nameof' '(' @@ ')'"`
	String *string   `parser:"| @String"`
	Token  *ArgToken `parser:"| @@"`
}

// ArgToken is one token of an argument or default value, with parentheses balanced
type ArgToken struct {
	Group *ArgGroup `parser:"  @@"`
	Token string    `parser:"| @~( ',' | '(' | ')' )"`
}

// ArgGroup is a parenthesized token run
type ArgGroup struct {
	Open   bool          `parser:"@'('"`
	Tokens []*GroupToken `parser:"@@* ')'"`
}

// GroupToken is a token inside an ArgGroup
type GroupToken struct {
	Group *ArgGroup `parser:"  @@"`
	Token string    `parser:"| @~( '(' | ')' )"`
}

// TypeRef is a type reference as written: a tuple or a dotted, possibly generic, name
// followed by nullable, pointer and array suffixes.
type TypeRef struct {
	Pos    lexer.Position
	Tuple  []*TupleElement `parser:"(   '(' @@ ( ',' @@ )* ')'"`
	Global bool            `parser:"  | ( @'global' '::' )?"`
	Parts  []*TypePart     `parser:"    @@ ( '.' @@ )* )"`
	Suffix []string        `parser:"( @'?' | @'*' | @'[' @','* @']' )*"`
}

// TupleElement is one element of a tuple type
type TupleElement struct {
	Type *TypeRef `parser:"@@"`
	Name string   `parser:"@Ident?"`
}

// TypePart is one dotted segment of a type name with its type arguments
type TypePart struct {
	Name    string     `parser:"@Ident"`
	Generic bool       `parser:"( @'<'"`
	Args    []*TypeRef `parser:"  ( @@ ( ',' @@ )* | ','* ) '>' )?"`
}

// Member is a declaration inside a namespace or type body
type Member struct {
	Pos        lexer.Position
	Attributes []*AttributeSection `parser:"@@*"`
	Modifiers  []string            `parser:"@( 'public' | 'private' | 'protected' | 'internal' | 'static' | 'abstract' | 'virtual' | 'override' | 'sealed' | 'readonly' | 'unsafe' | 'extern' | 'new' | 'partial' | 'async' | 'volatile' | 'const' | 'required' | 'file' | 'ref' | 'fixed' )*"`
	Body       *MemberBody         `parser:"@@"`
}

// MemberBody holds the declaration that follows attributes and modifiers
type MemberBody struct {
	Type        *TypeDecl     `parser:"  @@"`
	Enum        *EnumDecl     `parser:"| @@"`
	Delegate    *DelegateDecl `parser:"| @@"`
	Conversion  *Conversion   `parser:"| @@"`
	Constructor *Constructor  `parser:"| @@"`
	Finalizer   *Finalizer    `parser:"| @@"`
	Event       *Event        `parser:"| @@"`
	Typed       *TypedMember  `parser:"| @@"`
}

// TypeDecl is an interface, class, struct or record declaration
type TypeDecl struct {
	Pos         lexer.Position
	Kind        string        `parser:"@( 'interface' | 'class' | 'struct' | 'record' )"`
	RecordKind  string        `parser:"@( 'class' | 'struct' )?"`
	Name        string        `parser:"@Ident"`
	TypeParams  []*TypeParam  `parser:"( '<' @@ ( ',' @@ )* '>' )?"`
	Primary     *ParamList    `parser:"@@?"`
	Bases       []*BaseType   `parser:"( ':' @@ ( ',' @@ )* )?"`
	Constraints []*Constraint `parser:"@@*"`
	Open        bool          `parser:"(   @'{'"`
	Members     []*Member     `parser:"    @@* '}' ';'?"`
	Bodiless    bool          `parser:"  | @';' )"`
}

// TypeParam is a generic type parameter with optional variance
type TypeParam struct {
	Attributes []*AttributeSection `parser:"@@*"`
	Variance   string              `parser:"@( 'in' | 'out' )?"`
	Name       string              `parser:"@Ident"`
}

// BaseType is one entry of a base list, with record or primary constructor arguments
type BaseType struct {
	Type      *TypeRef  `parser:"@@"`
	Arguments *ArgGroup `parser:"@@?"`
}

// Constraint is a generic `where` clause
type Constraint struct {
	Param string            `parser:"'where' @Ident ':'"`
	Items []*ConstraintItem `parser:"@@ ( ',' @@ )*"`
}

// ConstraintItem is one constraint of a where clause
type ConstraintItem struct {
	New  bool     `parser:"  @'new' '(' ')'"`
	Type *TypeRef `parser:"| @@"`
}

// EnumDecl is an enum declaration. Its body is not interpreted.
type EnumDecl struct {
	Name       string   `parser:"'enum' @Ident"`
	Underlying *TypeRef `parser:"( ':' @@ )?"`
	Body       *Block   `parser:"@@ ';'?"`
}

// DelegateDecl is a delegate type declaration
type DelegateDecl struct {
	ReturnType  *TypeRef      `parser:"'delegate' @@"`
	Name        string        `parser:"@Ident"`
	TypeParams  []*TypeParam  `parser:"( '<' @@ ( ',' @@ )* '>' )?"`
	Params      *ParamList    `parser:"@@"`
	Constraints []*Constraint `parser:"@@* ';'"`
}

// Conversion is an implicit or explicit conversion operator
type Conversion struct {
	Direction string     `parser:"@( 'implicit' | 'explicit' ) 'operator'"`
	Type      *TypeRef   `parser:"@@"`
	Params    *ParamList `parser:"@@"`
	Body      *Body      `parser:"@@"`
}

// Constructor is an instance or static constructor
type Constructor struct {
	Name        string     `parser:"@Ident"`
	Params      *ParamList `parser:"@@"`
	Initializer *ArgGroup  `parser:"( ':' ( 'base' | 'this' ) @@ )?"`
	Body        *Body      `parser:"@@"`
}

// Finalizer is a `~Name()` destructor
type Finalizer struct {
	Name string `parser:"'~' @Ident '(' ')'"`
	Body *Body  `parser:"@@"`
}

// Event is a field-like or accessor-bodied event declaration
type Event struct {
	Type        *TypeRef      `parser:"'event' @@"`
	Names       []*MemberName `parser:"@@ ( ',' @@ )*"`
	Accessors   *Block        `parser:"(   @@"`
	Initializer []*Skip       `parser:"  | ( '=' @@* )? ';' )"`
}

// TypedMember is any member introduced by a type: method, property, indexer, field or
// operator.
type TypedMember struct {
	Type     *TypeRef      `parser:"@@"`
	Operator *OperatorTail `parser:"(   'operator' @@"`
	Name     *MemberName   `parser:"  | @@"`
	Tail     *MemberTail   `parser:"    @@ )"`
}

// MemberName is a member name, possibly qualified by an explicitly implemented
// interface and carrying method type parameters on its last part.
type MemberName struct {
	Parts []*TypePart `parser:"@@ ( '.' @@ )*"`
}

// MemberTail distinguishes the typed member shapes by their first token
type MemberTail struct {
	Method   *MethodTail   `parser:"  @@"`
	Property *PropertyTail `parser:"| @@"`
	Indexer  *IndexerTail  `parser:"| @@"`
	Field    *FieldTail    `parser:"| @@"`
}

// MethodTail is the parameter list, constraints and body of a method
type MethodTail struct {
	Params      *ParamList    `parser:"@@"`
	Constraints []*Constraint `parser:"@@*"`
	Body        *Body         `parser:"@@"`
}

// PropertyTail is an accessor list with optional initializer, or an expression body
type PropertyTail struct {
	Open        bool        `parser:"(   @'{'"`
	Accessors   []*Accessor `parser:"    @@* '}'"`
	Initializer []*Skip     `parser:"    ( '=' @@* ';' )?"`
	Arrow       bool        `parser:"  | @'=>'"`
	Expression  []*Skip     `parser:"    @@* ';' )"`
}

// IndexerTail is the bracketed parameter list and accessors of an indexer
type IndexerTail struct {
	Params []*Param      `parser:"'[' @@ ( ',' @@ )* ']'"`
	Body   *PropertyTail `parser:"@@"`
}

// FieldTail is the remainder of a field declaration
type FieldTail struct {
	Declarators []*Skip `parser:"( ( '=' | ',' | '[' ) @@* )?"`
	End         bool    `parser:"@';'"`
}

// OperatorTail is the symbol, parameters and body of an operator overload
type OperatorTail struct {
	Symbol []string   `parser:"( @~'(' )+"`
	Params *ParamList `parser:"@@"`
	Body   *Body      `parser:"@@"`
}

// Accessor is a get, set or init accessor
type Accessor struct {
	Attributes []*AttributeSection `parser:"@@*"`
	Modifiers  []string            `parser:"@( 'public' | 'private' | 'protected' | 'internal' | 'readonly' )*"`
	Kind       string              `parser:"@( 'get' | 'set' | 'init' )"`
	Body       *Body               `parser:"@@"`
}

// ParamList is a parenthesized parameter list
type ParamList struct {
	Open   bool     `parser:"@'('"`
	Params []*Param `parser:"( @@ ( ',' @@ )* )? ')'"`
}

// Param is one formal parameter
type Param struct {
	Attributes []*AttributeSection `parser:"@@*"`
	Modifiers  []string            `parser:"@( 'this' | 'ref' | 'out' | 'in' | 'params' | 'scoped' | 'readonly' )*"`
	Type       *TypeRef            `parser:"@@"`
	Name       string              `parser:"@Ident"`
	Default    []*ArgToken         `parser:"( '=' @@+ )?"`
}

// Body is a block body, an expression body or a bare semicolon
type Body struct {
	Block      *Block  `parser:"  @@"`
	Arrow      bool    `parser:"| @'=>'"`
	Expression []*Skip `parser:"  @@* ';'"`
	Abstract   bool    `parser:"| @';'"`
}

// Block is a brace-balanced token run
type Block struct {
	Open  bool         `parser:"@'{'"`
	Items []*BlockItem `parser:"@@* '}'"`
}

// BlockItem is a nested block or any token other than a brace
type BlockItem struct {
	Block *Block `parser:"  @@"`
	Token string `parser:"| @~( '{' | '}' )"`
}

// Skip is one element of an expression up to the terminating semicolon
type Skip struct {
	Block *Block `parser:"  @@"`
	Token string `parser:"| @~( ';' | '{' | '}' )"`
}
