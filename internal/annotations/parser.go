package annotations

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// csharpLexer tokenizes C# source. Rules are tried in order, so the longer literal
// forms come before the identifier and punctuation rules they overlap with.
var csharpLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*|/\*[\s\S]*?\*/`},
	{Name: "Preprocessor", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "String", Pattern: `\$*"""[\s\S]*?"""|(\$@|@\$|@)"(""|[^"])*"|\$?"(\\.|[^"\\\n])*"`},
	{Name: "Char", Pattern: `'(\\.|[^'\\\n])+'`},
	{Name: "Number", Pattern: `[0-9][0-9a-zA-Z_]*(\.[0-9][0-9a-zA-Z_]*)?`},
	{Name: "Ident", Pattern: `@?[\p{L}_][\p{L}\p{N}_]*`},
	{Name: "Punct", Pattern: `=>|::|[-+*/%&|^!~?:;,.=<>(){}\[\]@$\\]`},
})

// Parser parses C# source into the declaration AST
type Parser struct {
	parser *participle.Parser[File]
}

// NewParser builds the C# declaration parser
func NewParser() *Parser {
	parser := participle.MustBuild[File](
		participle.Lexer(csharpLexer),
		participle.Elide("Comment", "Preprocessor", "Whitespace"),
		participle.UseLookahead(4),
	)

	return &Parser{parser: parser}
}

var defaultParser = NewParser()

// ParseFile parses src as the contents of path using the shared parser
func ParseFile(path string, src []byte) (*File, error) {
	return defaultParser.ParseFile(path, src)
}

// ParseFile parses src as the contents of path. Syntax errors are returned as
// *SyntaxError carrying the failing position.
func (p *Parser) ParseFile(path string, src []byte) (*File, error) {
	file, err := p.parser.ParseBytes(path, src)
	if err != nil {
		return nil, toSyntaxError(path, err)
	}
	return file, nil
}

// ParseString parses C# source held in memory
func (p *Parser) ParseString(path, src string) (*File, error) {
	return p.ParseFile(path, []byte(src))
}

// ReadFile reads and parses the file at path
func (p *Parser) ReadFile(path string) (*File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return p.ParseFile(path, src)
}

func toSyntaxError(path string, err error) error {
	var perr participle.Error
	if !errors.As(err, &perr) {
		return &SyntaxError{Msg: err.Error(), Loc: SourceLocation{File: path}}
	}
	pos := perr.Position()
	file := pos.Filename
	if file == "" {
		file = path
	}
	loc := SourceLocation{File: file, Line: pos.Line, Column: pos.Column}
	return NewSyntaxErrorWithContext(perr.Message(), loc)
}
