package components

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/styles"
)

// odataLexer tokenizes filter expressions for the preview pane
var odataLexer = chroma.Coalesce(chroma.MustNewLexer(
	&chroma.Config{
		Name:      "OData",
		Aliases:   []string{"odata"},
		MimeTypes: []string{"text/x-odata-filter"},
	},
	func() chroma.Rules {
		return chroma.Rules{
			"root": {
				{Pattern: `\s+`, Type: chroma.Text},
				{Pattern: `'(?:[^']|'')*'?`, Type: chroma.LiteralString},
				{Pattern: `\b(?:and|or|not)\b`, Type: chroma.Keyword},
				{Pattern: `\b(?:eq|ne|gt|ge|lt|le)\b`, Type: chroma.OperatorWord},
				{Pattern: `\b(?:true|false|null)\b`, Type: chroma.KeywordConstant},
				{Pattern: `(?:any|all|contains|startswith|endswith|search\.(?:in|ismatch|ismatchscoring|score)|geo\.(?:distance|intersects))(?=\()`, Type: chroma.NameFunction},
				{Pattern: `\d{4}-\d{2}-\d{2}(?:T[\d:.]+(?:Z|[+-]\d{2}:\d{2})?)?`, Type: chroma.LiteralDate},
				{Pattern: `-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?`, Type: chroma.LiteralNumber},
				{Pattern: `[A-Za-z_]\w*`, Type: chroma.NameVariable},
				{Pattern: `[():,/]`, Type: chroma.Punctuation},
				{Pattern: `.`, Type: chroma.Error},
			},
		}
	},
))

// Highlight renders expr with ANSI colors using the named chroma style.
// On any failure the expression is returned unchanged.
func Highlight(expr, styleName string) string {
	if expr == "" {
		return ""
	}

	style := styles.Get(styleName)
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := odataLexer.Tokenise(nil, expr)
	if err != nil {
		return expr
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return expr
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
