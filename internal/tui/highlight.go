package tui

import (
	"bytes"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/codeguardian/codeguardian/internal/types"
)

// lexerFor picks a lexer from the declared language, then the filename,
// then the content itself.
func lexerFor(lang types.Language, filename, code string) chroma.Lexer {
	var lexer chroma.Lexer
	if lang != "" {
		lexer = lexers.Get(string(lang))
	}
	if lexer == nil && filename != "" {
		lexer = lexers.Match(filename)
		if lexer == nil {
			if ext := filepath.Ext(filename); ext != "" {
				lexer = lexers.Match("file" + ext)
			}
		}
	}
	if lexer == nil && code != "" {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

func highlightCode(code string, lang types.Language, filename string) string {
	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return code
	}
	iterator, err := lexerFor(lang, filename, code).Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// numberLines prefixes each line of an already highlighted block.
func numberLines(block string, first int) string {
	lines := strings.Split(block, "\n")
	var b strings.Builder
	width := len(strconv.Itoa(first + len(lines) - 1))
	for i, l := range lines {
		n := strconv.Itoa(first + i)
		b.WriteString(dimStyle.Render(strings.Repeat(" ", width-len(n)) + n + " │ "))
		b.WriteString(l)
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
