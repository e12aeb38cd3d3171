package syntax

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/html"
	"github.com/smacker/go-tree-sitter/php"
)

// Builtin grammars compiled into the binary.
var builtin = map[string]func() *sitter.Language{
	"php":  php.GetLanguage,
	"html": html.GetLanguage,
}

// LanguageSpec says where a grammar comes from: a builtin name, or a shared
// library exporting a tree_sitter_<name> function.
type LanguageSpec struct {
	Name    string
	Library string
	Symbol  string
}

// LoadEngine resolves spec into a ready Engine. Any failure here is a
// configuration error; the server cannot run without a grammar.
func LoadEngine(spec LanguageSpec) (*TreeSitter, error) {
	if spec.Library != "" {
		symbol := spec.Symbol
		if symbol == "" {
			symbol = "tree_sitter_" + strings.ReplaceAll(spec.Name, "-", "_")
		}
		log.Infof("loading grammar %s from %s (%s)", spec.Name, spec.Library, symbol)
		language, err := LoadLibrary(spec.Library, symbol)
		if err != nil {
			return nil, err
		}
		return NewTreeSitter(spec.Name, language)
	}

	get, ok := builtin[spec.Name]
	if !ok {
		return nil, fmt.Errorf("grammar %q is not builtin and no library was given", spec.Name)
	}
	log.Infof("using builtin grammar %s", spec.Name)
	return NewTreeSitter(spec.Name, get())
}

// BuiltinLanguages lists the grammar names usable without a library.
func BuiltinLanguages() []string {
	return []string{"html", "php"}
}
