package syntax

import (
	"fmt"
	"sort"
	"strings"
)

// Region is the embedded sub-language a node belongs to.
type Region int

const (
	Markup Region = iota
	EmbeddedScript
	Directive
	StyleUtility
)

func (r Region) String() string {
	switch r {
	case EmbeddedScript:
		return "EmbeddedScript"
	case Directive:
		return "Directive"
	case StyleUtility:
		return "StyleUtility"
	default:
		return "Markup"
	}
}

// Dialect maps the grammar tags of one grammar to regions.
type Dialect struct {
	Name string
	tags map[string]Region
}

// Classify maps a grammar tag to its region. Unknown tags are Markup so that
// nothing unrecognised is ever sent to a script completion engine.
func (d *Dialect) Classify(kind string) Region {
	if d == nil {
		return Markup
	}
	if region, ok := d.tags[kind]; ok {
		return region
	}
	return Markup
}

// ClassifyNode classifies a node by its grammar tag. A nil node is Markup.
func (d *Dialect) ClassifyNode(node Node) Region {
	if node == nil {
		return Markup
	}
	return d.Classify(node.Kind())
}

// Tags returns every tag the dialect knows, sorted.
func (d *Dialect) Tags() []string {
	tags := make([]string, 0, len(d.tags))
	for tag := range d.tags {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func newDialect(name string, table map[Region][]string) *Dialect {
	d := &Dialect{Name: name, tags: make(map[string]Region)}
	for region, tags := range table {
		for _, tag := range tags {
			d.tags[tag] = region
		}
	}
	return d
}

// Blade covers tree-sitter-blade. Only php_only holds bare PHP source; the
// php_statement wrapper includes the {{ }} delimiters and is a directive.
var Blade = newDialect("blade", map[Region][]string{
	EmbeddedScript: {
		"php_only",
	},
	Directive: {
		"php_statement",
		"directive",
		"directive_start",
		"directive_end",
		"bracket_start",
		"bracket_end",
		"parameter",
		"keyword",
		"conditional",
		"conditional_keyword",
		"loop",
		"switch",
		"section",
		"fragment",
		"stack",
		"envoy",
		"livewire",
		"verbatim",
	},
	Markup: {
		"document",
		"element",
		"start_tag",
		"end_tag",
		"self_closing_tag",
		"tag_name",
		"attribute",
		"attribute_name",
		"attribute_value",
		"quoted_attribute_value",
		"text",
		"raw_text",
		"doctype",
		"entity",
		"comment",
		"ERROR",
	},
	StyleUtility: {
		"class_name",
		"class_selector",
		"property_name",
		"plain_value",
	},
})

// PHP covers tree-sitter-php for plain .php templates, where inline markup
// is the text node and everything between the tags is script.
var PHP = newDialect("php", map[Region][]string{
	EmbeddedScript: {
		"name",
		"variable_name",
		"qualified_name",
		"namespace_name",
		"function_call_expression",
		"member_access_expression",
		"member_call_expression",
		"scoped_call_expression",
		"class_constant_access_expression",
		"object_creation_expression",
		"assignment_expression",
		"binary_expression",
		"expression_statement",
		"echo_statement",
		"arguments",
		"argument",
		"string",
		"string_content",
		"encapsed_string",
	},
	Directive: {
		"php_tag",
		"text_interpolation",
	},
	Markup: {
		"program",
		"text",
		"ERROR",
	},
})

var dialects = map[string]*Dialect{
	Blade.Name: Blade,
	PHP.Name:   PHP,
}

// DialectByName looks up a dialect by name, case-insensitively.
func DialectByName(name string) (*Dialect, error) {
	if d, ok := dialects[strings.ToLower(strings.TrimSpace(name))]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("unknown dialect %q (use blade or php)", name)
}
