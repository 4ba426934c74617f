package gen

import (
	"strings"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/strata/compiler/load"
)

// initialisms are kept upper-case in Go identifiers.
var initialisms = map[string]bool{
	"API": true, "DNS": true, "HTML": true, "HTTP": true, "ID": true,
	"IP": true, "JSON": true, "SQL": true, "URI": true, "URL": true,
	"UUID": true, "XML": true,
}

// pascal turns a snake_case column into a Go identifier.
func pascal(s string) string {
	title := cases.Title(language.Und)
	var b strings.Builder
	for _, w := range strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' || r == ' ' }) {
		if up := strings.ToUpper(w); initialisms[up] {
			b.WriteString(up)
			continue
		}
		b.WriteString(title.String(w))
	}
	return b.String()
}

// goName returns the struct field of f. The conventional key column
// "<entity>_id" maps to ID.
func goName(e *load.Entity, f *load.Field) string {
	switch {
	case f.GoName != "":
		return f.GoName
	case f.Key && (f.Name == "id" || f.Name == inflect.Underscore(e.Name)+"_id"):
		return "ID"
	default:
		return pascal(f.Name)
	}
}

// fileName returns the output file of an entity.
func fileName(e *load.Entity) string {
	return inflect.Underscore(e.Name) + ".go"
}

// descriptorFunc returns the unexported constructor of an entity
// descriptor.
func descriptorFunc(e *load.Entity) string {
	return inflect.CamelizeDownFirst(e.Name) + "Descriptor"
}
