package gen

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/strata/compiler/load"
	"github.com/syssam/strata/schema"
	"github.com/syssam/strata/schema/field"
)

const (
	schemaPkg = "github.com/syssam/strata/schema"
	sqlPkg    = "github.com/syssam/strata/dialect/sql"
	uuidPkg   = "github.com/google/uuid"
)

func (g *Generator) newFile() *jen.File {
	f := jen.NewFile(g.spec.Package)
	if g.cfg.Header != "" {
		f.HeaderComment(g.cfg.Header)
	}
	f.ImportName(schemaPkg, "schema")
	f.ImportName(sqlPkg, "sql")
	return f
}

// genEntity renders the file of one entity.
func (g *Generator) genEntity(e *load.Entity) *jen.File {
	f := g.newFile()
	genStruct(f, e)
	genColumns(f, e)
	genDescriptor(f, e)
	return f
}

func genStruct(f *jen.File, e *load.Entity) {
	if e.Comment != "" {
		f.Comment(e.Comment)
	} else {
		f.Commentf("%s is the model entity of the %s table.", e.Name, tableOf(e))
	}
	f.Type().Id(e.Name).StructFunc(func(s *jen.Group) {
		for _, fd := range e.Fields {
			s.Id(goName(e, fd)).Add(fieldType(fd))
		}
		for _, ed := range e.Edges {
			s.Id(pascal(ed.Name)).Add(edgeType(ed))
		}
	})
}

// genColumns declares typed column handles for predicates.
func genColumns(f *jen.File, e *load.Entity) {
	var defs []jen.Code
	for _, fd := range e.Fields {
		if fd.Msgpack {
			continue
		}
		defs = append(defs, jen.Id(e.Name+goName(e, fd)).Op("=").
			Qual(sqlPkg, "Column").Types(columnType(fd)).Call(jen.Lit(fd.Name)))
	}
	if len(defs) == 0 {
		return
	}
	f.Commentf("Columns of %s.", e.Name)
	f.Var().Defs(defs...)
}

func genDescriptor(f *jen.File, e *load.Entity) {
	var items []jen.Code
	for _, fd := range e.Fields {
		items = append(items, fieldItem(e, fd))
	}
	for _, ed := range e.Edges {
		items = append(items, edgeItem(e, ed))
	}
	def := jen.Qual(schemaPkg, "Define").Custom(jen.Options{
		Open:      "(",
		Close:     ")",
		Separator: ",",
		Multi:     true,
	}, append([]jen.Code{jen.Lit(e.Name)}, items...)...)
	if e.Table != "" {
		def = def.Dot("WithTable").Call(jen.Lit(e.Table))
	}
	f.Func().Id(descriptorFunc(e)).Params().Op("*").Qual(schemaPkg, "Descriptor").Block(
		jen.Return(def),
	)
}

func fieldItem(e *load.Entity, fd *load.Field) jen.Code {
	name := "Field"
	if fd.Key {
		name = "Key"
	}
	args := []jen.Code{
		jen.Lit(fd.Name),
		jen.Func().Params(jen.Id("e").Op("*").Id(e.Name)).Op("*").Add(fieldType(fd)).Block(
			jen.Return(jen.Op("&").Id("e").Dot(goName(e, fd))),
		),
	}
	switch {
	case fd.Layout != "":
		args = append(args, jen.Qual(schemaPkg, "Layout").Call(jen.Lit(fd.Layout)))
	case fd.Msgpack:
		args = append(args, jen.Qual(schemaPkg, "Msgpack").Types(fieldType(fd)).Call())
	case fd.Key && fd.StorageType() == field.TypeUUID:
		args = append(args, jen.Qual(schemaPkg, "UUID").Call())
	}
	return jen.Qual(schemaPkg, name).Call(args...)
}

func edgeItem(e *load.Entity, ed *load.Edge) jen.Code {
	var (
		name = "Many"
		ref  = jen.Op("*").Index().Op("*").Id(ed.Target)
	)
	switch ed.Kind {
	case load.KindOne:
		name, ref = "One", jen.Op("**").Id(ed.Target)
	case load.KindOptional:
		name, ref = "Optional", jen.Op("**").Id(ed.Target)
	}
	args := []jen.Code{
		jen.Lit(ed.Name),
		jen.Lit(ed.Target),
		jen.Func().Params(jen.Id("e").Op("*").Id(e.Name)).Add(ref).Block(
			jen.Return(jen.Op("&").Id("e").Dot(pascal(ed.Name))),
		),
	}
	for _, l := range ed.Links {
		args = append(args, jen.Qual(schemaPkg, "Link").Call(jen.Lit(l.Parent), jen.Lit(l.Child)))
	}
	return jen.Qual(schemaPkg, name).Call(args...)
}

// fieldType returns the struct field type of fd.
func fieldType(fd *load.Field) *jen.Statement {
	if fd.Msgpack {
		return jen.Id(fd.GoType)
	}
	t := baseType(fd)
	if fd.Optional {
		return jen.Op("*").Add(t)
	}
	return t
}

func baseType(fd *load.Field) *jen.Statement {
	switch fd.StorageType() {
	case field.TypeBool:
		return jen.Bool()
	case field.TypeInt:
		return jen.Int()
	case field.TypeInt64:
		return jen.Int64()
	case field.TypeFloat64:
		return jen.Float64()
	case field.TypeTime:
		return jen.Qual("time", "Time")
	case field.TypeBytes:
		return jen.Index().Byte()
	case field.TypeUUID:
		// Generated keys are uuid strings.
		if fd.Key {
			return jen.String()
		}
		return jen.Qual(uuidPkg, "UUID")
	default:
		return jen.String()
	}
}

// columnType returns the value type used in predicates on fd.
func columnType(fd *load.Field) *jen.Statement {
	if fd.Layout != "" {
		return jen.String()
	}
	return baseType(fd)
}

func edgeType(ed *load.Edge) *jen.Statement {
	if ed.Kind == load.KindMany {
		return jen.Index().Op("*").Id(ed.Target)
	}
	return jen.Op("*").Id(ed.Target)
}

func tableOf(e *load.Entity) string {
	if e.Table != "" {
		return e.Table
	}
	return schema.TableName(e.Name)
}

// genPackage renders the registry file of the package.
func (g *Generator) genPackage() *jen.File {
	f := g.newFile()
	f.Comment("Descriptors returns fresh descriptors of every entity in the package.")
	f.Func().Id("Descriptors").Params().Index().Op("*").Qual(schemaPkg, "Descriptor").Block(
		jen.Return(jen.Index().Op("*").Qual(schemaPkg, "Descriptor").CustomFunc(jen.Options{
			Open:      "{",
			Close:     "}",
			Separator: ",",
			Multi:     true,
		}, func(grp *jen.Group) {
			for _, e := range g.spec.Entities {
				grp.Id(descriptorFunc(e)).Call()
			}
		})),
	)
	f.Comment("NewRegistry returns a registry holding every entity in the package.")
	f.Func().Id("NewRegistry").Params().Params(jen.Op("*").Qual(schemaPkg, "Registry"), jen.Error()).Block(
		jen.Return(jen.Qual(schemaPkg, "NewRegistry").Call(jen.Id("Descriptors").Call().Op("..."))),
	)
	return f
}
