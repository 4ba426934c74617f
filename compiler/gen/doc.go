// Package gen generates entity structs and their schema registrations
// from YAML entity specs.
//
// For every entity the generator writes one file holding the struct,
// typed column handles for building predicates and the descriptor
// definition. A package file wires every descriptor into a registry:
//
//	spec, err := load.LoadFile("entities.yaml")
//	if err != nil {
//		return err
//	}
//	g, err := gen.New(spec, gen.WithTarget("./model"))
//	if err != nil {
//		return err
//	}
//	return g.Generate(ctx)
//
// The generated package depends on github.com/syssam/strata/schema and
// github.com/syssam/strata/dialect/sql only.
package gen
