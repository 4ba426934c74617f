// Package graph flattens object graphs into relational rows.
//
// Breakup walks an object depth first and produces a Batch: rows grouped
// by table in first-appearance order. Every row references the Identity
// of the object it came from. Columns whose foreign key is not known
// yet hold a transient id and are listed as pending placeholders on the
// row; the write scheduler resolves them once the referenced row has
// been inserted.
//
//	s := graph.NewSerializer(reg, identity.NewTracker())
//	batch, err := s.Breakup(person)
//	// batch.Rows("people"):   [{person_id: #1, name: "ada"}]
//	// batch.Rows("contacts"): [{person_id: #1 (pending), contact_id: #2, ...}, ...]
//
// A collection passes link values down to its children; a singular
// reference serializes the referenced object first and embeds its key
// in foreign-key columns of the owner. A nil optional reference stores
// NULL in those columns; a nil required reference is a MissingFieldError.
package graph
