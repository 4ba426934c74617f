// Package field defines the storage types shared by the mapping
// metadata, the DDL planner and the accessor generator.
//
//	field.TypeOf[int64]()      // TypeInt64
//	field.TypeOf[*time.Time]() // TypeTime
//	field.Parse("uuid")        // TypeUUID, true
package field
