// Package schema loads element types from schema files so that expressions
// can be compiled against data that has no Go struct.
//
// A schema declares enums and object types:
//
//	enums:
//	  Priority: [Low, Normal, High]
//	types:
//	  Entity:
//	    fields:
//	      ID: Guid
//	  Task:
//	    base: Entity
//	    fields:
//	      Title: String
//	      Due: DateTime?
//	      Priority: Priority
//	      Tags: String[]
//
// The same document may be written in CUE. Values of schema object types
// are Row maps keyed by field name; Decode converts YAML data into rows.
package schema
