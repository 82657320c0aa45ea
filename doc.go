// Package sqlrebuild prepares parameterized SQL for drivers that bind one
// scalar value per placeholder.
//
// A template is scanned with the lexical rules of its dialect (quotes,
// comments, escape strings, dollar quotes, bracket identifiers), split on
// unquoted semicolons, and every :named and ? placeholder is rewritten into
// a uniquely named reference. List values are expanded, so
//
//	IN (:ids)    with ids = []int{1, 2, 3}
//
// becomes
//
//	IN (:ids_0, :ids_1, :ids_2)
//
// Each resulting statement carries only the values it references.
package sqlrebuild
