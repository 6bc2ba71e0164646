// Package qtab implements a decision-table query engine.
//
// A table is a whitespace-separated grid of criterion columns and data
// columns split by an = column:
//
//	A.EQ B.LE = X
//	1    10   = hello
//	1    20   = world
//	2    10   = foo
//
// Row 0 is the header. Criterion headers have the form <key><sep><OP>
// where <sep> is a single character (conventionally . or _) and <OP>
// is one of MH, EQ, LT, LE, GT, GE. Data headers are plain keys.
//
// A query is a set of key/value pairs. Query picks the data row that
// minimises the summed criterion distance:
//
//	t, _ := qtab.Parse(text)
//	row, _ := t.Query(kvs, qtab.Exactly)
//	if row > 0 {
//		_ = t.Verify(row, kvs, qtab.Superset)
//		_ = t.Retrieve(row, kvs, qtab.Superset)
//	}
//
// Numeric cells use a fixed-point Number with three fractional digits
// and saturating ±inf sentinels. MH criteria match shell-style
// patterns, case-insensitively, with |-separated alternatives.
//
// Data cells starting with { or [ are expression cells. They are
// delegated to an Evaluator supplied by the caller; earlier data
// columns of the same row are published to it as named bindings. The
// core never embeds an evaluator — see the eval package for one built
// on the yaegi interpreter.
package qtab
