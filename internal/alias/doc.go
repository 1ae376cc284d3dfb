// Package alias derives short, deterministic table aliases from dotted
// path strings and hands them out without collisions inside a single
// compilation.
//
// # Prefix Derivation
//
// A prefix is a pure function of the last dot-separated segment of a path:
// its first character followed by the lower-cased initial of every later
// upper-case letter.
//
//	Prefix("table")          // "t"
//	Prefix("camelCaseTable") // "cct"
//	Prefix("book.author")    // "a"
//
// Results are cached process-wide; a segment always yields the same prefix,
// so the cache is never invalidated.
//
// # Collision Handling
//
// A Manager belongs to exactly one compilation. The first registration of a
// prefix returns it unchanged. Later registrations of the same prefix append
// a counter that starts at 2 and keeps increasing per prefix:
//
//	m := NewManager()
//	m.Register("author")      // "a"
//	m.Register("book.author") // "a2"
//	m.Register("address")     // "a3"
//
// A Manager is not safe for concurrent use and must not be shared between
// compilations.
package alias
