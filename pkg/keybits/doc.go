// Package keybits provides the dimensions a key constructor combines into
// a cache key or entity tag.
//
// A Bit reads one aspect of the current call (view identity, negotiated
// language or format, user, headers, query parameters, URL captures, or
// the database state behind the view) and returns a value that encodes to
// the same JSON for the same inputs. Values are nil, a string, a
// []string or a map[string]string.
//
// Bits are stateless and safe for concurrent use. Per-use configuration
// travels in Params:
//
//	keybits.QueryParams{}  with keybits.Keys("page", "q")
//	keybits.Headers{}      with keybits.All
//	keybits.Args{}         with keybits.Indices(0, 2)
//
// A bit returning ErrSkip is left out of the key entirely. A nil value is
// kept and encodes as JSON null.
package keybits
