// Package parjson parses and serializes a single JSON document on several
// workers at once.
//
// Parsing indexes the structural bytes of the input, splits the index into
// chunks at top-level commas, validates every chunk on its own and builds a
// partial tree per chunk. The partial trees are then stitched together left
// to right, even when a chunk starts or ends in the middle of nested
// containers. Serialization flattens the tree into open/key/value/close
// events, renders near-equal slices of the stream into private buffers and
// concatenates them in order.
//
// # Basic Usage
//
//	doc, err := parjson.Parse(data, 8)
//	if err != nil {
//		return err
//	}
//	root := doc.Root()
//	for _, v := range root.ValueList() {
//		fmt.Println(v.String())
//	}
//
//	out, err := parjson.Serialize(root, 8, false)
//
// # Parsers
//
// The package-level functions share a default Parser. A dedicated Parser has
// its own worker pool, limits and metrics:
//
//	p := parjson.New(&parjson.Config{Threads: 4, EnableMetrics: true})
//	defer p.Close()
//	doc, err := p.ParseFile("big.json.gz")
//
// # Values
//
// Value is a tagged union over integers, floats, booleans, null, strings,
// arrays and objects. A Value owns the container it references; use Take to
// move a value and Clone for an independent copy. Objects keep insertion
// order and duplicate keys.
//
// # Errors
//
// Failures are reported as *Error wrapping one of the Err* sentinels. Code
// returns a machine-readable code and (*Error).Status a negative status.
// No partial document is ever returned.
package parjson
