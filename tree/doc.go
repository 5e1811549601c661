// Package tree holds the host-side value tree: the input a function reads
// and the output its builder produces.
//
// Object entries keep insertion order. Keys are nodes rather than strings
// because the output builder validates arity only; JSON encoding renders
// scalar keys as text and MessagePack encodes them natively.
//
// Two wire formats are supported:
//
//	json     decoded with comment/trailing-comma tolerance, order preserved
//	msgpack  decoded and encoded natively; integers stay integers
package tree
