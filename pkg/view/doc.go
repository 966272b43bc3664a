/*
Package view exposes a resolved parameter tree as a read-only structure.

A view is made of three node kinds: Scalar, Sequence and Record. Records
carry named fields in lexical order and are built from a deep copy of the
tree, so mutating the source afterwards is never visible through the view.

Field order is lexical, not the order keys had in the source document:
stores decode documents into Go maps, which do not keep it.

	rec := view.Build(tree)
	lr, ok := rec.Float("optim", "lr")

Typed accessors return (value, ok) instead of panicking. Decode maps a
Record onto a struct using mapstructure tags.
*/
package view
