/*
Package resolve implements the parameter resolution pipeline.

  - Merge overlays one Tree on another, recursing into nested mappings.
  - Resolver.Includes expands "@include" inheritance depth-first, left to right,
    with the including set always winning over what it includes.
  - Resolver.References replaces Refs with the values they point at, in place.

Include chains and reference chains are both guarded against cycles.
*/
package resolve
