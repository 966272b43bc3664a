/*
Package domain contains the core data model of the arbor parameter loader.

It defines the in-memory representation of parameter sets and is kept free of
I/O and persistence concerns, following Hexagonal Architecture principles.

# Key Entities

  - Tree: a mapping of parameter keys to scalars, sequences, nested Trees or Refs.
  - Ref: a typed cross-reference produced from "@ref:" markers by Parse.
  - ParamSet: a parsed document, its own Tree plus the names listed under "@include".
  - LifecycleHooks: callbacks fired while sets are loaded and references resolved.
*/
package domain
