/*
Package arbor loads hierarchical experiment parameters from named parameter sets.

A parameter set is a document (JSON, YAML or Markdown frontmatter) holding a
tree of nested mappings. Sets can inherit from others and point at values
elsewhere in the final tree:

	// run_params/base.json
	{"timeout": 10, "nested": {"x": 1}}

	// run_params/derived.json
	{"@include": ["base"], "nested": {"y": 2}, "ref": "@ref:/nested/x"}

Loading "derived" yields {timeout: 10, nested: {x: 1, y: 2}, ref: 1}.

# Resolution

  - Includes are loaded depth-first and merged in order; the including set wins.
  - Several names given to Initialize are merged left to right.
  - "@ref:" markers are resolved once against the merged tree. Paths may be
    absolute ("/a/b"), relative ("a/b") or climb with "../".

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"
		"os"

		"github.com/aretw0/arbor"
	)

	func main() {
		names, err := arbor.FromArgs(os.Args)
		if err != nil {
			log.Fatal(err)
		}

		loader, err := arbor.New("run_params")
		if err != nil {
			log.Fatal(err)
		}

		sess, err := loader.Initialize(context.Background(), names...)
		if err != nil {
			log.Fatal(err)
		}

		lr, _ := sess.View().Float("optim", "lr")
		_ = sess.Log(context.Background(), fmt.Sprintf("starting with lr=%g", lr))
	}

The Session returned by Initialize is the only handle on the loaded
parameters; pass it explicitly to the code that needs them. Each run's
parameters and log lines are recorded under past_runs/<run name>/ unless
another RunLog is configured.
*/
package arbor
