/*
Package session holds the result of loading parameter sets for one run.

A Session is the explicit context object handed to experiment code: the
resolved parameter tree, its structured view, the run name and a handle on
the run log. It is created once by the loader and never published globally.

	s := session.New(tree, []string{"base", "exp"}, session.WithRunLog(log))
	lr := s.Get("optim", "lr")
	_ = s.Log(ctx, "epoch 1 done")
*/
package session
