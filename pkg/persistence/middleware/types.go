package middleware

import "github.com/aretw0/arbor/pkg/ports"

// Middleware allows wrapping a RunLog to add behavior.
type Middleware func(ports.RunLog) ports.RunLog

// Chain applies mws to log so that the first middleware is the outermost.
func Chain(log ports.RunLog, mws ...Middleware) ports.RunLog {
	for i := len(mws) - 1; i >= 0; i-- {
		log = mws[i](log)
	}
	return log
}
