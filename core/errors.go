package core

import "fmt"

// HandlerInvocationError wraps any fault raised by a handler body, either
// a returned error or a recovered panic. It is caught at the invocation
// boundary by the dispatch engine, logged with the owning plugin and
// handler identity, and never escapes Handle.
type HandlerInvocationError struct {
	// Handler is the fully-qualified name of the failing handler.
	Handler string

	// Err is the underlying fault.
	Err error
}

func (e *HandlerInvocationError) Error() string {
	return fmt.Sprintf("handler %s failed: %v", e.Handler, e.Err)
}

func (e *HandlerInvocationError) Unwrap() error { return e.Err }
