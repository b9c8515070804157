/*
Package errors provides semantic error types for the memstore library.

The package defines common error scenarios with specific types that can be
checked using the standard errors.Is() function or the provided helper functions.

Common Errors:

	var (
	    ErrAlreadyExists = errors.New("entity already exists")
	    ErrInvalidInput  = errors.New("invalid input")
	    ErrNotRegistered = errors.New("type not registered")
	    ErrTypeMismatch  = errors.New("type mismatch")
	    ErrTranslation   = errors.New("query translation failed")
	    ErrLifecycle     = errors.New("lifecycle operation failed")
	)

The last three map onto the failure classes of the operations template:
translation errors are raised while a query is built against the backing
engine, type mismatches when a stored value is read back as the wrong type,
and lifecycle errors when clearing the engine on Destroy fails.

Usage:

	people, err := memstore.ReadAll[Person](ctx, tmpl)
	if err != nil {
	    if errors.IsTypeMismatch(err) {
	        // a value stored under the alias is not a Person
	    }
	    return nil, err
	}

	err := errors.NewValidationError("offset", "must not be negative")
	err := errors.NewLifecycleError("clear", "people", cause)

The error types implement the error interface and support wrapping,
making them compatible with Go's standard error handling patterns.
*/
package errors
