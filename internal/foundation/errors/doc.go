// Package errors provides the classified error primitives used across docsite.
//
// Key features:
//   - ErrorCategory: broad classification (config, nav, frontmatter, render, ...)
//   - ErrorSeverity: impact level (fatal, error, warning, info)
//   - RetryStrategy: whether retrying or an author fix is needed
//   - ClassifiedError: structured error with category, severity, and context
//   - ErrorBuilder: fluent API for creating classified errors
//   - HTTP and CLI adapters for error presentation
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryRender, "component not found").
//		WithContext("component", name).
//		WithCause(cause).
//		Build()
package errors
