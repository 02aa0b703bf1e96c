// Package errors provides the classified error primitives used across benchsync.
//
// A ClassifiedError carries a category (config, filesystem, validation, ...),
// a severity, and a small key/value context describing the paths involved.
// Errors are created through the fluent ErrorBuilder:
//
//	err := errors.WrapError(cause, errors.CategoryFileSystem, "copy report tree").
//		WithContext("source", src).
//		WithContext("destination", dst).
//		Build()
//
// The CLIErrorAdapter turns any error returned by a command into a stderr
// message and a process exit code.
package errors
