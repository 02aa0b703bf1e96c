package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "benchsync.yaml").
			Build()

		require.Equal(t, CategoryConfig, err.Category())
		require.Equal(t, SeverityFatal, err.Severity())
		require.Equal(t, "invalid configuration", err.Message())
		require.Equal(t, "[config:fatal] invalid configuration", err.Error())

		file, ok := err.Context().GetString("file")
		require.True(t, ok)
		require.Equal(t, "benchsync.yaml", file)
	})

	t.Run("Error detection through wrapping", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", FileSystemError("write index").Build())

		require.True(t, IsClassified(err))
		require.True(t, HasCategory(err, CategoryFileSystem))
		require.Equal(t, CategoryFileSystem, GetCategory(err))
		require.Equal(t, SeverityFatal, GetSeverity(err))
	})

	t.Run("Unclassified defaults", func(t *testing.T) {
		err := errors.New("plain")
		require.False(t, IsClassified(err))
		require.Equal(t, CategoryInternal, GetCategory(err))
		require.Equal(t, SeverityError, GetSeverity(err))
	})

	t.Run("WithContext does not mutate original", func(t *testing.T) {
		base := FileSystemError("copy").WithContext("source", "a").Build()
		derived := base.WithContext("destination", "b")

		_, ok := base.Context().Get("destination")
		require.False(t, ok)
		dst, ok := derived.Context().GetString("destination")
		require.True(t, ok)
		require.Equal(t, "b", dst)
	})
}

func TestErrorBuilder(t *testing.T) {
	t.Run("Fluent API", func(t *testing.T) {
		originalErr := errors.New("disk full")
		err := WrapError(originalErr, CategoryFileSystem, "copy report tree").
			Warning().
			WithContext("source", "target/criterion").
			Build()

		require.Equal(t, SeverityWarning, err.Severity())
		require.ErrorIs(t, err, originalErr)
		require.Equal(t, "[filesystem:warning] copy report tree: disk full", err.Error())
	})

	t.Run("Convenience constructors", func(t *testing.T) {
		tests := []struct {
			name     string
			builder  *ErrorBuilder
			category ErrorCategory
			severity ErrorSeverity
		}{
			{"ConfigError", ConfigError("test"), CategoryConfig, SeverityFatal},
			{"ValidationError", ValidationError("test"), CategoryValidation, SeverityFatal},
			{"FileSystemError", FileSystemError("test"), CategoryFileSystem, SeverityFatal},
			{"ReportError", ReportError("test"), CategoryReport, SeverityError},
			{"RuntimeError", RuntimeError("test"), CategoryRuntime, SeverityFatal},
			{"InternalError", InternalError("test"), CategoryInternal, SeverityFatal},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.builder.Build()
				require.Equal(t, tt.category, err.Category())
				require.Equal(t, tt.severity, err.Severity())
			})
		}
	})
}

func TestErrorContext(t *testing.T) {
	ctx1 := ErrorContext{}.Set("key1", "value1").Set("shared", "original")
	ctx2 := ErrorContext{}.Set("key2", 42).Set("shared", "overridden")

	merged := ctx1.Merge(ctx2)

	v1, _ := merged.GetString("key1")
	require.Equal(t, "value1", v1)
	v2, ok := merged.Get("key2")
	require.True(t, ok)
	require.Equal(t, 42, v2)
	shared, _ := merged.GetString("shared")
	require.Equal(t, "overridden", shared)

	_, ok = merged.GetString("key2")
	require.False(t, ok, "non-string values are not returned by GetString")

	var nilCtx ErrorContext
	_, ok = nilCtx.Get("missing")
	require.False(t, ok)
}
