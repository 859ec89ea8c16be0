package error

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrorCategory classifies errors by their nature and appropriate handling strategy.
type ErrorCategory int

const (
	// ErrCategoryUser represents errors caused by a request the caller can fix.
	// Examples: unloading a pid that was never loaded, loading a duplicate pid.
	ErrCategoryUser ErrorCategory = iota

	// ErrCategoryCapacity represents a full page. Callers usually try another page.
	ErrCategoryCapacity

	// ErrCategorySystem represents precondition violations in how the memory
	// model was assembled, such as a page window outside RAM or a bad geometry.
	// These point at a bug in the caller.
	ErrCategorySystem

	// ErrCategoryConcurrency represents a byte range that is already borrowed.
	ErrCategoryConcurrency
)

func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryUser:
		return "user"
	case ErrCategoryCapacity:
		return "capacity"
	case ErrCategorySystem:
		return "system"
	case ErrCategoryConcurrency:
		return "concurrency"
	default:
		return "unknown"
	}
}

// Error codes used across the memory model.
const (
	CodePageFull           = "PAGE_FULL"
	CodeUnknownPID         = "UNKNOWN_PID"
	CodeDuplicatePID       = "DUPLICATE_PID"
	CodeOutOfBounds        = "OUT_OF_BOUNDS"
	CodeConcurrentAccess   = "CONCURRENT_ACCESS_CONFLICT"
	CodeInvalidGeometry    = "INVALID_GEOMETRY"
	CodeInvalidProcess     = "INVALID_PROCESS"
	CodeInvalidConfig      = "INVALID_CONFIG"
	CodeProcessSpawnFailed = "PROCESS_SPAWN_FAILED"
)

// Sentinels for errors.Is. MemError.Is compares codes, so a detailed error
// returned by an operation matches the sentinel of the same code.
var (
	ErrPageFull         = &MemError{Code: CodePageFull, Category: ErrCategoryCapacity, Message: "page is full"}
	ErrUnknownPID       = &MemError{Code: CodeUnknownPID, Category: ErrCategoryUser, Message: "pid is not loaded"}
	ErrDuplicatePID     = &MemError{Code: CodeDuplicatePID, Category: ErrCategoryUser, Message: "pid is already loaded"}
	ErrOutOfBounds      = &MemError{Code: CodeOutOfBounds, Category: ErrCategorySystem, Message: "range exceeds memory"}
	ErrConcurrentAccess = &MemError{Code: CodeConcurrentAccess, Category: ErrCategoryConcurrency, Message: "byte range is borrowed elsewhere"}
	ErrInvalidGeometry  = &MemError{Code: CodeInvalidGeometry, Category: ErrCategorySystem, Message: "invalid memory geometry"}
	ErrInvalidProcess   = &MemError{Code: CodeInvalidProcess, Category: ErrCategoryUser, Message: "invalid process image"}
	ErrInvalidConfig    = &MemError{Code: CodeInvalidConfig, Category: ErrCategorySystem, Message: "invalid configuration"}
)

// MemError represents a structured memory-model error with context information.
type MemError struct {
	// Code is a unique identifier for this error type (e.g., "PAGE_FULL").
	Code string

	// Category classifies the error for appropriate handling strategy.
	Category ErrorCategory

	// Message is a human-readable description of what went wrong.
	Message string

	// Detail provides additional context about the specific error instance.
	// Example: "page 2 holds 8/8 processes".
	Detail string

	// Hint suggests how the caller might work around this error.
	Hint string

	// Operation identifies the operation being performed ("Load", "Unload", "NewPage").
	Operation string

	// Component identifies where the error originated ("Page", "RAM", "Spawner").
	Component string

	// Cause is the underlying error, if any.
	Cause error

	// Stack contains the call stack where this error was created.
	Stack []uintptr
}

// New creates a new MemError with the specified code, category, and message.
func New(category ErrorCategory, code, message string) *MemError {
	return &MemError{
		Code:     code,
		Category: category,
		Message:  message,
		Stack:    captureStack(),
	}
}

// Newf derives a fresh error from a sentinel, keeping its code, category and
// message and attaching instance detail.
func Newf(sentinel *MemError, operation, component, format string, args ...any) *MemError {
	return &MemError{
		Code:      sentinel.Code,
		Category:  sentinel.Category,
		Message:   sentinel.Message,
		Detail:    fmt.Sprintf(format, args...),
		Operation: operation,
		Component: component,
		Stack:     captureStack(),
	}
}

// Wrap wraps an existing error with memory-model context information.
// If the error is already a MemError, it enriches the existing error with
// operation and component context (only if not already set).
func Wrap(err error, code, operation, component string) *MemError {
	if err == nil {
		return nil
	}

	if memErr, ok := err.(*MemError); ok {
		if memErr.Operation == "" {
			memErr.Operation = operation
		}
		if memErr.Component == "" {
			memErr.Component = component
		}
		return memErr
	}

	return &MemError{
		Code:      code,
		Category:  ErrCategorySystem,
		Message:   err.Error(),
		Operation: operation,
		Component: component,
		Cause:     err,
		Stack:     captureStack(),
	}
}

// WithHint sets the hint and returns the receiver for chaining.
func (e *MemError) WithHint(hint string) *MemError {
	e.Hint = hint
	return e
}

// captureStack skips captureStack, the constructor and runtime.Callers itself.
func captureStack() []uintptr {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	return pcs[0:n]
}

// Error implements the standard Go error interface
//
// The format follows the pattern:
// [ERROR_CODE] Message: Detail (operation: Operation, component: Component) caused by: underlying error
func (e *MemError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Detail != "" {
		b.WriteString(fmt.Sprintf(": %s", e.Detail))
	}

	if e.Operation != "" {
		b.WriteString(fmt.Sprintf(" (operation: %s", e.Operation))
		if e.Component != "" {
			b.WriteString(fmt.Sprintf(", component: %s", e.Component))
		}
		b.WriteString(")")
	}

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(" caused by: %v", e.Cause))
	}

	return b.String()
}

// Unwrap returns the underlying cause error, enabling error chain traversal
// with Go's standard error handling functions like errors.Is and errors.As.
func (e *MemError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a MemError with the same code.
func (e *MemError) Is(target error) bool {
	t, ok := target.(*MemError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// FormatStack returns a human-readable stack trace for debugging purposes.
func (e *MemError) FormatStack() string {
	if len(e.Stack) == 0 {
		return ""
	}

	var b strings.Builder
	frames := runtime.CallersFrames(e.Stack)

	b.WriteString("Stack trace:\n")
	for {
		f, more := frames.Next()
		b.WriteString(fmt.Sprintf("  %s\n    %s:%d\n",
			f.Function, f.File, f.Line))
		if !more {
			break
		}
	}

	return b.String()
}

// CodeOf extracts the code of a MemError anywhere in err's chain.
// It returns "" for foreign errors.
func CodeOf(err error) string {
	var memErr *MemError
	if errors.As(err, &memErr) {
		return memErr.Code
	}
	return ""
}
