// Package types defines core data types and enums shared across the
// docx2md conversion pipeline.
package types

// EquationKind distinguishes block-level display equations from equations
// embedded within a line of prose.
type EquationKind string

const (
	// KindInline is an equation embedded in running text.
	KindInline EquationKind = "inline"
	// KindDisplay is a paragraph-level (block) equation.
	KindDisplay EquationKind = "display"
)

// EquationRecord describes one native equation lifted out of a document.
// Records are created during extraction, consumed read-only by the batch
// converter and the splicer, and discarded after splicing.
type EquationRecord struct {
	// Index is assigned in extraction order: all display equations in
	// document order first, then remaining inline equations in document
	// order. Downstream equation-number stripping relies on this ordering.
	Index int `json:"index"`
	// Kind is inline or display.
	Kind EquationKind `json:"kind"`
	// RawMarkup is the serialized OMML subtree, treated as an opaque payload.
	RawMarkup string `json:"raw_markup"`
	// Placeholder is the inert text token substituted for the equation node.
	Placeholder string `json:"placeholder"`
}

// TokenKind classifies a span produced by the math tokenizer.
type TokenKind string

const (
	// TokenText is a span outside any math delimiters.
	TokenText TokenKind = "text"
	// TokenMath is a delimited math span, delimiters included.
	TokenMath TokenKind = "math"
)

// Token is one span of a tokenized buffer. Concatenating all tokens in
// order reproduces the original buffer exactly.
type Token struct {
	Kind    TokenKind
	Content string
}

// ConversionResult aggregates per-document statistics and warnings.
type ConversionResult struct {
	InputFile    string   `json:"input_file"`
	OutputFile   string   `json:"output_file"`
	WorkspaceID  string   `json:"workspace_id"`
	Equations    int      `json:"equations_count"`
	DisplayCount int      `json:"display_count"`
	InlineCount  int      `json:"inline_count"`
	InlineFixed  int      `json:"inline_fixed"`
	DisplayFixed int      `json:"display_fixed"`
	Tables       int      `json:"tables_count"`
	MathFallback bool     `json:"math_fallback"`
	Warnings     []string `json:"warnings,omitempty"`
	Error        string   `json:"error,omitempty"`
	Success      bool     `json:"success"`
}

// BatchSummary aggregates the outcome of a multi-document conversion run.
type BatchSummary struct {
	FilesProcessed int                `json:"files_processed"`
	FilesSucceeded int                `json:"files_succeeded"`
	FilesFailed    int                `json:"files_failed"`
	Results        []ConversionResult `json:"results"`
}

// ErrorCode classifies pipeline failures.
type ErrorCode string

const (
	ErrContainer    ErrorCode = "CONTAINER_ERROR"
	ErrXML          ErrorCode = "XML_ERROR"
	ErrConvert      ErrorCode = "CONVERT_ERROR"
	ErrConfig       ErrorCode = "CONFIG_ERROR"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
)

// AppError is the pipeline error type. Container and XML errors are fatal
// for the document they occur in; conversion-channel errors are recoverable
// by falling back to direct whole-document conversion.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface for AppError.
func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError with the given code, message, and
// optional cause.
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAppErrorWithDetails creates a new AppError carrying extra detail text,
// typically the failing path.
func NewAppErrorWithDetails(code ErrorCode, message, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}
