// Package errors provides error code constants for relaxplot.
// Error codes are organized by category for consistent handling and lookup.
package errors

// -----------------------------------------------------------------------------
// Configuration Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = "CONFIG_NOT_FOUND"

	// ErrConfigParseFailed indicates the configuration file could not be parsed.
	// Usually a YAML or TOML syntax error.
	ErrConfigParseFailed = "CONFIG_PARSE_FAILED"

	// ErrConfigInvalid indicates configuration values are invalid.
	ErrConfigInvalid = "CONFIG_INVALID"

	// ErrConfigWriteFailed indicates the config file could not be written.
	ErrConfigWriteFailed = "CONFIG_WRITE_FAILED"

	// ErrConfigUnknownBackend indicates the export type names no known backend.
	ErrConfigUnknownBackend = "CONFIG_UNKNOWN_BACKEND"
)

// -----------------------------------------------------------------------------
// Template Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrTemplateMissingRole indicates a backend template lacks a role the
	// backend requires.
	ErrTemplateMissingRole = "TEMPLATE_MISSING_ROLE"

	// ErrTemplateInvalid indicates a template entry is malformed: unknown role
	// name, or a format string that does not accept the role's arguments.
	ErrTemplateInvalid = "TEMPLATE_INVALID"

	// ErrTemplateLoadFailed indicates a template file could not be read or parsed.
	ErrTemplateLoadFailed = "TEMPLATE_LOAD_FAILED"
)

// -----------------------------------------------------------------------------
// Data Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrDataShapeMismatch indicates rows with inconsistent column counts, or
	// series whose lengths disagree.
	ErrDataShapeMismatch = "DATA_SHAPE"

	// ErrDataMalformedKey indicates a composite key or graph title that does
	// not split into the expected fields.
	ErrDataMalformedKey = "DATA_MALFORMED_KEY"

	// ErrDataLoadFailed indicates a dataset file could not be read or decoded.
	ErrDataLoadFailed = "DATA_LOAD_FAILED"

	// ErrDataUnsupportedFormat indicates a dataset file extension is not supported.
	ErrDataUnsupportedFormat = "DATA_UNSUPPORTED_FORMAT"
)

// -----------------------------------------------------------------------------
// Layout Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrLayoutTooManyGroups indicates more residue groups than the 9x9 grid holds.
	ErrLayoutTooManyGroups = "LAYOUT_OVERFLOW"
)

// -----------------------------------------------------------------------------
// Export Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrExportInvalidState indicates an export step was called out of order.
	ErrExportInvalidState = "EXPORT_INVALID_STATE"

	// ErrExportNoData indicates there is nothing to export.
	ErrExportNoData = "EXPORT_NO_DATA"

	// ErrExportSkippedGroups indicates groups were dropped and writing was refused.
	ErrExportSkippedGroups = "EXPORT_SKIPPED_GROUPS"

	// ErrExportWriteFailed indicates the script could not be written.
	ErrExportWriteFailed = "EXPORT_WRITE_FAILED"

	// ErrExportInvalidPath indicates the destination path is unusable.
	ErrExportInvalidPath = "EXPORT_INVALID_PATH"
)

// -----------------------------------------------------------------------------
// Command Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrCommandMissingArgs indicates required arguments are missing.
	ErrCommandMissingArgs = "COMMAND_MISSING_ARGS"

	// ErrCommandInvalidArg indicates an argument value is invalid.
	ErrCommandInvalidArg = "COMMAND_INVALID_ARG"

	// ErrCommandNotFound indicates the command does not exist.
	ErrCommandNotFound = "COMMAND_NOT_FOUND"

	// ErrShellInitFailed indicates the interactive shell could not start.
	ErrShellInitFailed = "SHELL_INIT_FAILED"
)

// -----------------------------------------------------------------------------
// Validation Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrValidationRequired indicates a required field is missing.
	ErrValidationRequired = "VALIDATION_REQUIRED"

	// ErrValidationInvalidValue indicates a value is invalid.
	ErrValidationInvalidValue = "VALIDATION_INVALID_VALUE"
)

// -----------------------------------------------------------------------------
// Network and I/O Error Codes
// -----------------------------------------------------------------------------

const (
	// ErrNetworkListenFailed indicates the API server could not bind its address.
	ErrNetworkListenFailed = "NETWORK_LISTEN_FAILED"

	// ErrIOReadFailed indicates a file read operation failed.
	ErrIOReadFailed = "IO_READ_FAILED"

	// ErrIOWriteFailed indicates a file write operation failed.
	ErrIOWriteFailed = "IO_WRITE_FAILED"

	// ErrIOFileNotFound indicates a file was not found.
	ErrIOFileNotFound = "IO_FILE_NOT_FOUND"

	// ErrInternalError indicates an unexpected internal error.
	ErrInternalError = "INTERNAL_ERROR"

	// ErrInternalPanic indicates a panic was recovered.
	ErrInternalPanic = "INTERNAL_PANIC"
)

// -----------------------------------------------------------------------------
// Error Code Lookup Helpers
// -----------------------------------------------------------------------------

// CodeCategory returns the category for a given error code.
// Returns CategoryInternal if the code is not recognized.
func CodeCategory(code string) Category {
	switch code {
	case ErrConfigNotFound, ErrConfigParseFailed, ErrConfigInvalid,
		ErrConfigWriteFailed, ErrConfigUnknownBackend:
		return CategoryConfig

	case ErrTemplateMissingRole, ErrTemplateInvalid, ErrTemplateLoadFailed:
		return CategoryTemplate

	case ErrDataShapeMismatch, ErrDataMalformedKey, ErrDataLoadFailed,
		ErrDataUnsupportedFormat:
		return CategoryData

	case ErrLayoutTooManyGroups:
		return CategoryLayout

	case ErrExportInvalidState, ErrExportNoData, ErrExportSkippedGroups,
		ErrExportWriteFailed, ErrExportInvalidPath:
		return CategoryExport

	case ErrCommandMissingArgs, ErrCommandInvalidArg, ErrCommandNotFound,
		ErrShellInitFailed:
		return CategoryCommand

	case ErrValidationRequired, ErrValidationInvalidValue:
		return CategoryValidation

	case ErrNetworkListenFailed:
		return CategoryNetwork

	case ErrIOReadFailed, ErrIOWriteFailed, ErrIOFileNotFound:
		return CategoryIO

	default:
		return CategoryInternal
	}
}

// IsGroupCode reports whether errors with this code drop a single group
// instead of aborting the whole export.
func IsGroupCode(code string) bool {
	return code == ErrDataShapeMismatch || code == ErrDataMalformedKey
}
