package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"
	ErrUnknownStatus  ErrCode = "UNKNOWN_STATUS"
	ErrBadLessonLabel ErrCode = "BAD_LESSON_LABEL"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrStudentNotFound  ErrCode = "STUDENT_NOT_FOUND"
	ErrGroupNotFound    ErrCode = "GROUP_NOT_FOUND"
	ErrDuplicateStudent ErrCode = "DUPLICATE_STUDENT"
	ErrStudentInactive  ErrCode = "STUDENT_INACTIVE"

	// ─── Sync & rebuild ────────────────────────────────────────────────
	ErrSyncInProgress    ErrCode = "SYNC_IN_PROGRESS"
	ErrRebuildInProgress ErrCode = "REBUILD_IN_PROGRESS"

	// ─── Import ────────────────────────────────────────────────────────
	ErrImportRejected ErrCode = "IMPORT_REJECTED"

	// ─── Group view ────────────────────────────────────────────────────
	ErrWorkbookMissing ErrCode = "WORKBOOK_MISSING"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrUnknownStatus:
		return "Status must be one of Y, N, A, or U."
	case ErrBadLessonLabel:
		return "Lesson label resolves to a number outside the curriculum."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrStudentNotFound:
		return "No master record exists for that student."
	case ErrGroupNotFound:
		return "No group with that name exists."
	case ErrDuplicateStudent:
		return "A student with that name is already enrolled."
	case ErrStudentInactive:
		return "The student is unenrolled."

	// ─── Sync & rebuild ────────────────────────────────────────────────
	case ErrSyncInProgress:
		return "A sync run is already in progress."
	case ErrRebuildInProgress:
		return "A rebuild is already in progress."

	// ─── Import ────────────────────────────────────────────────────────
	case ErrImportRejected:
		return "The import was rejected. No rows were applied."

	// ─── Group view ────────────────────────────────────────────────────
	case ErrWorkbookMissing:
		return "The group view workbook has not been rendered yet."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
