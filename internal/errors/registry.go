package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (E100-E199)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid pdfdesk.yaml",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Invalid document service URL",
		Detail:   "service.baseURL must be an absolute http or https URL.",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid port",
		Detail:   "Port must be between 0 and 65535.",
	},
	"E123": {
		Category: CategoryConfig,
		Message:  "Unknown storage driver",
		Detail:   `storage.driver must be "disk" or "s3".`,
	},
	"E124": {
		Category: CategoryConfig,
		Message:  "Missing S3 bucket",
		Detail:   "storage.bucket is required when storage.driver is s3.",
	},
	"E125": {
		Category: CategoryConfig,
		Message:  "Invalid duration",
		Detail:   "Durations must not be negative.",
	},
	"E126": {
		Category: CategoryConfig,
		Message:  "Unknown log level",
		Detail:   `log.level must be one of debug, info, warn or error.`,
	},

	// ============================================
	// Zone Errors (E200-E299)
	// ============================================

	"E200": {
		Category: CategoryZone,
		Message:  "Empty endpoint table",
		Detail:   "At least one upload zone must be configured.",
	},
	"E201": {
		Category: CategoryZone,
		Message:  "Unknown upload zone",
	},
	"E202": {
		Category: CategoryZone,
		Message:  "Duplicate upload zone",
	},
	"E203": {
		Category: CategoryZone,
		Message:  "Invalid zone endpoint",
	},
	"E204": {
		Category: CategoryZone,
		Message:  "Invalid multipart field",
	},
	"E205": {
		Category: CategoryZone,
		Message:  "Missing zone identifier",
	},

	// ============================================
	// Upload Errors (E300-E399)
	// ============================================

	"E300": {
		Category: CategoryUpload,
		Message:  "No files selected",
	},
	"E301": {
		Category: CategoryUpload,
		Message:  "Zone is busy",
		Detail:   "A previous upload for this zone has not finished yet.",
	},
	"E302": {
		Category: CategoryUpload,
		Message:  "Could not read file",
	},
	"E303": {
		Category: CategoryUpload,
		Message:  "Could not store artifact",
	},
	"E304": {
		Category: CategoryTransport,
		Message:  "Document service unreachable",
	},
	"E305": {
		Category: CategoryUpload,
		Message:  "Staged file not found",
		Detail:   "The staged upload expired or was already claimed.",
	},
	"E306": {
		Category: CategoryTransport,
		Message:  "Malformed response",
	},

	// ============================================
	// CLI Errors (E400-E499)
	// ============================================

	"E400": {
		Category: CategoryCLI,
		Message:  "No zone selected",
		Detail:   "Pass --zone, or run from a terminal to pick one.",
	},
	"E401": {
		Category: CategoryCLI,
		Message:  "Submission failed",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
