package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://github.com/redscorpix/npf-sub003/blob/main/docs/errors.md#"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Patch protocol errors (E001-E019)
	// ============================================

	"E001": {
		Category: CategoryPatch,
		Message:  "Unclosed tags at end of patch",
		Detail:   "Every ElementOpen must be matched by an ElementClose before the patch function returns.",
		DocURL:   docBase + "e001",
	},
	"E002": {
		Category: CategoryPatch,
		Message:  "Close tag does not match open tag",
		Detail:   "ElementClose was called with a tag name different from the element currently open.",
		DocURL:   docBase + "e002",
	},
	"E003": {
		Category: CategoryPatch,
		Message:  "Attribute set outside attributes phase",
		Detail:   "Attr and ElementOpenEnd are only valid between ElementOpenStart and ElementOpenEnd.",
		DocURL:   docBase + "e003",
	},
	"E004": {
		Category: CategoryPatch,
		Message:  "Node declared inside attributes phase",
		Detail:   "ElementOpenStart must be followed by Attr calls and ElementOpenEnd before any element, text or close call.",
		DocURL:   docBase + "e004",
	},
	"E005": {
		Category: CategoryPatch,
		Message:  "Keyed element tag mismatch",
		Detail:   "A key was reused for an element with a different tag name. Keys must identify the same element type across patches.",
		DocURL:   docBase + "e005",
	},
	"E006": {
		Category: CategoryPatch,
		Message:  "Call inside skipped subtree",
		Detail:   "After Skip only ElementClose may be called for the current element.",
		DocURL:   docBase + "e006",
	},
	"E007": {
		Category: CategoryPatch,
		Message:  "Call outside of a patch",
		Detail:   "Walker operations are only valid inside the function passed to PatchInner or PatchOuter.",
		DocURL:   docBase + "e007",
	},
	"E008": {
		Category: CategoryPatch,
		Message:  "Skip called after children were declared",
		Detail:   "Skip must be the first call inside the element whose children it preserves.",
		DocURL:   docBase + "e008",
	},
	"E009": {
		Category: CategoryPatch,
		Message:  "Outer patch rendered extra nodes",
		Detail:   "PatchOuter expects exactly one top-level element to be described.",
		DocURL:   docBase + "e009",
	},
	"E010": {
		Category: CategoryPatch,
		Message:  "Invalid patch root",
		Detail:   "The patch root must be a non-nil element, document or document fragment node.",
		DocURL:   docBase + "e010",
	},

	// ============================================
	// Protocol errors (E060-E079)
	// ============================================

	"E060": {
		Category: CategoryProtocol,
		Message:  "Malformed mutations frame",
		Detail:   "The frame ended early or contained an invalid varint.",
		DocURL:   docBase + "e060",
	},
	"E061": {
		Category: CategoryProtocol,
		Message:  "Unknown mutation op",
		Detail:   "The frame contains an operation byte this decoder does not understand.",
		DocURL:   docBase + "e061",
	},
	"E062": {
		Category: CategoryProtocol,
		Message:  "Unknown node id",
		Detail:   "A mutation referenced a node id the mirror has never seen.",
		DocURL:   docBase + "e062",
	},
	"E063": {
		Category: CategoryProtocol,
		Message:  "Invalid tree description",
		Detail:   "The JSON tree description could not be decoded.",
		DocURL:   docBase + "e063",
	},

	// ============================================
	// Config errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "incdom.json could not be read or parsed.",
		DocURL:   docBase + "e120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No incdom.json was found in the given directory.",
		DocURL:   docBase + "e121",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration field is out of range.",
		DocURL:   docBase + "e122",
	},

	// ============================================
	// CLI errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryCLI,
		Message:  "Missing required flag",
		Detail:   "The command needs an input that was not provided.",
		DocURL:   docBase + "e140",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Cannot read input file",
		Detail:   "An input file passed on the command line could not be read.",
		DocURL:   docBase + "e141",
	},
}

// GetAllCodes returns all registered error codes in ascending order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
