package render

// Variant is the closed set of log entry kinds the renderer knows how to
// draw. Unknown wire discriminators parse to VariantDefault so one unexpected
// entry can never block a batch.
type Variant int

const (
	VariantDefault Variant = iota
	VariantUser
	VariantAgent
	VariantResponse
	VariantTool
	VariantCodeExecution
	VariantBrowserAction
	VariantWarning
	VariantRateLimit
	VariantError
	VariantInfo
	VariantUtility
	VariantHint
)

// ParseVariant maps a wire discriminator to its variant.
func ParseVariant(wire string) Variant {
	switch wire {
	case "user":
		return VariantUser
	case "agent":
		return VariantAgent
	case "response":
		return VariantResponse
	case "tool":
		return VariantTool
	case "code_exe":
		return VariantCodeExecution
	case "browser":
		return VariantBrowserAction
	case "warning":
		return VariantWarning
	case "rate_limit":
		return VariantRateLimit
	case "error":
		return VariantError
	case "info":
		return VariantInfo
	case "util":
		return VariantUtility
	case "hint":
		return VariantHint
	default:
		return VariantDefault
	}
}

// String returns the wire discriminator for the variant.
func (v Variant) String() string {
	switch v {
	case VariantUser:
		return "user"
	case VariantAgent:
		return "agent"
	case VariantResponse:
		return "response"
	case VariantTool:
		return "tool"
	case VariantCodeExecution:
		return "code_exe"
	case VariantBrowserAction:
		return "browser"
	case VariantWarning:
		return "warning"
	case VariantRateLimit:
		return "rate_limit"
	case VariantError:
		return "error"
	case VariantInfo:
		return "info"
	case VariantUtility:
		return "util"
	case VariantHint:
		return "hint"
	default:
		return "default"
	}
}

// Speakable reports whether the variant carries content worth narrating.
func (v Variant) Speakable() bool {
	return v == VariantResponse
}

// preformatted variants show content literally instead of as rich text.
func (v Variant) preformatted() bool {
	switch v {
	case VariantTool, VariantCodeExecution, VariantBrowserAction, VariantUtility:
		return true
	default:
		return false
	}
}

// markdown variants run their content through the markdown renderer.
func (v Variant) markdown() bool {
	return v == VariantResponse
}
