package backend

// AnalysisRequest is the JSON body posted to the backend
type AnalysisRequest struct {
	Question string `json:"question"`
	Mode     Mode   `json:"mode"`
}

var promptTemplates = map[Mode]string{
	ModeHints:       "Provide concise hints for this code. Focus on key concepts and best practices only:\n\n",
	ModeSuggestions: "Give optimized code improvements. Return only the improved code without explanations:\n\n",
	ModeExplanation: "Explain this code briefly and clearly:\n\n",
	ModeCleanCode:   "Provide clean, optimized code. Return only the refactored code without comments or explanations:\n\n",
	ModeSolutions:   "Provide a complete, working solution code. Return only the full working code without comments or explanations. Make sure the code is complete and functional:\n\n",
	ModeErrorFixing: "Fix the errors in this code. Return only the corrected code without explanations:\n\n",
}

const optimizeTemplate = "Provide a clean, optimized version of this code and fix errors:\n\n"

// Prompt wraps raw code in the instruction for the given kind.
// Unknown kinds send the code as-is.
func Prompt(mode Mode, code string) string {
	tmpl, ok := promptTemplates[mode]
	if !ok {
		return code
	}
	return tmpl + code
}

func NewRequest(mode Mode, code string) AnalysisRequest {
	return AnalysisRequest{Question: Prompt(mode, code), Mode: mode}
}

// NewOptimizeRequest builds the request used by the in-place optimize command
func NewOptimizeRequest(code string) AnalysisRequest {
	return AnalysisRequest{Question: optimizeTemplate + code, Mode: ModeCleanCode}
}
