//go:build !js_eval

package eval

// NewJSEvaluator is unavailable without the js_eval build tag.
func NewJSEvaluator(opts ...Option) Evaluator {
	_ = applyOptions(opts)
	return nil
}

func jsEvaluatorAvailable() bool {
	return false
}

func isJSEvaluator(Evaluator) bool {
	return false
}
