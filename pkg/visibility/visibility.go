package visibility

// Evaluator determines whether a section or field should be visible based on
// a rule string and the answers collected so far.
type Evaluator interface {
	Eval(subject, rule string, ctx Context) (bool, error)
}

// Context provides inputs to an Evaluator. Values holds the answer bag while
// Extras lets hosts inject ambient facts such as feature flags or the channel
// the questionnaire runs on.
type Context struct {
	Values map[string]any
	Extras map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(subject, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(subject, rule string, ctx Context) (bool, error) {
	return fn(subject, rule, ctx)
}
