package engine

// Result is the outcome of a single validation call.
type Result struct {
	Valid  bool           `json:"isValid"`
	Errors ErrorTree      `json:"errors"`
	Data   map[string]any `json:"data"`

	failure *FieldError
}

func failed(ferr *FieldError) Result {
	return Result{Valid: false, Errors: ferr.Tree(), failure: ferr}
}

// Err returns the violation as an error, or nil when the object is valid.
func (r Result) Err() error {
	if r.failure == nil {
		return nil
	}
	return r.failure
}

// Failure returns the violation, or nil when the object is valid.
func (r Result) Failure() *FieldError {
	return r.failure
}
