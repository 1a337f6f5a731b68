package models

// ModelResult is the normalized output of one successful model invocation.
// The wire shape mirrors the webhook contract: result text plus a
// "{provider} - {model}" label.
type ModelResult struct {
	Result string `json:"result"`
	Model  string `json:"model"`
}

// DispatchOutcome is the terminal value of one dispatch pass, returned to
// the webhook caller. Under First Result at most one entry is present;
// under Return All every successful candidate contributes one entry, in
// candidate order. Err carries the aggregate failure message when no usable
// result was produced.
type DispatchOutcome struct {
	Strategy Strategy      `json:"-"`
	Results  []ModelResult `json:"-"`
	Err      string        `json:"-"`
}

// Failed reports whether the outcome carries an aggregate failure.
func (o DispatchOutcome) Failed() bool {
	return o.Err != ""
}

// Payload renders the outcome as the JSON body sent to the caller.
func (o DispatchOutcome) Payload() any {
	if o.Failed() {
		return map[string]string{"error": o.Err}
	}
	if o.Strategy == StrategyReturnAll {
		return map[string]any{"results": o.Results}
	}
	return o.Results[0]
}
