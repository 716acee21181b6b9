package vo

// Outcome is the terminal, immutable result of one conversion job.
type Outcome struct {
	Succeeded bool
	// Diagnostic carries the engine's captured log tail on failure. Advisory
	// text for operators only; never parsed for control decisions.
	Diagnostic string
}

// ClassifyOutcome maps the terminal process error and the cancellation flag to
// a structured outcome. Cancellation pre-empts status interpretation: a job
// whose engine happens to exit cleanly after a cancel request is still not a
// success.
func ClassifyOutcome(terminalErr error, cancelRequested bool, diagnosticTail string) Outcome {
	if cancelRequested {
		return Outcome{Succeeded: false, Diagnostic: "cancelled by caller"}
	}
	if terminalErr != nil {
		diag := diagnosticTail
		if diag == "" {
			diag = terminalErr.Error()
		}
		return Outcome{Succeeded: false, Diagnostic: diag}
	}
	return Outcome{Succeeded: true}
}
