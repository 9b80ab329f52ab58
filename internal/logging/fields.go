package logging

const (
	// FieldComponent names the emitting component; the console handler
	// renders it in brackets.
	FieldComponent = "component"
	// FieldEventType is a stable machine-readable name for the event.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step for an operator.
	FieldErrorHint = "error_hint"
	// FieldImpact describes the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldRunID identifies one process run.
	FieldRunID = "run_id"
	// FieldInput is the tailed file.
	FieldInput = "input"
	// FieldOutput is the append target.
	FieldOutput = "output"
	// FieldCursor is the byte offset already transcoded.
	FieldCursor = "cursor"
)
