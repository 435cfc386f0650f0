package diag

// Diagnostic is a reportable outcome of one binding request. Subject names
// the call site, e.g. "Calculator.Add(int, int)".
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Subject  string
	Notes    []string
}

func New(sev Severity, code Code, subject, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Subject:  subject,
		Message:  msg,
	}
}

func (d Diagnostic) WithNote(msg string) Diagnostic {
	d.Notes = append(d.Notes, msg)
	return d
}

// FromError converts an error into a diagnostic. Errors outside the taxonomy
// are reported as UnknownCode.
func FromError(subject string, err error) Diagnostic {
	var e *Error
	if AsError(err, &e) {
		d := New(SevError, e.Code, subject, e.Message)
		d.Notes = append(d.Notes, e.Notes...)
		return d
	}
	return New(SevError, UnknownCode, subject, err.Error())
}
