package corpus

import "fmt"

// InputError reports a corpus record that violates the input contract:
// a missing required field, a duplicate id or an undecodable record.
type InputError struct {
	Index  int    // zero-based record position in the source
	DocID  string // record id, when known
	Field  string // offending field, when applicable
	Reason string
}

func (e *InputError) Error() string {
	switch {
	case e.DocID != "" && e.Field != "":
		return fmt.Sprintf("record %d (%s): field %q: %s", e.Index, e.DocID, e.Field, e.Reason)
	case e.Field != "":
		return fmt.Sprintf("record %d: field %q: %s", e.Index, e.Field, e.Reason)
	case e.DocID != "":
		return fmt.Sprintf("record %d (%s): %s", e.Index, e.DocID, e.Reason)
	default:
		return fmt.Sprintf("record %d: %s", e.Index, e.Reason)
	}
}
