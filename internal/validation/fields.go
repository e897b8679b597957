package validation

// Field pairs a form field name with the checks that constrain it. Forms
// declare their fields as a static list; Check walks it in a fixed loop.
type Field struct {
	Name   string
	Value  string
	Checks []func(string) error
}

// Errors maps field names to the first failed constraint's message.
type Errors map[string]string

func (e Errors) Any() bool {
	return len(e) > 0
}

// Check runs every field's checks in order, recording the first failure per
// field. Returns nil when everything passes.
func Check(fields ...Field) Errors {
	var errs Errors
	for _, f := range fields {
		for _, check := range f.Checks {
			err := check(f.Value)
			if err != nil {
				if errs == nil {
					errs = Errors{}
				}
				errs[f.Name] = err.Error()
				break
			}
		}
	}
	return errs
}
