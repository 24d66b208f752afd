package meta

import (
	"strings"

	"github.com/veldtlabs/dynbind/errors"
)

const directivePrefix = "//dynbind:"

// directive is one parsed dynbind comment line.
type directive struct {
	verb string            // module, function, class, method
	arg  string            // positional argument (module name)
	keys map[string]string // key=value pairs
}

// findDirective scans a doc comment for a dynbind line. At most one
// directive is allowed per declaration; a second one is a conflict.
func findDirective(path []string, lines []string) (*directive, error) {
	var found *directive
	for _, line := range lines {
		if !strings.HasPrefix(line, directivePrefix) {
			continue
		}
		if found != nil {
			return nil, errors.Conflict(path, "multiple dynbind directives on one declaration")
		}
		d, err := parseDirective(path, strings.TrimPrefix(line, directivePrefix))
		if err != nil {
			return nil, err
		}
		found = d
	}
	return found, nil
}

// parseDirective parses the text after "//dynbind:". The verb is the first
// field; "module" takes a positional name, the others take key=value pairs.
func parseDirective(path []string, text string) (*directive, error) {
	fields, err := splitFields(path, text)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errors.InvalidInput(errors.PhaseExtract, "empty dynbind directive")
	}

	d := &directive{verb: fields[0], keys: map[string]string{}}
	switch d.verb {
	case "module", "function", "class", "method":
	default:
		return nil, errors.Unsupported(errors.PhaseExtract, path,
			"unknown dynbind directive "+strconvQuote(d.verb))
	}

	for _, field := range fields[1:] {
		eq := strings.IndexByte(field, '=')
		if eq < 0 {
			if d.verb == "module" && d.arg == "" {
				d.arg = field
				continue
			}
			return nil, errors.InvalidInput(errors.PhaseExtract,
				"malformed directive field "+strconvQuote(field))
		}
		key, value := field[:eq], field[eq+1:]
		if _, dup := d.keys[key]; dup {
			return nil, errors.Conflict(path, "directive key "+strconvQuote(key)+" given twice")
		}
		d.keys[key] = value
	}
	return d, nil
}

// splitFields splits on spaces while keeping double-quoted values intact.
// Quotes are stripped from the returned fields.
func splitFields(path []string, text string) ([]string, error) {
	var fields []string
	var b strings.Builder
	inQuote := false
	flush := func() {
		if b.Len() > 0 {
			fields = append(fields, b.String())
			b.Reset()
		}
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"':
			inQuote = !inQuote
		case c == ' ' && !inQuote:
			flush()
		default:
			b.WriteByte(c)
		}
	}
	if inQuote {
		return nil, errors.InvalidInput(errors.PhaseExtract,
			"unterminated quote in directive: "+text)
	}
	flush()
	return fields, nil
}

// take consumes a key's value; the second return reports presence.
func (d *directive) take(key string) (string, bool) {
	v, ok := d.keys[key]
	delete(d.keys, key)
	return v, ok
}

// finish fails if unconsumed keys remain.
func (d *directive) finish(path []string) error {
	for key := range d.keys {
		return errors.Unsupported(errors.PhaseExtract, path,
			"unknown directive key "+strconvQuote(key))
	}
	return nil
}

func strconvQuote(s string) string {
	return `"` + s + `"`
}

// parseAttrs interprets the attrs list. Names confirm parameter order;
// a bare "*" makes everything after it keyword-only. Returns the set of
// keyword-only parameter names.
func parseAttrs(path []string, attrs string, params []ParameterSpec) (map[string]bool, error) {
	kwOnly := map[string]bool{}
	if attrs == "" {
		return kwOnly, nil
	}

	idx := 0
	afterStar := false
	for _, item := range strings.Split(attrs, ",") {
		item = strings.TrimSpace(item)
		switch {
		case item == "*":
			if afterStar {
				return nil, errors.Conflict(path, `"*" marker given twice in attrs`)
			}
			afterStar = true
		case item == "":
			return nil, errors.InvalidInput(errors.PhaseExtract, "empty entry in attrs list")
		default:
			if idx >= len(params) || params[idx].Name != item {
				return nil, errors.Conflict(path,
					"attrs entry "+strconvQuote(item)+" does not match the parameter list")
			}
			if afterStar {
				kwOnly[item] = true
			}
			idx++
		}
	}
	if idx != len(params) {
		return nil, errors.Conflict(path, "attrs list does not cover all parameters")
	}
	return kwOnly, nil
}
