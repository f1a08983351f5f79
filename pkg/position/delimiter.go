package position

import (
	"strings"

	"gitlab.com/tozd/go/errors"
)

// DefaultLineDelimiter is used whenever a caller does not inject one. Detecting
// the host convention is left to callers.
const DefaultLineDelimiter = "\n"

var ErrInvalidLineDelimiter = errors.New("invalid line delimiter")

// ValidateLineDelimiter checks that the delimiter is one or two characters,
// each a carriage return or a line feed.
func ValidateLineDelimiter(delimiter string) error {
	if len(delimiter) == 0 || len(delimiter) > 2 {
		return errors.Errorf("%w: %q must be one or two characters", ErrInvalidLineDelimiter, delimiter)
	}
	for i := 0; i < len(delimiter); i++ {
		if delimiter[i] != '\r' && delimiter[i] != '\n' {
			return errors.Errorf("%w: %q may only contain \\r and \\n", ErrInvalidLineDelimiter, delimiter)
		}
	}
	return nil
}

// ParseLineDelimiter accepts the editorconfig spellings (lf, crlf, cr) as well
// as literal delimiter values.
func ParseLineDelimiter(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "lf", `\n`:
		return "\n", nil
	case "crlf", `\r\n`:
		return "\r\n", nil
	case "cr", `\r`:
		return "\r", nil
	}

	if err := ValidateLineDelimiter(name); err != nil {
		return "", err
	}
	return name, nil
}
