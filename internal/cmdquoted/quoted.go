// Package cmdquoted splits and joins flag lists that use shell-like single
// and double quoting, as found in the SDES_FLAGS environment variable.
package cmdquoted

import (
	"fmt"
	"unicode"
)

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// Split splits s into fields separated by white space. A field may be
// wrapped in single or double quotes to include spaces; quotes are not
// otherwise interpreted.
func Split(s string) ([]string, error) {
	var fields []string
	for len(s) > 0 {
		for len(s) > 0 && isSpaceByte(s[0]) {
			s = s[1:]
		}
		if len(s) == 0 {
			break
		}
		if q := s[0]; q == '"' || q == '\'' {
			s = s[1:]
			i := 0
			for i < len(s) && s[i] != q {
				i++
			}
			if i >= len(s) {
				return nil, fmt.Errorf("unterminated %c string", q)
			}
			fields = append(fields, s[:i])
			s = s[i+1:]
			continue
		}
		i := 0
		for i < len(s) && !isSpaceByte(s[i]) {
			i++
		}
		fields = append(fields, s[:i])
		s = s[i:]
	}
	return fields, nil
}

// Join quotes args so that Split(Join(args)) == args. Arguments without
// spaces or quotes are kept as they are.
func Join(args []string) (string, error) {
	var buf []byte
	for i, arg := range args {
		if i > 0 {
			buf = append(buf, ' ')
		}
		var space, single, double bool
		for _, c := range arg {
			switch {
			case c > unicode.MaxASCII:
			case isSpaceByte(byte(c)):
				space = true
			case c == '\'':
				single = true
			case c == '"':
				double = true
			}
		}
		switch {
		case arg == "":
			buf = append(buf, "''"...)
		case !space && !single && !double:
			buf = append(buf, arg...)
		case !single:
			buf = append(buf, '\'')
			buf = append(buf, arg...)
			buf = append(buf, '\'')
		case !double:
			buf = append(buf, '"')
			buf = append(buf, arg...)
			buf = append(buf, '"')
		default:
			return "", fmt.Errorf("argument %q contains both single and double quotes and cannot be quoted", arg)
		}
	}
	return string(buf), nil
}

// Prepend returns the fields of env followed by args. It is how default
// flags from the environment are placed ahead of the command line, so that
// explicit flags win.
func Prepend(env string, args []string) ([]string, error) {
	fields, err := Split(env)
	if err != nil {
		return nil, fmt.Errorf("parsing flags from environment: %w", err)
	}
	out := make([]string, 0, len(fields)+len(args))
	out = append(out, fields...)
	return append(out, args...), nil
}
