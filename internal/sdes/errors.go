package sdes

import "errors"

// Kind classifies the errors produced by the cipher, the framer and the CLI.
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindInvalidRoundCount means a key schedule was requested for more
	// rounds than the master key can supply.
	KindInvalidRoundCount
	// KindFormat means an encrypted stream is not laid out as
	// [padding][3-byte chunks]*.
	KindFormat
	// KindIO means a file could not be opened, read or written.
	KindIO
	// KindInvalidArgument means a command-line value could not be parsed.
	KindInvalidArgument
)

var (
	ErrInvalidRoundCount = errors.New("invalid round count")
	ErrFormat            = errors.New("invalid format")
	ErrIO                = errors.New("i/o error")
	ErrInvalidArgument   = errors.New("invalid argument")
)

func (k Kind) String() string {
	switch k {
	case KindInvalidRoundCount:
		return "InvalidRoundCount"
	case KindFormat:
		return "FormatError"
	case KindIO:
		return "IoError"
	case KindInvalidArgument:
		return "InvalidArgument"
	default:
		return "unknown"
	}
}

// KindOf reports which Kind err wraps, or KindUnknown.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrInvalidRoundCount):
		return KindInvalidRoundCount
	case errors.Is(err, ErrFormat):
		return KindFormat
	case errors.Is(err, ErrIO):
		return KindIO
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	default:
		return KindUnknown
	}
}
