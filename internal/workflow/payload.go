package workflow

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPayload means scanned text does not follow the label schema
var ErrInvalidPayload = errors.New("invalid QR payload")

// ScanPayload is what a piece label encodes. The canonical text form is
//
//	code:<code>
//	number:<number>
//
// Lines may come in either order; both are required and nothing else is allowed.
type ScanPayload struct {
	Code   string
	Number int
}

// String renders the canonical label text
func (p ScanPayload) String() string {
	return fmt.Sprintf("code:%s\nnumber:%d", p.Code, p.Number)
}

// ParseScanPayload validates scanned text before any lookup is made.
func ParseScanPayload(text string) (ScanPayload, error) {
	var (
		p          ScanPayload
		seenCode   bool
		seenNumber bool
	)

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return ScanPayload{}, fmt.Errorf("%w: line %q has no key", ErrInvalidPayload, line)
		}
		value = strings.TrimSpace(value)

		switch strings.ToLower(strings.TrimSpace(key)) {
		case "code":
			if seenCode {
				return ScanPayload{}, fmt.Errorf("%w: duplicate code", ErrInvalidPayload)
			}
			if value == "" {
				return ScanPayload{}, fmt.Errorf("%w: empty code", ErrInvalidPayload)
			}
			p.Code, seenCode = value, true
		case "number":
			if seenNumber {
				return ScanPayload{}, fmt.Errorf("%w: duplicate number", ErrInvalidPayload)
			}
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return ScanPayload{}, fmt.Errorf("%w: number %q is not a positive integer", ErrInvalidPayload, value)
			}
			p.Number, seenNumber = n, true
		default:
			return ScanPayload{}, fmt.Errorf("%w: unknown key %q", ErrInvalidPayload, key)
		}
	}

	if !seenCode || !seenNumber {
		return ScanPayload{}, fmt.Errorf("%w: code and number are both required", ErrInvalidPayload)
	}
	return p, nil
}
