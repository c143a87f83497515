package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If no non-nil error is provided, nil is returned. If only one non-nil error
// is provided, it is returned as it is. Otherwise a collection error is
// returned that Is any of its members.
func Append(errs ...error) error {
	var res multiErr
	for _, e := range errs {
		if isNilErr(e) {
			continue
		}
		if m, ok := e.(multiErr); ok {
			res = append(res, m...)
		} else {
			res = append(res, e)
		}
	}

	switch len(res) {
	case 0:
		return nil
	case 1:
		return res[0]
	default:
		return res
	}
}

// multiErr represents a collection of errors.
type multiErr []error

func (errs multiErr) Error() string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = fmt.Sprintf("* %s", e)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s", len(errs), strings.Join(msgs, "\n\t"))
}

// Unpack returns all errors that this collection is made of.
func (errs multiErr) Unpack() []error {
	return errs
}

// unpacker is implemented by errors that consist of several other errors.
type unpacker interface {
	Unpack() []error
}
