package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field wraps err with the name of the model or message attribute it was
// raised for. It returns nil if err is nil, so validation code can call it
// on every check unconditionally. A stack trace is attached unless err
// already carries one.
//
// Use Go naming for the field, with dots for nested attributes, for example
// Balance or Voucher.Signature.
func Field(fieldName string, err error, description string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	if len(args) > 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{parent: err, field: fieldName, desc: description}
}

// AppendField adds a field error for fieldErrOrNil to errorsOrNil. Both
// may be nil.
func AppendField(errorsOrNil error, fieldName string, fieldErrOrNil error) error {
	return Append(errorsOrNil, Field(fieldName, fieldErrOrNil, ""))
}

type fieldError struct {
	parent error
	field  string
	desc   string
}

func (err *fieldError) Error() string {
	if err.desc == "" {
		return fmt.Sprintf("field %q: %s", err.field, err.parent)
	}
	return fmt.Sprintf("field %q: %s: %s", err.field, err.desc, err.parent)
}

// Cause implements the causer interface.
func (err *fieldError) Cause() error {
	return err.parent
}

// FieldErrors returns every error in err, including the members of an
// Append collection, that was created by Field for fieldName.
func FieldErrors(err error, fieldName string) []error {
	var res []error
	for !isNilErr(err) {
		if f, ok := err.(*fieldError); ok && f.field == fieldName {
			return append(res, err)
		}
		if u, ok := err.(unpacker); ok {
			for _, e := range u.Unpack() {
				res = append(res, FieldErrors(e, fieldName)...)
			}
			return res
		}
		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	return res
}
