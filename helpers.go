package unichan

import (
	"reflect"

	"github.com/ethereum/go-ethereum/common"
	"github.com/iov-one/unichan/errors"
)

// assignMsg copies msg into destination, which must be a pointer of the
// same type as msg (or as the value msg points to).
func assignMsg(msg Msg, destination interface{}) error {
	dst := reflect.ValueOf(destination)
	if dst.Kind() != reflect.Ptr || dst.IsNil() {
		return errors.Wrapf(errors.ErrType, "destination must be a non nil pointer, got %T", destination)
	}
	src := reflect.ValueOf(msg)
	if src.Kind() == reflect.Ptr {
		src = src.Elem()
	}
	if src.Type() != dst.Elem().Type() {
		return errors.Wrapf(errors.ErrType, "want %T message, got %T", destination, msg)
	}
	dst.Elem().Set(src)
	return nil
}

// ParseAddress decodes a hex encoded (0x prefixed or not) 20 byte address.
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, errors.Wrapf(errors.ErrInput, "invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}
