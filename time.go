package unichan

import (
	"encoding/json"
	"time"

	"github.com/iov-one/unichan/errors"
)

// UnixTime represents a point in time as POSIX time.
// This type comes in handy when dealing with persisted models. Instead of
// using Go's time.Time that includes nanoseconds use primitive int64 type and
// seconds precision. Some languages do not support nanoseconds precision
// anyway.
type UnixTime int64

// Time returns a time.Time structure that represents the same moment in time.
func (t UnixTime) Time() time.Time {
	return time.Unix(int64(t), 0)
}

// IsZero returns true if this time represents a zero value.
func (t UnixTime) IsZero() bool {
	return t == 0
}

// Add modifies this UNIX time by given duration. This is compatible with
// time.Time.Add method. Any duration less than a second is ignored.
func (t UnixTime) Add(d time.Duration) UnixTime {
	return t + UnixTime(d/time.Second)
}

// Sub returns the duration t-u, with seconds precision.
func (t UnixTime) Sub(u UnixTime) time.Duration {
	return time.Duration(t-u) * time.Second
}

// AsUnixTime converts given Time structure into its UNIX time representation.
func AsUnixTime(t time.Time) UnixTime {
	return UnixTime(t.Unix())
}

// UnmarshalJSON supports unmarshaling both as time.Time and from a number.
// Usually a number is used as a representation of this time in JSON but it is
// convenient to use a string format in configurations (ie genesis file).
func (t *UnixTime) UnmarshalJSON(raw []byte) error {
	var unix int64
	if err := json.Unmarshal(raw, &unix); err == nil {
		if unix < 0 {
			return errors.Wrap(errors.ErrInput, "time before epoch")
		}
		*t = UnixTime(unix)
		return nil
	}

	var stdtime time.Time
	if err := json.Unmarshal(raw, &stdtime); err == nil {
		unix := UnixTime(stdtime.Unix())
		if unix < 0 {
			return errors.Wrap(errors.ErrInput, "time before epoch")
		}
		*t = unix
		return nil
	}

	return errors.Wrap(errors.ErrInput, "invalid time format")
}

// Validate returns an error if this time value is invalid.
func (t UnixTime) Validate() error {
	if t < 0 {
		return errors.Wrap(errors.ErrState, "negative value")
	}
	return nil
}

// String returns the usual string representation of this time as the time.Time
// structure would.
func (t UnixTime) String() string {
	return t.Time().UTC().String()
}

// UnixDuration represents a time duration with granularity of a second. This
// type should be used mostly for configuration values that define a time
// window, for example the dispute window of a channel.
type UnixDuration int32

// AsUnixDuration converts given time.Duration, dropping anything below a
// second.
func AsUnixDuration(d time.Duration) UnixDuration {
	return UnixDuration(d / time.Second)
}

// Duration returns the time.Duration representation of this value.
func (d UnixDuration) Duration() time.Duration {
	return time.Duration(d) * time.Second
}

func (d UnixDuration) String() string {
	return d.Duration().String()
}

// MarshalJSON writes the duration in its human readable form, for example
// "30s".
func (d UnixDuration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts both a number of seconds and a duration string as
// understood by time.ParseDuration.
func (d *UnixDuration) UnmarshalJSON(raw []byte) error {
	var secs int32
	if err := json.Unmarshal(raw, &secs); err == nil {
		*d = UnixDuration(secs)
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(errors.ErrInput, "invalid duration format")
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "invalid duration: %s", err)
	}
	*d = AsUnixDuration(dur)
	return nil
}
