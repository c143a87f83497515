package unichan

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/iov-one/unichan/errors"
)

func TestUnixTimeUnmarshal(t *testing.T) {
	cases := map[string]struct {
		raw      string
		wantTime UnixTime
		wantErr  *errors.Error
	}{
		"zero time as number": {
			raw:      "0",
			wantTime: 0,
		},
		"zero time as string": {
			raw:      `"1970-01-01T01:00:00+01:00"`,
			wantTime: 0,
		},
		"a time as string": {
			raw:      `"2019-04-04T11:35:40.89181085+02:00"`,
			wantTime: 1554370540,
		},
		"a time as number": {
			raw:      "1554370540",
			wantTime: 1554370540,
		},
		"negative number": {
			raw:     "-1",
			wantErr: errors.ErrInput,
		},
		"negative time as string": {
			raw:     `"1950-01-01T01:00:00+01:00"`,
			wantErr: errors.ErrInput,
		},
		"invalid string": {
			raw:     `"not a time string"`,
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var got UnixTime
			err := json.Unmarshal([]byte(tc.raw), &got)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %s", err)
			}
			if got != tc.wantTime {
				t.Fatalf("want %d time, got %d", tc.wantTime, got)
			}
		})
	}
}

func TestUnixTimeAdd(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour + 4*time.Second)

	unow := AsUnixTime(now)
	ufuture := unow.Add(time.Hour + 4*time.Second)

	if future.Unix() != int64(ufuture) {
		t.Fatalf("want %d, got %d", future.Unix(), ufuture)
	}
	if got := ufuture.Sub(unow); got != time.Hour+4*time.Second {
		t.Fatalf("want %s difference, got %s", time.Hour+4*time.Second, got)
	}
}

func TestUnixTimeValidate(t *testing.T) {
	if err := UnixTime(0).Validate(); err != nil {
		t.Fatalf("zero time must be valid: %s", err)
	}
	if err := UnixTime(-5).Validate(); !errors.ErrState.Is(err) {
		t.Fatalf("want state error, got %s", err)
	}
}

func TestUnixDurationJSON(t *testing.T) {
	cases := map[string]struct {
		raw     string
		want    UnixDuration
		wantErr *errors.Error
	}{
		"seconds as number": {
			raw:  "30",
			want: 30,
		},
		"duration string": {
			raw:  `"2m5s"`,
			want: 125,
		},
		"sub second precision is dropped": {
			raw:  `"1500ms"`,
			want: 1,
		},
		"invalid duration string": {
			raw:     `"soon"`,
			wantErr: errors.ErrInput,
		},
		"invalid type": {
			raw:     `{"seconds": 3}`,
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var got UnixDuration
			err := json.Unmarshal([]byte(tc.raw), &got)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %s", err)
			}
			if got != tc.want {
				t.Fatalf("want %d, got %d", tc.want, got)
			}
		})
	}

	raw, err := json.Marshal(UnixDuration(90))
	if err != nil {
		t.Fatalf("cannot marshal: %s", err)
	}
	if string(raw) != `"1m30s"` {
		t.Fatalf("unexpected serialization: %s", raw)
	}
}
