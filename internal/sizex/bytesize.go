// Package sizex parses human-friendly byte sizes ("16 MiB", "100MB",
// "104857600") used by quota and upload limits.
package sizex

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// ByteSize is a byte count that JSON-decodes from a number or a humanized
// string and encodes back as a plain number.
type ByteSize int64

// Parse accepts anything go-humanize understands, including bare integers.
func Parse(s string) (ByteSize, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
	}
	if n > math.MaxInt64 {
		return 0, fmt.Errorf("byte size %q overflows int64", s)
	}
	return ByteSize(n), nil
}

// Format renders n with IEC units, e.g. "16 MiB".
func Format(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}

func (b ByteSize) Int64() int64 { return int64(b) }

func (b ByteSize) String() string { return Format(int64(b)) }

// Set implements flag.Value.
func (b *ByteSize) Set(s string) error {
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

func (b ByteSize) MarshalJSON() ([]byte, error) {
	return json.Marshal(int64(b))
}

func (b *ByteSize) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		if value < 0 {
			return fmt.Errorf("negative byte size %v", value)
		}
		*b = ByteSize(value)
		return nil
	case string:
		parsed, err := Parse(value)
		if err != nil {
			return err
		}
		*b = parsed
		return nil
	default:
		return fmt.Errorf("invalid byte size %s", string(data))
	}
}
