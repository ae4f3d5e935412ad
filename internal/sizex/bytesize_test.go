package sizex

import (
	"encoding/json"
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    ByteSize
		wantErr bool
	}{
		{in: "104857600", want: 104857600},
		{in: "16 MiB", want: 16 * 1024 * 1024},
		{in: "100MiB", want: 100 * 1024 * 1024},
		{in: "1kB", want: 1000},
		{in: "lots", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "16 MiB", Format(16*1024*1024))
	assert.Equal(t, "950 B", Format(950))
	assert.Equal(t, "-50 B", Format(-50))
}

func TestByteSize_JSON(t *testing.T) {
	var cfg struct {
		Limit ByteSize `json:"limit"`
		Max   ByteSize `json:"max"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"limit":"1 GiB","max":1024}`), &cfg))
	assert.Equal(t, ByteSize(1<<30), cfg.Limit)
	assert.Equal(t, ByteSize(1024), cfg.Max)

	out, err := json.Marshal(cfg.Max)
	require.NoError(t, err)
	assert.Equal(t, "1024", string(out))

	var bad ByteSize
	require.Error(t, json.Unmarshal([]byte(`-1`), &bad))
	require.Error(t, json.Unmarshal([]byte(`[1]`), &bad))
}

func TestByteSize_FlagValue(t *testing.T) {
	var b ByteSize
	fs := flag.NewFlagSet("t", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Var(&b, "max", "")

	require.NoError(t, fs.Parse([]string{"-max", "16 MiB"}))
	assert.Equal(t, int64(16<<20), b.Int64())

	assert.Error(t, fs.Parse([]string{"-max", "lots"}))
}
