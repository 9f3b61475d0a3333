package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("RETAIL_TEST_ROOT", "/data/retail")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "relative", in: "exports", want: "exports"},
		{name: "tilde", in: "~", want: home},
		{name: "tilde prefix", in: "~/retail/data", want: filepath.Join(home, "retail/data")},
		{name: "env var", in: "$RETAIL_TEST_ROOT/exports", want: "/data/retail/exports"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}
