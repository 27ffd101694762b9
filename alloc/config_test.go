package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"tiny chunk", func(c *Config) { c.ChunkSize = 64 }, true},
		{"misaligned chunk", func(c *Config) { c.ChunkSize = 4096 + 8 }, true},
		{"no threads", func(c *Config) { c.MaxThreads = 0 }, true},
		{"too many threads", func(c *Config) { c.MaxThreads = maxThreadsLimit + 1 }, true},
		{"one thread", func(c *Config) { c.MaxThreads = 1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrBadConfig)
				_, err = NewPar(&cfg)
				require.ErrorIs(t, err, ErrBadConfig)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestConfig_PredefinedValid(t *testing.T) {
	for _, cfg := range []Config{DefaultConfig, ConfigWide, ConfigLargeChunk} {
		require.NoError(t, cfg.Validate(), cfg.String())
	}
}

func TestNewPar_NilConfig(t *testing.T) {
	pa, err := NewPar(nil)
	require.NoError(t, err)
	require.Equal(t, DefaultConfig.ChunkSize, pa.Config().ChunkSize)
	require.Equal(t, DefaultConfig.MaxThreads, pa.Config().MaxThreads)
}

func TestConfig_String(t *testing.T) {
	require.Equal(t, "Default", DefaultConfig.String())
	anon := Config{ChunkSize: 4096, MaxThreads: 2}
	require.Equal(t, "chunk=4096 threads=2", anon.String())
}
