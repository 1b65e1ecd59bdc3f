package config

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPasswordConfig(t *testing.T) {
	tests := []struct {
		name     string
		cost     int
		wantCost int
		wantErr  bool
	}{
		{"default cost", 0, DefaultBcryptCost, false},
		{"minimum cost", 10, 10, false},
		{"maximum cost", 14, 14, false},
		{"too low", 9, 0, true},
		{"too high", 15, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewPasswordConfig(tt.cost, "")
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "bcrypt cost out of range")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCost, cfg.BcryptCost)
		})
	}
}

func TestPasswordConfig_HashAndVerify(t *testing.T) {
	cfg, err := NewPasswordConfig(10, "")
	require.NoError(t, err)

	hash, err := cfg.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	hash2, err := cfg.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2, "bcrypt salts every hash")

	assert.True(t, cfg.VerifyPassword("correct horse", hash))
	assert.True(t, cfg.VerifyPassword("correct horse", hash2))
	assert.False(t, cfg.VerifyPassword("wrong horse", hash))
	assert.False(t, cfg.VerifyPassword("correct horse", "not-a-hash"))
}

func TestPasswordConfig_Pepper(t *testing.T) {
	peppered, err := NewPasswordConfig(10, "pepper-1")
	require.NoError(t, err)
	plain, err := NewPasswordConfig(10, "")
	require.NoError(t, err)
	rotated, err := NewPasswordConfig(10, "pepper-2")
	require.NoError(t, err)

	hash, err := peppered.HashPassword("s3cret")
	require.NoError(t, err)

	assert.True(t, peppered.VerifyPassword("s3cret", hash))
	assert.False(t, plain.VerifyPassword("s3cret", hash), "removing the pepper invalidates hashes")
	assert.False(t, rotated.VerifyPassword("s3cret", hash))
}

func TestPasswordConfig_Exceeding72Bytes(t *testing.T) {
	cfg, err := NewPasswordConfig(10, "")
	require.NoError(t, err)

	hash, err := cfg.HashPassword(strings.Repeat("a", 100))
	assert.Error(t, err)
	assert.Empty(t, hash)

	hash, err = cfg.HashPassword(strings.Repeat("a", 70))
	require.NoError(t, err)
	assert.True(t, cfg.VerifyPassword(strings.Repeat("a", 70), hash))
}

func TestPasswordConfig_ConcurrentVerify(t *testing.T) {
	cfg, err := NewPasswordConfig(10, "p")
	require.NoError(t, err)
	hash, err := cfg.HashPassword("shared")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]bool, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = cfg.VerifyPassword("shared", hash)
		}()
	}
	wg.Wait()

	for _, ok := range results {
		assert.True(t, ok)
	}
}

func BenchmarkHashPassword_Cost10(b *testing.B) {
	cfg, _ := NewPasswordConfig(10, "")
	for i := 0; i < b.N; i++ {
		_, _ = cfg.HashPassword("benchmark-password")
	}
}
