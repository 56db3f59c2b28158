package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

func backends(t *testing.T) map[string]func(dir string) domain.KVStore {
	log := logger.New(logger.LevelOff, nil)
	return map[string]func(dir string) domain.KVStore{
		BackendMemory: func(string) domain.KVStore { return NewMemoryKV(log) },
		BackendFile: func(dir string) domain.KVStore {
			s, err := OpenFileKV(filepath.Join(dir, "kv"), log)
			require.NoError(t, err)
			return s
		},
		BackendSQLite: func(dir string) domain.KVStore {
			s, err := OpenSQLiteKV(filepath.Join(dir, "kv.db"), log)
			require.NoError(t, err)
			return s
		},
		BackendBadger: func(dir string) domain.KVStore {
			s, err := OpenBadgerKV(filepath.Join(dir, "badger"), log)
			require.NoError(t, err)
			return s
		},
	}
}

func TestKVRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t.TempDir())
			defer s.Close()

			_, err := s.Get(ctx, "userData")
			require.ErrorIs(t, err, domain.ErrNotFound)

			require.NoError(t, s.Set(ctx, "userData", []byte(`{"a":1}`)))
			got, err := s.Get(ctx, "userData")
			require.NoError(t, err)
			assert.JSONEq(t, `{"a":1}`, string(got))

			require.NoError(t, s.Set(ctx, "userData", []byte(`{"a":2}`)))
			got, err = s.Get(ctx, "userData")
			require.NoError(t, err)
			assert.JSONEq(t, `{"a":2}`, string(got))
		})
	}
}

func TestKVClosed(t *testing.T) {
	ctx := context.Background()
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t.TempDir())
			require.NoError(t, s.Close())

			_, err := s.Get(ctx, "k")
			assert.ErrorIs(t, err, ErrClosed)
			assert.ErrorIs(t, s.Set(ctx, "k", []byte("v")), ErrClosed)
		})
	}
}

func TestPersistentBackendsSurviveReopen(t *testing.T) {
	ctx := context.Background()
	for name, open := range backends(t) {
		if name == BackendMemory {
			continue
		}
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			s := open(dir)
			require.NoError(t, s.Set(ctx, "userData", []byte(`{"r1":{}}`)))
			require.NoError(t, s.Close())

			s = open(dir)
			defer s.Close()
			got, err := s.Get(ctx, "userData")
			require.NoError(t, err)
			assert.Equal(t, `{"r1":{}}`, string(got))
		})
	}
}

func TestMemoryKVCopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryKV(logger.New(logger.LevelOff, nil))

	v := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", v))
	v[0] = 'x'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("redis", t.TempDir(), logger.New(logger.LevelOff, nil))
	assert.Error(t, err)
}
