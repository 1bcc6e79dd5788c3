package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/async-button/internal/domain/button"
)

// TestFileRepository_NotFound verifies Load returns ErrNotFound for a missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.yaml"))

	s, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, s)
}

// TestFileRepository_SaveLoad_Roundtrip ensures Save followed by Load returns an equal state.
func TestFileRepository_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "state.yaml")
	repo := NewFileRepository(file)

	want := &button.FetchState{
		ResponseCode: uuid.New(),
		TimesFetched: 3,
		LastActor: &button.Actor{
			Hostname: "workstation",
			Username: "operator",
		},
		Timestamp: time.Now().UTC().Truncate(time.Second),
	}

	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want.ResponseCode, got.ResponseCode)
	require.Equal(t, want.TimesFetched, got.TimesFetched)
	require.Equal(t, want.LastActor, got.LastActor)
	require.True(t, want.Timestamp.Equal(got.Timestamp))
	require.Empty(t, got.ErrorMessage)

	_, err = os.Stat(file)
	require.NoError(t, err)
}

// TestFileRepository_ZeroState checks an empty state survives a roundtrip without a response code.
func TestFileRepository_ZeroState(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "state.yaml"))
	require.NoError(t, repo.Save(context.Background(), &button.FetchState{ErrorMessage: button.FetchFailedMessage}))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, uuid.Nil, got.ResponseCode)
	require.Nil(t, got.LastActor)
	require.Equal(t, button.FetchFailedMessage, got.ErrorMessage)
}

// TestFileRepository_Corrupt ensures undecodable files surface an error.
func TestFileRepository_Corrupt(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(file, []byte("response_code: not-a-uuid\n"), 0o600))

	_, err := NewFileRepository(file).Load(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}
