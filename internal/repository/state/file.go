package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/async-button/internal/config"
	"github.com/oshokin/async-button/internal/domain/button"
)

// Repository defines persistence operations for the fetch state.
type Repository interface {
	Load(ctx context.Context) (*button.FetchState, error)
	Save(ctx context.Context, state *button.FetchState) error
}

// FileRepository persists the fetch state to a YAML file.
type FileRepository struct {
	// path is the state file location.
	path string
	// mu serializes file access.
	mu sync.Mutex
}

// ErrNotFound is returned when the state file does not exist yet.
var ErrNotFound = errors.New("state not found")

// record is the on-disk layout.
type record struct {
	ResponseCode string       `yaml:"response_code,omitempty"`
	TimesFetched int          `yaml:"times_fetched"`
	ErrorMessage string       `yaml:"error_message,omitempty"`
	LastActor    *actorRecord `yaml:"last_actor,omitempty"`
	Timestamp    time.Time    `yaml:"timestamp,omitempty"`
}

// actorRecord is the on-disk layout of an actor.
type actorRecord struct {
	Hostname string `yaml:"hostname"`
	Username string `yaml:"username"`
}

// NewFileRepository creates a repository reading and writing path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the state from disk.
func (r *FileRepository) Load(_ context.Context) (*button.FetchState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read state file: %w", err)
	}

	var rec record
	if err = yaml.Unmarshal(contents, &rec); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	return fromRecord(&rec)
}

// Save writes the state to disk.
func (r *FileRepository) Save(_ context.Context, state *button.FetchState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := yaml.Marshal(toRecord(state))
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	return nil
}

// fromRecord converts the on-disk record into the domain state.
func fromRecord(rec *record) (*button.FetchState, error) {
	state := &button.FetchState{
		TimesFetched: rec.TimesFetched,
		ErrorMessage: rec.ErrorMessage,
		Timestamp:    rec.Timestamp,
	}

	if rec.ResponseCode != "" {
		code, err := uuid.Parse(rec.ResponseCode)
		if err != nil {
			return nil, fmt.Errorf("decode response code: %w", err)
		}

		state.ResponseCode = code
	}

	if rec.LastActor != nil {
		state.LastActor = &button.Actor{
			Hostname: rec.LastActor.Hostname,
			Username: rec.LastActor.Username,
		}
	}

	return state, nil
}

// toRecord converts the domain state into the on-disk record.
func toRecord(state *button.FetchState) *record {
	rec := &record{
		TimesFetched: state.TimesFetched,
		ErrorMessage: state.ErrorMessage,
		Timestamp:    state.Timestamp,
	}

	if state.ResponseCode != uuid.Nil {
		rec.ResponseCode = state.ResponseCode.String()
	}

	if state.LastActor != nil {
		rec.LastActor = &actorRecord{
			Hostname: state.LastActor.Hostname,
			Username: state.LastActor.Username,
		}
	}

	return rec
}
