package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Storage keys of the persisted session, shared with the web front-end.
const (
	TokenKey         = "access_token"
	AuthenticatedKey = "isAuthenticated"
)

// Session exposes read-only access to the current credentials.
type Session interface {
	Token() string
	IsAuthenticated() bool
}

// Static is a session whose token is already known.
type Static string

func (s Static) Token() string { return string(s) }

func (s Static) IsAuthenticated() bool { return s != "" }

// FileStore reads the persisted key/value session file. It never writes.
type FileStore struct {
	values map[string]string
}

var ErrNoSession = errors.New("session file not found")

// LoadFile reads a JSON object of string (or bool) values.
func LoadFile(path string) (*FileStore, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoSession, path)
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	raw := map[string]any{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	values := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			values[k] = val
		case bool:
			values[k] = strconv.FormatBool(val)
		case nil:
		default:
			values[k] = fmt.Sprint(val)
		}
	}
	return &FileStore{values: values}, nil
}

func (f *FileStore) Get(key string) string {
	if f == nil {
		return ""
	}
	return f.values[key]
}

func (f *FileStore) Token() string { return f.Get(TokenKey) }

func (f *FileStore) IsAuthenticated() bool {
	return f.Get(AuthenticatedKey) == "true" && f.Token() != ""
}

type contextKey struct{}

// ContextWith attaches a session to ctx.
func ContextWith(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext extracts the session attached by ContextWith.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok && s != nil
}
