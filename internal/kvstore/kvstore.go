// Package kvstore is a file-backed string key-value store. It plays the role
// browser local storage plays for the web client: one flat namespace of
// string keys, persisted as a single JSON document on disk.
package kvstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

type state struct {
	Values map[string]string `json:"values"`
}

func newState() state {
	return state{Values: map[string]string{}}
}

type Store struct {
	mu   sync.RWMutex
	path string
	s    state
}

func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	st := &Store{
		path: filepath.Join(dataDir, "localstore.json"),
		s:    newState(),
	}
	if err := st.load(); err != nil {
		return nil, err
	}
	return st, nil
}

func (st *Store) load() error {
	st.mu.Lock()
	defer st.mu.Unlock()

	b, err := os.ReadFile(st.path)
	if err != nil {
		if os.IsNotExist(err) {
			st.s = newState()
			return nil
		}
		return err
	}
	var loaded state
	if err := json.Unmarshal(b, &loaded); err != nil {
		return err
	}
	if loaded.Values == nil {
		loaded.Values = map[string]string{}
	}
	st.s = loaded
	return nil
}

func (st *Store) saveLocked() error {
	b, err := json.MarshalIndent(st.s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(st.path, b, 0o644)
}

func (st *Store) Get(key string) (string, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	v, ok := st.s.Values[key]
	return v, ok
}

func (st *Store) Set(key, value string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.Values[key] = value
	return st.saveLocked()
}

func (st *Store) Delete(key string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.s.Values[key]; !ok {
		return nil
	}
	delete(st.s.Values, key)
	return st.saveLocked()
}
