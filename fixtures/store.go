/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package fixtures

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/devtoolbox/mockapi/query"
)

// FieldID is the name of the field that identifies a record.
const FieldID = "id"

const dataDir = "data"

//go:embed data/*.json
var embeddedData embed.FS

// Resources lists the collections that are always available.
var Resources = []string{"comments", "companies", "orders", "posts", "products", "quotes", "todos", "users"}

// ErrEmptyResourceName is returned when a collection name cannot be derived from a file.
var ErrEmptyResourceName = errors.New("empty resource name")

// Store keeps loaded collections in memory. It is safe for concurrent reads.
type Store struct {
	collections map[string]query.Collection
	names       []string
}

// NewStore creates a new Store from already decoded collections.
func NewStore(collections map[string]query.Collection) *Store {
	names := make([]string, 0, len(collections))
	for name := range collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return &Store{collections: collections, names: names}
}

// Load loads all collections. Files from cfg.Dir take precedence over the embedded ones.
func Load(cfg *Config) (*Store, error) {
	embedded, err := fs.Sub(embeddedData, dataDir)
	if err != nil {
		return nil, err
	}
	if cfg == nil || cfg.Dir == "" {
		return LoadFS(embedded, nil)
	}
	return LoadFS(os.DirFS(cfg.Dir), embedded)
}

// LoadFS loads every <resource>.json file from fsys. Well-known resources missing in fsys
// are loaded from fallback when it is not nil.
func LoadFS(fsys fs.FS, fallback fs.FS) (*Store, error) {
	files, err := fs.Glob(fsys, "*.json")
	if err != nil {
		return nil, err
	}
	collections := make(map[string]query.Collection, len(Resources))
	for _, fileName := range files {
		name := strings.TrimSuffix(fileName, path.Ext(fileName))
		if name == "" {
			return nil, fmt.Errorf("load %s: %w", fileName, ErrEmptyResourceName)
		}
		if collections[name], err = loadFile(fsys, fileName); err != nil {
			return nil, err
		}
	}
	if fallback != nil {
		for _, name := range Resources {
			if _, ok := collections[name]; ok {
				continue
			}
			if collections[name], err = loadFile(fallback, name+".json"); err != nil {
				return nil, err
			}
		}
	}
	return NewStore(collections), nil
}

func loadFile(fsys fs.FS, fileName string) (query.Collection, error) {
	f, err := fsys.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fileName, err)
	}
	defer func() { _ = f.Close() }()
	coll, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", fileName, err)
	}
	return coll, nil
}

// Decode reads a JSON array of objects. Numbers are kept as json.Number.
func Decode(r io.Reader) (query.Collection, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var coll query.Collection
	if err := dec.Decode(&coll); err != nil {
		return nil, err
	}
	if coll == nil {
		coll = query.Collection{}
	}
	return coll, nil
}

// Collection returns the collection by its name.
func (s *Store) Collection(name string) (query.Collection, bool) {
	coll, ok := s.collections[name]
	return coll, ok
}

// Names returns sorted names of all loaded collections.
func (s *Store) Names() []string {
	return append([]string(nil), s.names...)
}

// FindByID returns the first record of the collection whose id has the same string form as id.
func (s *Store) FindByID(name, id string) (query.Record, bool) {
	for _, rec := range s.collections[name] {
		v, ok := rec[FieldID]
		if !ok {
			continue
		}
		if recID, err := cast.ToStringE(v); err == nil && recID == id {
			return rec, true
		}
	}
	return nil, false
}
