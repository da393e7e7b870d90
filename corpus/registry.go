// Copyright 2026 Institute of the Czech National Corpus,
//                Faculty of Arts, Charles University
//   This file is part of COQPIPE.
//
//  COQPIPE is free software: you can redistribute it and/or modify
//  it under the terms of the GNU General Public License as published by
//  the Free Software Foundation, either version 3 of the License, or
//  (at your option) any later version.
//
//  COQPIPE is distributed in the hope that it will be useful,
//  but WITHOUT ANY WARRANTY; without even the implied warranty of
//  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//  GNU General Public License for more details.
//
//  You should have received a copy of the GNU General Public License
//  along with COQPIPE.  If not, see <https://www.gnu.org/licenses/>.

package corpus

import (
	"coqpipe/engine"
	"database/sql"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

// Registry holds opened corpus resources
type Registry struct {
	mu        sync.RWMutex
	resources map[string]Resource
	byDB      map[string]Resource
	dbs       []*sql.DB
}

func (reg *Registry) Get(name string) (Resource, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	r, ok := reg.resources[name]
	return r, ok
}

func (reg *Registry) ResourceOfDatabase(dbName string) (Resource, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	r, ok := reg.byDB[dbName]
	return r, ok
}

// Names returns sorted names of all the registered resources
func (reg *Registry) Names() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	ans := make([]string, 0, len(reg.resources))
	for k := range reg.resources {
		ans = append(ans, k)
	}
	sort.Strings(ans)
	return ans
}

// Add registers a resource. A resource with the same name
// is replaced.
func (reg *Registry) Add(r Resource) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.resources[r.Name()] = r
	reg.byDB[r.DBName()] = r
}

func (reg *Registry) Close() {
	for _, db := range reg.dbs {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close resource database")
		}
	}
}

func NewRegistry() *Registry {
	return &Registry{
		resources: make(map[string]Resource),
		byDB:      make(map[string]Resource),
	}
}

// OpenRegistry opens databases of all the configured resources
func OpenRegistry(setup *ResourcesSetup) (*Registry, error) {
	ans := NewRegistry()
	for _, rc := range setup.Resources {
		var db *sql.DB
		var err error
		switch rc.Driver {
		case DriverMySQL:
			db, err = engine.OpenMySQL(rc.DB)
		case DriverSQLite:
			db, err = engine.OpenSQLite(rc.SQLitePath)
		default:
			err = fmt.Errorf("unsupported driver %s", rc.Driver)
		}
		if err != nil {
			ans.Close()
			return nil, fmt.Errorf("failed to open resource %s: %w", rc.Name, err)
		}
		ans.dbs = append(ans.dbs, db)
		res, err := NewSQLResource(rc, db, setup.WordFreqCacheSize)
		if err != nil {
			ans.Close()
			return nil, err
		}
		ans.Add(res)
		log.Info().
			Str("resource", rc.Name).
			Str("driver", rc.Driver).
			Msg("opened corpus resource")
	}
	return ans, nil
}
