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

// Package engine opens connections to databases the corpus
// resources read their metadata and sizes from.
package engine

import (
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

const (
	dfltPoolSize        = 10
	dfltConnMaxLifetime = 5 * time.Minute
)

type DBConf struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Name     string `json:"name"`
	User     string `json:"user"`
	Password string `json:"password"`
	PoolSize int    `json:"poolSize"`

	// ConnMaxLifetimeSecs limits reuse of pooled connections
	ConnMaxLifetimeSecs int `json:"connMaxLifetimeSecs"`
}

func (conf *DBConf) addr() string {
	if conf.Port > 0 {
		return fmt.Sprintf("%s:%d", conf.Host, conf.Port)
	}
	return conf.Host
}

func (conf *DBConf) mysqlDSN() string {
	mconf := mysql.NewConfig()
	mconf.Net = "tcp"
	mconf.Addr = conf.addr()
	mconf.User = conf.User
	mconf.Passwd = conf.Password
	mconf.DBName = conf.Name
	mconf.ParseTime = true
	mconf.Loc = time.Local
	mconf.Params = map[string]string{"autocommit": "true"}
	return mconf.FormatDSN()
}

func (conf *DBConf) poolSize() int {
	if conf.PoolSize > 0 {
		return conf.PoolSize
	}
	return dfltPoolSize
}

func (conf *DBConf) connMaxLifetime() time.Duration {
	if conf.ConnMaxLifetimeSecs > 0 {
		return time.Duration(conf.ConnMaxLifetimeSecs) * time.Second
	}
	return dfltConnMaxLifetime
}

// OpenMySQL opens a MySQL connection pool
func OpenMySQL(conf *DBConf) (*sql.DB, error) {
	db, err := sql.Open("mysql", conf.mysqlDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database %s: %w", conf.Name, err)
	}
	db.SetMaxOpenConns(conf.poolSize())
	db.SetMaxIdleConns(conf.poolSize())
	db.SetConnMaxLifetime(conf.connMaxLifetime())
	return db, nil
}

func sqliteDSN(path string) string {
	return (&url.URL{Scheme: "file", Opaque: path, RawQuery: "mode=ro"}).String()
}

// OpenSQLite opens a read-only SQLite corpus database
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database %s: %w", path, err)
	}
	return db, nil
}
