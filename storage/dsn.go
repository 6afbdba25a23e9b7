/*
 * Copyright 2018 The CovenantSQL Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package storage opens the sqlite ledger files.
package storage

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidDSN indicates a connection string can not be parsed.
var ErrInvalidDSN = errors.New("invalid dsn")

// DSN represents a sqlite connection string.
type DSN struct {
	filename string
	params   map[string]string
}

// NewDSN parses the given string and returns a DSN.
func NewDSN(s string) (*DSN, error) {
	parts := strings.SplitN(s, "?", 2)

	dsn := &DSN{
		filename: strings.TrimPrefix(parts[0], "file:"),
		params:   make(map[string]string),
	}
	if dsn.filename == "" {
		return nil, errors.Wrap(ErrInvalidDSN, "empty file name")
	}
	if len(parts) < 2 || parts[1] == "" {
		return dsn, nil
	}

	for _, v := range strings.Split(parts[1], "&") {
		param := strings.SplitN(v, "=", 2)
		if len(param) != 2 {
			return nil, errors.Wrapf(ErrInvalidDSN, "unrecognized parameter: %s", v)
		}
		dsn.params[param[0]] = param[1]
	}

	return dsn, nil
}

// Format formats DSN to a connection string, parameters are sorted by key.
func (dsn *DSN) Format() string {
	if len(dsn.params) == 0 {
		return fmt.Sprintf("file:%s", dsn.filename)
	}

	params := make([]string, 0, len(dsn.params))
	for k, v := range dsn.params {
		params = append(params, k+"="+v)
	}
	sort.Strings(params)

	return fmt.Sprintf("file:%s?%s", dsn.filename, strings.Join(params, "&"))
}

// SetFileName sets the sqlite database file name of DSN.
func (dsn *DSN) SetFileName(fn string) { dsn.filename = fn }

// GetFileName gets the sqlite database file name of DSN.
func (dsn *DSN) GetFileName() string { return dsn.filename }

// AddParam adds key:value pair DSN parameters, an empty value removes the key.
func (dsn *DSN) AddParam(key, value string) {
	if dsn.params == nil {
		dsn.params = make(map[string]string)
	}
	if value == "" {
		delete(dsn.params, key)
	} else {
		dsn.params[key] = value
	}
}

// GetParam gets the value.
func (dsn *DSN) GetParam(key string) (value string, ok bool) {
	value, ok = dsn.params[key]
	return
}

// Clone returns a copy of current dsn.
func (dsn *DSN) Clone() *DSN {
	c := &DSN{
		filename: dsn.filename,
		params:   make(map[string]string, len(dsn.params)),
	}
	for k, v := range dsn.params {
		c.params[k] = v
	}
	return c
}
