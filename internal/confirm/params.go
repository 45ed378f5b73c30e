// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package confirm

import (
	"fmt"
	"net/url"
	"strconv"
)

// Params are the caller supplied arguments of a pending confirmation. They are stored
// as-is and handed to the handler unchanged; the token store never interprets them.
type Params map[string]string

// ParamsFromValues takes the first value of every key. Typical input is a request query.
func ParamsFromValues(values url.Values) Params {
	p := make(Params, len(values))
	for k, v := range values {
		if len(v) > 0 {
			p[k] = v[0]
		}
	}
	return p
}

// Get returns the value for key or "".
func (p Params) Get(key string) string {
	return p[key]
}

// Int parses the value for key as a base 10 integer.
func (p Params) Int(key string) (int, error) {
	v, ok := p[key]
	if !ok {
		return 0, fmt.Errorf("param %q missing", key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("param %q: %w", key, err)
	}
	return n, nil
}

// Clone returns an independent copy. A nil Params clones to nil.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
