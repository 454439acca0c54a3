// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package synapse

import (
	"net/url"
	"strconv"
	"time"
)

// Ptr returns a pointer to v. Request structs mark optional fields as
// pointers, and Ptr lets callers set them inline:
//
//	client.Rooms(ctx, synapse.RoomsQuery{Limit: synapse.Ptr(10)})
func Ptr[T any](v T) *T {
	return &v
}

// queryEncoder builds a query string in which a key appears only when
// its value is set. An unset optional never produces an empty value or
// a "null". Encoding sorts keys, so the output is stable.
type queryEncoder struct {
	values url.Values
}

func newQuery() *queryEncoder {
	return &queryEncoder{values: url.Values{}}
}

func (q *queryEncoder) set(key, value string) *queryEncoder {
	q.values.Set(key, value)
	return q
}

func (q *queryEncoder) optionalString(key string, value *string) *queryEncoder {
	if value != nil {
		q.values.Set(key, *value)
	}
	return q
}

// optionalText writes value only when it is non-empty. Used for enums
// and identifier types whose zero value means "not set".
func (q *queryEncoder) optionalText(key, value string) *queryEncoder {
	if value != "" {
		q.values.Set(key, value)
	}
	return q
}

func (q *queryEncoder) optionalInt(key string, value *int) *queryEncoder {
	if value != nil {
		q.values.Set(key, strconv.Itoa(*value))
	}
	return q
}

func (q *queryEncoder) optionalInt64(key string, value *int64) *queryEncoder {
	if value != nil {
		q.values.Set(key, strconv.FormatInt(*value, 10))
	}
	return q
}

func (q *queryEncoder) optionalBool(key string, value *bool) *queryEncoder {
	if value != nil {
		q.values.Set(key, strconv.FormatBool(*value))
	}
	return q
}

func (q *queryEncoder) timestamp(key string, value time.Time) *queryEncoder {
	q.values.Set(key, strconv.FormatInt(EncodeMillis(value), 10))
	return q
}

func (q *queryEncoder) optionalTimestamp(key string, value *time.Time) *queryEncoder {
	if value != nil {
		q.timestamp(key, *value)
	}
	return q
}

// encode returns the query values, or nil when no key was written so
// that the request URL carries no trailing "?".
func (q *queryEncoder) encode() url.Values {
	if len(q.values) == 0 {
		return nil
	}
	return q.values
}
