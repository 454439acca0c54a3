// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package synapse

import (
	"bytes"
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// EnvelopeVariant identifies which of the three response shapes a body
// matched.
type EnvelopeVariant int

const (
	// EnvelopeSuccess: the body decoded into the target type.
	EnvelopeSuccess EnvelopeVariant = iota
	// EnvelopeError: the body was a Matrix error object.
	EnvelopeError
	// EnvelopeUnrecognized: the body matched neither.
	EnvelopeUnrecognized
)

func (v EnvelopeVariant) String() string {
	switch v {
	case EnvelopeSuccess:
		return "success"
	case EnvelopeError:
		return "error"
	case EnvelopeUnrecognized:
		return "unrecognized"
	default:
		return fmt.Sprintf("EnvelopeVariant(%d)", int(v))
	}
}

// Envelope is a decoded admin API response body: exactly one of Value,
// Error, or Raw is meaningful, selected by Variant.
type Envelope[T any] struct {
	Variant EnvelopeVariant

	// Value is the decoded payload for EnvelopeSuccess.
	Value T

	// Error is the server's error object for EnvelopeError.
	Error *MatrixError

	// Raw is the body as received for EnvelopeUnrecognized.
	Raw json.RawMessage
}

// DecodeEnvelope matches body against the three response shapes in a
// fixed order and returns the first match:
//
//  1. A JSON object whose "errcode" and "error" members are both present
//     and both strings. Other members are ignored.
//  2. The target type T. For struct targets the body must be a JSON
//     object carrying every required field: a field is required unless it
//     is a pointer, an interface, a json.RawMessage, or tagged omitempty.
//     Required fields of nested structs, slice elements and map values
//     are checked the same way.
//  3. Anything else. Raw holds the body when it is valid JSON and the
//     body as a JSON string when it is not, so Raw always marshals.
//
// The error shape is tried first so that an error response is never
// taken for a payload whose fields are all optional.
func DecodeEnvelope[T any](body []byte) Envelope[T] {
	return decodeEnvelope[T](body, true)
}

// decodeEnvelope is DecodeEnvelope with step 2 switchable. Responses
// with a non-2xx status never decode as success.
func decodeEnvelope[T any](body []byte, allowSuccess bool) Envelope[T] {
	if matrixErr, ok := matchErrorShape(body); ok {
		return Envelope[T]{Variant: EnvelopeError, Error: matrixErr}
	}
	if allowSuccess {
		var value T
		if err := json.Unmarshal(body, &value); err == nil {
			if checkRequired(reflect.TypeFor[T](), body) == nil {
				return Envelope[T]{Variant: EnvelopeSuccess, Value: value}
			}
		}
	}
	return Envelope[T]{Variant: EnvelopeUnrecognized, Raw: rawJSON(body)}
}

// rawJSON returns body as a JSON value: a copy when it is valid JSON,
// otherwise the body encoded as a JSON string (an HTML error page from
// a proxy, an empty body).
func rawJSON(body []byte) json.RawMessage {
	if json.Valid(body) {
		return append(json.RawMessage(nil), body...)
	}
	encoded, _ := json.Marshal(string(body))
	return encoded
}

// Result converts the envelope to the (value, error) form. The error is
// an *Error of KindAPI or KindUnrecognizedResponse without call details;
// Client methods fill those in.
func (e Envelope[T]) Result() (T, error) {
	value, err := e.result()
	if err != nil {
		return value, err
	}
	return value, nil
}

func (e Envelope[T]) result() (T, *Error) {
	var zero T
	switch e.Variant {
	case EnvelopeSuccess:
		return e.Value, nil
	case EnvelopeError:
		return zero, &Error{Kind: KindAPI, Matrix: e.Error}
	default:
		return zero, &Error{Kind: KindUnrecognizedResponse, Raw: e.Raw}
	}
}

// matchErrorShape accepts only an object with string errcode and error
// members. A partial match, or a member of another type (including
// null), is not an error response.
func matchErrorShape(body []byte) (*MatrixError, bool) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(body, &members); err != nil {
		return nil, false
	}
	code, ok := jsonString(members["errcode"])
	if !ok {
		return nil, false
	}
	message, ok := jsonString(members["error"])
	if !ok {
		return nil, false
	}
	return &MatrixError{Code: code, Message: message}, true
}

func jsonString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false
	}
	return value, true
}

var (
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	jsonUnmarshalerType = reflect.TypeFor[json.Unmarshaler]()
	rawMessageType      = reflect.TypeFor[json.RawMessage]()
)

// checkRequired walks raw alongside typ and reports the first required
// struct field that is missing or null. raw has already been decoded
// into typ successfully, so only presence is checked here.
func checkRequired(typ reflect.Type, raw json.RawMessage) error {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ == rawMessageType || selfDecoding(typ) {
		return nil
	}

	switch typ.Kind() {
	case reflect.Struct:
		if !isJSONObject(raw) {
			return fmt.Errorf("expected a JSON object for %s", typ)
		}
		var members map[string]json.RawMessage
		if err := json.Unmarshal(raw, &members); err != nil {
			return err
		}
		for _, field := range structFields(typ) {
			value, present := lookupMember(members, field.name)
			if !present || isJSONNull(value) {
				if field.required {
					return fmt.Errorf("%s: missing required field %q", typ, field.name)
				}
				continue
			}
			if err := checkRequired(field.typ, value); err != nil {
				return err
			}
		}
		return nil

	case reflect.Slice, reflect.Array:
		if typ.Elem().Kind() == reflect.Uint8 || isJSONNull(raw) {
			return nil
		}
		var elements []json.RawMessage
		if err := json.Unmarshal(raw, &elements); err != nil {
			return err
		}
		for _, element := range elements {
			if err := checkRequired(typ.Elem(), element); err != nil {
				return err
			}
		}
		return nil

	case reflect.Map:
		if isJSONNull(raw) {
			return nil
		}
		var members map[string]json.RawMessage
		if err := json.Unmarshal(raw, &members); err != nil {
			return err
		}
		for _, value := range members {
			if err := checkRequired(typ.Elem(), value); err != nil {
				return err
			}
		}
		return nil

	default:
		return nil
	}
}

// selfDecoding reports whether typ does its own decoding, in which case
// its own UnmarshalJSON or UnmarshalText has already validated it.
func selfDecoding(typ reflect.Type) bool {
	pointer := reflect.PointerTo(typ)
	return pointer.Implements(jsonUnmarshalerType) || pointer.Implements(textUnmarshalerType)
}

// lookupMember finds a member by exact name, then case-insensitively,
// matching how encoding/json assigns members to fields.
func lookupMember(members map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	if value, ok := members[name]; ok {
		return value, true
	}
	for key, value := range members {
		if strings.EqualFold(key, name) {
			return value, true
		}
	}
	return nil, false
}

func isJSONObject(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func isJSONNull(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

type fieldInfo struct {
	name     string
	typ      reflect.Type
	required bool
}

// fieldCache maps reflect.Type to []fieldInfo. Struct layouts never
// change at runtime, so entries are never invalidated.
var fieldCache sync.Map

func structFields(typ reflect.Type) []fieldInfo {
	if cached, ok := fieldCache.Load(typ); ok {
		return cached.([]fieldInfo)
	}
	fields := collectFields(typ, nil)
	actual, _ := fieldCache.LoadOrStore(typ, fields)
	return actual.([]fieldInfo)
}

// collectFields lists the JSON members of typ, flattening untagged
// embedded structs the way encoding/json does.
func collectFields(typ reflect.Type, fields []fieldInfo) []fieldInfo {
	for i := range typ.NumField() {
		field := typ.Field(i)
		tag := field.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, options, _ := strings.Cut(tag, ",")

		if field.Anonymous && name == "" {
			embedded := field.Type
			if embedded.Kind() == reflect.Pointer {
				embedded = embedded.Elem()
			}
			if embedded.Kind() == reflect.Struct && !selfDecoding(embedded) {
				fields = collectFields(embedded, fields)
				continue
			}
		}
		if !field.IsExported() {
			continue
		}
		if name == "" {
			name = field.Name
		}
		fields = append(fields, fieldInfo{
			name:     name,
			typ:      field.Type,
			required: isRequired(field.Type, options),
		})
	}
	return fields
}

func isRequired(typ reflect.Type, options string) bool {
	for option := range strings.SplitSeq(options, ",") {
		if option == "omitempty" || option == "omitzero" {
			return false
		}
	}
	switch {
	case typ.Kind() == reflect.Pointer, typ.Kind() == reflect.Interface:
		return false
	case typ == rawMessageType:
		return false
	}
	return true
}
