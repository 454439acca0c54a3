// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strconv"

	"github.com/fxamacker/cbor/v2"
)

var encMode cbor.EncMode

var decMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	// Identifier types (ref.UserID, ref.RoomID, ref.ContentURI) carry
	// unexported fields and must encode through MarshalText.
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// JSON objects only have string keys; decoding into any yields
		// map[string]any so values convert back to JSON.
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// Encoder is a CBOR stream encoder.
type Encoder = cbor.Encoder

// NewEncoder returns a deterministic CBOR encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return encMode.NewEncoder(w)
}

// FromJSON converts one JSON document to CBOR. Numbers that are
// integral and fit in 64 bits become CBOR integers; other numbers
// become float64.
func FromJSON(data []byte) ([]byte, error) {
	value, err := decodeJSON(data)
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(value)
}

// decodeJSON parses data into plain Go values with json.Number
// replaced by int64, uint64, or float64.
func decodeJSON(data []byte) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if decoder.More() {
		return nil, fmt.Errorf("parsing JSON: trailing data after document")
	}
	return normalizeNumbers(value)
}

func normalizeNumbers(value any) (any, error) {
	switch typed := value.(type) {
	case json.Number:
		return convertNumber(typed)
	case map[string]any:
		for key, element := range typed {
			converted, err := normalizeNumbers(element)
			if err != nil {
				return nil, err
			}
			typed[key] = converted
		}
		return typed, nil
	case []any:
		for index, element := range typed {
			converted, err := normalizeNumbers(element)
			if err != nil {
				return nil, err
			}
			typed[index] = converted
		}
		return typed, nil
	default:
		return value, nil
	}
}

func convertNumber(number json.Number) (any, error) {
	if integer, err := number.Int64(); err == nil {
		return integer, nil
	}
	if unsigned, err := strconv.ParseUint(number.String(), 10, 64); err == nil {
		return unsigned, nil
	}
	float, err := number.Float64()
	if err != nil {
		return nil, fmt.Errorf("number %s: %w", number, err)
	}
	return float, nil
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) for data.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}
