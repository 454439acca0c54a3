// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// FlagBinder is implemented by types that register their own flags.
// [BindFlags] calls AddFlags on struct fields whose pointer implements
// it instead of reflecting their tags.
type FlagBinder interface {
	AddFlags(flagSet *pflag.FlagSet)
}

// FlagsFromParams creates a [pflag.FlagSet] bound to the tagged fields
// of params, which must be a pointer to a struct. Panics on invalid
// params: that is a programming error, not runtime data.
//
//	var params showParams
//	command := &cli.Command{
//	    Flags: func() *pflag.FlagSet {
//	        return cli.FlagsFromParams("show", &params)
//	    },
//	    Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
//	        // params fields are populated after flag parsing
//	    },
//	}
func FlagsFromParams(name string, params any) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flagSet.SortFlags = false
	if err := BindFlags(params, flagSet); err != nil {
		panic(fmt.Sprintf("cli.FlagsFromParams(%q): %v", name, err))
	}
	return flagSet
}

// BindFlags registers a pflag entry for each tagged field of params.
//
// # Struct tags
//
//   - flag:"name" or flag:"name,n": the long flag name and an optional
//     one-letter shorthand. Fields without a flag tag are skipped.
//   - desc:"help text": the flag's usage line.
//   - default:"value": the default, parsed as the field's type.
//
// # Field types
//
// string, bool, int, int64, [time.Duration], and []string bind as
// ordinary flags. *string, *bool, *int, and *int64 bind as optional
// flags: the field stays nil unless the flag is given, so "not set" and
// "set to the zero value" stay distinct all the way to the request. An
// optional bool given without a value is true.
//
// # Composition
//
// Struct fields whose pointer implements [FlagBinder] are bound through
// AddFlags. Other embedded structs are bound recursively.
func BindFlags(params any, flagSet *pflag.FlagSet) error {
	value := reflect.ValueOf(params)
	if value.Kind() != reflect.Pointer || value.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("params must be a pointer to a struct, got %T", params)
	}
	return bindStructFields(value.Elem(), flagSet)
}

func bindStructFields(structValue reflect.Value, flagSet *pflag.FlagSet) error {
	structType := structValue.Type()

	for i := range structType.NumField() {
		field := structType.Field(i)
		fieldValue := structValue.Field(i)

		if field.Type.Kind() == reflect.Struct && field.IsExported() && fieldValue.CanAddr() {
			if binder, ok := fieldValue.Addr().Interface().(FlagBinder); ok {
				binder.AddFlags(flagSet)
				continue
			}
		}

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			if err := bindStructFields(fieldValue, flagSet); err != nil {
				return fmt.Errorf("embedded %s: %w", field.Name, err)
			}
			continue
		}

		flagTag := field.Tag.Get("flag")
		if flagTag == "" {
			continue
		}
		name, shorthand, _ := strings.Cut(flagTag, ",")

		if !fieldValue.CanAddr() {
			return fmt.Errorf("field %s: not addressable", field.Name)
		}
		if err := bindField(fieldValue, flagSet, name, shorthand, field.Tag.Get("desc"), field.Tag.Get("default")); err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
	}

	return nil
}

func bindField(fieldValue reflect.Value, flagSet *pflag.FlagSet, name, shorthand, description, defaultString string) error {
	switch target := fieldValue.Addr().Interface().(type) {
	case *string:
		flagSet.StringVarP(target, name, shorthand, defaultString, description)

	case *bool:
		defaultValue, err := parseDefault(defaultString, strconv.ParseBool)
		if err != nil {
			return fmt.Errorf("default for --%s: %w", name, err)
		}
		flagSet.BoolVarP(target, name, shorthand, defaultValue, description)

	case *int:
		defaultValue, err := parseDefault(defaultString, strconv.Atoi)
		if err != nil {
			return fmt.Errorf("default for --%s: %w", name, err)
		}
		flagSet.IntVarP(target, name, shorthand, defaultValue, description)

	case *int64:
		defaultValue, err := parseDefault(defaultString, parseInt64)
		if err != nil {
			return fmt.Errorf("default for --%s: %w", name, err)
		}
		flagSet.Int64VarP(target, name, shorthand, defaultValue, description)

	case *time.Duration:
		defaultValue, err := parseDefault(defaultString, time.ParseDuration)
		if err != nil {
			return fmt.Errorf("default for --%s: %w", name, err)
		}
		flagSet.DurationVarP(target, name, shorthand, defaultValue, description)

	case *[]string:
		var defaultValue []string
		if defaultString != "" {
			defaultValue = strings.Split(defaultString, ",")
		}
		flagSet.StringSliceVarP(target, name, shorthand, defaultValue, description)

	case **string:
		flagSet.VarP(&optional[string]{target: target, kind: "string", parse: parseString}, name, shorthand, description)

	case **int:
		flagSet.VarP(&optional[int]{target: target, kind: "int", parse: strconv.Atoi}, name, shorthand, description)

	case **int64:
		flagSet.VarP(&optional[int64]{target: target, kind: "int", parse: parseInt64}, name, shorthand, description)

	case **bool:
		flag := flagSet.VarPF(&optional[bool]{target: target, kind: "bool", parse: strconv.ParseBool}, name, shorthand, description)
		flag.NoOptDefVal = "true"

	default:
		return fmt.Errorf("unsupported type %s for flag --%s", fieldValue.Type(), name)
	}

	if defaultString != "" && fieldValue.Kind() == reflect.Pointer {
		return fmt.Errorf("optional flag --%s cannot have a default", name)
	}
	return nil
}

// optional is a pflag.Value that allocates its target on first Set.
type optional[T any] struct {
	target **T
	kind   string
	parse  func(string) (T, error)
}

func (o *optional[T]) Set(raw string) error {
	value, err := o.parse(raw)
	if err != nil {
		return err
	}
	*o.target = &value
	return nil
}

func (o *optional[T]) String() string {
	if o.target == nil || *o.target == nil {
		return ""
	}
	return fmt.Sprint(**o.target)
}

func (o *optional[T]) Type() string { return o.kind }

func parseDefault[T any](s string, parse func(string) (T, error)) (T, error) {
	if s == "" {
		var zero T
		return zero, nil
	}
	return parse(s)
}

func parseInt64(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) }

func parseString(s string) (string, error) { return s, nil }
