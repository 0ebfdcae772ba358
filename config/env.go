// Package config loads configuration structs from YAML files and
// environment variables.
//
// Environment variable names follow the pattern:
//
//	{Prefix}_{STAGE}_{FIELD}
//
// For named nested structs, the field name becomes a path segment:
//
//	{Prefix}_{STAGE}_{STRUCT}_{FIELD}
//
// Anonymous (embedded) struct fields are flattened and do not add a segment.
// Go field names are converted from CamelCase to UPPER_SNAKE_CASE unless an
// `env:"NAME"` tag overrides the segment. `env:"-"` skips the field.
//
// Supported field types: string, bool, int*, uint*, float*, time.Duration.
// Other field types (functions, interfaces, channels, pointers, slices) are
// skipped.
//
// Example with breaker.Config and stage "payments":
//
//	RXPIPE_PAYMENTS_FAILURE_THRESHOLD=3
//	RXPIPE_PAYMENTS_TIMEOUT=30s
//
// Example with observable.QueueConfig and stage "ingest":
//
//	RXPIPE_INGEST_CAPACITY=256
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// DefaultPrefix is the environment variable prefix used by Load and Keys.
const DefaultPrefix = "RXPIPE"

var durationType = reflect.TypeOf(time.Duration(0))

// Loader reads configuration into structs.
type Loader struct {
	// Prefix for environment variable names.
	// Default: "RXPIPE".
	Prefix string

	// lookup overrides os.LookupEnv for testing.
	lookup func(string) (string, bool)
}

func (l Loader) prefix() string {
	if l.Prefix == "" {
		return DefaultPrefix
	}
	return l.Prefix
}

func (l Loader) lookupEnv(key string) (string, bool) {
	if l.lookup != nil {
		return l.lookup(key)
	}
	return os.LookupEnv(key)
}

// Load populates the struct pointed to by dst with values from environment
// variables. The stage parameter identifies the component and becomes the
// second segment of the variable name.
//
// Only fields with set environment variables are modified, so Load overlays
// environment overrides on top of defaults or file values.
func (l Loader) Load(stage string, dst any) error {
	v, err := structPtr(dst)
	if err != nil {
		return err
	}
	return l.loadStruct(l.stagePrefix(stage), v)
}

// Keys returns the environment variable names that [Loader.Load] would check
// for the given config struct. dst may be a struct value or a pointer to one.
func (l Loader) Keys(stage string, dst any) []string {
	v := reflect.ValueOf(dst)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	return collectKeys(l.stagePrefix(stage), v.Type())
}

// Load populates dst using the default Loader.
func Load(stage string, dst any) error {
	return Loader{}.Load(stage, dst)
}

// Keys returns env var names using the default Loader.
func Keys(stage string, dst any) []string {
	return Loader{}.Keys(stage, dst)
}

func (l Loader) stagePrefix(stage string) string {
	if s := normalizeStage(stage); s != "" {
		return l.prefix() + "_" + s
	}
	return l.prefix()
}

func structPtr(dst any) (reflect.Value, error) {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("config: dst must be a pointer to a struct, got %T", dst)
	}
	return v.Elem(), nil
}

// fieldKey returns the variable name for field and whether it is loaded at all.
func fieldKey(prefix string, field reflect.StructField) (string, bool) {
	tag := field.Tag.Get("env")
	switch {
	case tag == "-":
		return "", false
	case field.Anonymous:
		return prefix, true
	case tag != "":
		return prefix + "_" + tag, true
	default:
		return prefix + "_" + toUpperSnake(field.Name), true
	}
}

func (l Loader) loadStruct(prefix string, v reflect.Value) error {
	t := v.Type()
	for i := range t.NumField() {
		field := t.Field(i)
		fv := v.Field(i)

		// Exported fields of unexported embedded structs are promoted.
		if !field.IsExported() {
			if field.Anonymous && field.Type.Kind() == reflect.Struct {
				if err := l.loadStruct(prefix, fv); err != nil {
					return err
				}
			}
			continue
		}

		key, ok := fieldKey(prefix, field)
		if !ok {
			continue
		}

		if field.Type == durationType {
			raw, ok := l.lookupEnv(key)
			if !ok {
				continue
			}
			d, err := time.ParseDuration(raw)
			if err != nil {
				return fmt.Errorf("config: %s: %w", key, err)
			}
			fv.SetInt(int64(d))
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			if err := l.loadStruct(key, fv); err != nil {
				return err
			}
			continue
		}

		if !isSupportedKind(field.Type.Kind()) {
			continue
		}

		raw, ok := l.lookupEnv(key)
		if !ok {
			continue
		}
		if err := setField(fv, raw, key); err != nil {
			return err
		}
	}
	return nil
}

func collectKeys(prefix string, t reflect.Type) []string {
	var keys []string
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			if field.Anonymous && field.Type.Kind() == reflect.Struct {
				keys = append(keys, collectKeys(prefix, field.Type)...)
			}
			continue
		}

		key, ok := fieldKey(prefix, field)
		if !ok {
			continue
		}
		switch {
		case field.Type == durationType:
			keys = append(keys, key)
		case field.Type.Kind() == reflect.Struct:
			keys = append(keys, collectKeys(key, field.Type)...)
		case isSupportedKind(field.Type.Kind()):
			keys = append(keys, key)
		}
	}
	return keys
}

func isSupportedKind(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func setField(v reflect.Value, raw, key string) error {
	var err error
	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var n int64
		if n, err = strconv.ParseInt(raw, 10, v.Type().Bits()); err == nil {
			v.SetInt(n)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var n uint64
		if n, err = strconv.ParseUint(raw, 10, v.Type().Bits()); err == nil {
			v.SetUint(n)
		}
	case reflect.Float32, reflect.Float64:
		var f float64
		if f, err = strconv.ParseFloat(raw, v.Type().Bits()); err == nil {
			v.SetFloat(f)
		}
	case reflect.Bool:
		var b bool
		if b, err = strconv.ParseBool(raw); err == nil {
			v.SetBool(b)
		}
	}
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	return nil
}

// normalizeStage converts a stage name to a valid env var segment.
// Letters are uppercased, hyphens, dots, spaces and underscores become
// underscores, and other characters are dropped.
func normalizeStage(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(unicode.ToUpper(r))
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '.' || r == ' ' || r == '_':
			b.WriteRune('_')
		}
	}
	return b.String()
}

// toUpperSnake converts a Go CamelCase field name to UPPER_SNAKE_CASE.
//
//	FailureThreshold → FAILURE_THRESHOLD
//	MaxRetries       → MAX_RETRIES
//	HTTPAddr         → HTTP_ADDR
func toUpperSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				b.WriteRune('_')
			} else if unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
				b.WriteRune('_')
			}
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
