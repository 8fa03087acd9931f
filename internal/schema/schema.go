// Package schema validates raw request input against declarative params
// structs and normalizes it into typed values.
//
// A params struct declares its fields with `json` tags (the input key) and
// `validate` tags (constraints understood by go-playground/validator). A field
// is optional when it is a pointer or its json tag carries omitempty; any
// other field is required. Decode reports every violation, ordered by field
// declaration, instead of stopping at the first one.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tasklane/apiserver/internal/result"
)

// Refiner is implemented by params structs with rules that tags cannot
// express. Refine runs after tag validation; errors on fields that already
// failed their type check are dropped.
type Refiner interface {
	Refine() []result.FieldError
}

// Validator decodes and validates Input. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New constructs a Validator that names fields by their json tag.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name, _ := jsonName(sf)
		return name
	})
	return &Validator{validate: v}
}

type issue struct {
	index int
	err   result.FieldError
}

// Decode fills dst, which must be a pointer to a struct, from in and returns
// the validation failures in field order. A nil slice means dst is valid.
// The error return is reserved for misuse, such as a non-struct dst.
func (v *Validator) Decode(in Input, dst any) ([]result.FieldError, error) {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: decode target must be a non-nil pointer to struct, got %T", dst)
	}
	elem := rv.Elem()
	typ := elem.Type()

	var issues []issue
	failed := make(map[string]bool)
	indexByName := make(map[string]int)
	indexByField := make(map[string]int)

	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, omitempty := jsonName(sf)
		if name == "" {
			continue
		}
		indexByName[name] = i
		indexByField[sf.Name] = i

		raw, present := in[name]
		if !present || string(raw) == "null" {
			if !omitempty && sf.Type.Kind() != reflect.Pointer {
				issues = append(issues, issue{i, fieldError("Required", name)})
				failed[name] = true
			}
			continue
		}
		if err := json.Unmarshal(raw, elem.Field(i).Addr().Interface()); err != nil {
			issues = append(issues, issue{i, fieldError(decodeMessage(err, sf.Type, raw), name)})
			failed[name] = true
		}
	}

	if err := v.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		for _, fe := range verrs {
			if failed[fe.Field()] {
				continue
			}
			idx, ok := indexByField[fe.StructField()]
			if !ok {
				idx = typ.NumField()
			}
			issues = append(issues, issue{idx, fieldError(constraintMessage(fe), fe.Field())})
			failed[fe.Field()] = true
		}
	}

	if refiner, ok := dst.(Refiner); ok {
		for _, fe := range refiner.Refine() {
			if len(fe.Path) > 0 && failed[fe.Path[0]] {
				continue
			}
			idx := typ.NumField()
			if len(fe.Path) > 0 {
				if i, ok := indexByName[fe.Path[0]]; ok {
					idx = i
				}
			}
			issues = append(issues, issue{idx, fe})
		}
	}

	if len(issues) == 0 {
		return nil, nil
	}
	sort.SliceStable(issues, func(a, b int) bool { return issues[a].index < issues[b].index })
	errs := make([]result.FieldError, len(issues))
	for i, is := range issues {
		errs[i] = is.err
	}
	return errs, nil
}

func fieldError(message, name string) result.FieldError {
	return result.FieldError{Message: message, Path: []string{name}}
}

// jsonName returns the input key for a struct field and whether it is marked
// omitempty. Fields tagged "-" or without a json tag are skipped.
func jsonName(sf reflect.StructField) (string, bool) {
	tag, ok := sf.Tag.Lookup("json")
	if !ok {
		return "", false
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "-" {
		return "", false
	}
	if name == "" {
		name = sf.Name
	}
	return name, strings.Contains(","+opts+",", ",omitempty,")
}

func decodeMessage(err error, typ reflect.Type, raw json.RawMessage) string {
	var coercion *CoercionError
	if errors.As(err, &coercion) {
		return coercion.Message
	}
	return fmt.Sprintf("Expected %s, received %s", expectedKind(typ), jsonKind(raw))
}

func expectedKind(typ reflect.Type) string {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	switch typ.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "object"
	}
}
