// Package validate checks seed and request payloads against `validate`
// struct tags.
//
// Supported rules (comma-separated):
//
//	required            field must not be zero/empty (false and 0 inside an any are present)
//	nullable            if empty, skip the remaining rules for this field
//	url                 http/https URL
//	date                parseable date (RFC 3339 or 2006-01-02 and friends)
//	alpha_dash          letters, digits, hyphens, underscores
//	numeric             any finite number
//	integer             whole number
//	min=N / max=N       string: char length | number: value
//	gt=N / gte=N        number bounds
//	lt=N / lte=N        number bounds
//	in=a,b,c            value must be one of the listed items
//
// Example:
//
//	type DiscountRow struct {
//	    Type  string `json:"type"  validate:"required,in=percent,amount"`
//	    Value any    `json:"value" validate:"required,numeric,gte=0"`
//	}
package validate

import (
	"fmt"
	"math"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Errors maps a json field name to its first failing message.
type Errors map[string]string

// Error joins messages in a stable order.
func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e[k])
	}
	return strings.Join(msgs, " ")
}

// Struct validates the exported, tagged fields of v.
// The result is empty when v is valid.
func Struct(v any) Errors {
	errs := Errors{}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" || !field.IsExported() {
			continue
		}

		value := rv.Field(i)
		name := jsonFieldName(field)
		rules := splitRules(tag)

		if hasRule(rules, "nullable") && isEmpty(value) {
			continue
		}

		for _, rule := range rules {
			if rule == "nullable" {
				continue
			}
			if msg := applyRule(rule, name, value); msg != "" {
				errs[name] = msg
				break
			}
		}
	}

	return errs
}

// HasErrors reports whether errs is non-empty.
func HasErrors(errs Errors) bool { return len(errs) > 0 }

func applyRule(rule, field string, v reflect.Value) string {
	raw := rawString(v)
	key, param, _ := strings.Cut(rule, "=")

	switch key {
	case "required":
		if isEmpty(v) {
			return fmt.Sprintf("The %s field is required.", field)
		}

	case "url":
		u, err := url.ParseRequestURI(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Sprintf("The %s must be a valid URL.", field)
		}
	case "date":
		if _, err := ParseDate(raw); err != nil {
			return fmt.Sprintf("The %s is not a valid date.", field)
		}

	case "alpha_dash":
		for _, c := range raw {
			if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '-' && c != '_' {
				return fmt.Sprintf("The %s field may only contain letters, numbers, dashes, and underscores.", field)
			}
		}
	case "numeric":
		if _, ok := number(v); !ok {
			return fmt.Sprintf("The %s field must be a number.", field)
		}
	case "integer":
		f, ok := number(v)
		if !ok || f != math.Trunc(f) {
			return fmt.Sprintf("The %s field must be an integer.", field)
		}

	case "min", "max":
		n := mustParseFloat(param)
		size, unit := measure(v, raw)
		if key == "min" && size < n {
			return fmt.Sprintf("The %s must be at least %s%s.", field, param, unit)
		}
		if key == "max" && size > n {
			return fmt.Sprintf("The %s must not be greater than %s%s.", field, param, unit)
		}
	case "gt", "gte", "lt", "lte":
		n := mustParseFloat(param)
		f, ok := number(v)
		if !ok {
			return fmt.Sprintf("The %s field must be a number.", field)
		}
		if msg := compare(key, f, n); msg != "" {
			return fmt.Sprintf("The %s must be %s %s.", field, msg, param)
		}

	case "in":
		for _, a := range strings.Split(param, ",") {
			if raw == strings.TrimSpace(a) {
				return ""
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", field)
	}

	return ""
}

func compare(op string, f, n float64) string {
	switch {
	case op == "gt" && f <= n:
		return "greater than"
	case op == "gte" && f < n:
		return "greater than or equal to"
	case op == "lt" && f >= n:
		return "less than"
	case op == "lte" && f > n:
		return "less than or equal to"
	}
	return ""
}

var dateLayouts = []string{
	time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02",
}

// ParseDate accepts the layouts the `date` rule accepts. Dates without a
// zone are UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as date", s)
}

func deref(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return v
		}
		v = v.Elem()
	}
	return v
}

func rawString(v reflect.Value) string {
	v = deref(v)
	if !v.IsValid() || ((v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) && v.IsNil()) {
		return ""
	}
	return fmt.Sprintf("%v", v.Interface())
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return true
		}
		if s, ok := deref(v).Interface().(string); ok {
			return strings.TrimSpace(s) == ""
		}
		return false
	case reflect.Bool:
		return false
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	}
	return false
}

// number reads v as a finite float. Strings are parsed.
func number(v reflect.Value) (float64, bool) {
	v = deref(v)
	var f float64
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f = float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f = float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		f = v.Float()
	case reflect.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func measure(v reflect.Value, raw string) (float64, string) {
	switch deref(v).Kind() {
	case reflect.String:
		return float64(len([]rune(raw))), " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		return float64(deref(v).Len()), " items"
	}
	f, _ := number(v)
	return f, ""
}

func mustParseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func jsonFieldName(f reflect.StructField) string {
	name := f.Tag.Get("json")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	if idx := strings.Index(name, ","); idx != -1 {
		name = name[:idx]
	}
	return name
}

// splitRules splits a tag on commas, keeping the list parameter of in=
// together: "required,in=a,b,max=3" → ["required", "in=a,b", "max=3"].
func splitRules(tag string) []string {
	var rules []string
	parts := strings.Split(tag, ",")
	for i := 0; i < len(parts); i++ {
		part := strings.TrimSpace(parts[i])
		if strings.HasPrefix(part, "in=") {
			for i+1 < len(parts) && !looksLikeRule(parts[i+1]) {
				i++
				part += "," + strings.TrimSpace(parts[i])
			}
		}
		if part != "" {
			rules = append(rules, part)
		}
	}
	return rules
}

var knownRules = []string{
	"required", "nullable", "url", "date", "alpha_dash", "numeric", "integer",
	"min=", "max=", "gt=", "gte=", "lt=", "lte=", "in=",
}

func looksLikeRule(s string) bool {
	s = strings.TrimSpace(s)
	for _, k := range knownRules {
		if s == k || (strings.HasSuffix(k, "=") && strings.HasPrefix(s, k)) {
			return true
		}
	}
	return false
}

func hasRule(rules []string, target string) bool {
	for _, r := range rules {
		if r == target {
			return true
		}
	}
	return false
}
