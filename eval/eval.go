// Package eval provides a qtab.Evaluator backed by the yaegi Go
// interpreter. Expression cells are Go expressions; bindings published
// by the table become interpreter variables, numbers as float64 and
// strings as string.
package eval

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/qtabdev/qtab/qtab"
)

// Interp evaluates expression cells with an embedded Go interpreter.
// One Interp belongs to one Table; bindings accumulate in its global
// scope the way the table publishes them.
type Interp struct {
	i *interp.Interpreter
}

// New builds an interpreter with the standard library loaded.
func New() (*Interp, error) {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, err
	}
	if _, err := i.Eval(`import "math"`); err != nil {
		return nil, err
	}
	return &Interp{i: i}, nil
}

// Bind publishes kv as an interpreter variable named after its key.
// The key must be a Go identifier.
func (e *Interp) Bind(kv qtab.KeyValue) error {
	if !validIdent(kv.Key) {
		return fmt.Errorf("eval: `%s` is not a bindable name", kv.Key)
	}
	var lit string
	switch kv.Type {
	case qtab.NUMBER:
		lit = numberLiteral(kv.Val.Number())
	case qtab.STRING:
		lit = strconv.Quote(kv.Val.Str())
	default:
		return fmt.Errorf("eval: `%s` has no value to bind", kv.Key)
	}
	_, err := e.i.Eval(kv.Key + " := " + lit)
	return err
}

// Eval interprets an expression cell. One outer {...} or [...] pair
// is stripped; the remainder must be a Go expression producing a
// number or a string.
func (e *Interp) Eval(expr string) (qtab.Value, qtab.Type, error) {
	src := strings.TrimSpace(expr)
	if len(src) >= 2 {
		switch {
		case src[0] == '{' && src[len(src)-1] == '}':
			src = src[1 : len(src)-1]
		case src[0] == '[' && src[len(src)-1] == ']':
			src = src[1 : len(src)-1]
		}
	}

	v, err := e.i.Eval(src)
	if err != nil {
		return qtab.Value{}, qtab.NIL, err
	}
	return fromReflect(expr, v)
}

func fromReflect(expr string, v reflect.Value) (qtab.Value, qtab.Type, error) {
	if !v.IsValid() {
		return qtab.Value{}, qtab.NIL, fmt.Errorf("eval: `%s` produced no value", expr)
	}
	switch v.Kind() {
	case reflect.Interface:
		return fromReflect(expr, v.Elem())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return numberResult(float64(v.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return numberResult(float64(v.Uint()))
	case reflect.Float32, reflect.Float64:
		return numberResult(v.Float())
	case reflect.String:
		return qtab.StringValue(v.String()), qtab.STRING, nil
	}
	return qtab.Value{}, qtab.NIL, fmt.Errorf("eval: `%s` produced %s, want a number or a string", expr, v.Kind())
}

func numberResult(f float64) (qtab.Value, qtab.Type, error) {
	n, err := qtab.NewNumberFromFloat(f)
	if err != nil {
		return qtab.Value{}, qtab.NIL, err
	}
	return qtab.NumberValue(n), qtab.NUMBER, nil
}

// numberLiteral renders n as a float64-typed Go literal so bound
// numbers mix freely with fractional constants in expressions.
func numberLiteral(n qtab.Number) string {
	switch n {
	case qtab.Inf():
		return "math.Inf(1)"
	case qtab.NegInf():
		return "math.Inf(-1)"
	}
	s := n.String()
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}

func validIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
