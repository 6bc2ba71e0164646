package qtab

import (
	"math"
	"strings"
)

// Criteria is a selector on a single key: an operator with a bound
// reference value. The key carries a 3-byte suffix, one separator
// character (conventionally . or _) plus the two-letter operator code.
type Criteria struct {
	Key string
	Op  Op

	val Value
}

// NewCriteria parses a header key of the form <key><sep><OP>.
func NewCriteria(key string) (*Criteria, error) {
	if key == "" {
		return nil, &CriteriaFormatError{}
	}
	if len(key) < 4 {
		return nil, &CriteriaFormatError{Key: key}
	}
	suffix := key[len(key)-2:]
	for op, name := range opNames {
		if name == suffix {
			return &Criteria{Key: key, Op: Op(op)}, nil
		}
	}
	return nil, &CriteriaFormatError{Key: key}
}

// NewCriteriaBound parses a header key and binds a reference value.
func NewCriteriaBound(key, val string) (*Criteria, error) {
	c, err := NewCriteria(key)
	if err != nil {
		return nil, err
	}
	if err := c.BindString(val); err != nil {
		return nil, err
	}
	return c, nil
}

// BindString binds a reference value given as text: a pattern for MH,
// a Number for the numeric operators.
func (c *Criteria) BindString(val string) error {
	if c.Op == MH {
		if val == "" {
			return &ValueTypeError{Key: c.Key, Want: "non-NIL"}
		}
		c.val = StringValue(val)
		return nil
	}
	n, err := NewNumberFromString(val)
	if err != nil {
		return &ValueTypeError{Key: c.Key, Want: "NUMBER", Cause: err}
	}
	c.val = NumberValue(n)
	return nil
}

// BindNumber binds a numeric reference value. MH refuses it.
func (c *Criteria) BindNumber(val Number) error {
	if c.Op == MH {
		return &ValueTypeError{Key: c.Key, Want: "STRING"}
	}
	c.val = NumberValue(val)
	return nil
}

// matchesKey reports whether the criterion applies to a query key:
// the two share a prefix, after which the criterion key has exactly
// its 3-byte operator suffix left and the query key is exhausted.
func (c *Criteria) matchesKey(key string) bool {
	pk := c.Key
	i := 0
	for i < len(pk) && i < len(key) && pk[i] == key[i] {
		i++
	}
	return len(pk)-i == 3 && i == len(key)
}

// Distance returns how far q is from satisfying the criterion: 0 for
// a direct hit, +Inf for a miss, and for the ordered operators the
// gap between the query value and the bound reference, in raw
// fixed-point units widened to float64.
//
// A key that does not apply returns ErrKeyMismatch. A value whose
// type is incompatible with the operator returns a *ValueTypeError.
func (c *Criteria) Distance(q KeyValue) (float64, error) {
	if !c.matchesKey(q.Key) {
		return 0, ErrKeyMismatch
	}

	// Coerce the query value through the bind rules so type errors
	// surface exactly as they would for a reference value.
	t := Criteria{Key: c.Key, Op: c.Op}
	var err error
	switch q.Type {
	case NUMBER:
		err = t.BindNumber(q.Val.Number())
	case STRING:
		err = t.BindString(q.Val.Str())
	default:
		err = t.BindString("")
	}
	if err != nil {
		return 0, err
	}

	if c.Op == MH {
		for pat := c.val.Str(); ; {
			alt, rest, more := strings.Cut(pat, "|")
			if globMatch(alt, t.val.Str()) {
				return 0, nil
			}
			if !more {
				return math.Inf(1), nil
			}
			pat = rest
		}
	}

	qn := float64(t.val.Number().Units())
	rn := float64(c.val.Number().Units())
	switch c.Op {
	case EQ:
		if qn == rn {
			return 0, nil
		}
	case LT:
		if qn < rn {
			return rn - qn, nil
		}
	case LE:
		if qn <= rn {
			return rn - qn, nil
		}
	case GT:
		if qn > rn {
			return qn - rn, nil
		}
	case GE:
		if qn >= rn {
			return qn - rn, nil
		}
	}
	return math.Inf(1), nil
}
