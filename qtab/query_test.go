package qtab

import (
	"errors"
	"testing"
)

func queryKVs(t *testing.T, tokens ...string) []KeyValue {
	t.Helper()
	kvs := make([]KeyValue, 0, len(tokens))
	for _, tok := range tokens {
		key, val, ok := cutToken(tok)
		switch {
		case !ok:
			kvs = append(kvs, NilKeyValue(key))
		default:
			if n, err := NewNumberFromString(val); err == nil {
				kvs = append(kvs, NumberKeyValue(key, n))
			} else {
				kvs = append(kvs, StringKeyValue(key, val))
			}
		}
	}
	return kvs
}

func cutToken(tok string) (key, val string, ok bool) {
	for i := 0; i < len(tok); i++ {
		if tok[i] == ':' {
			return tok[:i], tok[i+1:], true
		}
	}
	return tok, "", false
}

func TestQueryScenarios(t *testing.T) {
	tests := []struct {
		name    string
		query   []string
		options Options
		want    int
	}{
		{"exact row 1", []string{"A:1", "B:5"}, Exactly, 1},
		{"closer bound wins", []string{"A:1", "B:15"}, Exactly, 2},
		{"exact row 3", []string{"A:2", "B:5"}, Exactly, 3},
		{"no match", []string{"A:3", "B:5"}, Exactly, 0},
		{"subset", []string{"A:1"}, Subset, 1},
		{"superset", []string{"A:1", "B:5", "C:7"}, Superset, 1},
		{"subset and superset", []string{"A:1", "C:7"}, Subset | Superset, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tab := mustParse(t, scenarioTable)
			row, err := tab.Query(queryKVs(t, tt.query...), tt.options)
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			if row != tt.want {
				t.Errorf("Query = %d, want %d", row, tt.want)
			}
		})
	}
}

func TestQueryAdmissionErrors(t *testing.T) {
	tab := mustParse(t, scenarioTable)

	_, err := tab.Query(queryKVs(t, "A:1", "B:5", "C:7"), Exactly)
	var tmk *TooManyKeysError
	if !errors.As(err, &tmk) {
		t.Fatalf("extra key: got %v, want TooManyKeysError", err)
	}
	if tmk.Key != "C" {
		t.Errorf("TooManyKeys key = %q, want C", tmk.Key)
	}

	_, err = tab.Query(queryKVs(t, "A:1"), Exactly)
	var tfk *TooFewKeysError
	if !errors.As(err, &tfk) {
		t.Fatalf("missing key: got %v, want TooFewKeysError", err)
	}
	if tfk.Key != "B.LE" {
		t.Errorf("TooFewKeys key = %q, want B.LE", tfk.Key)
	}

	// The extra-key check runs for queries longer than the criteria
	// count too.
	_, err = tab.Query(queryKVs(t, "A:1", "B:5", "C:7", "D:8", "E:9"), Exactly)
	if !errors.As(err, &tmk) {
		t.Fatalf("long query: got %v, want TooManyKeysError", err)
	}
}

func TestQueryTieBreak(t *testing.T) {
	tab := mustParse(t, "A.GE = X\n1 = first\n1 = second\n")
	row, err := tab.Query(queryKVs(t, "A:2"), Exactly)
	if err != nil {
		t.Fatal(err)
	}
	if row != 1 {
		t.Errorf("tie went to row %d, want 1", row)
	}
}

func TestQueryHeaderOnly(t *testing.T) {
	tab := mustParse(t, "A.EQ = X\n")
	row, err := tab.Query(queryKVs(t, "A:1"), Exactly)
	if err != nil {
		t.Fatal(err)
	}
	if row != 0 {
		t.Errorf("header-only Query = %d, want 0", row)
	}
}

func TestQueryNothingApplicable(t *testing.T) {
	// No criterion finds a query key: the scan stops with no match
	// even though every criterion column is a no-constraint under
	// SUBSET.
	tab := mustParse(t, scenarioTable)
	row, err := tab.Query(queryKVs(t, "Z:1"), Subset|Superset)
	if err != nil {
		t.Fatal(err)
	}
	if row != 0 {
		t.Errorf("Query = %d, want 0", row)
	}
}

func TestQueryEmptyQuery(t *testing.T) {
	tab := mustParse(t, scenarioTable)
	row, err := tab.Query(nil, Subset)
	if err != nil {
		t.Fatal(err)
	}
	if row != 0 {
		t.Errorf("empty query = %d, want 0", row)
	}
	if _, err := tab.Query(nil, Exactly); err == nil {
		t.Error("empty query under EXACTLY should miss a criterion")
	}
}

func TestQueryBadCellWrapsLocation(t *testing.T) {
	tab := mustParse(t, "A.EQ = X\nnope = hello\n")
	_, err := tab.Query(queryKVs(t, "A:1"), Exactly)
	var tfe *TableFormatError
	if !errors.As(err, &tfe) {
		t.Fatalf("got %v, want TableFormatError", err)
	}
	if tfe.Row != 1 || tfe.Col != 0 {
		t.Errorf("location row:%d col:%d, want row:1 col:0", tfe.Row, tfe.Col)
	}
	var vte *ValueTypeError
	if !errors.As(err, &vte) {
		t.Error("cause is not a ValueTypeError")
	}
}

func TestQueryValueTypeError(t *testing.T) {
	// STRING query value against a numeric criterion.
	tab := mustParse(t, scenarioTable)
	_, err := tab.Query(queryKVs(t, "A:xyz", "B:5"), Exactly)
	var vte *ValueTypeError
	if !errors.As(err, &vte) {
		t.Fatalf("got %v, want ValueTypeError", err)
	}
}

func TestQueryMHColumn(t *testing.T) {
	tab := mustParse(t, "NAME.MH LOAD.LE = TIER\nalpha|beta 10 = low\n* 100 = high\n")

	row, err := tab.Query(queryKVs(t, "NAME:beta", "LOAD:5"), Exactly)
	if err != nil {
		t.Fatal(err)
	}
	if row != 1 {
		t.Errorf("beta/5 = row %d, want 1", row)
	}

	row, err = tab.Query(queryKVs(t, "NAME:gamma", "LOAD:50"), Exactly)
	if err != nil {
		t.Fatal(err)
	}
	if row != 2 {
		t.Errorf("gamma/50 = row %d, want 2", row)
	}
}
