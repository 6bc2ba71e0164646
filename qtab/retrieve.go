package qtab

import "errors"

var errNoEvaluator = errors.New("expression cell with no evaluator installed")

func isExprCell(cell string) bool {
	return len(cell) > 0 && (cell[0] == '{' || cell[0] == '[')
}

// dataColumn returns the data column whose header is key, or -1.
func (t *Table) dataColumn(key string) int {
	for j := t.criteria; j < t.Cols(); j++ {
		if t.cells[0][j] == key {
			return j
		}
	}
	return -1
}

func (t *Table) checkRow(row int) error {
	if row < 1 || row >= t.Rows() {
		return &TableDataError{Row: row, Col: 0, Msg: "no such data row"}
	}
	return nil
}

// Retrieve fills query pairs from a data row: each kv whose key names
// a data column is overwritten with that column's decoded cell, NIL
// pairs upgrading to NUMBER or STRING. A kv naming no data column is
// a TooManyKeysError unless Superset is set, in which case it is left
// alone.
func (t *Table) Retrieve(row int, kvs []KeyValue, options Options) error {
	if err := t.checkRow(row); err != nil {
		return err
	}
	superset := options&Superset != 0
	for k := range kvs {
		j := t.dataColumn(kvs[k].Key)
		if j < 0 {
			if !superset {
				return &TooManyKeysError{Key: kvs[k].Key, What: "data column"}
			}
			continue
		}
		if err := t.retrieveCell(row, j, &kvs[k]); err != nil {
			return err
		}
	}
	return nil
}

// Verify cross-checks query pairs against a data row without writing
// into them: NUMBER pairs must equal the decoded cell, STRING pairs
// must be non-empty and equal to it. Any disagreement, including a
// decoded type that differs from the query's, is a TableDataError.
//
// A NIL pair is skipped under Superset (it is a Retrieve output
// slot); without Superset it has no value to check and fails.
func (t *Table) Verify(row int, kvs []KeyValue, options Options) error {
	if err := t.checkRow(row); err != nil {
		return err
	}
	superset := options&Superset != 0
	for k := range kvs {
		kv := kvs[k]
		j := t.dataColumn(kv.Key)
		if j < 0 {
			if !superset {
				return &TooManyKeysError{Key: kv.Key, What: "data column"}
			}
			continue
		}
		if kv.Type == NIL {
			if superset {
				continue
			}
			return &TableDataError{Row: row, Col: j, Msg: "`" + kv.Key + "` is NIL, nothing to verify"}
		}

		cell := kv // same key and type tag, value replaced by decode
		if err := t.retrieveCell(row, j, &cell); err != nil {
			return err
		}
		if cell.Type != kv.Type {
			return &TableDataError{Row: row, Col: j,
				Msg: "`" + kv.Key + "` is " + kv.Type.String() + ", cell is " + cell.Type.String()}
		}
		switch kv.Type {
		case NUMBER:
			if !cell.Val.Number().Equal(kv.Val.Number()) {
				return &TableDataError{Row: row, Col: j,
					Msg: "`" + kv.String() + "` disagrees with `" + cell.Val.Format(NUMBER) + "`"}
			}
		case STRING:
			qs, cs := kv.Val.Str(), cell.Val.Str()
			if qs == "" || cs == "" || qs != cs {
				return &TableDataError{Row: row, Col: j,
					Msg: "`" + kv.String() + "` disagrees with `" + cs + "`"}
			}
		}
	}
	return nil
}

// retrieveCell decodes cell (row, col) into kv. A literal cell decodes
// as NUMBER when the incoming tag is NUMBER and as STRING otherwise;
// an expression cell is delegated to the evaluator and keeps the type
// the evaluator returned.
func (t *Table) retrieveCell(row, col int, kv *KeyValue) error {
	cell := t.cells[row][col]
	if isExprCell(cell) {
		return t.evalCell(row, col, kv)
	}
	if kv.Type == NUMBER {
		n, err := NewNumberFromString(cell)
		if err != nil {
			return &TableDataError{Row: row, Col: col, Cause: err}
		}
		kv.Val = NumberValue(n)
		return nil
	}
	kv.Val = StringValue(cell)
	kv.Type = STRING
	return nil
}

// evalCell resolves an expression cell through the evaluator, at most
// once per (row, col). Before evaluating, the data columns left of
// col are published as named bindings, right to left, recursing into
// expression cells and stopping once a literal is reached.
func (t *Table) evalCell(row, col int, kv *KeyValue) error {
	if r, ok := t.cache[cellIndex{row, col}]; ok {
		kv.Val, kv.Type = r.val, r.typ
		return nil
	}
	if t.eval == nil {
		return &EvaluatorError{Row: row, Col: col, Cause: errNoEvaluator}
	}

	for k := col - 1; k >= t.criteria; k-- {
		// Type the probe so numeric literals bind as NUMBER, the same
		// heuristic the query caller applies to raw values.
		dep := NilKeyValue(t.cells[0][k])
		if cell := t.cells[row][k]; !isExprCell(cell) {
			if _, err := NewNumberFromString(cell); err == nil {
				dep.Type = NUMBER
			}
		}
		if err := t.retrieveCell(row, k, &dep); err != nil {
			return err
		}
		if err := t.eval.Bind(dep); err != nil {
			return &EvaluatorError{Row: row, Col: k, Cause: err}
		}
		if !isExprCell(t.cells[row][k]) {
			break
		}
	}

	val, typ, err := t.eval.Eval(t.cells[row][col])
	if err != nil {
		return &EvaluatorError{Row: row, Col: col, Cause: err}
	}
	if typ != NUMBER && typ != STRING {
		return &EvaluatorError{Row: row, Col: col,
			Cause: errors.New("evaluator returned " + typ.String() + ", want NUMBER or STRING")}
	}

	if t.cache == nil {
		t.cache = make(map[cellIndex]cellResult)
	}
	t.cache[cellIndex{row, col}] = cellResult{val: val, typ: typ}
	kv.Val, kv.Type = val, typ
	return nil
}
