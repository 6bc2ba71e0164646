package qtab

// The grid tokeniser. One pass over the text: NUL, \n and \r end a
// row; space, tab and = separate cells. The first = of a row is the
// criteria/data boundary and is not stored as a cell.

type tableParser struct {
	input string
	pos   int
}

func isCellSep(c byte) bool {
	return c == ' ' || c == '\t' || c == '='
}

func isRowEnd(c byte) bool {
	return c == '\n' || c == '\r' || c == 0
}

func (p *tableParser) eof() bool {
	return p.pos >= len(p.input)
}

// parseRow consumes one row including its terminator. eq is the cell
// index where the first = sat, or -1 if the row had none.
func (p *tableParser) parseRow() (cells []string, eq int) {
	eq = -1
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch {
		case isRowEnd(c):
			p.pos++
			return cells, eq
		case c == ' ' || c == '\t':
			p.pos++
		case c == '=':
			if eq < 0 {
				eq = len(cells)
			}
			p.pos++
		default:
			start := p.pos
			for p.pos < len(p.input) && !isCellSep(p.input[p.pos]) && !isRowEnd(p.input[p.pos]) {
				p.pos++
			}
			cells = append(cells, p.input[start:p.pos])
		}
	}
	return cells, eq
}

// Parse tokenises text into a fresh Table.
func Parse(text string) (*Table, error) {
	t := &Table{}
	if err := t.Parse(text); err != nil {
		return nil, err
	}
	return t, nil
}

// Parse replaces the table's contents with the grid tokenised from
// text. Prior state, including the expression-cell cache and every
// previously returned cell slice, is discarded first, so a failed
// parse leaves an empty table.
func (t *Table) Parse(text string) error {
	t.cells = nil
	t.criteria = 0
	t.cache = nil

	p := &tableParser{input: text}
	var grid [][]string
	criteria, cols := -1, 0

	for !p.eof() {
		cells, eq := p.parseRow()
		if len(cells) == 0 && eq < 0 {
			continue // blank line
		}
		row := len(grid)
		if eq < 0 {
			return &TableFormatError{Row: row, Col: len(cells), Msg: "row has no `=` separator"}
		}
		if criteria < 0 {
			// Header row fixes the shape.
			if eq < 1 || eq >= len(cells) {
				return &TableFormatError{Row: row, Col: eq, Msg: "`=` separator leaves no criteria or no data columns"}
			}
			criteria, cols = eq, len(cells)
			for j := 0; j < criteria; j++ {
				if _, err := NewCriteria(cells[j]); err != nil {
					return &TableFormatError{Row: row, Col: j, Cause: err}
				}
			}
		} else {
			if len(cells) != cols {
				return &TableFormatError{Row: row, Col: len(cells), Msg: "row differs in column count"}
			}
			if eq != criteria {
				return &TableFormatError{Row: row, Col: eq, Msg: "`=` separator out of column"}
			}
		}
		grid = append(grid, cells)
	}

	if len(grid) == 0 {
		return &TableFormatError{Row: 0, Col: 0, Msg: "empty Table"}
	}

	t.cells = grid
	t.criteria = criteria
	return nil
}
