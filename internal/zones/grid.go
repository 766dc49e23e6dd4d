package zones

import "fmt"

// GridMultiplier is the value row and column percentages must sum to.
const GridMultiplier = 10000

// gridDimensions picks the row count as the largest r with count/r >= r and
// enough columns to hold every zone.
func gridDimensions(count int) (rows, cols int) {
	rows = 1
	for count/(rows+1) >= rows+1 {
		rows++
	}
	cols = (count + rows - 1) / rows
	return rows, cols
}

// uniformGrid fills rows x cols cells row-major. Cells past the last zone
// merge into it.
func uniformGrid(rows, cols, count int) GridInfo {
	info := GridInfo{
		RowsPercents:    evenPercents(rows),
		ColumnsPercents: evenPercents(cols),
		CellChildMap:    make([][]int, rows),
	}
	index := 0
	for r := 0; r < rows; r++ {
		info.CellChildMap[r] = make([]int, cols)
		for c := 0; c < cols; c++ {
			info.CellChildMap[r][c] = index
			if index < count-1 {
				index++
			}
		}
	}
	return info
}

func evenPercents(n int) []int {
	out := make([]int, n)
	total := 0
	for i := range out {
		out[i] = GridMultiplier / n
		total += out[i]
	}
	out[n-1] += GridMultiplier - total
	return out
}

// priorityGrids are the predefined arrangements for 1 to 11 zones. Zone 1 is
// the large centre cell once there are three or more zones.
var priorityGrids = []GridInfo{
	{[]int{10000}, []int{10000}, [][]int{{0}}},
	{[]int{10000}, []int{6667, 3333}, [][]int{{0, 1}}},
	{[]int{10000}, []int{2500, 5000, 2500}, [][]int{{0, 1, 2}}},
	{[]int{5000, 5000}, []int{2500, 5000, 2500}, [][]int{{0, 1, 2}, {0, 1, 3}}},
	{[]int{5000, 5000}, []int{2500, 5000, 2500}, [][]int{{0, 1, 2}, {3, 1, 4}}},
	{[]int{3333, 3333, 3334}, []int{2500, 5000, 2500}, [][]int{{0, 1, 2}, {0, 1, 3}, {4, 1, 5}}},
	{[]int{3333, 3333, 3334}, []int{2500, 5000, 2500}, [][]int{{0, 1, 2}, {3, 1, 4}, {5, 1, 6}}},
	{[]int{3333, 3333, 3334}, []int{2500, 2500, 2500, 2500}, [][]int{{0, 1, 2, 3}, {4, 1, 2, 5}, {6, 1, 2, 7}}},
	{[]int{3333, 3333, 3334}, []int{2500, 2500, 2500, 2500}, [][]int{{0, 1, 2, 3}, {4, 1, 2, 5}, {6, 1, 7, 8}}},
	{[]int{3333, 3333, 3334}, []int{2500, 2500, 2500, 2500}, [][]int{{0, 1, 2, 3}, {4, 1, 5, 6}, {7, 1, 8, 9}}},
	{[]int{3333, 3333, 3334}, []int{2500, 2500, 2500, 2500}, [][]int{{0, 1, 2, 3}, {4, 1, 5, 6}, {7, 8, 9, 10}}},
}

func priorityGrid(count int) (GridInfo, bool) {
	if count < 1 || count > len(priorityGrids) {
		return GridInfo{}, false
	}
	return cloneGrid(priorityGrids[count-1]), true
}

func cloneGrid(g GridInfo) GridInfo {
	out := GridInfo{
		RowsPercents:    append([]int(nil), g.RowsPercents...),
		ColumnsPercents: append([]int(nil), g.ColumnsPercents...),
		CellChildMap:    make([][]int, len(g.CellChildMap)),
	}
	for i, row := range g.CellChildMap {
		out.CellChildMap[i] = append([]int(nil), row...)
	}
	return out
}

// ValidateGrid checks that percentages sum to GridMultiplier, the cell map
// matches the row/column counts, zone indices are contiguous from zero and
// every zone covers a rectangular block of cells. It returns the zone count.
func ValidateGrid(info GridInfo) (int, error) {
	rows, cols := len(info.RowsPercents), len(info.ColumnsPercents)
	if rows == 0 || cols == 0 {
		return 0, fmt.Errorf("%w: grid needs at least one row and column", ErrInvalidLayout)
	}
	if err := checkPercents("rows", info.RowsPercents); err != nil {
		return 0, err
	}
	if err := checkPercents("columns", info.ColumnsPercents); err != nil {
		return 0, err
	}
	if len(info.CellChildMap) != rows {
		return 0, fmt.Errorf("%w: cell map has %d rows, want %d", ErrInvalidLayout, len(info.CellChildMap), rows)
	}

	spans := map[int]*cellSpan{}
	maxIndex := -1
	for r, row := range info.CellChildMap {
		if len(row) != cols {
			return 0, fmt.Errorf("%w: cell map row %d has %d columns, want %d", ErrInvalidLayout, r, len(row), cols)
		}
		for c, idx := range row {
			if idx < 0 {
				return 0, fmt.Errorf("%w: negative zone index %d at cell (%d,%d)", ErrInvalidLayout, idx, r, c)
			}
			span, ok := spans[idx]
			if !ok {
				spans[idx] = &cellSpan{minRow: r, maxRow: r, minCol: c, maxCol: c}
			} else {
				span.minRow, span.maxRow = min(span.minRow, r), max(span.maxRow, r)
				span.minCol, span.maxCol = min(span.minCol, c), max(span.maxCol, c)
			}
			maxIndex = max(maxIndex, idx)
		}
	}
	if len(spans) != maxIndex+1 {
		return 0, fmt.Errorf("%w: zone indices are not contiguous from 0", ErrInvalidLayout)
	}
	for idx, span := range spans {
		for r := span.minRow; r <= span.maxRow; r++ {
			for c := span.minCol; c <= span.maxCol; c++ {
				if info.CellChildMap[r][c] != idx {
					return 0, fmt.Errorf("%w: zone %d does not cover a rectangle of cells", ErrInvalidLayout, idx)
				}
			}
		}
	}
	return len(spans), nil
}

type cellSpan struct {
	minRow, maxRow int
	minCol, maxCol int
}

func checkPercents(name string, percents []int) error {
	sum := 0
	for _, p := range percents {
		if p <= 0 {
			return fmt.Errorf("%w: %s percentages must be positive", ErrInvalidLayout, name)
		}
		sum += p
	}
	if sum != GridMultiplier {
		return fmt.Errorf("%w: %s percentages sum to %d, want %d", ErrInvalidLayout, name, sum, GridMultiplier)
	}
	return nil
}

// gridZones turns a grid description into zones over work. Outer edges are
// inset by spacing and shared edges by half of it on each side.
func gridZones(info GridInfo, work Rect, spacing int) ([]Zone, error) {
	count, err := ValidateGrid(info)
	if err != nil {
		return nil, err
	}
	rows, cols := len(info.RowsPercents), len(info.ColumnsPercents)
	rowEdges := edges(info.RowsPercents, work.Top, work.Height())
	colEdges := edges(info.ColumnsPercents, work.Left, work.Width())

	spans := make([]cellSpan, count)
	seen := make([]bool, count)
	for r, row := range info.CellChildMap {
		for c, idx := range row {
			if !seen[idx] {
				spans[idx] = cellSpan{minRow: r, maxRow: r, minCol: c, maxCol: c}
				seen[idx] = true
				continue
			}
			spans[idx].maxRow = max(spans[idx].maxRow, r)
			spans[idx].maxCol = max(spans[idx].maxCol, c)
		}
	}

	half := spacing / 2
	out := make([]Zone, count)
	for idx, span := range spans {
		rect := Rect{
			Left:   colEdges[span.minCol],
			Top:    rowEdges[span.minRow],
			Right:  colEdges[span.maxCol+1],
			Bottom: rowEdges[span.maxRow+1],
		}
		rect.Left += insetFor(span.minCol == 0, spacing, half)
		rect.Top += insetFor(span.minRow == 0, spacing, half)
		rect.Right -= insetFor(span.maxCol == cols-1, spacing, spacing-half)
		rect.Bottom -= insetFor(span.maxRow == rows-1, spacing, spacing-half)
		if spacing < 0 {
			rect = rect.Intersect(work)
		}
		out[idx] = NewZone(rect, idx)
	}
	return out, nil
}

func insetFor(outer bool, spacing, inner int) int {
	if outer {
		return spacing
	}
	return inner
}

func edges(percents []int, origin, extent int) []int {
	out := make([]int, len(percents)+1)
	out[0] = origin
	acc := 0
	for i, p := range percents {
		acc += p
		out[i+1] = origin + acc*extent/GridMultiplier
	}
	out[len(percents)] = origin + extent
	return out
}
