package slots

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	Rows      = 3
	Cols      = 3
	GridCells = Rows * Cols
)

var ErrGridSize = errors.New("outcome does not fill the grid")

type Symbol struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// Palette is indexed by the values the fairness engine derives.
var Palette = []Symbol{
	{ID: "BUNNY", Name: "Bunny", Value: 500},
	{ID: "DIAMOND", Name: "Diamond", Value: 200},
	{ID: "SEVEN", Name: "Seven", Value: 100},
	{ID: "BELL", Name: "Bell", Value: 50},
	{ID: "CHERRY", Name: "Cherry", Value: 20},
	{ID: "LEMON", Name: "Lemon", Value: 10},
}

// Payline picks one row per column.
type Payline struct {
	Rows       [Cols]int `json:"rows"`
	Multiplier int64     `json:"multiplier"`
}

// Paylines are the horizontal rows, top to bottom.
var Paylines = []Payline{
	{Rows: [Cols]int{0, 0, 0}, Multiplier: 1},
	{Rows: [Cols]int{1, 1, 1}, Multiplier: 1},
	{Rows: [Cols]int{2, 2, 2}, Multiplier: 1},
}

// lineCells maps each entry of Paylines to its grid indices, computed once.
var lineCells = cellsOf(Paylines)

func cellsOf(lines []Payline) [][Cols]int {
	out := make([][Cols]int, len(lines))
	for i, l := range lines {
		out[i] = l.Cells()
	}
	return out
}

// Cells returns the grid index (row*Cols + col) of every cell on the line.
func (p Payline) Cells() [Cols]int {
	var cells [Cols]int
	for c, r := range p.Rows {
		cells[c] = r*Cols + c
	}
	return cells
}

func (p Payline) Valid() bool {
	for _, r := range p.Rows {
		if r < 0 || r >= Rows {
			return false
		}
	}
	return true
}

// Grid is row-major: index = row*Cols + col.
type Grid [GridCells]Symbol

func GridFromOutcome(values []int) (Grid, error) {
	var g Grid
	if len(values) != GridCells {
		return g, fmt.Errorf("%w: got %d values", ErrGridSize, len(values))
	}
	for i, v := range values {
		if v < 0 {
			return g, fmt.Errorf("%w: negative symbol index %d", ErrGridSize, v)
		}
		g[i] = Palette[v%len(Palette)]
	}
	return g, nil
}

type Win struct {
	Lines []int           `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// Resolve checks the first active paylines. A line pays when all its symbols
// match: symbol value × line multiplier × bet.
func Resolve(g Grid, lines []Payline, active int, bet decimal.Decimal) Win {
	win := Win{Lines: []int{}, Total: decimal.Zero}
	if active > len(lines) {
		active = len(lines)
	}

	cells := lineCells
	if !samePaylines(lines) {
		cells = cellsOf(lines)
	}

	for i := 0; i < active; i++ {
		if !lines[i].Valid() {
			continue
		}
		first := g[cells[i][0]]
		matched := true
		for _, idx := range cells[i][1:] {
			if g[idx].ID != first.ID {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}
		win.Lines = append(win.Lines, i)
		amount := decimal.NewFromInt(first.Value * lines[i].Multiplier).Mul(bet)
		win.Total = win.Total.Add(amount)
	}
	return win
}

func samePaylines(lines []Payline) bool {
	if len(lines) != len(Paylines) {
		return false
	}
	for i := range lines {
		if lines[i] != Paylines[i] {
			return false
		}
	}
	return true
}
