package score

import (
	"fmt"
	"math/big"
	"sort"

	coreerrors "github.com/angelospk/subfinder/pkg/core/errors"
)

// Term is Coef*Symbol, or the constant Coef when Symbol is empty.
type Term struct {
	Coef   int64
	Symbol string
}

// Sym is the term 1*symbol.
func Sym(symbol string) Term { return Term{Coef: 1, Symbol: symbol} }

// Const is a constant term.
func Const(c int64) Term { return Term{Coef: c} }

// Equation declares Left = sum(Right).
type Equation struct {
	Left  string
	Right []Term
}

// Eq builds an equation.
func Eq(left string, right ...Term) Equation { return Equation{Left: left, Right: right} }

// Sum is shorthand for a run of unit terms.
func Sum(symbols ...string) []Term {
	terms := make([]Term, len(symbols))
	for i, s := range symbols {
		terms[i] = Sym(s)
	}
	return terms
}

// Solve solves a square linear system exactly with Gauss-Jordan elimination
// over the rationals. Every symbol must resolve to a non-negative integer.
func Solve(equations []Equation) (map[string]int, error) {
	index := map[string]int{}
	var symbols []string
	addSymbol := func(s string) {
		if _, ok := index[s]; !ok {
			index[s] = -1
			symbols = append(symbols, s)
		}
	}
	for _, eq := range equations {
		addSymbol(eq.Left)
		for _, t := range eq.Right {
			if t.Symbol != "" {
				addSymbol(t.Symbol)
			}
		}
	}
	sort.Strings(symbols)
	for i, s := range symbols {
		index[s] = i
	}

	n := len(symbols)
	if n == 0 || len(equations) != n {
		return nil, fmt.Errorf("%w: %d equations for %d symbols", coreerrors.ErrUnsolvable, len(equations), n)
	}

	// Row layout: n coefficients followed by the right hand side constant.
	m := make([][]*big.Rat, n)
	for r, eq := range equations {
		row := make([]*big.Rat, n+1)
		for c := range row {
			row[c] = new(big.Rat)
		}
		row[index[eq.Left]].Add(row[index[eq.Left]], big.NewRat(1, 1))
		for _, t := range eq.Right {
			coef := big.NewRat(t.Coef, 1)
			if t.Symbol == "" {
				row[n].Add(row[n], coef)
				continue
			}
			row[index[t.Symbol]].Sub(row[index[t.Symbol]], coef)
		}
		m[r] = row
	}

	for col := 0; col < n; col++ {
		pivot := -1
		for r := col; r < n; r++ {
			if m[r][col].Sign() != 0 {
				pivot = r
				break
			}
		}
		if pivot < 0 {
			return nil, fmt.Errorf("%w: singular in %q", coreerrors.ErrUnsolvable, symbols[col])
		}
		m[col], m[pivot] = m[pivot], m[col]

		inv := new(big.Rat).Inv(m[col][col])
		for c := col; c <= n; c++ {
			m[col][c].Mul(m[col][c], inv)
		}
		for r := 0; r < n; r++ {
			if r == col || m[r][col].Sign() == 0 {
				continue
			}
			factor := new(big.Rat).Set(m[r][col])
			for c := col; c <= n; c++ {
				m[r][c].Sub(m[r][c], new(big.Rat).Mul(factor, m[col][c]))
			}
		}
	}

	out := make(map[string]int, n)
	for i, s := range symbols {
		v := m[i][n]
		if !v.IsInt() || v.Sign() < 0 {
			return nil, fmt.Errorf("%w: %s = %s", coreerrors.ErrUnsolvable, s, v.RatString())
		}
		out[s] = int(v.Num().Int64())
	}
	return out, nil
}
