package train

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stitts-dev/acebet/pkg/utils"
	"gonum.org/v1/gonum/mat"
)

// OrdinalEncoder maps every string column to the position of its value in
// the sorted categories seen at fit time. Values outside that set, and
// missing values, become NaN so the trees route them down their default
// branch.
type OrdinalEncoder struct {
	Features   []string            `json:"features"`
	Categories map[string][]string `json:"categories"`

	codes map[string]map[string]int
}

func NewOrdinalEncoder() *OrdinalEncoder {
	return &OrdinalEncoder{Categories: map[string][]string{}}
}

// Fit records the feature order and the categories of string columns.
func (e *OrdinalEncoder) Fit(df dataframe.DataFrame) error {
	if df.Ncol() == 0 {
		return fmt.Errorf("cannot fit encoder on a frame without columns")
	}
	e.Features = df.Names()
	e.Categories = map[string][]string{}
	e.codes = nil

	for _, name := range e.Features {
		col := df.Col(name)
		if col.Type() != series.String {
			continue
		}
		seen := map[string]struct{}{}
		for i := 0; i < col.Len(); i++ {
			if v, ok := category(col, i); ok {
				seen[v] = struct{}{}
			}
		}
		cats := make([]string, 0, len(seen))
		for v := range seen {
			cats = append(cats, v)
		}
		sort.Strings(cats)
		e.Categories[name] = cats
	}
	return nil
}

// Transform builds the numeric feature matrix in fit-time column order.
// Extra columns in df are ignored; a missing one is a schema error.
func (e *OrdinalEncoder) Transform(df dataframe.DataFrame) (*mat.Dense, error) {
	if len(e.Features) == 0 {
		return nil, fmt.Errorf("encoder is not fitted")
	}
	rows := df.Nrow()
	if rows == 0 {
		return nil, fmt.Errorf("cannot transform an empty frame")
	}
	e.index()

	X := mat.NewDense(rows, len(e.Features), nil)
	for j, name := range e.Features {
		if !hasColumn(df, name) {
			return nil, utils.SchemaMismatch(utils.StageTrain, name)
		}
		col := df.Col(name)

		codes, categorical := e.codes[name]
		if !categorical {
			for i, v := range col.Float() {
				X.Set(i, j, v)
			}
			continue
		}
		for i := 0; i < rows; i++ {
			code := math.NaN()
			if v, ok := category(col, i); ok {
				if c, known := codes[v]; known {
					code = float64(c)
				}
			}
			X.Set(i, j, code)
		}
	}
	return X, nil
}

func (e *OrdinalEncoder) index() {
	if e.codes != nil {
		return
	}
	e.codes = make(map[string]map[string]int, len(e.Categories))
	for name, cats := range e.Categories {
		m := make(map[string]int, len(cats))
		for i, c := range cats {
			m[c] = i
		}
		e.codes[name] = m
	}
}

// category returns the string value at row i, or false when it is missing.
func category(col series.Series, i int) (string, bool) {
	el := col.Elem(i)
	if el.IsNA() {
		return "", false
	}
	v := el.String()
	return v, v != ""
}
