package providers

import (
	"fmt"
	"log"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// column describes one parallel array of a column-oriented payload.
type column struct {
	name     string
	length   int
	required bool
}

func col(name string, length int, required bool) column {
	return column{name: name, length: length, required: required}
}

// alignColumns returns how many rows can be built by pairing indices across
// the time axis and cols. A required column that is absent is malformed;
// columns of diverging length truncate the result to the shortest one.
func alignColumns(section string, timeLen int, cols ...column) (int, error) {
	n := timeLen
	for _, c := range cols {
		if c.length == 0 {
			if c.required && timeLen > 0 {
				return 0, fmt.Errorf("%w: %s.%s missing", weather.ErrMalformedResponse, section, c.name)
			}
			continue
		}
		if c.length != timeLen {
			log.Printf("INFO: %s.%s has %d entries, time axis has %d; truncating", section, c.name, c.length, timeLen)
		}
		if c.length < n {
			n = c.length
		}
	}
	return n, nil
}

// nullableColumn is a named column whose entries may be JSON null.
type nullableColumn struct {
	name string
	data []*float64
}

func nullable(name string, data []*float64) nullableColumn {
	return nullableColumn{name: name, data: data}
}

// completeRows shortens n to the rows before the first null in any of the
// required columns, so a missing reading never turns into a zero.
func completeRows(section string, n int, required ...nullableColumn) int {
	for _, s := range required {
		for i := 0; i < n && i < len(s.data); i++ {
			if s.data[i] == nil {
				log.Printf("INFO: %s.%s is null at row %d; truncating", section, s.name, i)
				n = i
				break
			}
		}
	}
	return n
}

// at returns col[i], or nil when the column is shorter or absent.
func at(col []*float64, i int) *float64 {
	if i < 0 || i >= len(col) {
		return nil
	}
	return col[i]
}

// atOr dereferences col[i] with a fallback for nulls.
func atOr(col []*float64, i int, def float64) float64 {
	if v := at(col, i); v != nil {
		return *v
	}
	return def
}
