package parameter

import (
	"encoding/json"
	"slices"

	"github.com/s3a-spatialaudio/VISR-sub001/errors"
)

// Type names of the built-in matrix parameters.
const (
	MatrixFloatName  = "MatrixFloat"
	MatrixDoubleName = "MatrixDouble"
)

// Type ids of the built-in matrix parameters.
var (
	TypeMatrixFloat  = ID(MatrixFloatName)
	TypeMatrixDouble = ID(MatrixDoubleName)
)

// Matrix is a dense row-major matrix of fixed dimensions.
type Matrix[T Real] struct {
	rows    int
	columns int
	data    []T
}

// NewMatrix creates a zero matrix.
func NewMatrix[T Real](rows, columns int) *Matrix[T] {
	rows, columns = max(rows, 0), max(columns, 0)
	return &Matrix[T]{rows: rows, columns: columns, data: make([]T, rows*columns)}
}

// Rows returns the number of rows.
func (m *Matrix[T]) Rows() int { return m.rows }

// Columns returns the number of columns.
func (m *Matrix[T]) Columns() int { return m.columns }

// At returns element (row, column).
func (m *Matrix[T]) At(row, column int) T { return m.data[row*m.columns+column] }

// SetAt replaces element (row, column).
func (m *Matrix[T]) SetAt(row, column int, value T) { m.data[row*m.columns+column] = value }

// Row returns row r for in-place access.
func (m *Matrix[T]) Row(r int) []T {
	return m.data[r*m.columns : (r+1)*m.columns : (r+1)*m.columns]
}

// Data returns the row-major elements for in-place access.
func (m *Matrix[T]) Data() []T { return m.data }

// Fill sets every element to value.
func (m *Matrix[T]) Fill(value T) {
	for i := range m.data {
		m.data[i] = value
	}
}

// Type implements Parameter.
func (*Matrix[T]) Type() TypeID {
	var zero T
	if _, ok := any(zero).(float32); ok {
		return TypeMatrixFloat
	}
	return TypeMatrixDouble
}

// Clone implements Parameter.
func (m *Matrix[T]) Clone() Parameter {
	return &Matrix[T]{rows: m.rows, columns: m.columns, data: slices.Clone(m.data)}
}

// Assign implements Parameter.
func (m *Matrix[T]) Assign(src Parameter) error {
	o, ok := src.(*Matrix[T])
	if !ok {
		return assignError(m, src)
	}
	if o.rows != m.rows || o.columns != m.columns {
		return errors.Invalidf(errors.ErrLengthMismatch, "Matrix", "Assign",
			"dimensions %dx%d do not match %dx%d", o.rows, o.columns, m.rows, m.columns)
	}
	copy(m.data, o.data)
	return nil
}

type matrixWire[T Real] struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
	Data    []T `json:"data"`
}

// MarshalJSON encodes the matrix with its dimensions and row-major data.
func (m *Matrix[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(matrixWire[T]{Rows: m.rows, Columns: m.columns, Data: m.data})
}

// UnmarshalJSON decodes a matrix; dimensions must match the configured shape.
func (m *Matrix[T]) UnmarshalJSON(data []byte) error {
	var wire matrixWire[T]
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.Rows != m.rows || wire.Columns != m.columns || len(wire.Data) != len(m.data) {
		return errors.Invalidf(errors.ErrLengthMismatch, "Matrix", "UnmarshalJSON",
			"encoded %dx%d (%d values) does not match %dx%d",
			wire.Rows, wire.Columns, len(wire.Data), m.rows, m.columns)
	}
	copy(m.data, wire.Data)
	return nil
}

func matrixConstructor[T Real]() Constructor {
	return func(cfg Config) (Parameter, error) {
		c, err := ConfigAs[MatrixConfig](cfg)
		if err != nil {
			return nil, err
		}
		if c.Rows < 0 || c.Columns < 0 {
			return nil, errors.Invalidf(errors.ErrInvalidConfig, "Matrix", "New",
				"negative dimensions %dx%d", c.Rows, c.Columns)
		}
		return NewMatrix[T](c.Rows, c.Columns), nil
	}
}
