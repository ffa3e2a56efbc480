// Copyright 2023 voodoo Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dataset

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/juju/errors"
	"github.com/voodoo-io/voodoo/base/encoding"
	"gonum.org/v1/gonum/mat"
)

// Table is a dense numeric matrix whose rows and columns carry string
// labels. Downstream stages align by label, never by external ordering,
// which removes the positional-alignment bugs of keeping labels in a
// separate file.
type Table struct {
	rows   *Dict
	cols   *Dict
	values *mat.Dense
}

// NewTable creates a zero-filled table with the given row and column labels.
func NewTable(rowLabels, colLabels []string) *Table {
	return &Table{
		rows:   NewDict(rowLabels...),
		cols:   NewDict(colLabels...),
		values: mat.NewDense(len(rowLabels), len(colLabels), nil),
	}
}

// Dims returns the number of rows and columns.
func (t *Table) Dims() (int, int) {
	return t.values.Dims()
}

// RowLabels returns row labels in index order.
func (t *Table) RowLabels() []string {
	return t.rows.Labels()
}

// ColumnLabels returns column labels in index order.
func (t *Table) ColumnLabels() []string {
	return t.cols.Labels()
}

// RowId returns the index of a row label, or -1 if unknown.
func (t *Table) RowId(label string) int {
	return t.rows.Id(label)
}

// ColumnId returns the index of a column label, or -1 if unknown.
func (t *Table) ColumnId(label string) int {
	return t.cols.Id(label)
}

// At returns the value at a position.
func (t *Table) At(i, j int) float64 {
	return t.values.At(i, j)
}

// Set sets the value at a position.
func (t *Table) Set(i, j int, v float64) {
	t.values.Set(i, j, v)
}

// Row returns the i-th row as a shared view.
func (t *Table) Row(i int) []float64 {
	return t.values.RawRowView(i)
}

// SetRow replaces the i-th row.
func (t *Table) SetRow(i int, row []float64) {
	t.values.SetRow(i, row)
}

// Values returns the underlying matrix.
func (t *Table) Values() *mat.Dense {
	return t.values
}

// Transpose returns a new table with rows and columns swapped.
func (t *Table) Transpose() *Table {
	nRows, nCols := t.values.Dims()
	transposed := &Table{
		rows:   NewDict(t.cols.Labels()...),
		cols:   NewDict(t.rows.Labels()...),
		values: mat.NewDense(nCols, nRows, nil),
	}
	transposed.values.Copy(t.values.T())
	return transposed
}

// Save writes the table to a file. The file is written to a temporary
// sibling first and atomically renamed, so readers never observe a partial
// artifact.
func (t *Table) Save(path string) error {
	temp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return errors.Trace(err)
	}
	defer os.Remove(temp.Name())
	w := bufio.NewWriter(temp)
	if err = t.write(w); err != nil {
		temp.Close()
		return errors.Trace(err)
	}
	if err = w.Flush(); err != nil {
		temp.Close()
		return errors.Trace(err)
	}
	if err = temp.Close(); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(os.Rename(temp.Name(), path))
}

func (t *Table) write(w *bufio.Writer) error {
	if err := encoding.WriteGob(w, t.rows.Labels()); err != nil {
		return errors.Trace(err)
	}
	if err := encoding.WriteGob(w, t.cols.Labels()); err != nil {
		return errors.Trace(err)
	}
	nRows, _ := t.values.Dims()
	rows := make([][]float64, nRows)
	for i := range rows {
		rows[i] = t.values.RawRowView(i)
	}
	return errors.Trace(encoding.WriteMatrix(w, rows))
}

// LoadTable reads a table written by Save.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer f.Close()
	r := bufio.NewReader(f)
	var rowLabels, colLabels []string
	if err = encoding.ReadGob(r, &rowLabels); err != nil {
		return nil, errors.Trace(err)
	}
	if err = encoding.ReadGob(r, &colLabels); err != nil {
		return nil, errors.Trace(err)
	}
	t := NewTable(rowLabels, colLabels)
	rows := make([][]float64, len(rowLabels))
	for i := range rows {
		rows[i] = t.values.RawRowView(i)
	}
	if err = encoding.ReadMatrix(r, rows); err != nil {
		return nil, errors.Trace(err)
	}
	return t, nil
}
