// Package tabular loads abundance tables and sample metadata from
// delimited text and Excel workbooks.
package tabular

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"taxoscreen/domain/abundance"
	"taxoscreen/domain/core"
)

// GroupColumn is the metadata column holding the sample group label
const GroupColumn = "group"

// DataReader handles reading CSV, TSV and Excel files
type DataReader struct{}

// NewDataReader creates a new data reader
func NewDataReader() *DataReader {
	return &DataReader{}
}

// ReadMatrix parses a feature-by-sample abundance table. The header row
// holds sample IDs after the leading feature-ID column; each data row is a
// feature ID followed by its abundance per sample.
func (r *DataReader) ReadMatrix(path string) (*abundance.AbundanceMatrix, error) {
	rows, err := r.readRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 || len(rows[0]) < 2 {
		return nil, fmt.Errorf("abundance table %s needs a header row and at least one feature row", path)
	}

	header := rows[0]
	matrix := &abundance.AbundanceMatrix{
		Samples: make([]core.SampleID, 0, len(header)-1),
	}
	for _, cell := range header[1:] {
		matrix.Samples = append(matrix.Samples, core.SampleID(strings.TrimSpace(cell)))
	}

	for lineNo, row := range rows[1:] {
		if len(row) != len(header) {
			return nil, fmt.Errorf("row %d has %d columns, expected %d", lineNo+2, len(row), len(header))
		}
		matrix.Features = append(matrix.Features, core.FeatureID(strings.TrimSpace(row[0])))
		values := make([]float64, 0, len(row)-1)
		for _, cell := range row[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: non-numeric abundance %q", lineNo+2, cell)
			}
			values = append(values, v)
		}
		matrix.Data = append(matrix.Data, values)
	}

	if err := matrix.Validate(); err != nil {
		return nil, err
	}
	return matrix, nil
}

// ReadMetadata parses per-sample metadata keyed by sample ID. The header
// must contain a "group" column; every remaining column is parsed as a
// numeric covariate (blank or unparsable cells become NaN). The returned
// metadata is reordered to match the matrix columns, and a sample set that
// does not match the matrix is a dimension-mismatch error.
func (r *DataReader) ReadMetadata(path string, matrix *abundance.AbundanceMatrix) (*abundance.SampleMetadata, error) {
	rows, err := r.readRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 || len(rows[0]) < 2 {
		return nil, fmt.Errorf("metadata table %s needs a header row and at least one sample row", path)
	}

	header := rows[0]
	groupCol := -1
	for i, cell := range header {
		if strings.EqualFold(strings.TrimSpace(cell), GroupColumn) {
			groupCol = i
		}
	}
	if groupCol < 1 {
		return nil, fmt.Errorf("metadata table %s has no %q column", path, GroupColumn)
	}

	type record struct {
		group      string
		covariates map[string]float64
	}
	records := make(map[core.SampleID]record, len(rows)-1)
	for lineNo, row := range rows[1:] {
		if len(row) != len(header) {
			return nil, fmt.Errorf("row %d has %d columns, expected %d", lineNo+2, len(row), len(header))
		}
		id := core.SampleID(strings.TrimSpace(row[0]))
		if _, dup := records[id]; dup {
			return nil, core.ErrDuplicateID
		}
		rec := record{
			group:      strings.TrimSpace(row[groupCol]),
			covariates: make(map[string]float64),
		}
		for i, cell := range row {
			if i == 0 || i == groupCol {
				continue
			}
			name := strings.TrimSpace(header[i])
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				v = math.NaN()
			}
			rec.covariates[name] = v
		}
		records[id] = rec
	}

	if len(records) != matrix.NumSamples() {
		return nil, core.NewDimensionError(matrix.NumSamples(), len(records))
	}

	md := &abundance.SampleMetadata{
		Samples:    append([]core.SampleID(nil), matrix.Samples...),
		Groups:     make([]string, matrix.NumSamples()),
		Covariates: make(map[string][]float64),
	}
	for i, cell := range header {
		if i == 0 || i == groupCol {
			continue
		}
		md.Covariates[strings.TrimSpace(cell)] = make([]float64, matrix.NumSamples())
	}
	for j, id := range matrix.Samples {
		rec, ok := records[id]
		if !ok {
			return nil, fmt.Errorf("%w: sample %s missing from metadata", core.ErrDimensionMismatch, id)
		}
		md.Groups[j] = rec.group
		for name, v := range rec.covariates {
			md.Covariates[name][j] = v
		}
	}
	return md, nil
}

// readRows loads all rows from a CSV, TSV or xlsx file
func (r *DataReader) readRows(path string) ([][]string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return r.readExcelRows(path)
	case ".tsv":
		return r.readDelimitedRows(path, '\t')
	default:
		return r.readDelimitedRows(path, ',')
	}
}

func (r *DataReader) readDelimitedRows(path string, delim rune) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = delim
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return rows, nil
}

func (r *DataReader) readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Excel file %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}
