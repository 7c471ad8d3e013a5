package parquet_accumulator

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/danthegoodman1/chfdw/cell"
)

type (
	// ParquetSchemaAccumulator builds a parquet-go JSON schema from the cell
	// kinds of the rows it sees. The first non-null cell of a column decides
	// its parquet type.
	ParquetSchemaAccumulator struct {
		schema ParquetSchema
		kinds  []cell.Kind
	}

	ParquetSchema struct {
		TagStructs SchemaTag        `json:"-"`
		Fields     []*ParquetSchema `json:",omitempty"`
	}

	ParquetJSONSchema struct {
		Tag    string               `json:",omitempty"`
		Fields []*ParquetJSONSchema `json:",omitempty"`
	}

	SchemaTag struct {
		Name           string         `json:"name,omitempty"`
		Type           string         `json:"type,omitempty"`
		ConvertedType  string         `json:"convertedtype,omitempty"`
		RepetitionType RepetitionType `json:"repetitiontype,omitempty"`
		Encoding       string         `json:"encoding,omitempty"`
	}

	RepetitionType string
)

var (
	Optional RepetitionType = "OPTIONAL"
	Required RepetitionType = "REQUIRED"
)

func NewParquetAccumulator() ParquetSchemaAccumulator {
	return ParquetSchemaAccumulator{
		schema: ParquetSchema{
			TagStructs: SchemaTag{
				Name:           "parquet_go_root",
				RepetitionType: Required,
			},
		},
	}
}

func (pa *ParquetSchemaAccumulator) WriteRow(row *cell.Row) {
	for i, key := range row.Cols {
		c := row.Cells[i]
		if c == nil || pa.fieldExists(key) {
			continue
		}
		pa.schema.Fields = append(pa.schema.Fields, getParquetSchema(key, c.Kind))
		pa.kinds = append(pa.kinds, c.Kind)
	}
}

func getParquetSchema(key string, kind cell.Kind) *ParquetSchema {
	schema := &ParquetSchema{
		TagStructs: SchemaTag{
			Name:           key,
			RepetitionType: Optional,
		},
	}
	switch kind {
	case cell.KindBool:
		schema.TagStructs.Type = "BOOLEAN"
	case cell.KindI16:
		schema.TagStructs.Type = "INT32"
		schema.TagStructs.ConvertedType = "INT_16"
	case cell.KindI32:
		schema.TagStructs.Type = "INT32"
	case cell.KindI64:
		schema.TagStructs.Type = "INT64"
	case cell.KindF32:
		schema.TagStructs.Type = "FLOAT"
	case cell.KindF64:
		schema.TagStructs.Type = "DOUBLE"
	case cell.KindTimestamp:
		schema.TagStructs.Type = "INT64"
		schema.TagStructs.ConvertedType = "TIMESTAMP_MILLIS"
	default:
		schema.TagStructs.Type = "BYTE_ARRAY"
		schema.TagStructs.ConvertedType = "UTF8"
		schema.TagStructs.Encoding = "PLAIN"
	}
	return schema
}

func (pa *ParquetSchemaAccumulator) fieldExists(fieldName string) bool {
	for _, field := range pa.schema.Fields {
		if field.TagStructs.Name == fieldName {
			return true
		}
	}
	return false
}

func (pa *ParquetSchemaAccumulator) GetColumnNames() []string {
	var cols []string
	for _, field := range pa.schema.Fields {
		cols = append(cols, field.TagStructs.Name)
	}
	return cols
}

// GetColumnTypes returns the cell kind of each column, same order as GetColumnNames
func (pa *ParquetSchemaAccumulator) GetColumnTypes() []string {
	var types []string
	for _, k := range pa.kinds {
		types = append(types, k.String())
	}
	return types
}

// ToParquetJSONSchema recursively converts
func (ps *ParquetSchema) ToParquetJSONSchema() *ParquetJSONSchema {
	var tagArr []string
	if ps.TagStructs.Type != "" {
		tagArr = append(tagArr, "type="+ps.TagStructs.Type)
	}
	if ps.TagStructs.ConvertedType != "" {
		tagArr = append(tagArr, "convertedtype="+ps.TagStructs.ConvertedType)
	}
	if ps.TagStructs.Encoding != "" {
		tagArr = append(tagArr, "encoding="+ps.TagStructs.Encoding)
	}
	if ps.TagStructs.Name != "" {
		tagArr = append(tagArr, "name="+ps.TagStructs.Name)
	}
	if string(ps.TagStructs.RepetitionType) != "" {
		tagArr = append(tagArr, "repetitiontype="+string(ps.TagStructs.RepetitionType))
	}
	var fields []*ParquetJSONSchema
	for _, field := range ps.Fields {
		fields = append(fields, field.ToParquetJSONSchema())
	}
	return &ParquetJSONSchema{
		Tag:    strings.Join(tagArr, ", "),
		Fields: fields,
	}
}

// GetSchemaString returns the JSON formatted schema string
func (pa *ParquetSchemaAccumulator) GetSchemaString() (string, error) {
	b, err := json.Marshal(pa.schema.ToParquetJSONSchema())
	if err != nil {
		return "", fmt.Errorf("error in json.Marshal: %w", err)
	}
	return string(b), nil
}

// RowJSON encodes row for the parquet-go JSON writer. NULLs are left out,
// timestamps become epoch milliseconds.
func RowJSON(row *cell.Row) ([]byte, error) {
	m := make(map[string]any, row.Len())
	for i, key := range row.Cols {
		c := row.Cells[i]
		if c == nil {
			continue
		}
		switch c.Kind {
		case cell.KindTimestamp:
			m[key] = c.TS.Time.UnixMilli()
		case cell.KindF32, cell.KindF64:
			if math.IsNaN(c.F64) || math.IsInf(c.F64, 0) {
				continue
			}
			m[key] = c.F64
		default:
			m[key] = c.Value()
		}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("error in json.Marshal: %w", err)
	}
	return b, nil
}
