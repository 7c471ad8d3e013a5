package parquet_accumulator

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/danthegoodman1/chfdw/cell"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"
)

func testRows() []*cell.Row {
	r1 := cell.NewRow()
	r1.Push("id", cell.I64(1))
	r1.Push("name", nil)
	r1.Push("ts", cell.Timestamp(time.Date(2022, 12, 30, 0, 0, 0, 0, time.UTC)))

	r2 := cell.NewRow()
	r2.Push("id", cell.I64(2))
	r2.Push("name", cell.String("b"))
	r2.Push("ts", cell.Timestamp(time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC)))
	r2.Push("ok", cell.Bool(true))
	return []*cell.Row{r1, r2}
}

func TestGetSchemaString(t *testing.T) {
	a := NewParquetAccumulator()
	for _, r := range testRows() {
		a.WriteRow(r)
	}

	schemaString, err := a.GetSchemaString()
	if err != nil {
		t.Fatal(err)
	}
	if schemaString != `{"Tag":"name=parquet_go_root, repetitiontype=REQUIRED","Fields":[{"Tag":"type=INT64, name=id, repetitiontype=OPTIONAL"},{"Tag":"type=INT64, convertedtype=TIMESTAMP_MILLIS, name=ts, repetitiontype=OPTIONAL"},{"Tag":"type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN, name=name, repetitiontype=OPTIONAL"},{"Tag":"type=BOOLEAN, name=ok, repetitiontype=OPTIONAL"}]}` {
		t.Log(schemaString)
		t.Fatal("got incorrect schema string")
	}

	names := a.GetColumnNames()
	types := a.GetColumnTypes()
	if len(names) != 4 || names[2] != "name" || types[2] != "String" || types[1] != "Timestamp" {
		t.Fatal("unexpected columns", names, types)
	}
}

func TestRowJSON(t *testing.T) {
	b, err := RowJSON(testRows()[0])
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"id":1,"ts":1672358400000}` {
		t.Fatal("unexpected row json", string(b))
	}
}

func TestFullCycle(t *testing.T) {
	rows := testRows()
	psa := NewParquetAccumulator()
	for _, r := range rows {
		psa.WriteRow(r)
	}

	parquetSchema, err := psa.GetSchemaString()
	if err != nil {
		t.Fatal("error in GetSchemaString")
	}

	fileName := filepath.Join(t.TempDir(), "temp.parquet")
	fw, err := local.NewLocalFileWriter(fileName)
	if err != nil {
		t.Fatal(err)
	}

	pw, err := writer.NewJSONWriter(parquetSchema, fw, 4)
	if err != nil {
		t.Fatal(err)
	}

	for _, r := range rows {
		b, err := RowJSON(r)
		if err != nil {
			t.Fatal(err)
		}
		if err = pw.Write(string(b)); err != nil {
			t.Fatal(err)
		}
	}

	if err = pw.WriteStop(); err != nil {
		t.Fatal(err)
	}
	fw.Close()

	fr, err := local.NewLocalFileReader(fileName)
	if err != nil {
		t.Fatal("Can't open file", err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, parquetSchema, 4)
	if err != nil {
		t.Fatal("Can't create parquet reader", err)
	}
	defer pr.ReadStop()

	if num := int(pr.GetNumRows()); num != len(rows) {
		t.Fatal("expected", len(rows), "rows, got", num)
	}
}
