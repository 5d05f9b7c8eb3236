package engine

import (
	"fmt"
	"io"

	"salesreport/internal/models"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/apache/arrow/go/v18/arrow/memory"
)

// RecordSchema is the columnar layout of a cleaned record set.
var RecordSchema = arrow.NewSchema([]arrow.Field{
	{Name: "date_sold", Type: arrow.FixedWidthTypes.Date32},
	{Name: "category", Type: arrow.BinaryTypes.String},
	{Name: "total_sales", Type: arrow.PrimitiveTypes.Float64},
}, nil)

// ColumnStore holds the cleaned records in Struct-of-Arrays (Arrow) format
// for columnar consumers.
type ColumnStore struct {
	record arrow.Record
}

// NewColumnStore copies records into a single Arrow record batch. Amounts are
// exported as float64; the decimal values stay authoritative for aggregation.
func NewColumnStore(records []models.SalesRecord) *ColumnStore {
	b := array.NewRecordBuilder(memory.NewGoAllocator(), RecordSchema)
	defer b.Release()

	dates := b.Field(0).(*array.Date32Builder)
	cats := b.Field(1).(*array.StringBuilder)
	sales := b.Field(2).(*array.Float64Builder)

	dates.Reserve(len(records))
	cats.Reserve(len(records))
	sales.Reserve(len(records))

	for _, r := range records {
		dates.Append(arrow.Date32FromTime(r.DateSold))
		cats.Append(r.Category)
		sales.Append(r.TotalSales.InexactFloat64())
	}
	return &ColumnStore{record: b.NewRecord()}
}

func (cs *ColumnStore) Len() int { return int(cs.record.NumRows()) }

func (cs *ColumnStore) Record() arrow.Record { return cs.record }

// WriteIPC streams the batch in Arrow IPC stream format.
func (cs *ColumnStore) WriteIPC(w io.Writer) error {
	iw := ipc.NewWriter(w, ipc.WithSchema(RecordSchema))
	if err := iw.Write(cs.record); err != nil {
		iw.Close()
		return fmt.Errorf("write arrow batch: %w", err)
	}
	return iw.Close()
}

func (cs *ColumnStore) Release() { cs.record.Release() }
