package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/feral-file/ff-nft-warehouse/internal/domain"
)

const parquetParallelism = 1

// memFile is an in-memory parquet file. Writes accumulate in a buffer;
// reads are served from a fixed byte slice and every Open gets its own cursor.
type memFile struct {
	data   []byte
	reader *bytes.Reader
	buffer *bytes.Buffer
}

func newWriteMemFile() *memFile {
	return &memFile{buffer: &bytes.Buffer{}}
}

func newReadMemFile(data []byte) *memFile {
	return &memFile{data: data, reader: bytes.NewReader(data)}
}

func (m *memFile) Create(string) (source.ParquetFile, error) { return m, nil }

func (m *memFile) Open(string) (source.ParquetFile, error) {
	if m.reader == nil {
		return nil, errors.New("memory parquet file is write-only")
	}
	return newReadMemFile(m.data), nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	if m.reader == nil {
		return int64(m.buffer.Len()), nil
	}
	return m.reader.Seek(offset, whence)
}

func (m *memFile) Read(p []byte) (int, error) {
	if m.reader == nil {
		return 0, io.EOF
	}
	return m.reader.Read(p)
}

func (m *memFile) Write(p []byte) (int, error) {
	if m.buffer == nil {
		return 0, errors.New("memory parquet file is read-only")
	}
	return m.buffer.Write(p)
}

func (m *memFile) Close() error { return nil }

// encodeParquet writes the records into a snappy-compressed parquet file
func encodeParquet[R any](records []R) ([]byte, error) {
	mf := newWriteMemFile()
	if err := writeParquet(mf, records); err != nil {
		return nil, err
	}
	return mf.buffer.Bytes(), nil
}

// writeParquet writes the records into an open parquet sink
func writeParquet[R any](pf source.ParquetFile, records []R) error {
	pw, err := writer.NewParquetWriter(pf, new(R), parquetParallelism)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, rec := range records {
		if err := pw.Write(rec); err != nil {
			return fmt.Errorf("failed to write parquet record: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return nil
}

// decodeParquet reads every record of a parquet file
func decodeParquet[R any](data []byte) ([]R, error) {
	return readParquet[R](newReadMemFile(data))
}

// readParquet reads every record of an open parquet source
func readParquet[R any](pf source.ParquetFile) ([]R, error) {
	pr, err := reader.NewParquetReader(pf, new(R), parquetParallelism)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPartition, err)
	}
	defer pr.ReadStop()

	n := int(pr.GetNumRows())
	records := make([]R, n)
	if n == 0 {
		return records, nil
	}
	if err := pr.Read(&records); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPartition, err)
	}
	return records, nil
}
