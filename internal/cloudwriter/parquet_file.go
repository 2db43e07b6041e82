package cloudwriter

import (
	"fmt"
	"io"

	"github.com/xitongsys/parquet-go/source"
)

// ParquetFile adapts a CloudWriter to the parquet source interface. The
// parquet writer only ever writes forward, so reads and end-relative seeks
// are unsupported.
type ParquetFile struct {
	cloudWriter CloudWriter
	offset      int64
}

func NewParquetFile(cw CloudWriter) *ParquetFile {
	return &ParquetFile{cloudWriter: cw}
}

func (p *ParquetFile) Open(name string) (source.ParquetFile, error) {
	return p, nil
}

func (p *ParquetFile) Create(name string) (source.ParquetFile, error) {
	return p, nil
}

func (p *ParquetFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		p.offset = offset
	case io.SeekCurrent:
		p.offset += offset
	case io.SeekEnd:
		return 0, fmt.Errorf("seek from end not supported for cloud storage")
	}
	return p.offset, nil
}

func (p *ParquetFile) Read(b []byte) (int, error) {
	return 0, fmt.Errorf("read not supported for cloud storage")
}

func (p *ParquetFile) Write(b []byte) (int, error) {
	return p.cloudWriter.Write(b)
}

func (p *ParquetFile) Close() error {
	return p.cloudWriter.Close()
}
