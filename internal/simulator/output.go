package simulator

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/linqiyu/coffeesim/internal/cloudwriter"
	"github.com/linqiyu/coffeesim/internal/models"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

// LogExporter writes the finished simulation log to durable storage.
type LogExporter interface {
	Export(rows []models.SimulationRow) error
}

// NewExporter picks the exporter for the configured output format.
func NewExporter(cfg *models.Config, path string) (LogExporter, error) {
	switch cfg.OutputFormat {
	case "", "csv":
		return &CSVExporter{Path: path}, nil
	case "json":
		return &JSONExporter{Path: path}, nil
	case "parquet":
		exporter := &ParquetExporter{Path: path}
		if cfg.CloudStorage {
			factory, err := cloudwriter.NewS3WriterFactory(cfg.AWSRegion)
			if err != nil {
				return nil, fmt.Errorf("failed to create cloud writer factory: %w", err)
			}
			exporter.CloudFactory = factory
			exporter.CloudBucket = cfg.CloudBucket
		}
		return exporter, nil
	case "console":
		return &ConsoleExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", cfg.OutputFormat)
	}
}

var resultHeader = []string{
	"customer_id", "age_group", "occupation", "income",
	"preference", "price_sensitivity", "decision",
	"brand", "method", "item", "price", "reason",
}

// CSVExporter writes the flat result table. The file starts with a UTF-8 BOM
// so Chinese reason/item text survives a round trip through Excel.
type CSVExporter struct {
	Path string
}

func (e *CSVExporter) Export(rows []models.SimulationRow) error {
	if err := os.MkdirAll(filepath.Dir(e.Path), os.ModePerm); err != nil {
		return err
	}
	file, err := os.Create(e.Path)
	if err != nil {
		return fmt.Errorf("failed to create results file: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString("\uFEFF"); err != nil {
		return err
	}

	w := csv.NewWriter(file)
	if err := w.Write(resultHeader); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.CustomerID,
			row.AgeGroup,
			row.Occupation,
			strconv.Itoa(row.Income),
			row.Preference,
			row.PriceSensitivity,
			row.Decision,
			row.Brand,
			row.Method,
			row.Item,
			strconv.FormatFloat(row.Price, 'f', -1, 64),
			row.Reason,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadResultsCSV loads an exported results file back into rows. Used by the
// downstream analysis tooling and the round-trip tests.
func ReadResultsCSV(path string) ([]models.SimulationRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	if len(header) != len(resultHeader) {
		return nil, fmt.Errorf("unexpected results header %v", header)
	}

	var rows []models.SimulationRow
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		income, _ := strconv.Atoi(fields[3])
		price, _ := strconv.ParseFloat(fields[10], 64)
		rows = append(rows, models.SimulationRow{
			CustomerID:       fields[0],
			AgeGroup:         fields[1],
			Occupation:       fields[2],
			Income:           income,
			Preference:       fields[4],
			PriceSensitivity: fields[5],
			Decision:         fields[6],
			Brand:            fields[7],
			Method:           fields[8],
			Item:             fields[9],
			Price:            price,
			Reason:           fields[11],
		})
	}
	return rows, nil
}

// JSONExporter writes one JSON object per line.
type JSONExporter struct {
	Path string
}

func (e *JSONExporter) Export(rows []models.SimulationRow) error {
	if err := os.MkdirAll(filepath.Dir(e.Path), os.ModePerm); err != nil {
		return err
	}
	file, err := os.Create(e.Path)
	if err != nil {
		return fmt.Errorf("failed to create results file: %w", err)
	}
	defer file.Close()

	for _, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return err
		}
		if _, err := file.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	return nil
}

// ParquetExporter writes the log as a parquet file, locally or to S3 when a
// cloud writer factory is configured.
type ParquetExporter struct {
	Path         string
	CloudFactory cloudwriter.CloudWriterFactory
	CloudBucket  string
}

func (e *ParquetExporter) Export(rows []models.SimulationRow) error {
	var fw source.ParquetFile
	var err error
	if e.CloudFactory != nil {
		cw, err := e.CloudFactory.NewWriter(e.CloudBucket, e.Path)
		if err != nil {
			return fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		fw = cloudwriter.NewParquetFile(cw)
	} else {
		if err := os.MkdirAll(filepath.Dir(e.Path), os.ModePerm); err != nil {
			return err
		}
		fw, err = local.NewLocalFileWriter(e.Path)
		if err != nil {
			return fmt.Errorf("failed to create local file writer: %w", err)
		}
	}

	pw, err := writer.NewParquetWriter(fw, new(models.SimulationRow), 4)
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}
	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("failed to finalise parquet file: %w", err)
	}
	return fw.Close()
}

// ConsoleExporter dumps rows to stdout, mainly for dry runs.
type ConsoleExporter struct{}

func (e *ConsoleExporter) Export(rows []models.SimulationRow) error {
	for _, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	}
	log.Printf("wrote %d rows to stdout", len(rows))
	return nil
}
