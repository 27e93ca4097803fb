package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"heartdash/internal/errors"
	"heartdash/internal/frame"

	"github.com/xuri/excelize/v2"
)

// RawData is a header row plus the raw string cells of every data row
type RawData struct {
	Headers []string
	Rows    [][]string
}

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType, sheet: "Sheet1"}
}

// WithSheet selects the worksheet read from xlsx files
func (r *DataReader) WithSheet(sheet string) *DataReader {
	r.sheet = sheet
	return r
}

// ReadData reads data from Excel or CSV files into structured format
func (r *DataReader) ReadData() (*RawData, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.NotFound(fmt.Sprintf("%s file %s", strings.ToUpper(r.fileType), r.filePath))
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported file type: %s", r.fileType))
	}
}

// readExcelData reads the configured worksheet into structured format
func (r *DataReader) readExcelData() (*RawData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open Excel file")
	}
	defer f.Close()
	log.Printf("[DataReader] Excel file opened in %.2fms", float64(time.Since(startTime).Nanoseconds())/1e6)

	readStart := time.Now()
	rows, err := f.GetRows(r.sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", r.sheet)
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)", r.sheet, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return r.processRows(rows)
}

// readCSVData reads CSV data into structured format
func (r *DataReader) readCSVData() (*RawData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open CSV file")
	}
	defer file.Close()

	readStart := time.Now()
	data, err := ReadCSV(file)
	if err != nil {
		return nil, err
	}
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(data.Rows)+1)
	return data, nil
}

// ReadCSV parses CSV content with a header row. Ragged rows are accepted.
func ReadCSV(in io.Reader) (*RawData, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV file")
	}
	return (&DataReader{fileType: "csv"}).processRows(rows)
}

// processRows splits the header row from the data rows
func (r *DataReader) processRows(rows [][]string) (*RawData, error) {
	if len(rows) < 2 {
		return nil, errors.NoData(fmt.Sprintf("%s file must have at least a header row and one data row", strings.ToUpper(r.fileType)))
	}

	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
	}

	log.Printf("[DataReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(rows)-1)

	return &RawData{Headers: headers, Rows: rows[1:]}, nil
}

// LoadFrame reads a CSV or XLSX file into a frame
func LoadFrame(path string) (*frame.Frame, error) {
	raw, err := NewDataReader(path).ReadData()
	if err != nil {
		return nil, err
	}
	f := frame.FromRows(raw.Headers, raw.Rows)
	log.Printf("[DataReader] Loaded data shape: (%d, %d)", f.Len(), len(f.Columns()))
	return f, nil
}
