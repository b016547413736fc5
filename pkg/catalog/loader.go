package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/avoss/donorserve/internal/utils"
	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-multierror"
)

// LoadFile reads a donor catalog from a CSV file with name,code,type
// columns. Malformed rows and duplicate codes are skipped rather than
// aborting the load; everything skipped is reported in the returned
// error alongside the usable store.
func LoadFile(path string, types *TypeSet) (*Store, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", path, err)
	}
	defer file.Close()

	store, err := Load(file, types)
	if err != nil {
		return store, fmt.Errorf("loading catalog %s: %w", path, err)
	}
	return store, nil
}

// Load reads catalog rows from r. The first row is treated as a header
// when its first cell is "name".
func Load(r io.Reader, types *TypeSet) (*Store, error) {
	if types == nil {
		types = NewTypeSet()
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var records []Record
	var errs *multierror.Error
	seen := make(map[string]bool)

	line := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("row %d: %w", line, err))
			continue
		}
		if line == 1 && len(row) > 0 && utils.Fold(row[0]) == "name" {
			continue
		}
		rec, err := parseRow(row, line)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		key := utils.Fold(rec.Code)
		if seen[key] {
			log.Warnf("Duplicate record code %q on row %d, keeping first", rec.Code, line)
			continue
		}
		seen[key] = true

		rec.Type, _ = types.Resolve(rec.TypeCode)
		records = append(records, rec)
	}

	rejected := 0
	if errs != nil {
		rejected = len(errs.Errors)
	}
	log.Debugf("Loaded %d catalog records (%d rows rejected)", len(records), rejected)
	return NewStore(records, types), errs.ErrorOrNil()
}

// parseRow turns one CSV row into a Record. Records missing a name or
// code are a data-quality issue, not a load failure; they are reported
// and dropped.
func parseRow(row []string, line int) (Record, error) {
	if len(row) < 2 {
		return Record{}, fmt.Errorf("row %d: expected name,code[,type], got %d columns", line, len(row))
	}
	name := strings.TrimSpace(row[0])
	code := strings.TrimSpace(row[1])
	if name == "" {
		return Record{}, fmt.Errorf("row %d: missing name", line)
	}
	if code == "" {
		return Record{}, fmt.Errorf("row %d: missing code", line)
	}
	typeCode := ""
	if len(row) > 2 {
		typeCode = strings.TrimSpace(row[2])
	}
	return Record{Name: name, Code: code, TypeCode: typeCode}, nil
}
