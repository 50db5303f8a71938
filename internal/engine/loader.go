package engine

import (
	"bufio"
	"context"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"customerdash/internal/models"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/csv"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Column names shared by the CSV and SQLite sources.
const (
	ColProfession     = "Profession"
	ColGender         = "gender"
	ColProvince       = "province"
	ColAge            = "age"
	ColGeneration     = "generation"
	ColAnnualIncome   = "Annual_Income"
	ColWorkExperience = "Work_Experience"

	ColLatitude  = "latitude"
	ColLongitude = "longitude"
)

const csvChunkRows = 4096

var customerColumns = map[string]arrow.DataType{
	ColProfession:     arrow.BinaryTypes.String,
	ColGender:         arrow.BinaryTypes.String,
	ColProvince:       arrow.BinaryTypes.String,
	ColAge:            arrow.PrimitiveTypes.Int64,
	ColGeneration:     arrow.BinaryTypes.String,
	ColAnnualIncome:   arrow.PrimitiveTypes.Float64,
	ColWorkExperience: arrow.PrimitiveTypes.Int64,
}

var coordinateColumns = map[string]arrow.DataType{
	ColProvince:  arrow.BinaryTypes.String,
	ColLatitude:  arrow.PrimitiveTypes.Float64,
	ColLongitude: arrow.PrimitiveTypes.Float64,
}

// Sources names the two backing files of the store.
type Sources struct {
	Customers   string
	Coordinates string
}

type sourceKind int

const (
	kindCSV sourceKind = iota
	kindSQLite
)

func kindOf(path string) (sourceKind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return kindCSV, nil
	case ".db", ".sqlite", ".sqlite3":
		return kindSQLite, nil
	}
	return 0, fmt.Errorf("unsupported source %q: want .csv, .db, .sqlite or .sqlite3", path)
}

// Load reads both tables concurrently and builds the store.
func Load(ctx context.Context, src Sources, opts Options, logger *zap.Logger) (*RecordStore, error) {
	start := time.Now()
	custKind, err := kindOf(src.Customers)
	if err != nil {
		return nil, err
	}
	coordKind, err := kindOf(src.Coordinates)
	if err != nil {
		return nil, err
	}

	b := NewBuilder(opts)
	var coords []models.ProvinceCoordinate

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if custKind == kindSQLite {
			err = LoadSQLiteCustomers(ctx, src.Customers, b)
		} else {
			err = LoadCSVCustomers(src.Customers, b)
		}
		if err != nil {
			return fmt.Errorf("load customers %s: %w", src.Customers, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if coordKind == kindSQLite {
			coords, err = LoadSQLiteCoordinates(ctx, src.Coordinates)
		} else {
			coords, err = LoadCSVCoordinates(src.Coordinates)
		}
		if err != nil {
			return fmt.Errorf("load coordinates %s: %w", src.Coordinates, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	store, err := b.Build(coords)
	if err != nil {
		return nil, err
	}
	logger.Info("record store loaded",
		zap.Int("customers", store.Len()),
		zap.Int("provinces", len(coords)),
		zap.Int("professions", len(store.professionDict)),
		zap.Duration("elapsed", time.Since(start)))
	return store, nil
}

// readCSV streams a CSV file through the Arrow reader, restricted to the
// given typed columns, handing each record batch to fn. The header is checked
// up front so a missing column is reported by name. fn also receives the
// reader's pending parse error, which Arrow records while nulling the cell.
func readCSV(path, source string, columns map[string]arrow.DataType, fn func(rec arrow.Record, idx map[string]int, parseErr error) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	header, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	names, err := stdcsv.NewReader(strings.NewReader(header)).Read()
	if err != nil {
		return &DataIntegrityError{Source: source, Reason: "unreadable header: " + err.Error()}
	}
	present := make(map[string]bool, len(names))
	for _, name := range names {
		present[strings.TrimSpace(name)] = true
	}
	include := make([]string, 0, len(columns))
	for name := range columns {
		include = append(include, name)
	}
	sort.Strings(include)
	for _, name := range include {
		if !present[name] {
			return &DataIntegrityError{Source: source, Field: name, Reason: "missing column"}
		}
	}

	// header only
	if _, err := br.Peek(1); errors.Is(err, io.EOF) {
		return nil
	}

	r := csv.NewInferringReader(io.MultiReader(strings.NewReader(header), br),
		csv.WithAllocator(memory.NewGoAllocator()),
		csv.WithHeader(true),
		csv.WithChunk(csvChunkRows),
		csv.WithColumnTypes(columns),
		csv.WithIncludeColumns(include),
	)
	defer r.Release()

	var idx map[string]int
	for r.Next() {
		rec := r.Record()
		if idx == nil {
			idx = make(map[string]int, len(columns))
			for _, name := range include {
				idx[name] = rec.Schema().FieldIndices(name)[0]
			}
		}
		if err := fn(rec, idx, r.Err()); err != nil {
			return err
		}
	}
	if err := r.Err(); err != nil {
		return &DataIntegrityError{Source: source, Reason: err.Error()}
	}
	return nil
}

// nullField reports a typed cell that came back null: either empty, or
// unparseable when the reader holds a parse error.
func nullField(source string, row int, field string, parseErr error) error {
	reason := "empty"
	if parseErr != nil {
		reason = parseErr.Error()
	}
	return &DataIntegrityError{Source: source, Row: row, Field: field, Reason: reason}
}

// LoadCSVCustomers appends every row of a customer CSV to b.
func LoadCSVCustomers(path string, b *Builder) error {
	row := 0
	return readCSV(path, "customers", customerColumns, func(rec arrow.Record, idx map[string]int, parseErr error) error {
		prof := rec.Column(idx[ColProfession]).(*array.String)
		gender := rec.Column(idx[ColGender]).(*array.String)
		prov := rec.Column(idx[ColProvince]).(*array.String)
		age := rec.Column(idx[ColAge]).(*array.Int64)
		gen := rec.Column(idx[ColGeneration]).(*array.String)
		income := rec.Column(idx[ColAnnualIncome]).(*array.Float64)
		exp := rec.Column(idx[ColWorkExperience]).(*array.Int64)

		for j := 0; j < int(rec.NumRows()); j++ {
			row++
			switch {
			case age.IsNull(j):
				return nullField("customers", row, ColAge, parseErr)
			case income.IsNull(j):
				return nullField("customers", row, ColAnnualIncome, parseErr)
			case exp.IsNull(j):
				return nullField("customers", row, ColWorkExperience, parseErr)
			}
			if err := b.Add(models.CustomerRecord{
				Profession:     prof.Value(j),
				Gender:         gender.Value(j),
				Province:       prov.Value(j),
				Age:            int(age.Value(j)),
				Generation:     gen.Value(j),
				AnnualIncome:   income.Value(j),
				WorkExperience: int(exp.Value(j)),
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadCSVCoordinates reads a province,latitude,longitude CSV.
func LoadCSVCoordinates(path string) ([]models.ProvinceCoordinate, error) {
	var out []models.ProvinceCoordinate
	err := readCSV(path, "coordinates", coordinateColumns, func(rec arrow.Record, idx map[string]int, parseErr error) error {
		prov := rec.Column(idx[ColProvince]).(*array.String)
		lat := rec.Column(idx[ColLatitude]).(*array.Float64)
		lon := rec.Column(idx[ColLongitude]).(*array.Float64)

		for j := 0; j < int(rec.NumRows()); j++ {
			row := len(out) + 1
			switch {
			case lat.IsNull(j):
				return nullField("coordinates", row, ColLatitude, parseErr)
			case lon.IsNull(j):
				return nullField("coordinates", row, ColLongitude, parseErr)
			}
			out = append(out, models.ProvinceCoordinate{
				Province:  prov.Value(j),
				Latitude:  lat.Value(j),
				Longitude: lon.Value(j),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
