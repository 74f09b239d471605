package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/rickgao/eedraws/internal/model"
)

// Fixed leading columns; dd1-dd18 follow.
var baseColumns = []string{
	"drawNumber",
	"drawDate",
	"drawDateFull",
	"drawName",
	"drawSize",
	"drawCRS",
	"drawText2",
	"drawDateTime",
	"drawCutOff",
	"drawDistributionAsOn",
}

// Columns returns the CSV header in column order.
func Columns() []string {
	cols := make([]string, 0, len(baseColumns)+len(model.PoolKeys))
	cols = append(cols, baseColumns...)
	for _, k := range model.PoolKeys {
		cols = append(cols, string(k))
	}
	return cols
}

// IOError is returned when the dataset file cannot be read, parsed or written.
type IOError struct {
	Op   string // "read", "parse" or "write"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// CSV is the draw dataset stored at a fixed path.
type CSV struct {
	path string
}

// NewCSV returns a store for the dataset file at path.
func NewCSV(path string) *CSV {
	return &CSV{path: path}
}

// Path returns the dataset file path.
func (s *CSV) Path() string {
	return s.path
}

// Exists reports whether the dataset has been initialized.
func (s *CSV) Exists() (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, &IOError{Op: "read", Path: s.path, Err: err}
}

// Load reads every draw in the dataset, in file order.
// A missing file yields an empty dataset.
func (s *CSV) Load() ([]model.Draw, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []model.Draw{}, nil
		}
		return nil, &IOError{Op: "read", Path: s.path, Err: err}
	}
	defer f.Close()

	draws, err := decode(f)
	if err != nil {
		return nil, &IOError{Op: "parse", Path: s.path, Err: err}
	}
	return draws, nil
}

// Save replaces the dataset with draws.
func (s *CSV) Save(draws []model.Draw) error {
	err := writeAtomic(s.path, func(w io.Writer) error {
		return encode(w, draws)
	})
	if err != nil {
		return &IOError{Op: "write", Path: s.path, Err: err}
	}
	return nil
}

func encode(w io.Writer, draws []model.Draw) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns()); err != nil {
		return err
	}

	for _, d := range draws {
		if err := cw.Write(toRow(d)); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func decode(r io.Reader) ([]model.Draw, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return []model.Draw{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, required := range []string{"drawNumber", "drawDate"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("header missing column %q", required)
		}
	}

	draws := []model.Draw{}
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		d, err := fromRow(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		draws = append(draws, d)
	}

	return draws, nil
}

func toRow(d model.Draw) []string {
	row := []string{
		strconv.Itoa(d.Number),
		d.DateString(),
		d.DateFull,
		d.Name,
		strconv.Itoa(d.Invitations),
		strconv.Itoa(d.CRSCutoff),
		d.Text2,
		d.DateTime,
		d.CutOff,
		d.DistributionAsOn,
	}
	for _, k := range model.PoolKeys {
		row = append(row, strconv.Itoa(d.Pool[k]))
	}
	return row
}

func fromRow(rec []string, idx map[string]int) (model.Draw, error) {
	field := func(name string) string {
		i, ok := idx[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	count := func(name string) (int, error) {
		v := strings.ReplaceAll(field(name), ",", "")
		if v == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("column %s: %w", name, err)
		}
		return n, nil
	}

	number, err := count("drawNumber")
	if err != nil {
		return model.Draw{}, err
	}
	date, err := model.ParseDate(field("drawDate"))
	if err != nil {
		return model.Draw{}, fmt.Errorf("column drawDate: %w", err)
	}
	invitations, err := count("drawSize")
	if err != nil {
		return model.Draw{}, err
	}
	crs, err := count("drawCRS")
	if err != nil {
		return model.Draw{}, err
	}

	pool := make(map[model.PoolKey]int, len(model.PoolKeys))
	for _, k := range model.PoolKeys {
		n, err := count(string(k))
		if err != nil {
			return model.Draw{}, err
		}
		pool[k] = n
	}

	name := field("drawName")
	return model.Draw{
		Number:           number,
		Date:             date,
		Name:             name,
		CRSCutoff:        crs,
		Invitations:      invitations,
		Categories:       model.CategoryCounts(name, invitations),
		Pool:             pool,
		DateFull:         field("drawDateFull"),
		DateTime:         field("drawDateTime"),
		Text2:            field("drawText2"),
		CutOff:           field("drawCutOff"),
		DistributionAsOn: field("drawDistributionAsOn"),
	}, nil
}
