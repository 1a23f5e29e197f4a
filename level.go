package shoal

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"

	"github.com/gocarina/gocsv"
)

// Placement is one row of a level file: an entity definition to spawn and
// where. Rotation is in degrees.
type Placement struct {
	Entity   string  `csv:"entity"`
	ID       string  `csv:"id"`
	X        float64 `csv:"x"`
	Y        float64 `csv:"y"`
	Rotation float64 `csv:"rotation"`
}

// LoadPlacements reads a level CSV from fsys.
func LoadPlacements(fsys fs.FS, p string) ([]Placement, error) {
	data, err := fs.ReadFile(fsys, cleanAssetPath(p))
	if err != nil {
		return nil, fmt.Errorf("reading level file: %w", err)
	}
	return ParsePlacements(bytes.NewReader(data))
}

// ParsePlacements decodes level CSV with an entity,id,x,y,rotation header.
// Column order follows the header; missing optional columns read as zero.
// A row without an entity name is an error.
func ParsePlacements(r io.Reader) ([]Placement, error) {
	var rows []Placement
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("parsing level file: %w", err)
	}
	for i, row := range rows {
		if row.Entity == "" {
			return nil, fmt.Errorf("parsing level file: row %d: missing entity", i+1)
		}
	}
	return rows, nil
}

// WritePlacements encodes placements as level CSV with a header row.
func WritePlacements(w io.Writer, placements []Placement) error {
	if err := gocsv.Marshal(placements, w); err != nil {
		return fmt.Errorf("writing level file: %w", err)
	}
	return nil
}
