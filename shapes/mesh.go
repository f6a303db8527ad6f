package shapes

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
)

// Vertex is one row of a vertex CSV file.
type Vertex struct {
	X float32 `csv:"x"`
	Y float32 `csv:"y"`
	Z float32 `csv:"z"`
}

// LoadVertices reads a flat xyz vertex list from an OBJ or CSV file.
// The format is chosen by extension.
func LoadVertices(path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening mesh: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return ParseOBJ(f)
	case ".csv":
		return ParseCSV(f)
	default:
		return nil, fmt.Errorf("unsupported mesh format %q", filepath.Ext(path))
	}
}

// ParseOBJ extracts "v x y z" vertex records. Faces, normals and texture
// coordinates are ignored since sampling only needs positions.
func ParseOBJ(r io.Reader) ([]float32, error) {
	var out []float32
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 || fields[0] != "v" {
			continue
		}
		for _, f := range fields[1:4] {
			v, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return nil, fmt.Errorf("obj line %d: %w", line, err)
			}
			out = append(out, float32(v))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading obj: %w", err)
	}
	return out, nil
}

// ParseCSV reads vertices from a CSV with x,y,z headers.
func ParseCSV(r io.Reader) ([]float32, error) {
	var rows []Vertex
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("reading vertex csv: %w", err)
	}
	out := make([]float32, 0, 3*len(rows))
	for _, v := range rows {
		out = append(out, v.X, v.Y, v.Z)
	}
	return out, nil
}

// ToVertices converts a flat xyz buffer to CSV rows.
func ToVertices(flat []float32) []Vertex {
	out := make([]Vertex, len(flat)/3)
	for i := range out {
		out[i] = Vertex{X: flat[3*i], Y: flat[3*i+1], Z: flat[3*i+2]}
	}
	return out
}
