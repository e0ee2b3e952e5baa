package coordinate

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type mappingKey struct {
	chrom string
	pos   int
}

type mappingValue struct {
	chrom string
	pos   int
}

// StaticConverter is a Converter backed by an explicit coordinate table. It
// serves deterministic tests and small curated mapping files; parsing full
// liftover chain data is out of scope for this module.
type StaticConverter struct {
	from     string
	to       string
	mappings map[mappingKey]mappingValue
}

// NewStaticConverter creates an empty converter between the two assemblies.
func NewStaticConverter(from, to string) *StaticConverter {
	return &StaticConverter{
		from:     from,
		to:       to,
		mappings: make(map[mappingKey]mappingValue),
	}
}

// Add registers one mapping entry. Chromosome labels are canonicalized.
func (c *StaticConverter) Add(chrom string, pos int, newChrom string, newPos int) {
	c.mappings[mappingKey{CanonicalChrom(chrom), pos}] = mappingValue{CanonicalChrom(newChrom), newPos}
}

// LoadStaticConverter reads a converter from tab- or space-separated lines of
// the form "chrom pos newChrom newPos". Blank lines and lines starting with
// '#' are skipped.
func LoadStaticConverter(from, to string, r io.Reader) (*StaticConverter, error) {
	conv := NewStaticConverter(from, to)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, fmt.Errorf("mapping line %d: expected 4 fields, got %d", lineNo, len(fields))
		}
		pos, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("mapping line %d: bad position %q", lineNo, fields[1])
		}
		newPos, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, fmt.Errorf("mapping line %d: bad position %q", lineNo, fields[3])
		}
		conv.Add(fields[0], pos, fields[2], newPos)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read mapping data: %w", err)
	}
	return conv, nil
}

// Convert implements Converter. Coordinates absent from the table are
// reported as unmapped. Assembly pairs other than the one the converter was
// built for are an error.
func (c *StaticConverter) Convert(fromAssembly, toAssembly, chrom string, pos int) (string, int, bool, error) {
	if fromAssembly != c.from || toAssembly != c.to {
		return "", 0, false, fmt.Errorf("converter maps %s to %s, not %s to %s", c.from, c.to, fromAssembly, toAssembly)
	}
	v, ok := c.mappings[mappingKey{CanonicalChrom(chrom), pos}]
	if !ok {
		return "", 0, false, nil
	}
	return v.chrom, v.pos, true, nil
}

// Len returns the number of mapping entries.
func (c *StaticConverter) Len() int { return len(c.mappings) }
