package coordinate

import (
	"fmt"
	"strings"

	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/errors"
)

// Converter maps a coordinate from one assembly to another. Implementations
// must be deterministic and side-effect-free. A false mapped return means no
// equivalent region exists in the target assembly, which is terminal for
// that coordinate.
type Converter interface {
	Convert(fromAssembly, toAssembly, chrom string, pos int) (newChrom string, newPos int, mapped bool, err error)
}

// ConvertedCoordinate pairs a source coordinate with its target-assembly
// equivalent. Mapped is false when the converter found no equivalent region.
type ConvertedCoordinate struct {
	Source Coordinate
	Target Coordinate
	Mapped bool
}

// LineResult is the per-line outcome of normalization. Exactly one of Coord
// and Err is meaningful: Err is a *errors.ValidationError when the line was
// rejected, otherwise Coord holds the coordinate to submit (converted to the
// target assembly when conversion was requested).
type LineResult struct {
	Index int    // zero-based position among non-blank input lines
	Line  int    // one-based line number in the raw input
	Input string // trimmed line content
	Coord Coordinate
	Err   error
}

// Normalizer parses raw input lines into coordinates. It is synchronous and
// holds no long-lived resources; the only side effects are calls into the
// injected Converter.
type Normalizer struct {
	source    string
	target    string
	converter Converter
}

// NewNormalizer creates a Normalizer for coordinates in the source assembly.
// If converter is non-nil and target differs from source, every valid
// coordinate is mapped to the target assembly and unmapped regions are
// rejected with kind UnmappedRegion.
func NewNormalizer(source, target string, converter Converter) *Normalizer {
	return &Normalizer{source: source, target: target, converter: converter}
}

// convertEnabled reports whether normalization includes a liftover step.
func (n *Normalizer) convertEnabled() bool {
	return n.converter != nil && n.target != "" && n.target != n.source
}

// ParseLine parses one raw input line into a Coordinate in the source
// assembly. The line must split on whitespace into at least chromosome and
// position fields. The returned error is a *errors.ValidationError carrying
// the given line number and input text.
func (n *Normalizer) ParseLine(lineNo int, raw string) (Coordinate, error) {
	trimmed := strings.TrimSpace(raw)
	parts := strings.Fields(trimmed)
	if len(parts) < 2 {
		return Coordinate{}, errors.NewValidationError(errors.MalformedInput, lineNo, trimmed,
			fmt.Sprintf("expected at least 2 whitespace-separated fields, got %d", len(parts)))
	}

	coord, err := ParseCoordinate(parts[0], parts[1], n.source)
	if err != nil {
		var verr *errors.ValidationError
		if errors.As(err, &verr) {
			return Coordinate{}, errors.NewValidationError(verr.Kind, lineNo, trimmed, verr.Reason)
		}
		return Coordinate{}, err
	}
	return coord, nil
}

// NormalizeLines parses, validates, and (if enabled) converts every line.
// Blank lines are skipped entirely. Invalid lines yield a LineResult with a
// ValidationError and never abort the batch. The result order follows input
// order, with Index counting only non-blank lines.
func (n *Normalizer) NormalizeLines(lines []string) []LineResult {
	results := make([]LineResult, 0, len(lines))

	index := 0
	for i, raw := range lines {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		lineNo := i + 1

		result := LineResult{Index: index, Line: lineNo, Input: trimmed}
		index++

		coord, err := n.ParseLine(lineNo, trimmed)
		if err != nil {
			result.Err = err
			results = append(results, result)
			continue
		}

		if n.convertEnabled() {
			converted, err := n.convert(lineNo, trimmed, coord)
			if err != nil {
				result.Err = err
				results = append(results, result)
				continue
			}
			coord = converted.Target
		}

		result.Coord = coord
		results = append(results, result)
	}
	return results
}

// convert maps coord to the target assembly. An unmapped region yields a
// ValidationError with kind UnmappedRegion.
func (n *Normalizer) convert(lineNo int, input string, coord Coordinate) (ConvertedCoordinate, error) {
	newChrom, newPos, mapped, err := n.converter.Convert(n.source, n.target, coord.Chrom, coord.Pos)
	if err != nil {
		return ConvertedCoordinate{}, errors.NewValidationError(errors.UnmappedRegion, lineNo, input,
			fmt.Sprintf("conversion %s to %s failed: %v", n.source, n.target, err))
	}
	if !mapped {
		return ConvertedCoordinate{}, errors.NewValidationError(errors.UnmappedRegion, lineNo, input,
			fmt.Sprintf("no %s region corresponds to %s %s", n.target, n.source, coord))
	}
	return ConvertedCoordinate{
		Source: coord,
		Target: Coordinate{Chrom: CanonicalChrom(newChrom), Pos: newPos, Assembly: n.target},
		Mapped: true,
	}, nil
}
