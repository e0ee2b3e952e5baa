// Package coordinate parses and normalizes raw genomic coordinate input,
// optionally mapping positions between reference assemblies through an
// injected Converter, and resolves chromosomes to RefSeq accessions.
package coordinate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/errors"
)

// Supported reference assembly tags.
const (
	AssemblyHG19 = "hg19"
	AssemblyHG38 = "hg38"
)

// chromPattern is the coarse shape check for a chromosome label. Labels that
// match it are further restricted to the allowed set below.
var chromPattern = regexp.MustCompile(`(?i)^(chr)?[0-9xym]+$`)

// allowedChromosomes is the set of canonical chromosome labels accepted for
// submission. Mitochondrial "m" passes the shape check but has no accession
// mapping, so it is rejected at accession resolution instead.
var allowedChromosomes = func() map[string]bool {
	set := make(map[string]bool, 27)
	for i := 1; i <= 24; i++ {
		set[strconv.Itoa(i)] = true
	}
	set["x"] = true
	set["y"] = true
	set["m"] = true
	return set
}()

// Coordinate is an immutable genomic position. Chrom is canonical: bare
// label without a "chr" prefix, lower case ("1".."24", "x", "y", "m").
// Pos is 1-based and always positive.
type Coordinate struct {
	Chrom    string
	Pos      int
	Assembly string
}

// String renders the coordinate in "chrom:pos" form.
func (c Coordinate) String() string {
	return fmt.Sprintf("%s:%d", c.Chrom, c.Pos)
}

// ChrName returns the "chr"-prefixed label used by liftover chain data,
// with X and Y upper-cased ("chr1", "chrX").
func (c Coordinate) ChrName() string {
	switch c.Chrom {
	case "x", "y", "m":
		return "chr" + strings.ToUpper(c.Chrom)
	default:
		return "chr" + c.Chrom
	}
}

// CanonicalChrom strips an optional "chr" prefix and lower-cases the label.
// It does not validate the result.
func CanonicalChrom(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	return strings.TrimPrefix(label, "chr")
}

// ParseCoordinate parses a single "chrom pos" pair into a Coordinate for the
// given assembly. The returned error, when non-nil, is a
// *errors.ValidationError with kind MalformedInput; Line and Input are left
// for the caller to fill in.
func ParseCoordinate(chromField, posField, assembly string) (Coordinate, error) {
	if !chromPattern.MatchString(chromField) {
		return Coordinate{}, errors.NewValidationError(errors.MalformedInput, 0, "",
			fmt.Sprintf("unsupported chromosome %q (expected 1-24, X or Y)", chromField))
	}
	chrom := CanonicalChrom(chromField)
	if !allowedChromosomes[chrom] {
		return Coordinate{}, errors.NewValidationError(errors.MalformedInput, 0, "",
			fmt.Sprintf("unsupported chromosome %q (expected 1-24, X or Y)", chromField))
	}

	for _, r := range posField {
		if r < '0' || r > '9' {
			return Coordinate{}, errors.NewValidationError(errors.MalformedInput, 0, "",
				fmt.Sprintf("position %q is not a positive integer", posField))
		}
	}
	pos, err := strconv.Atoi(posField)
	if err != nil || pos <= 0 {
		return Coordinate{}, errors.NewValidationError(errors.MalformedInput, 0, "",
			fmt.Sprintf("position %q is not a positive integer", posField))
	}

	return Coordinate{Chrom: chrom, Pos: pos, Assembly: assembly}, nil
}
