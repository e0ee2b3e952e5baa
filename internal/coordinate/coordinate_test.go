package coordinate

import (
	"fmt"
	"strings"
	"testing"

	"github.com/wangdehu1994/ncbi-primer-blast-automation/internal/errors"
)

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		name      string
		chrom     string
		pos       string
		wantChrom string
		wantPos   int
		wantErr   bool
	}{
		{name: "bare numeric", chrom: "1", pos: "123456", wantChrom: "1", wantPos: 123456},
		{name: "chr prefix stripped", chrom: "chr1", pos: "123456", wantChrom: "1", wantPos: 123456},
		{name: "upper case prefix", chrom: "CHR2", pos: "5", wantChrom: "2", wantPos: 5},
		{name: "x lower", chrom: "x", pos: "10", wantChrom: "x", wantPos: 10},
		{name: "X upper canonicalized", chrom: "X", pos: "10", wantChrom: "x", wantPos: 10},
		{name: "chrY", chrom: "chrY", pos: "99", wantChrom: "y", wantPos: 99},
		{name: "23 aliases X", chrom: "23", pos: "1", wantChrom: "23", wantPos: 1},
		{name: "24 aliases Y", chrom: "24", pos: "1", wantChrom: "24", wantPos: 1},
		{name: "mitochondrial passes shape check", chrom: "chrM", pos: "100", wantChrom: "m", wantPos: 100},
		{name: "unknown chromosome", chrom: "chrZ", pos: "99", wantErr: true},
		{name: "chromosome 25 out of range", chrom: "25", pos: "1", wantErr: true},
		{name: "zero position", chrom: "chr1", pos: "0", wantErr: true},
		{name: "negative position", chrom: "chr1", pos: "-5", wantErr: true},
		{name: "fractional position", chrom: "chr1", pos: "12.5", wantErr: true},
		{name: "non-numeric position", chrom: "chr1", pos: "abc", wantErr: true},
		{name: "empty chromosome", chrom: "", pos: "1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coord, err := ParseCoordinate(tt.chrom, tt.pos, AssemblyHG19)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", coord)
				}
				var verr *errors.ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected ValidationError, got %T", err)
				}
				if verr.Kind != errors.MalformedInput {
					t.Errorf("expected kind %s, got %s", errors.MalformedInput, verr.Kind)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if coord.Chrom != tt.wantChrom {
				t.Errorf("chrom: got %q, want %q", coord.Chrom, tt.wantChrom)
			}
			if coord.Pos != tt.wantPos {
				t.Errorf("pos: got %d, want %d", coord.Pos, tt.wantPos)
			}
			if coord.Assembly != AssemblyHG19 {
				t.Errorf("assembly: got %q, want %q", coord.Assembly, AssemblyHG19)
			}
		})
	}
}

func TestCoordinate_ChrName(t *testing.T) {
	tests := []struct {
		chrom string
		want  string
	}{
		{"1", "chr1"},
		{"22", "chr22"},
		{"x", "chrX"},
		{"y", "chrY"},
	}
	for _, tt := range tests {
		c := Coordinate{Chrom: tt.chrom, Pos: 1}
		if got := c.ChrName(); got != tt.want {
			t.Errorf("ChrName(%q): got %q, want %q", tt.chrom, got, tt.want)
		}
	}
}

func TestNormalizer_ParseLine(t *testing.T) {
	n := NewNormalizer(AssemblyHG19, "", nil)

	t.Run("too few fields", func(t *testing.T) {
		_, err := n.ParseLine(1, "chr1")
		var verr *errors.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if verr.Line != 1 {
			t.Errorf("expected line 1, got %d", verr.Line)
		}
	})

	t.Run("extra fields ignored", func(t *testing.T) {
		coord, err := n.ParseLine(1, "chr1 123456 trailing comment")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if coord.Chrom != "1" || coord.Pos != 123456 {
			t.Errorf("got %v, want 1:123456", coord)
		}
	})

	t.Run("tabs as separators", func(t *testing.T) {
		coord, err := n.ParseLine(1, "chr7\t55249071")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if coord.Chrom != "7" || coord.Pos != 55249071 {
			t.Errorf("got %v, want 7:55249071", coord)
		}
	})
}

func TestNormalizeLines_SkipsBlankLines(t *testing.T) {
	n := NewNormalizer(AssemblyHG38, "", nil)

	results := n.NormalizeLines([]string{"chr1 100", "", "   ", "chr2 200"})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Index != 0 || results[0].Line != 1 {
		t.Errorf("first result: index %d line %d, want 0/1", results[0].Index, results[0].Line)
	}
	if results[1].Index != 1 || results[1].Line != 4 {
		t.Errorf("second result: index %d line %d, want 1/4", results[1].Index, results[1].Line)
	}
}

func TestNormalizeLines_InvalidLinesDoNotAbort(t *testing.T) {
	conv := NewStaticConverter(AssemblyHG19, AssemblyHG38)
	conv.Add("1", 123456, "1", 123520)
	n := NewNormalizer(AssemblyHG19, AssemblyHG38, conv)

	results := n.NormalizeLines([]string{"chr1 123456", "chrZ 99", "chr2 234567"})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	// Valid line converts to the target assembly.
	if results[0].Err != nil {
		t.Fatalf("line 1: unexpected error %v", results[0].Err)
	}
	if results[0].Coord.Chrom != "1" || results[0].Coord.Pos != 123520 {
		t.Errorf("line 1: got %v, want 1:123520", results[0].Coord)
	}
	if results[0].Coord.Assembly != AssemblyHG38 {
		t.Errorf("line 1: assembly %q, want %q", results[0].Coord.Assembly, AssemblyHG38)
	}

	// Invalid chromosome is malformed input.
	var verr *errors.ValidationError
	if !errors.As(results[1].Err, &verr) {
		t.Fatalf("line 2: expected ValidationError, got %v", results[1].Err)
	}
	if verr.Kind != errors.MalformedInput {
		t.Errorf("line 2: kind %s, want %s", verr.Kind, errors.MalformedInput)
	}

	// Coordinate absent from the converter is an unmapped region.
	if !errors.As(results[2].Err, &verr) {
		t.Fatalf("line 3: expected ValidationError, got %v", results[2].Err)
	}
	if verr.Kind != errors.UnmappedRegion {
		t.Errorf("line 3: kind %s, want %s", verr.Kind, errors.UnmappedRegion)
	}
}

func TestNormalizeLines_Idempotent(t *testing.T) {
	n := NewNormalizer(AssemblyHG38, "", nil)

	first := n.NormalizeLines([]string{"chr17 7577120", "X 153296777"})
	for _, r := range first {
		if r.Err != nil {
			t.Fatalf("unexpected error: %v", r.Err)
		}
	}

	// Re-normalizing the canonical rendering yields the same coordinates.
	rendered := make([]string, len(first))
	for i, r := range first {
		rendered[i] = fmt.Sprintf("%s %d", r.Coord.Chrom, r.Coord.Pos)
	}
	second := n.NormalizeLines(rendered)
	for i := range first {
		if second[i].Coord != first[i].Coord {
			t.Errorf("result %d: %v != %v", i, second[i].Coord, first[i].Coord)
		}
	}
}

func TestAccession(t *testing.T) {
	tests := []struct {
		chrom    string
		assembly string
		want     string
		wantOK   bool
	}{
		{"1", AssemblyHG19, "NC_000001.10", true},
		{"1", AssemblyHG38, "NC_000001.11", true},
		{"chr1", AssemblyHG38, "NC_000001.11", true},
		{"x", AssemblyHG38, "NC_000023.11", true},
		{"23", AssemblyHG38, "NC_000023.11", true},
		{"y", AssemblyHG19, "NC_000024.9", true},
		{"24", AssemblyHG19, "NC_000024.9", true},
		{"m", AssemblyHG38, "", false},
		{"1", "mm10", "", false},
	}

	for _, tt := range tests {
		got, ok := Accession(tt.chrom, tt.assembly)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Accession(%q, %q): got (%q, %v), want (%q, %v)",
				tt.chrom, tt.assembly, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestLoadStaticConverter(t *testing.T) {
	data := strings.Join([]string{
		"# chrom pos newChrom newPos",
		"chr1 123456 chr1 123520",
		"",
		"x 1000 x 1042",
	}, "\n")

	conv, err := LoadStaticConverter(AssemblyHG19, AssemblyHG38, strings.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conv.Len() != 2 {
		t.Fatalf("expected 2 mappings, got %d", conv.Len())
	}

	chrom, pos, mapped, err := conv.Convert(AssemblyHG19, AssemblyHG38, "1", 123456)
	if err != nil || !mapped {
		t.Fatalf("expected mapped, got mapped=%v err=%v", mapped, err)
	}
	if chrom != "1" || pos != 123520 {
		t.Errorf("got %s:%d, want 1:123520", chrom, pos)
	}

	_, _, mapped, err = conv.Convert(AssemblyHG19, AssemblyHG38, "2", 234567)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mapped {
		t.Error("expected unmapped for absent coordinate")
	}

	if _, _, _, err := conv.Convert(AssemblyHG38, AssemblyHG19, "1", 123456); err == nil {
		t.Error("expected error for reversed assembly pair")
	}
}

func TestLoadStaticConverter_BadLines(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "too few fields", data: "chr1 123456 chr1"},
		{name: "bad source position", data: "chr1 abc chr1 123520"},
		{name: "bad target position", data: "chr1 123456 chr1 abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadStaticConverter(AssemblyHG19, AssemblyHG38, strings.NewReader(tt.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
