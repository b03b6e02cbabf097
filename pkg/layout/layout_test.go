// pkg/layout/layout_test.go
// Tests for struct-layout analysis and pointer arithmetic.

package layout

import (
	"testing"
	"unsafe"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

type paddedStruct struct {
	A byte
	B int64
	C byte
}

func TestAnalyzeReportsSizeAndFields(t *testing.T) {
	l := Analyze(paddedStruct{})

	assert.Equal(t, SizeOf[paddedStruct](), l.Size)
	assert.Len(t, l.Fields, 3)
	assert.Equal(t, "A", l.Fields[0].Name)
	assert.Equal(t, "B", l.Fields[1].Name)
	assert.Equal(t, "C", l.Fields[2].Name)
	assert.Greater(t, l.TotalPadding, uintptr(0), "a byte immediately followed by an int64 must incur alignment padding")
}

func TestAnalyzeAcceptsPointer(t *testing.T) {
	l := Analyze(&paddedStruct{})
	assert.Equal(t, "layout.paddedStruct", l.Name)
}

func TestAnalyzeNonStruct(t *testing.T) {
	l := Analyze(int64(0))
	assert.Empty(t, l.Fields)
	assert.Equal(t, SizeOf[int64](), l.Size)
}

func TestStringIncludesFieldNames(t *testing.T) {
	// byte is an alias for uint8, not a distinct named type, so
	// reflect reports the field's type as "uint8".
	out := Analyze(paddedStruct{}).String()
	assert.Contains(t, out, "A uint8")
	assert.Contains(t, out, "B int64")
}

func TestPtrAdd(t *testing.T) {
	buf := make([]byte, 16)
	base := unsafe.Pointer(&buf[0])
	moved := PtrAdd(base, 4)
	assert.Equal(t, unsafe.Pointer(&buf[4]), moved)
}

// TestAnalyzeReportMatchesExpectedLayout compares a full layout report
// against a hand-computed expectation with cmp.Diff rather than field
// by field, so a future Field added to Layout without a matching
// expectation here shows up as a named diff instead of silently
// passing.
func TestAnalyzeReportMatchesExpectedLayout(t *testing.T) {
	want := Layout{
		Name:      "layout.paddedStruct",
		Size:      SizeOf[paddedStruct](),
		Alignment: AlignOf[paddedStruct](),
		Fields: []Field{
			{Name: "A", Type: "uint8", Size: 1, Alignment: 1, Offset: 0, Padding: 0},
			{Name: "B", Type: "int64", Size: 8, Alignment: 8, Offset: 8, Padding: 7},
			{Name: "C", Type: "uint8", Size: 1, Alignment: 1, Offset: 16, Padding: 0},
		},
		TotalPadding: 14,
	}

	got := Analyze(paddedStruct{})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Analyze() report mismatch (-want +got):\n%s", diff)
	}
}

func TestSizeOfAndAlignOf(t *testing.T) {
	assert.Equal(t, unsafe.Sizeof(int64(0)), SizeOf[int64]())
	assert.Equal(t, unsafe.Alignof(int64(0)), AlignOf[int64]())
}
