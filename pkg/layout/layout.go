// pkg/layout/layout.go
// Struct-layout introspection and raw pointer arithmetic, used by the
// diagnostic CLI to print how Window/Context/FileDescriptor actually
// lay out in memory.
//
// LEARN: reflect.Type.Field works on unexported fields fine for this
// purpose — it reports name/type/size/offset metadata without needing
// to read or write the field's value, so it can introspect types from
// another package whose fields it could never set.

package layout

import (
	"fmt"
	"reflect"
	"strings"
	"unsafe"
)

// Field describes one field in a struct's layout.
type Field struct {
	Name      string
	Type      string
	Size      uintptr
	Alignment uintptr
	Offset    uintptr
	Padding   uintptr
}

// Layout describes the complete memory layout of a struct type.
type Layout struct {
	Name         string
	Size         uintptr
	Alignment    uintptr
	Fields       []Field
	TotalPadding uintptr
}

// Analyze returns the memory layout of any struct value or pointer to
// one.
func Analyze(v any) Layout {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return Layout{Name: t.String(), Size: t.Size(), Alignment: uintptr(t.Align())}
	}

	l := Layout{
		Name:      t.String(),
		Size:      t.Size(),
		Alignment: uintptr(t.Align()),
		Fields:    make([]Field, t.NumField()),
	}

	var prevEnd uintptr
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		padding := field.Offset - prevEnd
		l.TotalPadding += padding
		l.Fields[i] = Field{
			Name:      field.Name,
			Type:      field.Type.String(),
			Size:      field.Type.Size(),
			Alignment: uintptr(field.Type.Align()),
			Offset:    field.Offset,
			Padding:   padding,
		}
		prevEnd = field.Offset + field.Type.Size()
	}
	if prevEnd < t.Size() {
		l.TotalPadding += t.Size() - prevEnd
	}
	return l
}

// String renders a human-readable table of the layout.
func (l Layout) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== %s ===\n", l.Name)
	fmt.Fprintf(&b, "size=%d align=%d padding=%d (%.1f%%)\n\n",
		l.Size, l.Alignment, l.TotalPadding, float64(l.TotalPadding)/float64(l.Size)*100)
	fmt.Fprintf(&b, "offset | size | align | pad | field\n")
	fmt.Fprintf(&b, "-------|------|-------|-----|------\n")
	for _, f := range l.Fields {
		pad := ""
		if f.Padding > 0 {
			pad = fmt.Sprintf("+%d", f.Padding)
		}
		fmt.Fprintf(&b, "%6d | %4d | %5d | %3s | %s %s\n", f.Offset, f.Size, f.Alignment, pad, f.Name, f.Type)
	}
	return b.String()
}

// PtrAdd adds offset bytes to ptr. Must stay a single expression: an
// intermediate uintptr would give the GC an opportunity to move the
// object this pointer refers to, invalidating the arithmetic.
func PtrAdd(ptr unsafe.Pointer, offset uintptr) unsafe.Pointer {
	return unsafe.Pointer(uintptr(ptr) + offset)
}

// SizeOf returns the size of T in bytes.
func SizeOf[T any]() uintptr {
	var zero T
	return unsafe.Sizeof(zero)
}

// AlignOf returns the alignment of T in bytes.
func AlignOf[T any]() uintptr {
	var zero T
	return unsafe.Alignof(zero)
}
