// pkg/mmapcache/window_test.go
// Tests for the window sizing policy, independent of any real mmap.

package mmapcache

import "testing"

func TestComputeWindowSpan(t *testing.T) {
	const pageSz = 4096

	tests := []struct {
		name                string
		offset, size        uint64
		windowSize          uint64
		fileSize            uint64
		haveFileSize        bool
		wantOffset, wantLen uint64
		wantErr             bool
	}{
		{
			name:       "request smaller than window is padded and centered",
			offset:     pageSz * 10,
			size:       16,
			windowSize: pageSz * 4,
			wantOffset: pageSz * 8, // centered: 10 - (4-1)/2 pages, page-aligned
			wantLen:    pageSz * 4,
		},
		{
			name:       "padding never crosses byte zero",
			offset:     pageSz,
			size:       16,
			windowSize: pageSz * 8,
			wantOffset: 0,
			wantLen:    pageSz * 8,
		},
		{
			name:         "clamped to file size when window would overrun EOF",
			offset:       0,
			size:         16,
			windowSize:   pageSz * 8,
			fileSize:     pageSz * 3,
			haveFileSize: true,
			wantOffset:   0,
			wantLen:      pageSz * 3,
		},
		{
			name:         "offset at or past EOF is unavailable",
			offset:       pageSz * 5,
			size:         16,
			windowSize:   pageSz * 2,
			fileSize:     pageSz * 3,
			haveFileSize: true,
			wantErr:      true,
		},
		{
			name:       "request larger than the window floor keeps its own span",
			offset:     pageSz,
			size:       pageSz * 10,
			windowSize: pageSz * 2,
			wantOffset: pageSz,
			wantLen:    pageSz * 10,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gotOffset, gotLen, err := computeWindowSpan(tc.offset, tc.size, tc.windowSize, pageSz, tc.fileSize, tc.haveFileSize)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("computeWindowSpan() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("computeWindowSpan() unexpected error: %v", err)
			}
			if gotOffset != tc.wantOffset {
				t.Errorf("woffset = %d, want %d", gotOffset, tc.wantOffset)
			}
			if gotLen != tc.wantLen {
				t.Errorf("wsize = %d, want %d", gotLen, tc.wantLen)
			}
		})
	}
}

func TestWindowMatches(t *testing.T) {
	w := &Window{offset: 4096, size: 4096}

	if !windowMatches(w, 4096, 100) {
		t.Error("expected window starting at its own offset to match")
	}
	if !windowMatches(w, 4096+4000, 96) {
		t.Error("expected a request ending exactly at the window's end to match")
	}
	if windowMatches(w, 4096+4000, 97) {
		t.Error("expected a request overrunning the window's end to not match")
	}
	if windowMatches(w, 0, 100) {
		t.Error("expected a request before the window's start to not match")
	}
}

func TestWindowSlice(t *testing.T) {
	w := &Window{offset: 4096, size: 4096, data: sequentialBytes(4096)}

	got := windowSlice(w, 4096+10, 5)
	want := w.data[10:15]
	if len(got) != len(want) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("windowSlice()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
