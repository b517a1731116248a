package page

import (
	"errors"
	"testing"
)

func intPtr(v int) *int { return &v }

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestNormalizeEnvelope(t *testing.T) {
	cases := []struct {
		number, size, total int
		wantPages           int
	}{
		{0, 10, 25, 3},
		{2, 5, 10, 2},
		{0, 10, 0, 1},
		{4, 20, 81, 5},
	}
	for _, tc := range cases {
		env := Envelope[int]{
			Content:       seq(min(tc.size, tc.total)),
			TotalElements: intPtr(tc.total),
			TotalPages:    intPtr(CountPages(tc.total, tc.size)),
			Number:        intPtr(tc.number),
			Size:          intPtr(tc.size),
		}
		got := Normalize[int](env, 9, 99)
		if got.Page != tc.number+1 || got.PageSize != tc.size || got.Total != tc.total || got.TotalPages != tc.wantPages {
			t.Fatalf("envelope %+v normalized to %+v", tc, got)
		}
	}
}

func TestNormalizeEnvelopeFallbacks(t *testing.T) {
	got := Normalize[int](Envelope[int]{Content: []int{1, 2, 3}}, 4, 2)
	if got.Page != 1 {
		t.Fatalf("missing number should map to page 1, got %d", got.Page)
	}
	if got.PageSize != 2 {
		t.Fatalf("missing size should use fallback, got %d", got.PageSize)
	}
	if got.Total != 3 {
		t.Fatalf("missing totalElements should use content length, got %d", got.Total)
	}
	if got.TotalPages != 1 {
		t.Fatalf("missing totalPages should fall back to 1, got %d", got.TotalPages)
	}
	if len(got.Items) != 3 {
		t.Fatalf("envelope content must not be re-sliced, got %v", got.Items)
	}

	large := Normalize[int](Envelope[int]{Content: seq(10), TotalElements: intPtr(45), Size: intPtr(10)}, 1, 10)
	if large.Total != 45 || large.TotalPages != 1 {
		t.Fatalf("envelope without totalPages normalized to %+v", large)
	}

	zero := Normalize[int](&Envelope[int]{TotalPages: intPtr(0)}, 1, 10)
	if zero.TotalPages != 1 || zero.Items == nil {
		t.Fatalf("empty envelope normalized to %+v", zero)
	}
}

func TestNormalizeListLength(t *testing.T) {
	for _, length := range []int{0, 1, 9, 10, 11, 35} {
		for _, pageIndex := range []int{1, 2, 3, 5} {
			for _, size := range []int{1, 5, 10} {
				got := Normalize[int](List[int](seq(length)), pageIndex, size)
				want := min(size, max(0, length-(pageIndex-1)*size))
				if len(got.Items) != want {
					t.Fatalf("L=%d p=%d s=%d: len(items)=%d want %d", length, pageIndex, size, len(got.Items), want)
				}
				if got.Page != pageIndex || got.PageSize != size || got.Total != length {
					t.Fatalf("L=%d p=%d s=%d: metadata %+v", length, pageIndex, size, got)
				}
				if got.TotalPages != max(1, (length+size-1)/size) {
					t.Fatalf("L=%d s=%d: totalPages %d", length, size, got.TotalPages)
				}
			}
		}
	}
}

func TestNormalizeSanitizesFallbacks(t *testing.T) {
	got := Normalize[int](List[int](seq(15)), 0, 0)
	if got.Page != 1 || got.PageSize != DefaultSize || len(got.Items) != DefaultSize {
		t.Fatalf("got %+v", got)
	}
	if nilPage := Normalize[int](nil, 3, 5); nilPage.Total != 0 || nilPage.TotalPages != 1 {
		t.Fatalf("nil source normalized to %+v", nilPage)
	}
}

func TestPaginateClampsPage(t *testing.T) {
	empty := Paginate[int](nil, func(int) bool { return true }, 5, 10)
	if empty.Page != 1 || empty.Total != 0 || empty.TotalPages != 1 || len(empty.Items) != 0 {
		t.Fatalf("empty paginate = %+v", empty)
	}

	even := func(v int) bool { return v%2 == 0 }
	got := Paginate(seq(30), even, 7, 4)
	if got.Total != 15 || got.TotalPages != 4 || got.Page != 4 {
		t.Fatalf("clamped paginate metadata = %+v", got)
	}
	if len(got.Items) != 3 || got.Items[0] != 26 {
		t.Fatalf("last page items = %v", got.Items)
	}
}

func TestPaginateDoesNotMutateInput(t *testing.T) {
	items := []int{5, 4, 3, 2, 1}
	_ = Paginate(items, func(v int) bool { return v > 2 }, 1, 2)
	for i, v := range []int{5, 4, 3, 2, 1} {
		if items[i] != v {
			t.Fatalf("input mutated: %v", items)
		}
	}
}

func TestMapKeepsMetadata(t *testing.T) {
	p := Paginate(seq(5), nil, 2, 2)
	doubled := Map(p, func(v int) int { return v * 2 })
	if doubled.Page != 2 || doubled.Total != 5 || doubled.Items[0] != 6 {
		t.Fatalf("mapped = %+v", doubled)
	}
}

func TestDecode(t *testing.T) {
	src, err := Decode[int]([]byte(` [1,2,3]`))
	if err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if _, ok := src.(List[int]); !ok {
		t.Fatalf("expected list, got %T", src)
	}

	src, err = Decode[int]([]byte(`{"content":[4,5],"totalElements":12,"totalPages":6,"number":1,"size":2}`))
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	p := Normalize[int](src, 1, 10)
	if p.Page != 2 || p.Total != 12 || p.TotalPages != 6 || p.PageSize != 2 {
		t.Fatalf("normalized envelope = %+v", p)
	}

	if _, err := Decode[int]([]byte(`"nope"`)); !errors.Is(err, ErrUnknownShape) {
		t.Fatalf("expected ErrUnknownShape, got %v", err)
	}
	if src, err := Decode[int](nil); err != nil || len(Normalize[int](src, 1, 10).Items) != 0 {
		t.Fatalf("empty payload should decode to empty list, err=%v", err)
	}
}
