package humastar

import (
	"strings"
	"testing"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	tests := []struct {
		offset, limit int
		want          []int
	}{
		{0, 2, []int{1, 2}},
		{4, 2, []int{5}},
		{5, 2, []int{}},
		{-1, 10, []int{1, 2, 3, 4, 5}},
		{1, 0, []int{2}},
	}
	for _, tt := range tests {
		got := Paginate(items, tt.offset, tt.limit)
		if got.Total != 5 || len(got.Data) != len(tt.want) {
			t.Errorf("Paginate(%d, %d) = %+v, want %v", tt.offset, tt.limit, got, tt.want)
			continue
		}
		for i := range tt.want {
			if got.Data[i] != tt.want[i] {
				t.Errorf("Paginate(%d, %d) = %v, want %v", tt.offset, tt.limit, got.Data, tt.want)
			}
		}
	}
}

func TestPaginationLinks(t *testing.T) {
	links := strings.Join(Paginate(make([]int, 25), 10, 10).PaginationLinks("/api/v1/airports"), "\n")
	for _, want := range []string{
		`</api/v1/airports?offset=0&limit=10>; rel="first"`,
		`</api/v1/airports?offset=0&limit=10>; rel="prev"`,
		`</api/v1/airports?offset=20&limit=10>; rel="next"`,
		`</api/v1/airports?offset=20&limit=10>; rel="last"`,
	} {
		if !strings.Contains(links, want) {
			t.Errorf("links missing %s:\n%s", want, links)
		}
	}

	empty := Paginate([]int{}, 0, 10).PaginationLinks("/x")
	if len(empty) != 2 || !strings.Contains(empty[1], `offset=0&limit=10>; rel="last"`) {
		t.Errorf("empty links = %v", empty)
	}
}

func TestSignals(t *testing.T) {
	in := SignalsInput{RawBody: []byte(`{"query": "lhr", "airportid": 507, "text": "12"}`)}
	s, err := in.MustParse()
	if err != nil {
		t.Fatal(err)
	}
	if s.String("query") != "lhr" || s.Int("airportid") != 507 || s.Int("text") != 12 {
		t.Errorf("signals = %v", s)
	}
	if s.Has("missing") || s.String("missing") != "" || s.Int("missing") != 0 {
		t.Error("missing key should read as zero")
	}

	if _, err := (&SignalsInput{RawBody: []byte(`{`)}).MustParse(); err == nil {
		t.Error("invalid body parsed")
	}
	if s, err := (&SignalsInput{}).MustParse(); err != nil || len(s) != 0 {
		t.Errorf("empty body = %v, %v", s, err)
	}
}
