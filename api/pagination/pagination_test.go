package pagination

import "testing"

func TestClamp(t *testing.T) {
	testCases := []struct {
		name       string
		query      Query
		wantLimit  int
		wantOffset int
	}{
		{
			name:      "zero limit falls back to default",
			query:     Query{},
			wantLimit: 50,
		},
		{
			name:      "limit above max is cut",
			query:     Query{Limit: 500},
			wantLimit: 100,
		},
		{
			name:       "window inside bounds is kept",
			query:      Query{Limit: 20, Offset: 40},
			wantLimit:  20,
			wantOffset: 40,
		},
		{
			name:      "negative offset becomes zero",
			query:     Query{Limit: 10, Offset: -5},
			wantLimit: 10,
		},
	}
	for _, c := range testCases {
		t.Run(c.name, func(t *testing.T) {
			c.query.Clamp(50, 100)
			if c.query.Limit != c.wantLimit {
				t.Errorf("limit is %d, want %d", c.query.Limit, c.wantLimit)
			}
			if c.query.Offset != c.wantOffset {
				t.Errorf("offset is %d, want %d",
					c.query.Offset, c.wantOffset)
			}
		})
	}
}
