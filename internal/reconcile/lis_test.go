package reconcile

import "testing"

func TestStablePositions(t *testing.T) {
	cases := []struct {
		name  string
		order []int
		want  []bool
	}{
		{"empty", nil, nil},
		{"single", []int{5}, []bool{true}},
		{"ascending", []int{0, 1, 2}, []bool{true, true, true}},
		{"descending", []int{1, 0}, []bool{false, true}},
		{"rotation", []int{2, 0, 1}, []bool{false, true, true}},
		{"block swap", []int{2, 3, 0, 1}, []bool{false, false, true, true}},
		{"all new", []int{-1, -1}, []bool{false, false}},
		{"insertions between", []int{3, -1, 0}, []bool{false, false, true}},
		{"mixed", []int{1, 3, 0, 4, 2}, []bool{true, true, false, true, false}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := stablePositions(tc.order)
			if len(got) != len(tc.order) {
				t.Fatalf("len = %d, want %d", len(got), len(tc.order))
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("position %d stable = %v, want %v (full: %v)", i, got[i], tc.want[i], got)
				}
			}
		})
	}
}

func TestStablePositions_IsIncreasing(t *testing.T) {
	orders := [][]int{
		{4, 3, 2, 1, 0},
		{1, 3, 0, 4, 2},
		{2, 0, 1, 5, 3, 4},
		{0, 2, 1},
	}
	for _, order := range orders {
		stable := stablePositions(order)
		last := -1
		for i, ok := range stable {
			if !ok {
				continue
			}
			if order[i] <= last {
				t.Errorf("order %v: stable values not increasing at %d", order, i)
			}
			last = order[i]
		}
	}
}
