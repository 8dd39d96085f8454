package tensor

import (
	"testing"
)

func TestShapeNumElements(t *testing.T) {
	tests := []struct {
		shape Shape
		want  int
	}{
		{Shape{}, 1},
		{Shape{5}, 5},
		{Shape{2, 3}, 6},
		{Shape{2, 3, 4}, 24},
	}
	for _, tt := range tests {
		if got := tt.shape.NumElements(); got != tt.want {
			t.Errorf("NumElements(%v) = %d, want %d", tt.shape, got, tt.want)
		}
	}
}

func TestShapeValidate(t *testing.T) {
	if err := (Shape{2, 3}).Validate(); err != nil {
		t.Errorf("valid shape rejected: %v", err)
	}
	if err := (Shape{2, 0}).Validate(); err == nil {
		t.Error("zero dimension accepted")
	}
	if err := (Shape{-1, 3}).Validate(); err == nil {
		t.Error("negative dimension accepted")
	}
}

func TestShapeEqualClone(t *testing.T) {
	s := Shape{2, 3, 4}
	c := s.Clone()
	if !s.Equal(c) {
		t.Fatal("clone not equal to original")
	}
	c[0] = 9
	if s[0] != 2 {
		t.Error("clone shares memory with original")
	}
	if s.Equal(Shape{2, 3}) {
		t.Error("shapes of different rank reported equal")
	}
	if s.Equal(Shape{2, 3, 5}) {
		t.Error("different shapes reported equal")
	}
}

func TestComputeStrides(t *testing.T) {
	tests := []struct {
		shape Shape
		want  []int
	}{
		{Shape{2, 3, 4}, []int{12, 4, 1}},
		{Shape{5}, []int{1}},
		{Shape{4, 7}, []int{7, 1}},
	}
	for _, tt := range tests {
		got := tt.shape.ComputeStrides()
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("ComputeStrides(%v) = %v, want %v", tt.shape, got, tt.want)
				break
			}
		}
	}
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Shape
		want      Shape
		broadcast bool
		wantErr   bool
	}{
		{"equal", Shape{3, 5}, Shape{3, 5}, Shape{3, 5}, false, false},
		{"left ones", Shape{3, 1}, Shape{3, 5}, Shape{3, 5}, true, false},
		{"rank lift", Shape{5}, Shape{3, 5}, Shape{3, 5}, true, false},
		{"two sided", Shape{2, 1}, Shape{1, 3}, Shape{2, 3}, true, false},
		{"mask bias over heads", Shape{2, 4, 3, 3}, Shape{2, 1, 3, 3}, Shape{2, 4, 3, 3}, true, false},
		{"incompatible", Shape{3, 4}, Shape{3, 5}, nil, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, bc, err := BroadcastShapes(tt.a, tt.b)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("shape: got %v, want %v", got, tt.want)
			}
			if bc != tt.broadcast {
				t.Errorf("broadcast flag: got %v, want %v", bc, tt.broadcast)
			}
		})
	}
}
