package color

import "testing"

func TestScale(t *testing.T) {
	tests := []struct {
		name string
		in   RGB
		dim  float64
		want RGB
	}{
		{"identity", RGB{255, 0, 0}, 1.0, RGB{255, 0, 0}},
		{"zero", RGB{255, 128, 7}, 0.0, RGB{0, 0, 0}},
		{"half red", RGB{255, 0, 0}, 0.5, RGB{128, 0, 0}},
		{"half mixed", RGB{10, 20, 30}, 0.5, RGB{5, 10, 15}},
		{"rounds to nearest", RGB{3, 0, 0}, 0.5, RGB{2, 0, 0}},
		{"dim above one clamps", RGB{1, 2, 3}, 1.7, RGB{1, 2, 3}},
		{"dim below zero clamps", RGB{1, 2, 3}, -0.2, RGB{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Scale(tt.dim); got != tt.want {
				t.Errorf("Scale(%v, %v) = %v, want %v", tt.in, tt.dim, got, tt.want)
			}
		})
	}
}

func TestQuantize(t *testing.T) {
	tests := []struct {
		in   RGB
		want RGB
	}{
		{RGB{0, 0, 0}, RGB{0, 0, 0}},
		{RGB{1, 0, 0}, RGB{255, 0, 0}},
		{RGB{0, 200, 3}, RGB{0, 255, 255}},
		{RGB{255, 255, 255}, RGB{255, 255, 255}},
	}

	for _, tt := range tests {
		if got := tt.in.Quantize(); got != tt.want {
			t.Errorf("Quantize(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    RGB
		wantErr bool
	}{
		{"#ff0000", RGB{255, 0, 0}, false},
		{"00ff00", RGB{0, 255, 0}, false},
		{"10,20,30", RGB{10, 20, 30}, false},
		{" 255 , 0 , 255 ", RGB{255, 0, 255}, false},
		{"", RGB{}, true},
		{"#ff00", RGB{}, true},
		{"1,2", RGB{}, true},
		{"1,2,3,4", RGB{}, true},
		{"256,0,0", RGB{}, true},
		{"zzz", RGB{}, true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHex(t *testing.T) {
	if got := (RGB{255, 0, 128}).Hex(); got != "ff0080" {
		t.Errorf("Hex() = %q, want %q", got, "ff0080")
	}
	if got := (RGB{255, 0, 128}).String(); got != "#ff0080" {
		t.Errorf("String() = %q, want %q", got, "#ff0080")
	}
}

func TestIsDark(t *testing.T) {
	if !Black.IsDark() {
		t.Error("Black.IsDark() = false, want true")
	}
	if (RGB{0, 0, 1}).IsDark() {
		t.Error("IsDark() = true for non-black color")
	}
}
