package size

import "testing"

func TestParseBytes(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"1024", 1024, false},
		{"0", 0, false},
		{"500MB", 500 * 1 << 20, false},
		{"1GB", 1 << 30, false},
		{"2 TB", 2 << 40, false},
		{"", 0, true},
		{"-5", 0, true},
		{"not-a-size", 0, true},
	}
	for _, c := range cases {
		got, err := ParseBytes(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseBytes(%q): expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseBytes(%q): unexpected error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseBytes(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	if got := FormatBytes(1 << 30); got != "1.0 GiB" {
		t.Errorf("FormatBytes(1GiB) = %q, want 1.0 GiB", got)
	}
}

func TestRatio(t *testing.T) {
	if got := Ratio(50, 100); got != 0.5 {
		t.Errorf("Ratio(50,100) = %v, want 0.5", got)
	}
	if got := Ratio(50, 0); got != 0 {
		t.Errorf("Ratio(50,0) = %v, want 0", got)
	}
}
