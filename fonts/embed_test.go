package fonts

import "testing"

func TestLoadBuiltinFonts(t *testing.T) {
	for _, name := range Names() {
		for _, alias := range []string{name, "embed:" + name, name + ".ttf"} {
			data, err := Load(alias)
			if err != nil {
				t.Fatalf("Load(%q): %v", alias, err)
			}
			// TrueType 文件以 0x00010000 开头
			if len(data) < 4 || data[0] != 0 || data[1] != 1 {
				t.Fatalf("Load(%q) did not return a TrueType font", alias)
			}
		}
	}
	if _, err := Load("Inter-Regular"); err == nil {
		t.Fatalf("expected error for unknown font")
	}
}

func TestForStyle(t *testing.T) {
	cases := []struct {
		bold, italic bool
		want         string
	}{
		{false, false, Regular},
		{true, false, Bold},
		{false, true, Italic},
		{true, true, BoldItalic},
	}
	for _, c := range cases {
		if got := ForStyle(c.bold, c.italic); got != c.want {
			t.Fatalf("ForStyle(%v, %v) = %s, want %s", c.bold, c.italic, got, c.want)
		}
	}
}
