package paper

import "testing"

func TestLandscapeSwapsPortrait(t *testing.T) {
	for _, size := range []Size{SizeA4, SizeA5, SizeLetter, SizeLegal} {
		pw, ph := Dimensions(size, Portrait)
		lw, lh := Dimensions(size, Landscape)
		if lw != ph || lh != pw {
			t.Errorf("%s: landscape %dx%d is not the swap of portrait %dx%d", size, lw, lh, pw, ph)
		}
		if pw <= 0 || ph <= 0 {
			t.Errorf("%s: non-positive portrait dimensions %dx%d", size, pw, ph)
		}
	}
}

func TestA4Pixels(t *testing.T) {
	w, h := Dimensions(SizeA4, Portrait)
	if w != 794 || h != 1123 {
		t.Fatalf("A4 portrait = %dx%d, want 794x1123", w, h)
	}
}

func TestUnknownSizeFallsBackToA4(t *testing.T) {
	w, h := Dimensions(Size("B5"), Portrait)
	aw, ah := Dimensions(SizeA4, Portrait)
	if w != aw || h != ah {
		t.Fatalf("unknown size = %dx%d, want A4 %dx%d", w, h, aw, ah)
	}
	if Valid(Size("B5")) {
		t.Fatal("B5 reported valid")
	}
}

func TestMM(t *testing.T) {
	got := MM(96)
	if got < 25.399 || got > 25.401 {
		t.Fatalf("MM(96) = %v, want 25.4", got)
	}
}
