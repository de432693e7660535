package uirender

import "testing"

func TestPaintEquivalent(t *testing.T) {
	a := NewPaint()
	b := NewPaint()
	if !a.Equivalent(b) {
		t.Error("two default paints not equivalent")
	}
	b.Color = RGB(1, 0, 0)
	if a.Equivalent(b) {
		t.Error("different colors reported equivalent")
	}
}

func TestPaintEquivalentNil(t *testing.T) {
	var p *Paint
	if !p.Equivalent(nil) {
		t.Error("nil/nil not equivalent")
	}
	if !p.Equivalent(NewPaint()) {
		t.Error("nil not equivalent to the default paint")
	}
	stroked := NewPaint()
	stroked.Style = PaintStyleStroke
	if p.Equivalent(stroked) {
		t.Error("nil equivalent to a non-default paint")
	}
}

func TestPaintAlpha(t *testing.T) {
	var p *Paint
	if got := p.Alpha(); got != 1 {
		t.Errorf("nil paint alpha = %v, want 1", got)
	}
	q := NewPaint()
	q.Color = RGBA(0, 0, 0, 0.25)
	if got := q.Alpha(); got != 0.25 {
		t.Errorf("alpha = %v, want 0.25", got)
	}
}

func TestColorWithAlpha(t *testing.T) {
	c := White.WithAlpha(0.5)
	if c.A != 0.5 || c.R != 1 || c.G != 1 || c.B != 1 {
		t.Errorf("WithAlpha = %+v", c)
	}
	if c.IsOpaque() {
		t.Error("half-transparent color reported opaque")
	}
	if !White.IsOpaque() {
		t.Error("white reported non-opaque")
	}
}
