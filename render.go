package astrochart

import (
	"fmt"
	"html"
	"io"
	"math"
	"time"

	"github.com/jbeda/geom"
	"github.com/rs/zerolog"
)

// Metrics receives render statistics.
type Metrics interface {
	ObserveLayoutPasses(chart string, passes int)
	AddAspects(chart string, n int)
	ObserveRender(chart string, d time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) ObserveLayoutPasses(string, int) {}
func (nopMetrics) AddAspects(string, int) {}
func (nopMetrics) ObserveRender(string, time.Duration) {}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithLogger sets the renderer logger.
func WithLogger(l zerolog.Logger) RendererOption {
	return func(r *Renderer) {
		r.log = l
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) RendererOption {
	return func(r *Renderer) {
		if m != nil {
			r.metrics = m
		}
	}
}

// Renderer draws charts as SVG. Geometry and colors come from the
// chart's Config.
type Renderer struct {
	log     zerolog.Logger
	metrics Metrics
}

// NewRenderer creates a renderer.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		log:     zerolog.Nop(),
		metrics: nopMetrics{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WriteRadix draws a radix chart.
func (r *Renderer) WriteRadix(w io.Writer, radix *Radix) error {
	start := time.Now()
	cfg := radix.Config
	s := newSVG(w)
	s.start(cfg)

	wh := newWheel(cfg, cfg.Radius(), radix.Shift)
	wh.drawRadix(s, radix.Data, radix.Placement, radix.Aspects)
	s.end()
	if s.err != nil {
		return fmt.Errorf("write radix: %w", s.err)
	}

	r.metrics.ObserveLayoutPasses("radix", radix.Passes)
	r.metrics.AddAspects("radix", len(radix.Aspects))
	r.metrics.ObserveRender("radix", time.Since(start))
	r.log.Debug().
		Int("planets", len(radix.Data.Planets)).
		Int("aspects", len(radix.Aspects)).
		Dur("took", time.Since(start)).
		Msg("radix rendered")
	return nil
}

// WriteTransit draws a transit ring around its shrunken radix.
func (r *Renderer) WriteTransit(w io.Writer, t *Transit) error {
	start := time.Now()
	cfg := t.Radix.Config
	s := newSVG(w)
	s.start(cfg)

	radixWheel := newWheel(cfg, cfg.Radius()*transitScale, t.Radix.Shift)
	radixWheel.labelR = cfg.Radius() + cfg.Margin/3
	radixWheel.drawRadix(s, t.Radix.Data, t.RadixPlacement, t.Radix.Aspects)
	radixWheel.drawTransit(s, cfg.Radius(), t.Data, t.Placement, t.Aspects)
	s.end()
	if s.err != nil {
		return fmt.Errorf("write transit: %w", s.err)
	}

	r.metrics.ObserveLayoutPasses("transit", t.Passes)
	r.metrics.AddAspects("transit", len(t.Aspects))
	r.metrics.ObserveRender("transit", time.Since(start))
	r.log.Debug().
		Int("planets", len(t.Data.Planets)).
		Int("aspects", len(t.Aspects)).
		Dur("took", time.Since(start)).
		Msg("transit rendered")
	return nil
}

// wheel holds the screen geometry of one radix wheel.
type wheel struct {
	cfg     Config
	center  geom.Coord
	radius  float64
	signR   float64
	pointR  float64
	aspectR float64
	labelR  float64
	shift   float64
}

func newWheel(cfg Config, radius, shift float64) wheel {
	return wheel{
		cfg:     cfg,
		center:  geom.Coord{X: cfg.Width / 2, Y: cfg.Height / 2},
		radius:  radius,
		signR:   radius * signRingRatio,
		pointR:  radius * pointRingRatio,
		aspectR: radius * aspectRingRatio,
		labelR:  radius + cfg.Margin/3,
		shift:   shift,
	}
}

// at projects a chart angle onto the circle of the given radius.
func (w wheel) at(angle, radius float64) geom.Coord {
	return PointOnCircle(w.center.X, w.center.Y, radius, ToRadian(angle, w.shift))
}

func (w wheel) drawRadix(s *svgWriter, data Data, placement Placement, aspects []AspectMatch) {
	cfg := w.cfg
	sw := cfg.StrokeWidth

	s.circle(w.center, w.radius, cfg.Stroke, sw)
	s.circle(w.center, w.signR, cfg.Stroke, sw)
	s.circle(w.center, w.aspectR, cfg.Stroke, sw)

	signSize := (w.radius - w.signR) * 0.6
	for i := 0; i < 12; i++ {
		a := float64(i * 30)
		s.line(w.at(a, w.signR), w.at(a, w.radius), cfg.Stroke, sw)
		s.text(w.at(a+15, (w.radius+w.signR)/2), signSize, cfg.SignColor, Sign(i).Glyph())
	}

	refs := make([]float64, 0, len(placement))
	for _, p := range data.Planets {
		refs = append(refs, placement[p.Name])
	}

	axes := map[int]string{Ascendant: "As", ImumCoeli: "Ic", Descendant: "Ds", Midheaven: "Mc"}
	for i, c := range data.Cusps {
		end := w.signR
		if IsCollision(c, refs, cfg.CuspCollisionDegrees) {
			end = w.pointR - 2*cfg.PointCollisionRadius
		}
		width := sw
		if label, ok := axes[i]; ok {
			width = 2 * sw
			s.text(w.at(c, w.labelR), cfg.PointCollisionRadius, cfg.Stroke, label)
		}
		s.line(w.at(c, w.aspectR), w.at(c, end), cfg.Stroke, width)

		next := data.Cusps[(i+1)%len(data.Cusps)]
		mid := c + Normalize(next-c)/2
		s.text(w.at(mid, w.aspectR+cfg.PointCollisionRadius*0.8), cfg.PointCollisionRadius*0.8, cfg.Stroke, fmt.Sprint(i+1))
	}

	for _, p := range data.Planets {
		w.drawPoint(s, p, placement[p.Name], w.signR, w.signR-6, w.pointR+cfg.PointCollisionRadius, w.pointR)
	}

	for _, m := range aspects {
		c, ok := cfg.AspectColors[m.Aspect.Name]
		if !ok {
			continue
		}
		s.line(w.at(m.From.Angle, w.aspectR), w.at(m.To.Angle, w.aspectR), c, sw)
	}
}

// drawTransit draws transit points between the radix edge and outer.
// Transit aspects run from the transit point to the radix point.
func (w wheel) drawTransit(s *svgWriter, outer float64, data Data, placement Placement, aspects []AspectMatch) {
	cfg := w.cfg
	sw := cfg.StrokeWidth
	ringR := w.radius * transitRingRatio

	s.circle(w.center, outer, cfg.Stroke, sw)

	refs := make([]float64, 0, len(placement))
	for _, p := range data.Planets {
		refs = append(refs, placement[p.Name])
	}
	for _, c := range data.Cusps {
		end := outer
		if IsCollision(c, refs, cfg.CuspCollisionDegrees) {
			end = ringR - cfg.PointCollisionRadius
		}
		s.line(w.at(c, w.radius), w.at(c, end), cfg.Stroke, sw/2)
	}

	for _, p := range data.Planets {
		w.drawPoint(s, p, placement[p.Name], w.radius, w.radius+6, ringR-cfg.PointCollisionRadius, ringR)
	}

	for _, m := range aspects {
		c, ok := cfg.AspectColors[m.Aspect.Name]
		if !ok {
			continue
		}
		s.line(w.at(m.From.Angle, w.aspectR), w.at(m.To.Angle, w.aspectR), c, sw)
	}
}

// drawPoint draws a tick at the true angle, a pointer to the glyph at
// its placed angle, the glyph, and a degree annotation offset toward the
// center.
func (w wheel) drawPoint(s *svgWriter, p Point, placed, tickFrom, tickTo, pointerTo, glyphR float64) {
	cfg := w.cfg
	tick := w.at(p.Angle, tickTo)
	s.line(w.at(p.Angle, tickFrom), tick, cfg.PointColor, cfg.StrokeWidth)
	s.line(tick, w.at(placed, pointerTo), cfg.PointColor, cfg.StrokeWidth/2)

	pos := w.at(placed, glyphR)
	s.text(pos, cfg.PointCollisionRadius*1.5, cfg.PointColor, PointGlyph(p.Name))

	dir := AngleOfLine(pos.X, pos.Y, w.center.X, w.center.Y)
	ann := PointOnCircle(pos.X, pos.Y, cfg.PointCollisionRadius*1.8, dir*math.Pi/180)
	label := fmt.Sprintf("%d°", int(p.Angle)%30)
	if p.Retrograde {
		label += "℞"
	}
	s.text(ann, cfg.PointCollisionRadius*0.7, cfg.PointColor, label)
}

// svgWriter writes SVG elements, keeping the first write error.
type svgWriter struct {
	w   io.Writer
	err error
}

func newSVG(w io.Writer) *svgWriter {
	return &svgWriter{w: w}
}

func (s *svgWriter) printf(format string, a ...any) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, format, a...)
}

func (s *svgWriter) start(cfg Config) {
	box := geom.Rect{Min: geom.Coord{}, Max: geom.Coord{X: cfg.Width, Y: cfg.Height}}
	s.printf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" version="1.1" width="%g" height="%g" viewBox="%g %g %g %g">
`, box.Width(), box.Height(), box.Min.X, box.Min.Y, box.Width(), box.Height())
	s.printf("<rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"%s\"/>\n",
		box.Min.X, box.Min.Y, box.Width(), box.Height(), cfg.Background.Hex())
}

func (s *svgWriter) end() {
	s.printf("</svg>\n")
}

func (s *svgWriter) line(p1, p2 geom.Coord, stroke Color, width float64) {
	s.printf("<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"%g\"/>\n",
		p1.X, p1.Y, p2.X, p2.Y, stroke.Hex(), width)
}

func (s *svgWriter) circle(c geom.Coord, r float64, stroke Color, width float64) {
	s.printf("<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" stroke=\"%s\" stroke-width=\"%g\" fill=\"none\"/>\n",
		c.X, c.Y, r, stroke.Hex(), width)
}

func (s *svgWriter) text(p geom.Coord, size float64, fill Color, body string) {
	s.printf("<text x=\"%.2f\" y=\"%.2f\" font-size=\"%.1f\" fill=\"%s\" text-anchor=\"middle\" dominant-baseline=\"central\">%s</text>\n",
		p.X, p.Y, size, fill.Hex(), html.EscapeString(body))
}
