// Package chart renders the seven-panel summary of a ResultSet as a PNG
// raster and a PDF vector document.
package chart

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"PutScreener/internal/model"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
)

var ErrNothingToPlot = errors.New("result set has no records")

const (
	gridRows = 4
	gridCols = 2
)

// Options controls output location and canvas size.
type Options struct {
	Dir      string
	Prefix   string
	WidthIn  float64
	HeightIn float64
	DPI      int
}

// Renderer draws ResultSets to timestamped files.
type Renderer struct {
	Opts Options
	Now  func() time.Time
}

// NewRenderer creates a renderer with the given options.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{Opts: opts, Now: time.Now}
}

// Render writes <prefix>_YYYYMMDD_HHMMSS.png and .pdf into Opts.Dir and
// returns both paths.
func (r *Renderer) Render(rs *model.ResultSet) (pngPath, pdfPath string, err error) {
	if rs == nil || len(rs.Records) == 0 {
		return "", "", ErrNothingToPlot
	}
	plots, err := buildPanels(rs)
	if err != nil {
		return "", "", err
	}

	stamp := r.Now().Format("20060102_150405")
	base := filepath.Join(r.Opts.Dir, fmt.Sprintf("%s_%s", r.Opts.Prefix, stamp))
	w := vg.Length(r.Opts.WidthIn) * vg.Inch
	h := vg.Length(r.Opts.HeightIn) * vg.Inch

	pngPath = base + ".png"
	img := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(r.Opts.DPI))
	drawGrid(plots, draw.New(img))
	if err := writeFile(pngPath, vgimg.PngCanvas{Canvas: img}); err != nil {
		return "", "", fmt.Errorf("write png: %w", err)
	}

	pdfPath = base + ".pdf"
	doc := vgpdf.New(w, h)
	drawGrid(plots, draw.New(doc))
	if err := writeFile(pdfPath, doc); err != nil {
		return pngPath, "", fmt.Errorf("write pdf: %w", err)
	}

	log.Printf("[INFO] charts written to %s and %s", pngPath, pdfPath)
	return pngPath, pdfPath, nil
}

func drawGrid(plots [][]*plot.Plot, dc draw.Canvas) {
	tiles := draw.Tiles{
		Rows:      gridRows,
		Cols:      gridCols,
		PadX:      vg.Millimeter * 6,
		PadY:      vg.Millimeter * 6,
		PadTop:    vg.Millimeter * 4,
		PadBottom: vg.Millimeter * 4,
		PadLeft:   vg.Millimeter * 4,
		PadRight:  vg.Millimeter * 4,
	}
	canvases := plot.Align(plots, tiles, dc)
	for j := 0; j < gridRows; j++ {
		for i := 0; i < gridCols; i++ {
			plots[j][i].Draw(canvases[j][i])
		}
	}
}

func writeFile(path string, w io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := w.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// buildPanels lays out the seven panels row by row; the eighth cell is blank.
func buildPanels(rs *model.ResultSet) ([][]*plot.Plot, error) {
	builders := []func(*model.ResultSet) (*plot.Plot, error){
		priceTrend,
		priceRange,
		distanceFromLow,
		premiums,
		irrPanel,
		effectiveReturn,
		currentVsStrike,
	}
	plots := make([][]*plot.Plot, gridRows)
	for j := range plots {
		plots[j] = make([]*plot.Plot, gridCols)
	}
	for n, build := range builders {
		p, err := build(rs)
		if err != nil {
			return nil, fmt.Errorf("panel %d: %w", n+1, err)
		}
		plots[n/gridCols][n%gridCols] = p
	}
	blank := plot.New()
	blank.HideAxes()
	plots[gridRows-1][gridCols-1] = blank
	return plots, nil
}

func newPanel(title, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

func priceTrend(rs *model.ResultSet) (*plot.Plot, error) {
	p := newPanel("Price Trend", "Close ($)")
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}
	p.Legend.Top = true
	for i, sym := range rs.Symbols() {
		s := rs.Series[sym]
		if s.Len() == 0 {
			continue
		}
		xys := make(plotter.XYs, s.Len())
		for k, pt := range s.Points {
			xys[k].X = float64(pt.Time.Unix())
			xys[k].Y = pt.Close
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.2)
		p.Add(line)
		p.Legend.Add(sym, line)
	}
	return p, nil
}

// groupedBars adds one bar set per series, offset around each nominal x.
func groupedBars(p *plot.Plot, names []string, series map[string]plotter.Values, order []string) error {
	width := vg.Points(14)
	for i, label := range order {
		bars, err := plotter.NewBarChart(series[label], width)
		if err != nil {
			return err
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = 0
		bars.Offset = width * vg.Length(float64(i)-float64(len(order)-1)/2)
		p.Add(bars)
		p.Legend.Add(label, bars)
	}
	p.Legend.Top = true
	p.NominalX(names...)
	return nil
}

func column(rs *model.ResultSet, pick func(model.TickerRecord) float64) plotter.Values {
	vals := make(plotter.Values, len(rs.Records))
	for i, r := range rs.Records {
		vals[i] = pick(r)
	}
	return vals
}

func priceRange(rs *model.ResultSet) (*plot.Plot, error) {
	p := newPanel("Current vs 52-Week High/Low", "Price ($)")
	err := groupedBars(p, rs.Symbols(), map[string]plotter.Values{
		"Current": column(rs, func(r model.TickerRecord) float64 { return r.CurrentPrice.ValueOrZero() }),
		"High":    column(rs, func(r model.TickerRecord) float64 { return r.High52w.ValueOrZero() }),
		"Low":     column(rs, func(r model.TickerRecord) float64 { return r.Low52w.ValueOrZero() }),
	}, []string{"Current", "High", "Low"})
	return p, err
}

func distanceFromLow(rs *model.ResultSet) (*plot.Plot, error) {
	p := newPanel("Distance from 52-Week Low", "")
	p.X.Label.Text = "Percent"
	bars, err := plotter.NewBarChart(
		column(rs, func(r model.TickerRecord) float64 { return r.DistanceFromLow.ValueOrZero() }),
		vg.Points(16))
	if err != nil {
		return nil, err
	}
	bars.Horizontal = true
	bars.Color = plotutil.Color(3)
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalY(rs.Symbols()...)
	return p, nil
}

func singleBars(rs *model.ResultSet, title, ylabel string, colorIdx int, pick func(model.TickerRecord) float64) (*plot.Plot, error) {
	p := newPanel(title, ylabel)
	bars, err := plotter.NewBarChart(column(rs, pick), vg.Points(20))
	if err != nil {
		return nil, err
	}
	bars.Color = plotutil.Color(colorIdx)
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(rs.Symbols()...)
	return p, nil
}

func premiums(rs *model.ResultSet) (*plot.Plot, error) {
	return singleBars(rs, "Put Premium (Nearest Strike)", "Premium ($)", 4,
		func(r model.TickerRecord) float64 { return r.Premium.ValueOrZero() })
}

func irrPanel(rs *model.ResultSet) (*plot.Plot, error) {
	return singleBars(rs, "IRR (Premium / Strike)", "Ratio", 5,
		func(r model.TickerRecord) float64 { return r.IRR.ValueOrZero() })
}

func effectiveReturn(rs *model.ResultSet) (*plot.Plot, error) {
	return singleBars(rs, "Effective Return (15% Margin)", "Ratio", 6,
		func(r model.TickerRecord) float64 { return r.EffectiveReturn.ValueOrZero() })
}

func currentVsStrike(rs *model.ResultSet) (*plot.Plot, error) {
	p := newPanel("Current Price vs Nearest Strike", "Price ($)")
	err := groupedBars(p, rs.Symbols(), map[string]plotter.Values{
		"Current": column(rs, func(r model.TickerRecord) float64 { return r.CurrentPrice.ValueOrZero() }),
		"Strike":  column(rs, func(r model.TickerRecord) float64 { return r.NearestStrike.ValueOrZero() }),
	}, []string{"Current", "Strike"})
	return p, err
}
