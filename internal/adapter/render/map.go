package render

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"go.ngs.io/sst-prescription/internal/domain"
)

// Field selects which grid of a snapshot is drawn.
type Field string

const (
	FieldSST   Field = "sst"
	FieldError Field = "err"
)

// ParseField accepts "sst" or "err".
func ParseField(s string) (Field, error) {
	switch f := Field(strings.ToLower(strings.TrimSpace(s))); f {
	case FieldSST, FieldError:
		return f, nil
	default:
		return "", fmt.Errorf("unknown field %q (want %q or %q)", s, FieldSST, FieldError)
	}
}

// DefaultDPI is the PNG resolution used when none is configured.
const DefaultDPI = 200

const (
	figWidth    = 8 * vg.Inch
	figHeight   = 6 * vg.Inch
	titleHeight = 0.35 * vg.Inch
	barWidth    = 1.1 * vg.Inch
	maxTicks    = 11
)

// DefaultSSTLevels returns 273.15 + {0, 1, ..., 20} K.
func DefaultSSTLevels() []float64 {
	levels := make([]float64, 21)
	for i := range levels {
		levels[i] = 273.15 + float64(i)
	}
	return levels
}

// DefaultErrLevels returns 31 levels evenly spaced over [0, 1] K.
func DefaultErrLevels() []float64 {
	levels := make([]float64, 31)
	for i := range levels {
		levels[i] = float64(i) / 30
	}
	return levels
}

// Options configures a Renderer. Zero values select the defaults.
type Options struct {
	Region    domain.Region
	DPI       int
	SSTLevels []float64
	ErrLevels []float64
	Coastline *Coastline
}

// Renderer draws filled-contour maps of snapshots within a fixed region.
type Renderer struct {
	region domain.Region
	dpi    int
	sst    *bands
	err    *bands
	coast  *Coastline
}

// NewRenderer validates opts and prepares the colour bands of both fields.
func NewRenderer(opts Options) (*Renderer, error) {
	if err := opts.Region.Validate(); err != nil {
		return nil, err
	}
	if opts.DPI <= 0 {
		opts.DPI = DefaultDPI
	}
	if opts.SSTLevels == nil {
		opts.SSTLevels = DefaultSSTLevels()
	}
	if opts.ErrLevels == nil {
		opts.ErrLevels = DefaultErrLevels()
	}
	sst, err := newBands(opts.SSTLevels, ExtendBoth, moreland.SmoothBlueRed())
	if err != nil {
		return nil, fmt.Errorf("sst levels: %w", err)
	}
	errBands, err := newBands(opts.ErrLevels, ExtendMax, moreland.Kindlmann())
	if err != nil {
		return nil, fmt.Errorf("error levels: %w", err)
	}
	return &Renderer{region: opts.Region, dpi: opts.DPI, sst: sst, err: errBands, coast: opts.Coastline}, nil
}

// FileName returns the image name for field of dataset at t.
func FileName(field Field, dataset string, t time.Time) string {
	return fmt.Sprintf("%s_%s_%s.png", field, strings.ToLower(dataset), t.UTC().Format("20060102_1504"))
}

// Save renders field of snap into dir and returns the file path.
func (r *Renderer) Save(dir string, field Field, snap *domain.Snapshot) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}
	path := filepath.Join(dir, FileName(field, snap.Dataset, snap.Time))
	//nolint:gosec // G304: File path constructed from the configured image directory.
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create image %s: %w", path, err)
	}
	if err := r.Render(f, field, snap); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close image %s: %w", path, err)
	}
	return path, nil
}

// Render writes a PNG map of field of snap to w.
func (r *Renderer) Render(w io.Writer, field Field, snap *domain.Snapshot) error {
	var (
		grid  *domain.Grid
		b     *bands
		title string
	)
	switch field {
	case FieldSST:
		grid, b, title = snap.SST, r.sst, snap.Dataset+" [K]"
	case FieldError:
		grid, b, title = snap.Err, r.err, "Error of "+snap.Dataset+" [K]"
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	if grid == nil {
		return fmt.Errorf("%s has no %s field", snap.Dataset, field)
	}
	if err := grid.Validate(); err != nil {
		return err
	}
	if grid.Rows() < 2 || grid.Cols() < 2 {
		return &domain.InvalidShapeError{Reason: fmt.Sprintf("cannot draw a %d×%d grid", grid.Rows(), grid.Cols())}
	}

	c := vgimg.NewWith(vgimg.UseWH(figWidth, figHeight), vgimg.UseDPI(r.dpi))
	dc := draw.New(c)
	body := draw.Crop(dc, 0, 0, 0, -titleHeight)
	width := body.Max.X - body.Min.X

	mapPlot, err := r.mapPlot(grid, b)
	if err != nil {
		return err
	}
	mapPlot.Draw(draw.Crop(body, 0, -barWidth, 0, 0))
	colorBar(b).Draw(draw.Crop(body, width-barWidth, 0, 0, 0))
	drawTitles(dc, mapPlot.Title.TextStyle, title, snap.Time.UTC().Format("2006-01-02 15:04")+" UTC")

	png := vgimg.PngCanvas{Canvas: c}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

func (r *Renderer) mapPlot(grid *domain.Grid, b *bands) (*plot.Plot, error) {
	lon0360 := domain.LonAxisIs0360(grid.Lon)
	lon := domain.NormalizeLonBounds(r.region.Lon, lon0360)

	p := plot.New()
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"

	pal := palette.Palette(b)
	hm := plotter.NewHeatMap(newQuantized(grid, b), pal)
	hm.Min, hm.Max = 0, float64(len(pal.Colors())-1)
	p.Add(hm)

	for _, xys := range r.coast.polylines(lon0360) {
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("coastline: %w", err)
		}
		l.LineStyle.Width = vg.Points(0.6)
		l.LineStyle.Color = color.Black
		p.Add(l)
	}

	grd := plotter.NewGrid()
	dashes := []vg.Length{vg.Points(2), vg.Points(2)}
	grd.Vertical.Dashes = dashes
	grd.Horizontal.Dashes = dashes
	p.Add(grd)

	// Fixed after Add, which widens the axes to the data.
	p.X.Min, p.X.Max = lon[0], lon[1]
	p.Y.Min, p.Y.Max = r.region.Lat[0], r.region.Lat[1]
	return p, nil
}

func colorBar(b *bands) *plot.Plot {
	p := plot.New()
	p.HideX()
	p.Add(&plotter.ColorBar{ColorMap: newBandColorMap(b), Vertical: true})
	p.Y.Min, p.Y.Max = b.levels[0], b.levels[len(b.levels)-1]
	p.Y.Tick.Marker = plot.ConstantTicks(levelTicks(b.levels))
	return p
}

// levelTicks labels the contour levels, thinning labels so that at most
// maxTicks are shown.
func levelTicks(levels []float64) []plot.Tick {
	every := int(math.Ceil(float64(len(levels)) / maxTicks))
	ticks := make([]plot.Tick, len(levels))
	for i, v := range levels {
		ticks[i].Value = v
		if i%every == 0 {
			ticks[i].Label = fmt.Sprintf("%.2f", v)
		}
	}
	return ticks
}

func drawTitles(dc draw.Canvas, sty text.Style, left, right string) {
	pad := vg.Points(6)
	sty.Font.Size = vg.Points(11)
	sty.YAlign = text.YTop

	sty.XAlign = text.XLeft
	dc.FillText(sty, vg.Point{X: dc.Min.X + pad, Y: dc.Max.Y - pad}, left)
	sty.XAlign = text.XRight
	dc.FillText(sty, vg.Point{X: dc.Max.X - pad, Y: dc.Max.Y - pad}, right)
}

// quantized presents a grid as palette indices in ascending axis order, as
// the heat map expects.
type quantized struct {
	g    *domain.Grid
	b    *bands
	rows []int
	cols []int
}

func newQuantized(g *domain.Grid, b *bands) quantized {
	return quantized{g: g, b: b, rows: ascending(g.Lat), cols: ascending(g.Lon)}
}

func ascending(axis []float64) []int {
	idx := make([]int, len(axis))
	desc := len(axis) > 1 && axis[0] > axis[len(axis)-1]
	for i := range idx {
		if desc {
			idx[i] = len(axis) - 1 - i
		} else {
			idx[i] = i
		}
	}
	return idx
}

func (q quantized) Dims() (c, r int)   { return len(q.cols), len(q.rows) }
func (q quantized) X(c int) float64    { return q.g.Lon[q.cols[c]] }
func (q quantized) Y(r int) float64    { return q.g.Lat[q.rows[r]] }
func (q quantized) Z(c, r int) float64 { return float64(q.b.index(q.g.Values[q.rows[r]][q.cols[c]])) }
