package overlay

import(
	"fmt"
	"image/color"
	"os"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
	"gopkg.in/yaml.v2"

	"github.com/abworrall/zmap-overlay/pkg/ecolor"
)

/* Example config file ...

preset: zmap
zmin: 3
zmax: 8
hot: hot
cool: cool
transparency: 40
windowcenter: 500
windowwidth: 1000
contrast: volume
format: png
workers: 4

*/

type Config struct {
	Verbosity            int
	DebugDir             string   `yaml:",omitempty"` // if set, intermediate grids of the middle slice are dumped here

	Mode                 string   // "zmap" (dual polarity + legend) or "qc" (segmentation map)
	ZMin                 float64  // below this |z| the overlay is transparent
	ZMax                 float64  // at and above this |z| the colors saturate
	Hot                  string   // palette for positive z
	Cool                 string   // palette for negative z
	Gray                 string   // palette for the anatomical background (and QC maps)

	Transparency         int      // percent, [0,100]
	AlphaPolicy          string   // "transparency" or "fixed"
	FixedOpacity         uint8    // used when AlphaPolicy is "fixed"

	WindowCenter        *float64  `yaml:",omitempty"`
	WindowWidth         *float64  `yaml:",omitempty"`
	Contrast             string   // "slice" (auto-contrast each slice) or "volume"

	Upscale              int
	Upscaler             string   // "catmullrom", "bilinear" or "nearest"

	ShowLegend           bool
	LegendHeightFraction float64  // legend bar height, as a fraction of the slice height
	LegendOffset         int      // pixels from the top left corner

	FontFile             string   // TTF to use; empty means Go Regular
	FontSize             float64
	LabelColor           string
	Disclaimer           string
	LineSpacing          int      // text lines sit this far apart, up from the bottom edge

	Age                 *float64  `yaml:",omitempty"`
	PredictedAge        *float64  `yaml:",omitempty"`

	Prefix               string
	Format               string   // "jpg", "png", "tiff" or "hdr"
	Workers              int
}

func NewConfig() Config {
	return Config{
		Mode:                 "zmap",
		ZMin:                 2.5,
		ZMax:                 10,
		Hot:                  "cet_linear_kryw_0_100_c71",
		Cool:                 "cet_linear_blue_5_95_c73",
		Gray:                 "greys_r",
		Transparency:         25,
		AlphaPolicy:          "transparency",
		FixedOpacity:         50,
		Contrast:             "slice",
		Upscale:              2,
		Upscaler:             "catmullrom",
		ShowLegend:           true,
		LegendHeightFraction: 0.3,
		LegendOffset:         5,
		FontSize:             7,
		LabelColor:           "#A9A9A9",
		Disclaimer:           "Not for diagnostic use",
		LineSpacing:          10,
		Prefix:               "bia",
		Format:               "jpg",
		Workers:              1,
	}
}

var(
	Presets = []string{"zmap", "qc", "qc-fixed"}
)

// Preset returns the defaults for one of the named overlay styles.
func Preset(name string) (Config, error) {
	c := NewConfig()
	switch strings.ToLower(name) {
	case "", "zmap":
	case "qc":
		c.Mode = "qc"
		c.ShowLegend = false
	case "qc-fixed":
		c.Mode = "qc"
		c.ShowLegend = false
		c.AlphaPolicy = "fixed"
	default:
		return c, invalidf("no preset named '%s', wanted one of %v", name, Presets)
	}
	return c, nil
}

func newConfigFromYaml(b []byte) (Config, error) {
	head := struct{ Preset string }{}
	if err := yaml.Unmarshal(b, &head); err != nil {
		return Config{}, invalidf("config yaml: %v", err)
	}
	c, err := Preset(head.Preset)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, invalidf("config yaml: %v", err)
	}
	return c, nil
}

// LoadConfig reads a YAML config file; a `preset:` key picks the base
// defaults that the rest of the file overrides.
func LoadConfig(filename string) (Config, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, ioErr(fmt.Errorf("config read %s: %v", filename, err))
	}
	return newConfigFromYaml(contents)
}

func (c Config)AsYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		log.Errorf("Can't marshal config yaml: %v", err)
	}
	return string(b)
}

// Validate checks everything that can be checked before touching any
// files.
func (c Config)Validate() error {
	switch c.Mode {
	case "zmap", "qc":
	default:
		return invalidf("mode '%s' not one of [zmap qc]", c.Mode)
	}

	if c.ZMin < 0 {
		return invalidf("zmin (%g) must be >= 0", c.ZMin)
	}
	if c.ZMin >= c.ZMax {
		return invalidf("zmin (%g) must be less than zmax (%g)", c.ZMin, c.ZMax)
	}
	if c.Transparency < 0 || c.Transparency > 100 {
		return invalidf("transparency (%d) must be in [0,100]", c.Transparency)
	}
	switch c.AlphaPolicy {
	case "transparency", "fixed":
	default:
		return invalidf("alpha policy '%s' not one of [transparency fixed]", c.AlphaPolicy)
	}

	if _, err := NewWindow(c.WindowCenter, c.WindowWidth); err != nil {
		return err
	}
	if (c.Age == nil) != (c.PredictedAge == nil) {
		return invalidf("age and predicted age must be given together")
	}

	switch c.Contrast {
	case "slice", "volume":
	default:
		return invalidf("contrast policy '%s' not one of [slice volume]", c.Contrast)
	}

	if c.Upscale < 1 {
		return invalidf("upscale (%d) must be >= 1", c.Upscale)
	}
	if _, err := c.GetScaler(); err != nil {
		return err
	}
	if c.LegendHeightFraction <= 0 || c.LegendHeightFraction > 1 {
		return invalidf("legend height fraction (%g) must be in (0,1]", c.LegendHeightFraction)
	}
	if c.FontSize <= 0 {
		return invalidf("font size (%g) must be > 0", c.FontSize)
	}
	if _, err := c.GetLabelColor(); err != nil {
		return err
	}
	if c.Workers < 1 {
		return invalidf("workers (%d) must be >= 1", c.Workers)
	}
	if _, err := formatExt(c.Format); err != nil {
		return err
	}
	if c.Prefix == "" {
		return invalidf("output prefix must not be empty")
	}

	_, err := c.GetPalettes()
	return err
}

// Opacity is the alpha given to every voxel of interest.
func (c Config)Opacity() uint8 {
	if c.AlphaPolicy == "fixed" {
		return c.FixedOpacity
	}
	return uint8(255 * (1 - float64(c.Transparency)/100))
}

// Palettes are the transfer functions resolved from a Config.
type Palettes struct {
	Hot, Cool, Gray ecolor.TransferFunction
}

func (c Config)GetPalettes() (Palettes, error) {
	p := Palettes{}
	for _, x := range []struct{ name string; dst *ecolor.TransferFunction }{
		{c.Hot, &p.Hot}, {c.Cool, &p.Cool}, {c.Gray, &p.Gray},
	} {
		tf, err := ecolor.Lookup(x.name)
		if err != nil {
			return p, invalidf("%v", err)
		}
		*x.dst = tf
	}
	return p, nil
}

func (c Config)GetScaler() (draw.Scaler, error) {
	switch c.Upscaler {
	case "catmullrom": return draw.CatmullRom, nil
	case "bilinear":   return draw.BiLinear, nil
	case "nearest":    return draw.NearestNeighbor, nil
	}
	return nil, invalidf("no upscaler named '%s'", c.Upscaler)
}

func (c Config)GetLabelColor() (color.Color, error) {
	col, err := colorful.Hex(c.LabelColor)
	if err != nil {
		return nil, invalidf("label color: %v", err)
	}
	return col, nil
}

// TextLines are drawn centered near the bottom of every slice, first line
// highest.
func (c Config)TextLines() []string {
	lines := []string{}
	if c.Disclaimer != "" {
		lines = append(lines, c.Disclaimer)
	}
	if c.Age != nil && c.PredictedAge != nil {
		gap := *c.PredictedAge - *c.Age
		lines = append(lines, fmt.Sprintf("Prediction: %.2f - Age: %.2f = BrainAGE of %.2f", *c.PredictedAge, *c.Age, gap))
	}
	return lines
}
