package images

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// FrameSize is a named camera frame size.
type FrameSize struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// MegaPixels is Width*Height in millions, rounded to two decimal places
// (2.07 for 1080p). Non-positive dimensions give 0.
func (f FrameSize) MegaPixels() float64 {
	if f.Width <= 0 || f.Height <= 0 {
		return 0
	}
	mp := float64(f.Width*f.Height) / 1_000_000.0
	return math.Round(mp*100) / 100
}

// String returns "name (WxH, N.NNMP)".
func (f FrameSize) String() string {
	return fmt.Sprintf("%s (%dx%d, %.2fMP)", f.Name, f.Width, f.Height, f.MegaPixels())
}

// frameSizes are the common surveillance and video frame sizes, keyed by a
// short alias.
var frameSizes = map[string]FrameSize{
	"qvga":  {Name: "qvga", Width: 320, Height: 240},
	"vga":   {Name: "vga", Width: 640, Height: 480},
	"nhd":   {Name: "nhd", Width: 640, Height: 360},
	"540p":  {Name: "540p", Width: 960, Height: 540},
	"720p":  {Name: "720p", Width: 1280, Height: 720},
	"1mp":   {Name: "1mp", Width: 1280, Height: 1024},
	"1080p": {Name: "1080p", Width: 1920, Height: 1080},
	"2mp":   {Name: "2mp", Width: 1600, Height: 1200},
	"1440p": {Name: "1440p", Width: 2560, Height: 1440},
	"3mp":   {Name: "3mp", Width: 2048, Height: 1536},
	"4mp":   {Name: "4mp", Width: 2688, Height: 1520},
	"4k":    {Name: "4k", Width: 3840, Height: 2160},
}

// FrameSizes returns every named frame size ordered by pixel count, then name.
func FrameSizes() []FrameSize {
	all := make([]FrameSize, 0, len(frameSizes))
	for _, f := range frameSizes {
		all = append(all, f)
	}
	sort.Slice(all, func(i, j int) bool {
		pi, pj := all[i].Width*all[i].Height, all[j].Width*all[j].Height
		if pi != pj {
			return pi < pj
		}
		return all[i].Name < all[j].Name
	})
	return all
}

// ParseFrameSize accepts a known alias ("720p", case-insensitive) or explicit
// "WIDTHxHEIGHT" dimensions.
func ParseFrameSize(s string) (FrameSize, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if f, ok := frameSizes[key]; ok {
		return f, nil
	}

	w, h, ok := strings.Cut(key, "x")
	if !ok {
		return FrameSize{}, errors.Errorf("unknown frame size %q", s)
	}
	width, err := strconv.Atoi(w)
	if err != nil {
		return FrameSize{}, errors.Wrapf(err, "frame size %q: width", s)
	}
	height, err := strconv.Atoi(h)
	if err != nil {
		return FrameSize{}, errors.Wrapf(err, "frame size %q: height", s)
	}
	if width <= 0 || height <= 0 {
		return FrameSize{}, errors.Errorf("frame size %q: dimensions must be positive", s)
	}
	return FrameSize{Name: fmt.Sprintf("%dx%d", width, height), Width: width, Height: height}, nil
}

// LargestFrameSizeWithin returns the named frame size with the most pixels that
// fits inside width x height.
func LargestFrameSizeWithin(width, height int) (FrameSize, bool) {
	var best FrameSize
	found := false
	for _, f := range FrameSizes() {
		if f.Width <= width && f.Height <= height {
			best, found = f, true
		}
	}
	return best, found
}
