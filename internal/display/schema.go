package display

import (
	"fmt"
	"path/filepath"
	"reflect"
	"slices"

	"kiosk/internal/fields"
)

// Section names of the config file.
const (
	SectionTheme = "app_theme"
	SectionHello = "app_hello"
	SectionLive  = "app_live"
	SectionTimer = "app_timer"
	SectionImage = "app_image"
)

// LayerCount is the number of compositing layers, layer_0 front-most.
const LayerCount = 10

// FillMode is how a full-screen image is scaled.
type FillMode int

const (
	FillStretch FillMode = iota
	FillFit
	FillCrop
)

func (m FillMode) String() string {
	switch m {
	case FillStretch:
		return "stretch"
	case FillFit:
		return "fit"
	case FillCrop:
		return "crop"
	default:
		return fmt.Sprintf("fill_mode(%d)", int(m))
	}
}

// MarshalYAML writes the mode by name.
func (m FillMode) MarshalYAML() (any, error) {
	return m.String(), nil
}

type Theme struct {
	ColorMain string `yaml:"color_main"`
	ColorBg01 string `yaml:"color_bg01"`
	ColorBg02 string `yaml:"color_bg02"`
	ColorText string `yaml:"color_text"`
	ColorFlip bool   `yaml:"color_flip"`
}

type Hello struct {
	State      bool               `yaml:"state"`
	News1      string             `yaml:"news_1"`
	News2      string             `yaml:"news_2"`
	Lead       string             `yaml:"lead"`
	Main       string             `yaml:"main"`
	SpinText   string             `yaml:"spin_text"`
	SpinImages [4]string          `yaml:"spin_images"`
	Show1      string             `yaml:"show_1"`
	Show2      string             `yaml:"show_2"`
	HourText   string             `yaml:"hour_text"`
	HourData   string             `yaml:"hour_data"`
	ListText   string             `yaml:"list_text"`
	ListData   string             `yaml:"list_data"`
	Logo       string             `yaml:"logo"`
	Scan       string             `yaml:"scan"`
	Platforms  []fields.ListEntry `yaml:"platforms"`
}

type Live struct {
	Layers           [LayerCount]string `yaml:"layers"`
	LayerTransitions [LayerCount]int    `yaml:"layer_transitions"`
	RenderWidth      int                `yaml:"render_width"`
	RenderHeight     int                `yaml:"render_height"`
	RenderScreen     int                `yaml:"render_screen"`
	RenderRotate     int                `yaml:"render_rotate"`
	RenderMouse      int                `yaml:"render_mouse"`
	MousePoint       string             `yaml:"mouse_point"`
	MouseHover       string             `yaml:"mouse_hover"`
	MouseField       string             `yaml:"mouse_field"`
	MouseDelay       string             `yaml:"mouse_delay"`
}

type Timer struct {
	State      bool   `yaml:"state"`
	Count      bool   `yaml:"count"`
	Max        int    `yaml:"max"`
	Text       string `yaml:"text"`
	MenuLeft   string `yaml:"menu_left"`
	MenuMiddle string `yaml:"menu_middle"`
	MenuRight  string `yaml:"menu_right"`
}

type Image struct {
	Source   string   `yaml:"source"`
	BgColor  string   `yaml:"bg_color"`
	FillMode FillMode `yaml:"fill_mode"`
	ShowBg   bool     `yaml:"show_bg"`
}

// Config is one complete, immutable view of the config file.
type Config struct {
	Theme Theme `yaml:"app_theme"`
	Hello Hello `yaml:"app_hello"`
	Live  Live  `yaml:"app_live"`
	Timer Timer `yaml:"app_timer"`
	Image Image `yaml:"app_image"`
}

// Defaults returns the value of every key when the file or key is absent.
// Asset paths resolve under contentRoot.
func Defaults(contentRoot string) Config {
	asset := func(name string) string {
		return filepath.Join(contentRoot, name)
	}
	config := Config{
		Theme: Theme{
			ColorMain: fields.ParseHexColor("0x00AEEF"),
			ColorBg01: fields.ParseHexColor("0x002657"),
			ColorBg02: fields.ParseHexColor("0x00529b"),
			ColorText: fields.ParseHexColor("0xfb6502"),
		},
		Hello: Hello{
			State:    true,
			News1:    "Welcome!",
			News2:    "Welcome!",
			Lead:     asset("banner_image.png"),
			Main:     asset("facility_logo.png"),
			SpinText: "NEW RELEASES",
			Show1:    asset("left_image.png"),
			Show2:    asset("right_image.png"),
			HourText: "LAB HOURS",
			HourData: asset("facility_data.json"),
			ListText: "PLAYERS",
			ListData: asset("user_data.json"),
			Logo:     asset("gamelab.gif"),
			Scan:     asset("qr_support.png"),
		},
		Live: Live{
			RenderWidth:  1024,
			RenderHeight: 600,
			RenderMouse:  1,
			MousePoint:   "mouse_assets/mouse-point.png",
			MouseHover:   "mouse_assets/mouse-hover.png",
			MouseField:   "mouse_assets/mouse-field.png",
			MouseDelay:   "mouse_assets/mouse-delay.png",
		},
		Timer: Timer{
			Max:       99,
			Text:      "FINISH SSO LOGIN",
			MenuLeft:  "NEED MORE TIME",
			MenuRight: "START OVER",
		},
		Image: Image{
			BgColor:  fields.DefaultColor,
			FillMode: FillFit,
		},
	}
	for index := range config.Hello.SpinImages {
		config.Hello.SpinImages[index] = asset(fmt.Sprintf("game%d_image.jpg", index+1))
	}
	for index := range config.Live.LayerTransitions {
		config.Live.LayerTransitions[index] = 300
	}
	return config
}

// Clone returns a copy that shares no slices with c.
func (c Config) Clone() Config {
	clone := c
	if c.Hello.Platforms != nil {
		clone.Hello.Platforms = append([]fields.ListEntry(nil), c.Hello.Platforms...)
	}
	return clone
}

// ChangedSections lists the sections whose values differ, in file order.
func ChangedSections(previous, next Config) []string {
	var changed []string
	if previous.Theme != next.Theme {
		changed = append(changed, SectionTheme)
	}
	if !helloEqual(previous.Hello, next.Hello) {
		changed = append(changed, SectionHello)
	}
	if previous.Live != next.Live {
		changed = append(changed, SectionLive)
	}
	if previous.Timer != next.Timer {
		changed = append(changed, SectionTimer)
	}
	if previous.Image != next.Image {
		changed = append(changed, SectionImage)
	}
	return changed
}

// ResolutionChanged reports whether the render window size differs.
func ResolutionChanged(previous, next Config) bool {
	return previous.Live.RenderWidth != next.Live.RenderWidth || previous.Live.RenderHeight != next.Live.RenderHeight
}

// helloEqual treats a nil and an empty platform list as equal.
func helloEqual(a, b Hello) bool {
	if !slices.Equal(a.Platforms, b.Platforms) {
		return false
	}
	a.Platforms, b.Platforms = nil, nil
	return reflect.DeepEqual(a, b)
}
