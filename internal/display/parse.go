package display

import (
	"fmt"

	"gopkg.in/ini.v1"

	"kiosk/internal/fields"
)

var loadOptions = ini.LoadOptions{
	// Colour values carry '#' and the dimension pair carries ';'.
	IgnoreInlineComment: true,
	KeyValueDelimiters:  "=",
	Insensitive:         false,
}

// Parse builds a Config from INI data, starting from Defaults(contentRoot).
// Missing sections and keys keep their defaults.
func Parse(data []byte, contentRoot string) (Config, error) {
	file, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	config := Defaults(contentRoot)

	theme := lookupSection(file, SectionTheme)
	config.Theme.ColorMain = theme.color("color_main", config.Theme.ColorMain)
	config.Theme.ColorBg01 = theme.color("color_bg01", config.Theme.ColorBg01)
	config.Theme.ColorBg02 = theme.color("color_bg02", config.Theme.ColorBg02)
	config.Theme.ColorText = theme.color("color_text", config.Theme.ColorText)
	config.Theme.ColorFlip = theme.flag("color_flip", config.Theme.ColorFlip)

	hello := lookupSection(file, SectionHello)
	config.Hello.State = hello.flag("hello_state", config.Hello.State)
	config.Hello.News1 = hello.text("hello_news-1", config.Hello.News1)
	config.Hello.News2 = hello.text("hello_news-2", config.Hello.News2)
	config.Hello.Lead = hello.text("hello_lead", config.Hello.Lead)
	config.Hello.Main = hello.text("hello_main", config.Hello.Main)
	config.Hello.SpinText = hello.text("hello_spin-text", config.Hello.SpinText)
	for index := range config.Hello.SpinImages {
		key := fmt.Sprintf("hello_spin-img%d", index+1)
		config.Hello.SpinImages[index] = hello.text(key, config.Hello.SpinImages[index])
	}
	config.Hello.Show1 = hello.text("hello_show-1", config.Hello.Show1)
	config.Hello.Show2 = hello.text("hello_show-2", config.Hello.Show2)
	config.Hello.HourText = hello.text("hello_hour-text", config.Hello.HourText)
	config.Hello.HourData = hello.text("hello_hour-data", config.Hello.HourData)
	config.Hello.ListText = hello.text("hello_list-text", config.Hello.ListText)
	config.Hello.ListData = hello.text("hello_list-data", config.Hello.ListData)
	config.Hello.Logo = hello.text("hello_logo", config.Hello.Logo)
	config.Hello.Scan = hello.text("hello_scan", config.Hello.Scan)
	config.Hello.Platforms = fields.ExtractIndexedList(hello.lookup, fields.PrefixedListKeys("hello_list-", "img", "cat", "tot"))

	live := lookupSection(file, SectionLive)
	for index := 0; index < LayerCount; index++ {
		config.Live.Layers[index] = live.text(fmt.Sprintf("layer_%d", index), config.Live.Layers[index])
		config.Live.LayerTransitions[index] = live.integer(fmt.Sprintf("layer_transition_%d", index), config.Live.LayerTransitions[index])
	}
	if window, ok := live.lookup("render_window"); ok {
		config.Live.RenderWidth, config.Live.RenderHeight = fields.ParseDimensions(window, config.Live.RenderWidth, config.Live.RenderHeight)
	}
	config.Live.RenderScreen = live.integer("render_screen", config.Live.RenderScreen)
	config.Live.RenderRotate = live.integer("render_rotate", config.Live.RenderRotate)
	config.Live.RenderMouse = live.integer("render_mouse", config.Live.RenderMouse)
	config.Live.MousePoint = live.text("mouse-point", config.Live.MousePoint)
	config.Live.MouseHover = live.text("mouse-hover", config.Live.MouseHover)
	config.Live.MouseField = live.text("mouse-field", config.Live.MouseField)
	config.Live.MouseDelay = live.text("mouse-delay", config.Live.MouseDelay)

	timer := lookupSection(file, SectionTimer)
	config.Timer.State = timer.flag("timer_state", config.Timer.State)
	config.Timer.Count = timer.flag("timer_count", config.Timer.Count)
	config.Timer.Max = timer.integer("timer_max", config.Timer.Max)
	config.Timer.Text = timer.text("timer_text", config.Timer.Text)
	config.Timer.MenuLeft = timer.text("timer_menu-l", config.Timer.MenuLeft)
	config.Timer.MenuMiddle = timer.text("timer_menu-m", config.Timer.MenuMiddle)
	config.Timer.MenuRight = timer.text("timer_menu-r", config.Timer.MenuRight)

	image := lookupSection(file, SectionImage)
	config.Image.Source = image.text("image_source", config.Image.Source)
	config.Image.BgColor = image.color("image_bg_color", config.Image.BgColor)
	config.Image.FillMode = FillMode(image.integer("image_fill_mode", int(config.Image.FillMode)))
	config.Image.ShowBg = image.flag("image_show_bg", config.Image.ShowBg)

	return config, nil
}

// section reads keys of one INI section; a missing section reads as empty.
type section struct {
	raw *ini.Section
}

func lookupSection(file *ini.File, name string) section {
	raw, err := file.GetSection(name)
	if err != nil {
		return section{}
	}
	return section{raw: raw}
}

func (s section) lookup(key string) (string, bool) {
	if s.raw == nil || !s.raw.HasKey(key) {
		return "", false
	}
	return s.raw.Key(key).String(), true
}

func (s section) text(key, fallback string) string {
	value, ok := s.lookup(key)
	if !ok {
		return fallback
	}
	return value
}

func (s section) integer(key string, fallback int) int {
	value, ok := s.lookup(key)
	if !ok {
		return fallback
	}
	return fields.ParseInt(value, fallback)
}

func (s section) flag(key string, fallback bool) bool {
	value, ok := s.lookup(key)
	if !ok {
		return fallback
	}
	return fields.IntFlag(value)
}

func (s section) color(key, fallback string) string {
	value, ok := s.lookup(key)
	if !ok {
		return fallback
	}
	return fields.ParseHexColor(value)
}
