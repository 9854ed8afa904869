package palette

// Theme is a named gradient.
type Theme struct {
	Name   string
	Colors []string
}

// Available themes
var (
	ThemeDragon = Theme{Name: "dragon", Colors: DefaultHex()}

	ThemeCyberpunk = Theme{
		Name:   "cyberpunk",
		Colors: []string{"#ff00ff", "#00ffff", "#ffff00"},
	}

	ThemeRetroGreen = Theme{
		Name:   "retro",
		Colors: []string{"#00ff00", "#00cc00", "#88ff88", "#005500"}, // green phosphor
	}

	ThemeMinimal = Theme{
		Name:   "minimal",
		Colors: []string{"#ffffff", "#cccccc", "#888888"},
	}

	ThemeOcean = Theme{
		Name:   "ocean",
		Colors: []string{"#0077be", "#00a8cc", "#e0f0ff", "#4488aa"},
	}

	ThemeSunset = Theme{
		Name:   "sunset",
		Colors: []string{"#ff6b6b", "#feca57", "#ff9ff3", "#8b6b8c"},
	}

	Themes = []Theme{
		ThemeDragon,
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeMinimal,
		ThemeOcean,
		ThemeSunset,
	}
)

// GetTheme returns a theme by name, falling back to the dragon colours.
func GetTheme(name string) (Theme, bool) {
	for _, t := range Themes {
		if t.Name == name {
			return t, true
		}
	}
	return ThemeDragon, false
}

// ThemeNames returns the theme names in display order.
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// NextTheme returns the theme after name, wrapping around.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

// Palette parses the theme's colours. Built-in themes are always valid.
func (t Theme) Palette() Palette {
	p, err := FromHex(t.Colors...)
	if err != nil || p.Len() == 0 {
		return Default()
	}
	return p
}
