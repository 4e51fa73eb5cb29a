package allscreenshots

// DevicePreset is a named viewport configuration recognized by the
// service. The builder validates preset names against this registry so
// typos fail locally instead of producing a surprising capture.
type DevicePreset struct {
	Name     string
	Viewport Viewport
}

var devicePresets = []DevicePreset{
	{Name: "Desktop HD", Viewport: Viewport{Width: 1920, Height: 1080, DeviceScaleFactor: 1}},
	{Name: "Desktop", Viewport: Viewport{Width: 1366, Height: 768, DeviceScaleFactor: 1}},
	{Name: "Laptop", Viewport: Viewport{Width: 1440, Height: 900, DeviceScaleFactor: 2}},
	{Name: "iPhone 14", Viewport: Viewport{Width: 390, Height: 844, DeviceScaleFactor: 3}},
	{Name: "iPhone 14 Pro Max", Viewport: Viewport{Width: 430, Height: 932, DeviceScaleFactor: 3}},
	{Name: "iPad", Viewport: Viewport{Width: 810, Height: 1080, DeviceScaleFactor: 2}},
	{Name: "iPad Pro", Viewport: Viewport{Width: 1024, Height: 1366, DeviceScaleFactor: 2}},
}

var devicePresetNames = func() map[string]struct{} {
	m := make(map[string]struct{}, len(devicePresets))
	for _, p := range devicePresets {
		m[p.Name] = struct{}{}
	}
	return m
}()

// DevicePresets returns the recognized presets in display order.
func DevicePresets() []DevicePreset {
	out := make([]DevicePreset, len(devicePresets))
	copy(out, devicePresets)
	return out
}

// IsDevicePreset reports whether name is a recognized preset.
func IsDevicePreset(name string) bool {
	_, ok := devicePresetNames[name]
	return ok
}
