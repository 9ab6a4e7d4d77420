package resources

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/d-buckner/apppack/internal/appconfig"
)

func newTestMapper(index FileIndex) *Mapper {
	return NewMapper(index, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func matchedSlots(slots []LaunchSlot) []LaunchSlot {
	var out []LaunchSlot
	for _, s := range slots {
		if s.Matched() {
			out = append(out, s)
		}
	}
	return out
}

func TestIOSSplash_SingleGenericImage(t *testing.T) {
	m := newTestMapper(MapIndex{})

	r, slots := m.IOSSplash([]appconfig.ImageDescriptor{{Src: "a.png"}})

	assert.Equal(t, Mapping{
		"Images.xcassets/LaunchStoryboard.imageset/Default@2x~universal~anyany.png": "a.png",
	}, r.Mapping)
	assert.Empty(t, r.Warnings)

	// 3 idioms: universal(3) + ipad(2) + iphone(3) scales, 4 class combos each
	assert.Len(t, slots, 32)
	matched := matchedSlots(slots)
	require.Len(t, matched, 1)
	assert.Equal(t, LaunchSlot{
		Idiom:       "universal",
		Scale:       "2x",
		WidthClass:  "any",
		HeightClass: "any",
		Filename:    "Default@2x~universal~anyany.png",
		Src:         "a.png",
		Target:      "Images.xcassets/LaunchStoryboard.imageset/Default@2x~universal~anyany.png",
	}, matched[0])
}

func TestIOSSplash_UnmatchedSlotsOmitTrailingFields(t *testing.T) {
	m := newTestMapper(MapIndex{})
	_, slots := m.IOSSplash([]appconfig.ImageDescriptor{{Src: "a.png"}})

	data, err := json.Marshal(slots[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"idiom":"universal","scale":"1x","width-class":"compact","height-class":"compact"}`, string(data))
}

func TestIOSSplash_ExactBeatsGeneric(t *testing.T) {
	m := newTestMapper(MapIndex{})

	r, slots := m.IOSSplash([]appconfig.ImageDescriptor{
		{Src: "generic.png"},
		{Src: "res/screen/Default@2x~universal~anyany.png"},
		{Src: "res/screen/Default@3x~iphone~comany.png"},
	})

	key := "Images.xcassets/LaunchStoryboard.imageset/Default@2x~universal~anyany.png"
	assert.Equal(t, "res/screen/Default@2x~universal~anyany.png", r.Mapping[key])
	assert.Equal(t, "res/screen/Default@3x~iphone~comany.png",
		r.Mapping["Images.xcassets/LaunchStoryboard.imageset/Default@3x~iphone~comany.png"])
	assert.Len(t, matchedSlots(slots), 2)

	// the generic image lost its only possible slot
	require.Len(t, r.Warnings, 1)
	assert.Equal(t, "generic.png", r.Warnings[0].Src)
}

func TestIOSSplash_ExplicitAttributes(t *testing.T) {
	m := newTestMapper(MapIndex{})

	r, _ := m.IOSSplash([]appconfig.ImageDescriptor{
		{Src: "tablet.png", Idiom: "ipad", Scale: "1x", WidthClass: "compact", HeightClass: "any"},
	})

	assert.Equal(t, Mapping{
		"Images.xcassets/LaunchStoryboard.imageset/Default@1x~ipad~comany.png": "tablet.png",
	}, r.Mapping)
}

func TestIOSSplash_LegacySizes(t *testing.T) {
	m := newTestMapper(MapIndex{})

	r, slots := m.IOSSplash([]appconfig.ImageDescriptor{
		{Src: "res/Default-568h.png", Width: 640, Height: 1136},
		{Src: "res/odd.png", Width: 1, Height: 2},
	})

	assert.Equal(t, Mapping{
		"Images.xcassets/LaunchImage.launchimage/Default-568h@2x~iphone.png": "res/Default-568h.png",
	}, r.Mapping)
	assert.Empty(t, matchedSlots(slots))
	require.Len(t, r.Warnings, 1)
	assert.Equal(t, "res/odd.png", r.Warnings[0].Src)
}

func TestIOSIcons_BySize(t *testing.T) {
	m := newTestMapper(MapIndex{})

	r := m.IOSIcons([]appconfig.ImageDescriptor{
		{Src: "res/icon-40.png", Width: 40, Height: 40},
		{Src: "res/icon-180.png", Width: 180, Height: 180},
		{Src: "res/unknown.png", Width: 33, Height: 33},
		{Src: "res/nosize.png"},
		{Src: "res/marketing.png", Target: "icon-1024.png"},
	})

	assert.Equal(t, Mapping{
		"Images.xcassets/AppIcon.appiconset/icon-20@2x.png": "res/icon-40.png",
		"Images.xcassets/AppIcon.appiconset/icon-40.png":    "res/icon-40.png",
		"Images.xcassets/AppIcon.appiconset/icon-60@3x.png": "res/icon-180.png",
		"Images.xcassets/AppIcon.appiconset/icon-1024.png":  "res/marketing.png",
	}, r.Mapping)
	assert.Len(t, r.Warnings, 2)
}

func TestWindowsIcons_MRTFamily(t *testing.T) {
	index := MapIndex{
		"res/windows/Square44x44Logo.png":                                 100,
		"res/windows/Square44x44Logo.scale-200.png":                       100,
		"res/windows/Square44x44Logo.targetsize-16_altform-unplated.png": 100,
		"res/windows/Square44x44LogoOther.png":                            100,
		"res/windows/Square44x44Logo.scale-100.jpg":                       100,
	}
	m := newTestMapper(index)

	r := m.WindowsIcons([]appconfig.ImageDescriptor{
		{Src: "res/windows/Square44x44Logo.png", Target: "AppList"},
	})

	assert.Equal(t, Mapping{
		"images/AppList.png":                                "res/windows/Square44x44Logo.png",
		"images/AppList.scale-200.png":                      "res/windows/Square44x44Logo.scale-200.png",
		"images/AppList.targetsize-16_altform-unplated.png": "res/windows/Square44x44Logo.targetsize-16_altform-unplated.png",
	}, r.Mapping)
	assert.Empty(t, r.Warnings)
}

func TestWindowsIcons_SizesAndWarnings(t *testing.T) {
	m := newTestMapper(MapIndex{})

	r := m.WindowsIcons([]appconfig.ImageDescriptor{
		{Src: "res/150.png", Width: 150, Height: 150},
		{Src: "res/wide.png", Width: 620, Height: 300},
		{Src: "res/odd.png", Width: 151, Height: 151},
		{Src: "res/missing/Logo.png", Target: "Logo"},
	})

	assert.Equal(t, "res/150.png", r.Mapping["images/Square150x150Logo.scale-100.png"])
	assert.Equal(t, "res/wide.png", r.Mapping["images/Wide310x150Logo.scale-200.png"])
	assert.Len(t, r.Mapping, 2)
	assert.Len(t, r.Warnings, 2)
}

func TestWindowsSplash_RejectsFormatAndSize(t *testing.T) {
	index := MapIndex{
		"res/splash.png": 1024,
		"res/huge.png":   DefaultMaxSplashBytes + 1,
		"res/splash.gif": 10,
		"res/phone.jpg":  10,
	}
	m := newTestMapper(index)

	r := m.WindowsSplash([]appconfig.ImageDescriptor{
		{Src: "res/splash.png", Width: 620, Height: 300},
		{Src: "res/huge.png", Width: 1240, Height: 600},
		{Src: "res/splash.gif", Width: 930, Height: 450},
		{Src: "res/phone.jpg", Width: 480, Height: 800},
	})

	assert.Equal(t, Mapping{
		"images/SplashScreen.scale-100.png":      "res/splash.png",
		"images/SplashScreenPhone.scale-100.png": "res/phone.jpg",
	}, r.Mapping)
	assert.Len(t, r.Warnings, 2)
}

func TestMapping_CleanSymmetry(t *testing.T) {
	index := MapIndex{
		"res/w/Logo.png":           1,
		"res/w/Logo.scale-400.png": 1,
	}
	m := newTestMapper(index)

	icons := []appconfig.ImageDescriptor{
		{Src: "res/w/Logo.png", Target: "StoreLogo"},
		{Src: "res/44.png", Width: 44, Height: 44},
		{Src: "a.png"},
	}
	splashes := []appconfig.ImageDescriptor{{Src: "a.png"}, {Src: "b@3x~iphone~anyany.png"}}

	build := m.WindowsIcons(icons)
	iosSplash, _ := m.IOSSplash(splashes)
	build.Merge(iosSplash)

	clean := build.Mapping.Clean()
	assert.Equal(t, build.Mapping.Keys(), clean.Keys())
	for _, k := range clean.Keys() {
		assert.Empty(t, clean[k])
	}
}

func TestContentsJSON_OmitsAnyClasses(t *testing.T) {
	m := newTestMapper(MapIndex{})
	_, slots := m.IOSSplash([]appconfig.ImageDescriptor{{Src: "a.png"}})

	data, err := ContentsJSON(slots)
	require.NoError(t, err)

	var parsed struct {
		Images []map[string]string `json:"images"`
	}
	require.NoError(t, json.Unmarshal(data, &parsed))
	require.Len(t, parsed.Images, 32)

	var withFile []map[string]string
	for _, img := range parsed.Images {
		if img["filename"] != "" {
			withFile = append(withFile, img)
		}
	}
	require.Len(t, withFile, 1)
	assert.Equal(t, map[string]string{
		"idiom":    "universal",
		"scale":    "2x",
		"filename": "Default@2x~universal~anyany.png",
	}, withFile[0])
}

func TestOSIndex(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "res", "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "res", "a.png"), []byte("abc"), 0644))

	idx := OSIndex{Root: root}
	names, err := idx.List("res")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png"}, names)

	size, err := idx.Size("res/a.png")
	require.NoError(t, err)
	assert.Equal(t, int64(3), size)

	_, err = idx.List("missing")
	assert.Error(t, err)
}
