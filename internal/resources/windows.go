package resources

import (
	"fmt"
	"path"
	"strings"

	"codeberg.org/d-buckner/apppack/internal/appconfig"
)

// WindowsImageDir is the image folder of a Windows project.
const WindowsImageDir = "images"

var windowsIcons = []sizeSlot{
	{"StoreLogo.scale-100.png", 50, 50},
	{"StoreLogo.scale-125.png", 63, 63},
	{"StoreLogo.scale-150.png", 75, 75},
	{"StoreLogo.scale-200.png", 100, 100},
	{"StoreLogo.scale-400.png", 200, 200},
	{"Square44x44Logo.scale-100.png", 44, 44},
	{"Square44x44Logo.scale-125.png", 55, 55},
	{"Square44x44Logo.scale-150.png", 66, 66},
	{"Square44x44Logo.scale-200.png", 88, 88},
	{"Square44x44Logo.scale-400.png", 176, 176},
	{"Square71x71Logo.scale-100.png", 71, 71},
	{"Square71x71Logo.scale-125.png", 89, 89},
	{"Square71x71Logo.scale-150.png", 107, 107},
	{"Square71x71Logo.scale-200.png", 142, 142},
	{"Square71x71Logo.scale-400.png", 284, 284},
	{"Square150x150Logo.scale-100.png", 150, 150},
	{"Square150x150Logo.scale-125.png", 188, 188},
	{"Square150x150Logo.scale-150.png", 225, 225},
	{"Square150x150Logo.scale-200.png", 300, 300},
	{"Square150x150Logo.scale-400.png", 600, 600},
	{"Square310x310Logo.scale-100.png", 310, 310},
	{"Square310x310Logo.scale-200.png", 620, 620},
	{"Wide310x150Logo.scale-100.png", 310, 150},
	{"Wide310x150Logo.scale-200.png", 620, 300},
}

var windowsSplashes = []sizeSlot{
	{"SplashScreen.scale-100.png", 620, 300},
	{"SplashScreen.scale-125.png", 775, 375},
	{"SplashScreen.scale-150.png", 930, 450},
	{"SplashScreen.scale-200.png", 1240, 600},
	{"SplashScreen.scale-400.png", 2480, 1200},
	{"SplashScreenPhone.scale-100.png", 480, 800},
	{"SplashScreenPhone.scale-140.png", 672, 1120},
	{"SplashScreenPhone.scale-240.png", 1152, 1920},
}

var splashExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

// WindowsIcons maps icons by exact size, or as a family of qualified
// variants when a target name is given.
func (m *Mapper) WindowsIcons(icons []appconfig.ImageDescriptor) Result {
	r := newResult()
	m.windowsImages(&r, icons, windowsIcons, "icon")
	return r
}

// WindowsSplash maps splash screens like WindowsIcons, after rejecting
// unsupported formats and files larger than the configured limit.
func (m *Mapper) WindowsSplash(splashes []appconfig.ImageDescriptor) Result {
	r := newResult()

	var accepted []appconfig.ImageDescriptor
	for _, d := range splashes {
		if d.Src == "" {
			m.warn(&r, "<empty>", "splash has no src")
			continue
		}
		ext := strings.ToLower(path.Ext(d.Src))
		if !splashExtensions[ext] {
			m.warn(&r, d.Src, fmt.Sprintf("unsupported splash format %q", ext))
			continue
		}
		if size, err := m.index.Size(d.Src); err == nil && size > m.maxSplashBytes {
			m.warn(&r, d.Src, fmt.Sprintf("splash is %d bytes, limit is %d", size, m.maxSplashBytes))
			continue
		}
		accepted = append(accepted, d)
	}

	m.windowsImages(&r, accepted, windowsSplashes, "splash")
	return r
}

func (m *Mapper) windowsImages(r *Result, images []appconfig.ImageDescriptor, table []sizeSlot, kind string) {
	used := make([]bool, len(images))
	for _, slot := range table {
		for i, img := range images {
			if img.Target == "" && img.Width == slot.Width && img.Height == slot.Height {
				r.Mapping[path.Join(WindowsImageDir, slot.Dest)] = img.Src
				used[i] = true
				break
			}
		}
	}

	for i, img := range images {
		switch {
		case img.Src == "":
			m.warn(r, "<empty>", kind+" has no src")
		case img.Target != "":
			m.family(r, img.Src, img.Target, WindowsImageDir)
		case !img.HasSize():
			m.warn(r, img.Src, kind+" has neither target nor width/height")
		case !used[i]:
			m.warn(r, img.Src, fmt.Sprintf("no %s slot for %dx%d", kind, img.Width, img.Height))
		}
	}
}
