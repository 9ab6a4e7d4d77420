package resources

import (
	"encoding/json"
	"fmt"
	"path"
	"regexp"

	"codeberg.org/d-buckner/apppack/internal/appconfig"
)

// Asset catalog locations, relative to the iOS project directory.
const (
	IOSAppIconDir          = "Images.xcassets/AppIcon.appiconset"
	IOSLaunchStoryboardDir = "Images.xcassets/LaunchStoryboard.imageset"
	IOSLaunchImageDir      = "Images.xcassets/LaunchImage.launchimage"
)

// Size classes used in launch storyboard slots.
const (
	SizeClassAny     = "any"
	SizeClassCompact = "compact"
)

var iosIcons = []sizeSlot{
	{"icon-20.png", 20, 20},
	{"icon-20@2x.png", 40, 40},
	{"icon-20@3x.png", 60, 60},
	{"icon-29.png", 29, 29},
	{"icon-29@2x.png", 58, 58},
	{"icon-29@3x.png", 87, 87},
	{"icon-40.png", 40, 40},
	{"icon-40@2x.png", 80, 80},
	{"icon-40@3x.png", 120, 120},
	{"icon-50.png", 50, 50},
	{"icon-50@2x.png", 100, 100},
	{"icon.png", 57, 57},
	{"icon@2x.png", 114, 114},
	{"icon-60@2x.png", 120, 120},
	{"icon-60@3x.png", 180, 180},
	{"icon-72.png", 72, 72},
	{"icon-72@2x.png", 144, 144},
	{"icon-76.png", 76, 76},
	{"icon-76@2x.png", 152, 152},
	{"icon-83.5@2x.png", 167, 167},
	{"icon-1024.png", 1024, 1024},
}

var iosLegacyLaunchImages = []sizeSlot{
	{"Default~iphone.png", 320, 480},
	{"Default@2x~iphone.png", 640, 960},
	{"Default-568h@2x~iphone.png", 640, 1136},
	{"Default-667h.png", 750, 1334},
	{"Default-736h.png", 1242, 2208},
	{"Default-Landscape-736h.png", 2208, 1242},
	{"Default-2436h.png", 1125, 2436},
	{"Default-Landscape-2436h.png", 2436, 1125},
	{"Default-Portrait~ipad.png", 768, 1024},
	{"Default-Portrait@2x~ipad.png", 1536, 2048},
	{"Default-Landscape~ipad.png", 1024, 768},
	{"Default-Landscape@2x~ipad.png", 2048, 1536},
}

// Launch storyboard slot matrix: idioms with their scales, times both size classes.
var (
	launchIdioms = []string{"universal", "ipad", "iphone"}
	launchScales = map[string][]string{
		"universal": {"1x", "2x", "3x"},
		"ipad":      {"1x", "2x"},
		"iphone":    {"1x", "2x", "3x"},
	}
	launchClasses = []string{SizeClassCompact, SizeClassAny}
)

// launchNamePattern picks idiom, scale and size classes out of names such as
// "Default@2x~universal~comany.png".
var launchNamePattern = regexp.MustCompile(`@([123]x)~(universal|iphone|ipad)~(com|any)(com|any)`)

// LaunchSlot is one entry of the computed launch storyboard contents. Slots
// without a matching image leave Filename, Src and Target empty, and they are
// omitted from the JSON form.
type LaunchSlot struct {
	Idiom       string `json:"idiom"`
	Scale       string `json:"scale"`
	WidthClass  string `json:"width-class"`
	HeightClass string `json:"height-class"`
	Filename    string `json:"filename,omitempty"`
	Src         string `json:"src,omitempty"`
	Target      string `json:"target,omitempty"`
}

// Matched reports whether an image was assigned to the slot.
func (s LaunchSlot) Matched() bool {
	return s.Filename != ""
}

// IOSIcons maps icons onto the app icon set by exact pixel size. Icons with
// an explicit target are copied under that name.
func (m *Mapper) IOSIcons(icons []appconfig.ImageDescriptor) Result {
	r := newResult()
	used := make([]bool, len(icons))

	for _, slot := range iosIcons {
		for i, icon := range icons {
			if icon.Target == "" && icon.Width == slot.Width && icon.Height == slot.Height {
				r.Mapping[path.Join(IOSAppIconDir, slot.Dest)] = icon.Src
				used[i] = true
				break
			}
		}
	}

	for i, icon := range icons {
		switch {
		case icon.Src == "":
			m.warn(&r, "<empty>", "icon has no src")
		case icon.Target != "":
			r.Mapping[path.Join(IOSAppIconDir, path.Base(icon.Target))] = icon.Src
		case !icon.HasSize():
			m.warn(&r, icon.Src, "icon has neither target nor width/height")
		case !used[i]:
			m.warn(&r, icon.Src, fmt.Sprintf("no icon slot for %dx%d", icon.Width, icon.Height))
		}
	}
	return r
}

// launchKey is the slot a splash descriptor claims.
type launchKey struct {
	idiom, scale, width, height string
}

type launchCandidate struct {
	key   launchKey
	exact bool
	src   string
}

// classifyLaunch resolves the slot a storyboard image claims. Size classes
// given explicitly, or encoded in the file name, make an exact candidate.
// Otherwise the candidate is generic and can only fill an any/any slot.
func classifyLaunch(d appconfig.ImageDescriptor) launchCandidate {
	c := launchCandidate{
		key: launchKey{idiom: "universal", scale: "2x", width: SizeClassAny, height: SizeClassAny},
		src: d.Src,
	}

	if m := launchNamePattern.FindStringSubmatch(path.Base(d.Src)); m != nil {
		c.key = launchKey{idiom: m[2], scale: m[1], width: expandClass(m[3]), height: expandClass(m[4])}
		c.exact = true
	}
	if d.Idiom != "" {
		c.key.idiom = d.Idiom
	}
	if d.Scale != "" {
		c.key.scale = d.Scale
	}
	if d.WidthClass != "" && d.HeightClass != "" {
		c.key.width = expandClass(d.WidthClass)
		c.key.height = expandClass(d.HeightClass)
		c.exact = true
	}
	return c
}

func expandClass(s string) string {
	if s == "com" || s == SizeClassCompact {
		return SizeClassCompact
	}
	return SizeClassAny
}

func abbreviateClass(s string) string {
	if s == SizeClassCompact {
		return "com"
	}
	return SizeClassAny
}

// IOSSplash maps splash screens. Images carrying pixel sizes go to the legacy
// launch image set; everything else competes for launch storyboard slots.
// The returned slots list every slot in a fixed order, matched or not.
func (m *Mapper) IOSSplash(splashes []appconfig.ImageDescriptor) (Result, []LaunchSlot) {
	r := newResult()

	var candidates []launchCandidate
	for _, d := range splashes {
		switch {
		case d.Src == "":
			m.warn(&r, "<empty>", "splash has no src")
		case d.Target != "":
			r.Mapping[path.Join(IOSLaunchStoryboardDir, path.Base(d.Target))] = d.Src
		case d.HasSize() && !launchNamePattern.MatchString(d.Src):
			m.legacyLaunchImage(&r, d)
		default:
			candidates = append(candidates, classifyLaunch(d))
		}
	}

	claimed := make([]bool, len(candidates))
	var slots []LaunchSlot
	for _, idiom := range launchIdioms {
		for _, scale := range launchScales[idiom] {
			for _, wc := range launchClasses {
				for _, hc := range launchClasses {
					slot := LaunchSlot{Idiom: idiom, Scale: scale, WidthClass: wc, HeightClass: hc}
					if i := bestLaunchCandidate(candidates, launchKey{idiom, scale, wc, hc}); i >= 0 {
						claimed[i] = true
						slot.Filename = fmt.Sprintf("Default@%s~%s~%s%s.png", scale, idiom, abbreviateClass(wc), abbreviateClass(hc))
						slot.Src = candidates[i].src
						slot.Target = path.Join(IOSLaunchStoryboardDir, slot.Filename)
						r.Mapping[slot.Target] = slot.Src
					}
					slots = append(slots, slot)
				}
			}
		}
	}

	for i, c := range candidates {
		if !claimed[i] {
			m.warn(&r, c.src, "no launch storyboard slot for image")
		}
	}
	return r, slots
}

// bestLaunchCandidate ranks candidates for a slot: an exact match on all four
// keys beats a generic image on an any/any slot. Ties go to the first image.
func bestLaunchCandidate(candidates []launchCandidate, slot launchKey) int {
	best, bestRank := -1, 0
	for i, c := range candidates {
		rank := 0
		switch {
		case c.exact && c.key == slot:
			rank = 2
		case !c.exact && c.key == slot:
			rank = 1
		}
		if rank > bestRank {
			best, bestRank = i, rank
		}
	}
	return best
}

func (m *Mapper) legacyLaunchImage(r *Result, d appconfig.ImageDescriptor) {
	matched := false
	for _, slot := range iosLegacyLaunchImages {
		if d.Width == slot.Width && d.Height == slot.Height {
			r.Mapping[path.Join(IOSLaunchImageDir, slot.Dest)] = d.Src
			matched = true
		}
	}
	if !matched {
		m.warn(r, d.Src, fmt.Sprintf("no launch image for %dx%d", d.Width, d.Height))
	}
}

type xcodeImage struct {
	Idiom       string `json:"idiom"`
	Scale       string `json:"scale"`
	WidthClass  string `json:"width-class,omitempty"`
	HeightClass string `json:"height-class,omitempty"`
	Filename    string `json:"filename,omitempty"`
}

type xcodeContents struct {
	Images []xcodeImage   `json:"images"`
	Info   map[string]any `json:"info"`
}

// ContentsJSON renders slots as an asset catalog Contents.json. Xcode wants
// no size class key when the class is "any".
func ContentsJSON(slots []LaunchSlot) ([]byte, error) {
	c := xcodeContents{
		Images: make([]xcodeImage, 0, len(slots)),
		Info:   map[string]any{"author": "xcode", "version": 1},
	}
	for _, s := range slots {
		img := xcodeImage{Idiom: s.Idiom, Scale: s.Scale, Filename: s.Filename}
		if s.WidthClass != SizeClassAny {
			img.WidthClass = s.WidthClass
		}
		if s.HeightClass != SizeClassAny {
			img.HeightClass = s.HeightClass
		}
		c.Images = append(c.Images, img)
	}
	return json.MarshalIndent(c, "", "  ")
}
