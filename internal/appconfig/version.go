package appconfig

import (
	"fmt"
	"regexp"
	"strconv"
)

var versionPattern = regexp.MustCompile(`^(\d+)(?:\.(\d+))?(?:\.(\d+))?(?:\.(\d+))?(?:-([0-9A-Za-z][0-9A-Za-z.-]*))?$`)

// maxVersionPart is the largest value a Windows package version part can hold.
const maxVersionPart = 65535

// Version is a parsed app version. Missing parts are zero.
type Version struct {
	Major  int
	Minor  int
	Patch  int
	Build  int
	Suffix string
}

// ParseVersion parses "major[.minor[.patch[.build]]][-suffix]".
func ParseVersion(s string) (Version, error) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, fmt.Errorf("%w: %q", ErrMalformedVersion, s)
	}

	var parts [4]int
	for i := 0; i < 4; i++ {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil || n > maxVersionPart {
			return Version{}, fmt.Errorf("%w: %q part %d out of range", ErrMalformedVersion, s, i+1)
		}
		parts[i] = n
	}

	return Version{
		Major:  parts[0],
		Minor:  parts[1],
		Patch:  parts[2],
		Build:  parts[3],
		Suffix: m[5],
	}, nil
}

// Windows renders the four-part package version.
func (v Version) Windows() string {
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Patch, v.Build)
}

// Short renders the three-part marketing version.
func (v Version) Short() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func (v Version) String() string {
	s := v.Short()
	if v.Build != 0 {
		s = v.Windows()
	}
	if v.Suffix != "" {
		s += "-" + v.Suffix
	}
	return s
}
