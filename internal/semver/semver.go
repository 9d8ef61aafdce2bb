// Package semver implements the small slice of semantic versioning the
// engine needs: parsing "major.minor.patch" strings, computing the next
// version for a requested bump, and encoding versions as sortable integers.
package semver

import (
	"fmt"
	"strconv"
	"strings"

	"flowledger/pkg/models"
)

// Initial is the version assigned to the first version of a workflow.
const Initial = "1.0.0"

// sortComponentRange bounds minor and patch in the integer encoding. Values
// at or above this corrupt ordering and are rejected by SortKey.
const sortComponentRange = 1_000_000

// Version is a parsed major.minor.patch triple.
type Version struct {
	Major int
	Minor int
	Patch int
}

// Parse splits s into its three components. It fails with
// models.ErrInvalidVersionFormat unless s is exactly three dot-separated
// non-negative integers.
func Parse(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("%w: %q", models.ErrInvalidVersionFormat, s)
	}
	var nums [3]int
	for i, p := range parts {
		if !digitsOnly(p) || (len(p) > 1 && p[0] == '0') {
			return Version{}, fmt.Errorf("%w: %q", models.ErrInvalidVersionFormat, s)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", models.ErrInvalidVersionFormat, s)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// String formats v back to "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Next computes the version string after applying the requested bump:
// major -> (X+1).0.0, minor -> X.(Y+1).0, patch -> X.Y.(Z+1).
func Next(current string, bump models.ChangeType) (string, error) {
	v, err := Parse(current)
	if err != nil {
		return "", err
	}
	switch bump {
	case models.ChangeTypeMajor:
		v = Version{Major: v.Major + 1}
	case models.ChangeTypeMinor:
		v = Version{Major: v.Major, Minor: v.Minor + 1}
	case models.ChangeTypePatch:
		v.Patch++
	default:
		return "", fmt.Errorf("unknown change type %q", bump)
	}
	return v.String(), nil
}

// SortKey encodes s as a single int64 that orders the same way the version
// does: major*10^12 + minor*10^6 + patch. Minor and patch must stay below
// one million; out-of-range components fail rather than silently misorder.
func SortKey(s string) (int64, error) {
	v, err := Parse(s)
	if err != nil {
		return 0, err
	}
	if v.Minor >= sortComponentRange || v.Patch >= sortComponentRange {
		return 0, fmt.Errorf("%w: component out of sortable range in %q", models.ErrInvalidVersionFormat, s)
	}
	return int64(v.Major)*sortComponentRange*sortComponentRange +
		int64(v.Minor)*sortComponentRange +
		int64(v.Patch), nil
}
