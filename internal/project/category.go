package project

import "strings"

// Category is a project size tier. It drives the vertical height of a node.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryXS
	CategoryS
	CategoryM
	CategoryL
	CategoryXL
)

// ParseCategory maps a category label to its tier.
// Matching ignores case and surrounding whitespace; anything else is CategoryUnknown.
func ParseCategory(s string) Category {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "XS":
		return CategoryXS
	case "S":
		return CategoryS
	case "M":
		return CategoryM
	case "L":
		return CategoryL
	case "XL":
		return CategoryXL
	default:
		return CategoryUnknown
	}
}

// Multiplier returns the height multiplier for the tier.
func (c Category) Multiplier() float64 {
	switch c {
	case CategoryXS:
		return 0.25
	case CategoryS:
		return 0.6
	case CategoryL:
		return 1.6
	case CategoryXL:
		return 2.1
	default:
		// M and unknown tiers share the base height.
		return 1.0
	}
}

// String returns the canonical label, or "" for CategoryUnknown.
func (c Category) String() string {
	switch c {
	case CategoryXS:
		return "XS"
	case CategoryS:
		return "S"
	case CategoryM:
		return "M"
	case CategoryL:
		return "L"
	case CategoryXL:
		return "XL"
	default:
		return ""
	}
}
