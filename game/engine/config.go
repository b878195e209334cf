package engine

import (
	"github.com/samber/oops"

	"github.com/wricardo/campus-quest/game/catalog"
)

const (
	DefaultMinScore            = 60
	DefaultMaxScore            = 100
	DefaultMaxTurns            = 67
	UnlimitedTurns             = 1_000_000_000
	DefaultStartLocation       = 2
	DefaultExtensionBonusTurns = 30
	ExtensionEffect            = "extra time granted"
)

// Settings are the rules a single engine plays by.
type Settings struct {
	StartLocation       int      `json:"start_location"`
	MinScore            int      `json:"min_score"`
	MaxScore            int      `json:"max_score"`
	MaxTurns            int      `json:"max_turns"`
	ExtensionBonusTurns int      `json:"extension_bonus_turns"`
	ExtensionEffect     string   `json:"extension_effect"`
	RequiredReturns     []string `json:"required_returns"`
	StorageEquivalents  []string `json:"storage_equivalents"`
	// SubstituteItem scores as SubstitutesFor when that item is worth more
	// and has not been returned yet.
	SubstituteItem string `json:"substitute_item"`
	SubstitutesFor string `json:"substitutes_for"`
}

// DefaultSettings returns the campus rules.
func DefaultSettings() Settings {
	return Settings{
		StartLocation:       DefaultStartLocation,
		MinScore:            DefaultMinScore,
		MaxScore:            DefaultMaxScore,
		MaxTurns:            DefaultMaxTurns,
		ExtensionBonusTurns: DefaultExtensionBonusTurns,
		ExtensionEffect:     ExtensionEffect,
		RequiredReturns:     []string{"laptop charger", "lucky mug"},
		StorageEquivalents:  []string{"usb drive", "spare usb cable"},
		SubstituteItem:      "spare usb cable",
		SubstitutesFor:      "usb drive",
	}
}

// WithRules overlays the non-zero fields of a world's rules block.
func (s Settings) WithRules(r catalog.Rules) Settings {
	if r.StartLocation != nil {
		s.StartLocation = *r.StartLocation
	}
	if r.MinScore > 0 {
		s.MinScore = r.MinScore
	}
	if r.MaxScore > 0 {
		s.MaxScore = r.MaxScore
	}
	if r.MaxTurns > 0 {
		s.MaxTurns = r.MaxTurns
	}
	if r.ExtensionBonusTurns > 0 {
		s.ExtensionBonusTurns = r.ExtensionBonusTurns
	}
	if r.ExtensionEffect != "" {
		s.ExtensionEffect = r.ExtensionEffect
	}
	if len(r.RequiredReturns) > 0 {
		s.RequiredReturns = append([]string(nil), r.RequiredReturns...)
	}
	if len(r.StorageEquivalents) > 0 {
		s.StorageEquivalents = append([]string(nil), r.StorageEquivalents...)
	}
	if r.SubstituteItem != "" {
		s.SubstituteItem = r.SubstituteItem
	}
	if r.SubstitutesFor != "" {
		s.SubstitutesFor = r.SubstitutesFor
	}
	return s
}

// SettingsFor returns the default settings with the catalog's rules applied.
func SettingsFor(cat *catalog.Catalog) Settings {
	return DefaultSettings().WithRules(cat.Rules)
}

// ValidateSettings checks that the settings can drive a game over cat.
func ValidateSettings(cat *catalog.Catalog, s Settings) error {
	errb := oops.Code("ENGINE_SETTINGS_INVALID")
	if cat == nil {
		return errb.Errorf("catalog is required")
	}
	errb = errb.With("catalog", cat.Name)
	if _, ok := cat.Location(s.StartLocation); !ok {
		return errb.Errorf("start location %d does not exist", s.StartLocation)
	}
	if s.MaxTurns <= 0 {
		return errb.Errorf("max_turns must be positive, got %d", s.MaxTurns)
	}
	if s.MinScore < 0 {
		return errb.Errorf("min_score must be non-negative, got %d", s.MinScore)
	}
	if s.ExtensionBonusTurns < 0 {
		return errb.Errorf("extension_bonus_turns must be non-negative, got %d", s.ExtensionBonusTurns)
	}
	return nil
}
