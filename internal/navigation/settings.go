package navigation

import (
	"github.com/samber/lo"

	"github.com/charlesng35/dbnav/pkg/validator"
)

// Settings carries the configuration the tree reads. It is passed
// explicitly to loaders and builders rather than read from global state.
type Settings struct {
	GroupingEnabled bool `json:"grouping_enabled"`
	// DBSeparators group databases; TableSeparators group tables and views.
	DBSeparators    []string `json:"db_separators"`
	TableSeparators []string `json:"table_separators"`
	// TableLevel is the separator depth applied to table containers.
	TableLevel int `json:"table_level" validate:"gte=0"`
	// FirstLevelItems pages databases; MaxItems pages every deeper level.
	FirstLevelItems int `json:"first_level_items" validate:"gte=1"`
	MaxItems        int `json:"max_items" validate:"gte=1"`
	// HideDB is a regular expression of databases to hide; OnlyDB lists
	// LIKE patterns of the only databases to show.
	HideDB                   string   `json:"hide_db" validate:"omitempty,regexp"`
	OnlyDB                   []string `json:"only_db"`
	DisableDatabaseExpansion bool     `json:"disable_database_expansion"`
}

// DefaultSettings mirrors the configuration defaults.
func DefaultSettings() Settings {
	return Settings{
		GroupingEnabled: true,
		DBSeparators:    []string{"_"},
		TableSeparators: []string{"__"},
		TableLevel:      1,
		FirstLevelItems: 100,
		MaxItems:        50,
	}
}

// Validate checks numeric bounds and the hide pattern.
func (s Settings) Validate() error {
	return validator.ValidateStruct(s)
}

// DatabaseGroupSeparators returns the separators grouping databases, none
// when grouping is disabled.
func (s Settings) DatabaseGroupSeparators() []string {
	if !s.GroupingEnabled {
		return nil
	}
	return lo.Compact(s.DBSeparators)
}

// TableGroupSeparators returns the separators grouping tables and views.
func (s Settings) TableGroupSeparators() []string {
	if !s.GroupingEnabled {
		return nil
	}
	return lo.Compact(s.TableSeparators)
}
