package signal

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Family identifies the top-level signal kind.
type Family string

const (
	FamilyEEG Family = "eeg"
	FamilyECG Family = "ecg"
)

// Families lists the supported signal families in menu order.
func Families() []Family {
	return []Family{FamilyEEG, FamilyECG}
}

// ParseFamily accepts the wire form in any case.
func ParseFamily(value string) (Family, error) {
	switch Family(strings.ToLower(strings.TrimSpace(value))) {
	case FamilyEEG:
		return FamilyEEG, nil
	case FamilyECG:
		return FamilyECG, nil
	default:
		return "", fmt.Errorf("unknown signal family %q (want eeg or ecg)", value)
	}
}

// Valid reports whether f is one of the supported families.
func (f Family) Valid() bool {
	return f == FamilyEEG || f == FamilyECG
}

// Label returns the display form, e.g. "EEG".
func (f Family) Label() string {
	return strings.ToUpper(string(f))
}

func (f Family) String() string { return string(f) }

// Category is a clinical grouping scoped to a family.
type Category string

const (
	CategoryNormal   Category = "normal"
	CategoryAbnormal Category = "abnormal"
)

// NormalizeCategory lowercases and trims a user supplied category key.
func NormalizeCategory(value string) Category {
	return Category(strings.ToLower(strings.TrimSpace(value)))
}

// Label returns the title-cased display form, e.g. "Abnormal".
func (c Category) Label() string {
	return cases.Title(language.Und).String(strings.ReplaceAll(string(c), "_", " "))
}

func (c Category) String() string { return string(c) }
