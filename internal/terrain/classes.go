// Package terrain defines the AI4MARS terrain classes and their display colours.
package terrain

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ClassID is a label value in a segmentation mask.
type ClassID uint8

// AI4MARS terrain classes.
const (
	Soil      ClassID = 0
	Bedrock   ClassID = 1
	Sand      ClassID = 2
	BigRock   ClassID = 3
	Unlabeled ClassID = 255
)

// Class describes a single terrain class.
type Class struct {
	ID    ClassID    `json:"id"`
	Name  string     `json:"name"`
	Color color.RGBA `json:"color"`
}

// classes is the fixed class table, ordered by ID.
var classes = []Class{
	{ID: Soil, Name: "Soil", Color: color.RGBA{0, 0, 0, 255}},
	{ID: Bedrock, Name: "Bedrock", Color: color.RGBA{255, 255, 255, 255}},
	{ID: Sand, Name: "Sand", Color: color.RGBA{128, 128, 128, 255}},
	{ID: BigRock, Name: "Big Rock", Color: color.RGBA{255, 0, 0, 255}},
	{ID: Unlabeled, Name: "Unlabeled", Color: color.RGBA{0, 0, 0, 255}},
}

// DefaultObstacles are the classes treated as traversal hazards.
var DefaultObstacles = []ClassID{Sand, BigRock}

// ErrUnknownClass is returned when a class ID or name is not in the table.
var ErrUnknownClass = errors.New("unknown terrain class")

// Classes returns a copy of the class table.
func Classes() []Class {
	out := make([]Class, len(classes))
	copy(out, classes)
	return out
}

// Lookup returns the class with the given ID.
func Lookup(id ClassID) (Class, bool) {
	for _, c := range classes {
		if c.ID == id {
			return c, true
		}
	}
	return Class{}, false
}

// Name returns the class name for id, or a numeric placeholder for unknown IDs.
func Name(id ClassID) string {
	if c, ok := Lookup(id); ok {
		return c.Name
	}
	return fmt.Sprintf("class %d", id)
}

// Palette returns the set of overlay colours used by the class table.
func Palette() []color.RGBA {
	seen := make(map[color.RGBA]bool)
	var out []color.RGBA
	for _, c := range classes {
		if !seen[c.Color] {
			seen[c.Color] = true
			out = append(out, c.Color)
		}
	}
	return out
}

// ParseClassList parses a comma separated list of class IDs or names
// ("2,3" or "sand,big rock") into a sorted, de-duplicated slice.
func ParseClassList(s string) ([]ClassID, error) {
	seen := make(map[ClassID]bool)
	var ids []ClassID

	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		id, err := parseClass(field)
		if err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	if len(ids) == 0 {
		return nil, errors.New("no obstacle classes given")
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func parseClass(field string) (ClassID, error) {
	if n, err := strconv.Atoi(field); err == nil {
		if n < 0 || n > 255 {
			return 0, errors.Wrapf(ErrUnknownClass, "%d out of range", n)
		}
		if _, ok := Lookup(ClassID(n)); !ok {
			return 0, errors.Wrapf(ErrUnknownClass, "%d", n)
		}
		return ClassID(n), nil
	}

	for _, c := range classes {
		if strings.EqualFold(c.Name, field) {
			return c.ID, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownClass, "%q", field)
}

// FormatClassList renders ids as "2,3".
func FormatClassList(ids []ClassID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(int(id))
	}
	return strings.Join(parts, ",")
}
