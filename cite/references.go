/*
 * references.go, part of pyxtalstep.
 *
 * Copyright 2024 The pyxtalstep Authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package cite

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed references.yaml
var referencesYAML []byte

// Bibliography maps keys to raw citation text.
type Bibliography map[string]string

// LoadBibliography returns the bibliography embedded in the package.
func LoadBibliography() (Bibliography, error) {
	return ParseBibliography(referencesYAML)
}

// ParseBibliography decodes a YAML mapping of keys to citation text.
func ParseBibliography(data []byte) (Bibliography, error) {
	var b Bibliography
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("bibliography: %w", err)
	}
	return b, nil
}

// ErrTemplate is returned when a citation template refers to a missing value.
var ErrTemplate = errors.New("missing template value")

// Substitute replaces $name and ${name} in template by the values given.
// A reference to a name not in values is an error.
func Substitute(template string, values map[string]string) (string, error) {
	var missing []string
	out := os.Expand(template, func(name string) string {
		v, ok := values[name]
		if !ok {
			missing = append(missing, name)
			return ""
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", ErrTemplate, strings.Join(missing, ", "))
	}
	return out, nil
}

// Citation is one entry in the reference list of a run.
type Citation struct {
	Alias  string `yaml:"alias"`
	Raw    string `yaml:"raw"`
	Module string `yaml:"module"`
	Level  int    `yaml:"level"`
	Note   string `yaml:"note"`
	Count  int    `yaml:"count"`
}

// References collects the citations of a run. Each alias is stored once;
// citing it again only increments its count.
type References struct {
	byAlias map[string]*Citation
	order   []string
}

// NewReferences returns an empty reference list.
func NewReferences() *References {
	return &References{byAlias: map[string]*Citation{}}
}

// Cite adds c to the list. It reports whether the alias was new.
func (R *References) Cite(c Citation) bool {
	if old, ok := R.byAlias[c.Alias]; ok {
		old.Count++
		return false
	}
	c.Count = 1
	R.byAlias[c.Alias] = &c
	R.order = append(R.order, c.Alias)
	return true
}

// Get returns the citation with the given alias.
func (R *References) Get(alias string) (Citation, bool) {
	c, ok := R.byAlias[alias]
	if !ok {
		return Citation{}, false
	}
	return *c, true
}

// Len returns the number of distinct citations.
func (R *References) Len() int {
	return len(R.order)
}

// List returns the citations sorted by level, then in the order they were cited.
func (R *References) List() []Citation {
	l := make([]Citation, 0, len(R.order))
	for _, a := range R.order {
		l = append(l, *R.byAlias[a])
	}
	sort.SliceStable(l, func(i, j int) bool { return l[i].Level < l[j].Level })
	return l
}

// MarshalYAML writes the citations as a list.
func (R *References) MarshalYAML() (any, error) {
	return R.List(), nil
}
