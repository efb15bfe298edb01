/*
 * database.go, part of pyxtalstep.
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

package structdb

import (
	"encoding/json"
	"fmt"

	"github.com/rmera/pyxtalstep/chem"
	v3 "github.com/rmera/pyxtalstep/v3"
)

// Configuration is one geometry of a system. Coordinates are cartesian, in Å.
// Cell is nil for molecules; for periodic structures its rows are the lattice vectors.
type Configuration struct {
	ID          int            `json:"id"`
	Name        string         `json:"name"`
	Symbols     []string       `json:"symbols"`
	Coordinates [][3]float64   `json:"coordinates"`
	Cell        *[3][3]float64 `json:"cell,omitempty"`
	Periodicity int            `json:"periodicity"`
	system      *System
}

// System returns the system the configuration belongs to.
func (C *Configuration) System() *System {
	return C.system
}

// Len returns the number of atoms.
func (C *Configuration) Len() int {
	return len(C.Symbols)
}

// Formula returns the Hill formula of the configuration.
func (C *Configuration) Formula() string {
	return chem.HillFormula(C.Symbols)
}

// FromMolecule replaces the geometry of the configuration with frame
// frame of mol, including its cell if it has one.
func (C *Configuration) FromMolecule(mol *chem.Molecule, frame int) error {
	if frame < 0 || frame >= len(mol.Coords) {
		return fmt.Errorf("FromMolecule: frame %d requested, molecule has %d", frame, len(mol.Coords))
	}
	n := mol.Len()
	coords := mol.Coords[frame]
	C.Symbols = mol.Symbols()
	C.Coordinates = make([][3]float64, n)
	for i := 0; i < n; i++ {
		C.Coordinates[i] = coords.Vec(i)
	}
	C.Cell = nil
	C.Periodicity = 0
	if mol.Cell != nil {
		cell := [3][3]float64{mol.Cell.Vec(0), mol.Cell.Vec(1), mol.Cell.Vec(2)}
		C.Cell = &cell
		C.Periodicity = 3
	}
	return nil
}

// FromCrystal loads the first frame of a periodic structure, which must carry
// a cell.
func (C *Configuration) FromCrystal(mol *chem.Molecule) error {
	if mol.Cell == nil {
		return fmt.Errorf("FromCrystal: structure %q has no cell", mol.Title())
	}
	return C.FromMolecule(mol, 0)
}

// Molecule returns the configuration as a chem.Molecule with one frame.
func (C *Configuration) Molecule() (*chem.Molecule, error) {
	if C.Len() == 0 {
		return nil, fmt.Errorf("configuration %q has no atoms", C.Name)
	}
	data := make([]float64, 0, 3*C.Len())
	for _, c := range C.Coordinates {
		data = append(data, c[0], c[1], c[2])
	}
	coords, err := v3.NewMatrix(data)
	if err != nil {
		return nil, err
	}
	mol, err := chem.NewMolecule(chem.NewTopology(C.Symbols), []*v3.Matrix{coords}, []string{C.Name})
	if err != nil {
		return nil, err
	}
	if C.Cell != nil {
		mol.Cell, _ = v3.NewMatrix([]float64{
			C.Cell[0][0], C.Cell[0][1], C.Cell[0][2],
			C.Cell[1][0], C.Cell[1][1], C.Cell[1][2],
			C.Cell[2][0], C.Cell[2][1], C.Cell[2][2],
		})
	}
	return mol, nil
}

// System is a named set of configurations.
type System struct {
	ID             int
	Name           string
	Configurations []*Configuration
	current        *Configuration
	db             *Database
}

// CreateConfiguration appends an empty configuration to the system and makes
// it the current one.
func (S *System) CreateConfiguration(name string) *Configuration {
	S.db.nextConfiguration++
	c := &Configuration{ID: S.db.nextConfiguration, Name: name, system: S}
	S.Configurations = append(S.Configurations, c)
	S.current = c
	return c
}

// Configuration returns the current configuration of the system, or nil.
func (S *System) Configuration() *Configuration {
	return S.current
}

// SetConfiguration makes c the current configuration. c must belong to S.
func (S *System) SetConfiguration(c *Configuration) {
	if c.system != S {
		panic("structdb: configuration belongs to another system")
	}
	S.current = c
}

// Database holds the systems. It is not safe for concurrent use.
type Database struct {
	systems           []*System
	current           *System
	nextSystem        int
	nextConfiguration int
}

// New returns an empty database.
func New() *Database {
	return &Database{}
}

// CreateSystem adds an empty system and makes it the current one.
func (D *Database) CreateSystem(name string) *System {
	D.nextSystem++
	s := &System{ID: D.nextSystem, Name: name, db: D}
	D.systems = append(D.systems, s)
	D.current = s
	return s
}

// System returns the current system, or nil.
func (D *Database) System() *System {
	return D.current
}

// SetSystem makes s the current system.
func (D *Database) SetSystem(s *System) {
	if s.db != D {
		panic("structdb: system belongs to another database")
	}
	D.current = s
}

// Systems returns all the systems, in creation order.
func (D *Database) Systems() []*System {
	return append([]*System(nil), D.systems...)
}

// NConfigurations returns the total number of configurations.
func (D *Database) NConfigurations() int {
	n := 0
	for _, s := range D.systems {
		n += len(s.Configurations)
	}
	return n
}

// SystemConfiguration returns the system and configuration a new structure
// should be put in. Without a current system a new one is always created.
func (D *Database) SystemConfiguration(h Handling) (*System, *Configuration) {
	s := D.current
	if s == nil || h == NewSystem {
		s = D.CreateSystem("")
		return s, s.CreateConfiguration("")
	}
	if h == Overwrite && s.current != nil {
		return s, s.current
	}
	return s, s.CreateConfiguration("")
}

type systemJSON struct {
	ID             int              `json:"id"`
	Name           string           `json:"name"`
	Configurations []*Configuration `json:"configurations"`
	Current        int              `json:"current_configuration"`
}

type snapshot struct {
	Systems           []systemJSON `json:"systems"`
	Current           int          `json:"current_system"`
	NextSystem        int          `json:"next_system"`
	NextConfiguration int          `json:"next_configuration"`
}

// MarshalJSON encodes the whole database.
func (D *Database) MarshalJSON() ([]byte, error) {
	snap := snapshot{NextSystem: D.nextSystem, NextConfiguration: D.nextConfiguration}
	if D.current != nil {
		snap.Current = D.current.ID
	}
	for _, s := range D.systems {
		sj := systemJSON{ID: s.ID, Name: s.Name, Configurations: s.Configurations}
		if s.current != nil {
			sj.Current = s.current.ID
		}
		snap.Systems = append(snap.Systems, sj)
	}
	return json.Marshal(snap)
}

// UnmarshalJSON replaces the content of the database with the decoded one.
func (D *Database) UnmarshalJSON(b []byte) error {
	var snap snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return err
	}
	*D = Database{nextSystem: snap.NextSystem, nextConfiguration: snap.NextConfiguration}
	for _, sj := range snap.Systems {
		s := &System{ID: sj.ID, Name: sj.Name, Configurations: sj.Configurations, db: D}
		for _, c := range s.Configurations {
			c.system = s
			if c.ID == sj.Current {
				s.current = c
			}
		}
		D.systems = append(D.systems, s)
		if s.ID == snap.Current {
			D.current = s
		}
	}
	return nil
}
