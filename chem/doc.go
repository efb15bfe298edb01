/*
 * doc.go, part of pyxtalstep.
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

/*Package chem provides the atom and molecule structures used by pyxtalstep, facilities
for reading and writing the geometry files exchanged with the structure generator
(XYZ and CIF) and a chemical formula parser.

    Reads/writes XYZ files, keeping the title line of each frame.

    Reads CIF files, expanding the symmetry operators of the file to the
	full content of the unit cell and converting the result to cartesian
	coordinates.

    Parses chemical formulas such as "H2O" or "Ca(OH)2" into ordered
	element/count pairs.

Coordinates are kept in v3.Matrix objects, one row per atom.
*/
package chem
