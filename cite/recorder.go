/*
 * recorder.go, part of pyxtalstep.
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
	"context"

	"github.com/rmera/pyxtalstep/internal/ctxlog"
)

const module = "pyxtal_step"

// Recorder adds the citations of a PyXtal run to a reference list.
type Recorder struct {
	Refs     *References
	Bib      Bibliography
	Versions *VersionCache
}

// Record cites PyXtal and Open Babel, adding the versioned citations when
// the versions can be found. Failures are logged and otherwise ignored.
func (R *Recorder) Record(ctx context.Context, stdout string) {
	log := ctxlog.FromContext(ctx)
	R.cite(ctx, "pyxtal", Citation{Alias: "pyxtal_cpc", Note: "The principle PyXtal citation."})

	if version, ok := ParsePyXtalVersion(stdout); ok {
		raw, err := Substitute(R.Bib["pyxtal_exe"], map[string]string{"version": version})
		if err != nil {
			log.Debug("Could not make the PyXtal citation.", "error", err)
		} else {
			R.Refs.Cite(Citation{
				Alias: "pyxtal-exe", Raw: raw, Module: module, Level: 1,
				Note: "The principle citation for the PyXtal Python package.",
			})
		}
	}

	R.cite(ctx, "openbabel", Citation{Alias: "openbabel_jcinf", Note: "The principle Open Babel citation."})

	if R.Versions == nil {
		return
	}
	ob, ok := R.Versions.OpenBabel(ctx)
	if !ok || !ob.Known() {
		return
	}
	raw, err := Substitute(R.Bib["obabel"], map[string]string{
		"version": ob.Version, "month": ob.Month, "year": ob.Year,
	})
	if err != nil {
		log.Debug("Could not make the Open Babel citation.", "error", err)
		return
	}
	R.Refs.Cite(Citation{
		Alias: "obabel-exe", Raw: raw, Module: module, Level: 1,
		Note: "The principle citation for the Open Babel executables.",
	})
}

func (R *Recorder) cite(ctx context.Context, key string, c Citation) {
	raw, ok := R.Bib[key]
	if !ok {
		ctxlog.FromContext(ctx).Debug("Citation missing from the bibliography.", "key", key)
		return
	}
	c.Raw, c.Module, c.Level = raw, module, 1
	R.Refs.Cite(c)
}
