// Package bundle renders resolved hook functions into standalone Lua
// scripts.
//
// A bundle contains, in order, a shebang line, the import statements the
// hook depends on, the source of every helper function, the hook itself and
// a call to the hook:
//
//	#!/usr/bin/env lua
//	local nest = require("nest")
//
//	function genInfo()
//	  ...
//	end
//
//	function postBuild()
//	  genInfo()
//	end
//	postBuild()
//
// A bundle references nothing from the script it was extracted from.
package bundle

import (
	"bytes"

	"github.com/nest-os/nest/resolver"
)

// Shebang is the first line of every bundle.
const Shebang = "#!/usr/bin/env lua"

// A Role is the build phase a hook runs in. The role names the bundle file.
type Role string

// Hook roles.
const (
	PreBuild  Role = "preBuild"
	PostBuild Role = "postBuild"
)

// Roles returns all roles in the order they run.
func Roles() []Role {
	return []Role{PreBuild, PostBuild}
}

// Filename returns the name of the bundle file for the role.
func (r Role) Filename() string {
	return string(r) + ".lua"
}

// Render renders a bundle for a resolved function. Rendering is
// deterministic: the same result always renders the same bytes.
func Render(res *resolver.Result) []byte {
	var buf bytes.Buffer
	buf.WriteString(Shebang)
	buf.WriteByte('\n')

	var sections []string
	if len(res.Imports) > 0 {
		var imports bytes.Buffer
		for i, imp := range res.Imports {
			if i > 0 {
				imports.WriteByte('\n')
			}
			imports.WriteString(imp)
		}
		sections = append(sections, imports.String())
	}
	for _, fn := range res.Functions {
		sections = append(sections, fn.Source)
	}
	sections = append(sections, res.Target.Source+"\n"+res.Target.Name+"()")

	for i, s := range sections {
		if i > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(s)
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}
