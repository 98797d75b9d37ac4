// Package engines registers every script engine. Import it for its side
// effects.
package engines

import (
	_ "github.com/Alia5/padscript/script/goengine"
	_ "github.com/Alia5/padscript/script/jsengine"
	_ "github.com/Alia5/padscript/script/luaengine"
)
