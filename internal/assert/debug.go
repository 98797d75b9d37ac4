//go:build padscript_debug

package assert

const debug = true
