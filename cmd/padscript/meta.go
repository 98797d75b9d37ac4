package main

import (
	"fmt"
	"runtime/debug"
	"time"
)

const asciiPad = `
   _=====_               _=====_
  / _____ \             / _____ \
+.-'_____'-.-----------.-'_____'-.+
|   |   |  '.  pad   .'  |  _  |   |
| __| ^ |__  : script :  | (Y) |   |
||<   +   >| :        : (X) _ (B)  |
||___ v ___| ;  (::)  ;  | (A) |   |
|   |___|   .'        '.  '---'    |
'---------------------------------'
`

var (
	Version = ""
	Commit  = ""
	Date    = ""
)

var descriptionTemplate = `
Scripted controller input for emulation sessions
  Version: %s (%s)
           %s
  Engines: JavaScript (.js), Lua (.lua), Go (.go)
`

func Description() string {
	return fmt.Sprintf(descriptionTemplate, Version, Commit, Date)
}

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		if Version == "" {
			Version = info.Main.Version
			if Version == "" || Version == "(devel)" {
				Version = "dev"
			}
		}
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				if Commit == "" {
					Commit = setting.Value[:min(len(setting.Value), 7)]
				}
			case "vcs.time":
				if Date == "" {
					if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
						Date = t.Format("2006-01-02")
					} else {
						Date = setting.Value
					}
				}
			}
		}
	}
	if Version == "" {
		Version = "dev"
	}
	if Commit == "" {
		Commit = "unknown"
	}
	if Date == "" {
		Date = "unknown"
	}
}
