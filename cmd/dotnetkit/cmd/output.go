package cmd

import (
	"github.com/fatih/color"
)

// progress prefixes for user-facing pipeline output. Colors are
// disabled automatically when stdout is not a terminal.
var (
	stepPrefix = color.CyanString("[STEP]")
	okPrefix   = color.GreenString("[OK]")
	warnPrefix = color.YellowString("[WARN]")
	infoPrefix = "[INFO]"
)

func stepf(format string, args ...interface{}) {
	infoLogger.Printf(stepPrefix+" "+format, args...)
}

func okf(format string, args ...interface{}) {
	infoLogger.Printf(okPrefix+" "+format, args...)
}

func warnf(format string, args ...interface{}) {
	infoLogger.Printf(warnPrefix+" "+format, args...)
}

func infof(format string, args ...interface{}) {
	infoLogger.Printf(infoPrefix+" "+format, args...)
}
