package jvm

import "strings"

// AccessFlag is one modifier bit of a class or method flags word.
type AccessFlag uint16

// Access and property flags.
const (
	AccPublic       AccessFlag = 0x0001
	AccPrivate      AccessFlag = 0x0002
	AccProtected    AccessFlag = 0x0004
	AccStatic       AccessFlag = 0x0008
	AccFinal        AccessFlag = 0x0010
	AccSuper        AccessFlag = 0x0020
	AccSynchronized AccessFlag = 0x0020
	AccBridge       AccessFlag = 0x0040
	AccVarargs      AccessFlag = 0x0080
	AccNative       AccessFlag = 0x0100
	AccInterface    AccessFlag = 0x0200
	AccAbstract     AccessFlag = 0x0400
	AccStrict       AccessFlag = 0x0800
	AccSynthetic    AccessFlag = 0x1000
	AccAnnotation   AccessFlag = 0x2000
	AccEnum         AccessFlag = 0x4000
)

var accessFlagNames = map[string]AccessFlag{
	"public":       AccPublic,
	"private":      AccPrivate,
	"protected":    AccProtected,
	"static":       AccStatic,
	"final":        AccFinal,
	"super":        AccSuper,
	"synchronized": AccSynchronized,
	"bridge":       AccBridge,
	"varargs":      AccVarargs,
	"native":       AccNative,
	"interface":    AccInterface,
	"abstract":     AccAbstract,
	"strict":       AccStrict,
	"synthetic":    AccSynthetic,
	"annotation":   AccAnnotation,
	"enum":         AccEnum,
}

// LookupAccessFlag resolves a lower-case modifier keyword.
func LookupAccessFlag(name string) (AccessFlag, bool) {
	f, ok := accessFlagNames[strings.ToLower(name)]
	return f, ok
}

// CombineFlags ORs flags into one flags word. Repeated flags are harmless.
func CombineFlags(flags []AccessFlag) uint16 {
	var word uint16
	for _, f := range flags {
		word |= uint16(f)
	}
	return word
}
