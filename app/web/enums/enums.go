// Package enums provides type-safe enumeration types for the web interface.
//
// The enum types are defined as unexported integer types in this file and the go:generate
// directives invoke github.com/go-pkgz/enum to create the exported types with String, Parse
// and text marshaling methods in separate files (*_enum.go).
//
// Usage:
//
//	theme, err := enums.ParseTheme("dark")
//	if err != nil {
//	    // handle invalid input
//	}
//	fmt.Println(theme.String()) // "dark"
//
// To regenerate the enum types after modifications:
//
//	go generate ./app/web/enums
package enums

//go:generate go run github.com/go-pkgz/enum@latest -type theme -lower

// theme represents UI themes.
// This is an unexported type used only as input for the code generator.
// Use the exported Theme type and its constants in actual code.
type theme int

const (
	themeLight theme = iota
	themeDark
)
