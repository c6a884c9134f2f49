// Package emit writes a normalized configuration as artifact files.
//
// Each artifact has its own emitter:
//
//	locale.conf  Locale     LANG and LC_* variables
//	locale.gen   LocaleGen  locale catalog entries to generate
//	users.conf   Users      user account blocks
//	system.conf  System     remaining properties as key,value lines
//
// Emitters write to an io.Writer and do not know where the artifact ends up.
// A Document mirrors all artifacts as a single JSON or YAML document.
package emit
