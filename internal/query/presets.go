package query

// Preset resolves a named shortcut to its canonical filter expression
// (spec.md 4.11: "Named presets are syntactic sugar for canonical
// filters"). The set mirrors the analyses C6 produces.
func Preset(name string) (string, bool) {
	presets := map[string]string{
		"importers":            ".importer_index",
		"exporters":            ".export_index",
		"dead":                 ".dead_exports",
		"cycles":               ".cycles",
		"transitive-importers": ".export_index",
		"symbol-location":      ".files | map(.exports)",
		"barrel-analysis":      ".barrels",
		"command-bridges":      ".command_bridges",
		"events":               ".event_bridges",
		"twins":                ".twins",
		"cascades":             ".cascades",
		"lint-high":            ".lint_findings | select(.severity == \"high\")",
		"health":               ".metadata",
	}
	p, ok := presets[name]
	return p, ok
}
