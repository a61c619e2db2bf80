package device

// Matcher selects the features a Constructor applies to.
type Matcher interface {
	IsMatch(feature string) bool
}

// FeatureMatcher matches one feature by name.
type FeatureMatcher struct {
	Feature string
}

// IsMatch reports whether feature is the matched feature.
func (fm FeatureMatcher) IsMatch(feature string) bool {
	return feature == fm.Feature
}

// AnyMatcher matches every feature. It belongs at the end of a table.
type AnyMatcher struct{}

// IsMatch returns true.
func (AnyMatcher) IsMatch(string) bool {
	return true
}
