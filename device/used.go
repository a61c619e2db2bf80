package device

import (
	"go.viam.com/bootscript/feature"
	"go.viam.com/bootscript/script"
)

// IsUsed reports whether the section enables its feature: a "<feature>_used" integer property
// must be present and exactly 1. Anything else, including a missing property, means unused.
func IsUsed(sec script.Section, c feature.Classification) bool {
	prop, ok := sec.FindPropertyf("%s_used", c.Feature)
	if !ok {
		return false
	}
	v, ok := prop.AsU32()
	return ok && v == 1
}
