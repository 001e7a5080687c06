package template

import (
	"fmt"

	"github.com/matzehuels/figstyle/pkg/figure"
)

// nextPath extends path by key. Keys of sequence parents are written as
// "[key]", all others as ".key".
func nextPath(parent any, key any, path string) string {
	if path == "" {
		return fmt.Sprint(key)
	}
	if figure.KindOf(parent) == figure.KindSequence {
		return fmt.Sprintf("%s[%v]", path, key)
	}
	return fmt.Sprintf("%s.%v", path, key)
}
