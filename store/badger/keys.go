package badger

import (
	"fmt"

	"github.com/avaxML/cite-right/core"
)

// Key prefixes for the stored record types
const (
	sourcePrefix = "src:"
	vectorPrefix = "vec:"
	metaKey      = "meta:"
)

// sourceKey generates the key for a source record by ID.
func sourceKey(id string) []byte {
	return []byte(sourcePrefix + id)
}

// vectorKey generates the key for an embedding vector.
// Format: vec:<model>:<contentID>
func vectorKey(model string, contentID core.ContentID) []byte {
	return []byte(fmt.Sprintf("%s%s:%016x", vectorPrefix, model, uint64(contentID)))
}

// vectorModelPrefix generates the key prefix covering every vector stored
// for a model.
func vectorModelPrefix(model string) []byte {
	return []byte(vectorPrefix + model + ":")
}
