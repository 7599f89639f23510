package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	assert.Equal(t, "v"+Version+" ("+GitCommit+", built "+BuildTime+")", String())
}
