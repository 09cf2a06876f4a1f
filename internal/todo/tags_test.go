package todo

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTags(t *testing.T) {
	assert.Nil(t, ExtractTags("buy milk"))
	assert.Equal(t, []string{"home", "errand"}, ExtractTags("buy milk #Home #errand #home"))
	assert.Equal(t, []string{"q3_plan"}, ExtractTags("draft #q3_plan."))
}

func TestExtractTagsCapped(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, "#t%d ", i)
	}
	tags := ExtractTags(b.String())
	assert.Len(t, tags, maxTags)
	assert.Equal(t, "t0", tags[0])
}
