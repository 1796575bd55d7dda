package service

import (
	"testing"

	"github.com/microcosm-cc/bluemonday"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeHitIDs(t *testing.T) {
	ids, err := decodeHitIDs([]byte(`{"hits":[{"id":"12"},{"id":"x"},{"id":"3"}],"query":"exam"}`))
	require.NoError(t, err)
	assert.Equal(t, []uint{12, 3}, ids)

	_, err = decodeHitIDs([]byte(`not json`))
	assert.Error(t, err)
}

func TestPlainText(t *testing.T) {
	s := &meiliSearchService{sanitizer: bluemonday.StrictPolicy()}
	got := s.plainText("<p>Exam&nbsp;week</p><p>starts <b>Monday</b></p><script>alert(1)</script>")
	assert.Equal(t, "Exam week starts Monday", got)
}
