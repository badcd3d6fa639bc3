package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForm_Input(t *testing.T) {
	in, err := Form{
		Title:       " Sunset ",
		Description: "Sky",
		Category:    "Nature",
		Orientation: "landscape",
		License:     "free",
		Price:       "12.50",
		Tags:        "sun, sky,, ",
	}.Input()
	require.NoError(t, err)

	assert.Equal(t, "Sunset", in.Title)
	require.NotNil(t, in.Price)
	assert.Equal(t, 12.5, *in.Price)
	assert.Nil(t, in.OldPrice)
	assert.Equal(t, []string{"sun", "sky"}, in.Tags)

	_, err = Form{Price: "twelve"}.Input()
	assert.EqualError(t, err, "new_price must be a number")
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{}, SplitTags(""))
	assert.Equal(t, []string{"a", "b c"}, SplitTags(" a ,b c,"))
}
