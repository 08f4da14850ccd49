package threatsignal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeText(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		text string
		out  []string
	}{
		{text: "", out: []string{}},
		{text: "1 'two' three!", out: []string{"1", "two", "three"}},
		{text: "  foo1;bar2,baz3...", out: []string{"foo1", "bar2", "baz3"}},
		{text: "Gdańsk", out: []string{"gdansk"}},
		{text: "I will HURT you", out: []string{"i", "will", "hurt", "you"}},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.out, TokenizeText(fix.text))
	}
}
