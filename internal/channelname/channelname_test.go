package channelname

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello, World!", "hello-world"},
		{"", ""},
		{"abc-def", "abc-def"},
		{"Gaming", "gaming"},
		{"   spaces   everywhere   ", "spaces-everywhere"},
		{"!!!", ""},
		{"UPPER lower 123", "upper-lower-123"},
		{"émoji çhars stripped", "moji-hars-stripped"},
		{"this is a very long channel name that exceeds the limit", "this-is-a-very-long-channel-name"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Channelify(tc.in), "input %q", tc.in)
	}
}

func TestChannelifyInvariants(t *testing.T) {
	valid := regexp.MustCompile(`^[a-z0-9-]*$`)

	inputs := []string{
		"Hello, World!",
		"日本語のチャンネル名です、とても長い",
		strings.Repeat("a b", 40),
		"trailing separators---   ",
		"--leading--",
	}

	for _, in := range inputs {
		got := Channelify(in)
		assert.True(t, valid.MatchString(got), "output %q for input %q", got, in)
		assert.LessOrEqual(t, len(got), 32, "input %q", in)
	}
}

func TestChannelifyIdempotentOnValidInput(t *testing.T) {
	for _, name := range []string{"abc-def", "gaming", "a1-b2-c3"} {
		assert.Equal(t, name, Channelify(name))
	}
}
