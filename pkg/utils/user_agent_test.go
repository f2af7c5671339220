package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserAgent(t *testing.T) {
	const chromeMac = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	info := ParseUserAgent(chromeMac, "en-US,en;q=0.9")

	require.NotNil(t, info)
	assert.Equal(t, "Computer", info.Device)
	assert.Contains(t, info.Browser, "Chrome")
	assert.Equal(t, "en-US", info.Locale)

	md := info.Metadata()
	assert.Equal(t, "Computer", md["ua_device"])
	assert.Equal(t, "en-US", md["ua_locale"])
}

func TestParseUserAgent_Unknown(t *testing.T) {
	assert.Nil(t, ParseUserAgent("", ""))
	assert.Nil(t, (*UserAgentInfo)(nil).Metadata())
}

func TestParseUserAgent_LocaleWithoutList(t *testing.T) {
	const iphone = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"

	info := ParseUserAgent(iphone, "fr-FR;q=0.8")

	require.NotNil(t, info)
	assert.Equal(t, "Phone", info.Device)
	assert.Equal(t, "fr-FR", info.Locale)
}
