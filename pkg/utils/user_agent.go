package utils

import (
	"fmt"
	"strings"

	"github.com/avct/uasurfer"
)

type UserAgentInfo struct {
	Device  string
	OS      string
	Browser string
	Locale  string
}

// ParseUserAgent returns nil when the device class cannot be recognised.
func ParseUserAgent(uaString string, acceptLanguage string) *UserAgentInfo {
	ua := uasurfer.Parse(uaString)

	var device string
	switch ua.DeviceType {
	case uasurfer.DeviceComputer:
		device = "Computer"
	case uasurfer.DeviceTablet:
		device = "Tablet"
	case uasurfer.DevicePhone:
		device = "Phone"
	case uasurfer.DeviceConsole:
		device = "Console"
	case uasurfer.DeviceWearable:
		device = "Wearable"
	case uasurfer.DeviceTV:
		device = "TV"
	default:
		return nil
	}

	locale, _, _ := strings.Cut(acceptLanguage, ",")
	if i := strings.IndexByte(locale, ';'); i >= 0 {
		locale = locale[:i]
	}

	return &UserAgentInfo{
		Device:  device,
		OS:      fmt.Sprintf("%s %d.%d", ua.OS.Name.String(), ua.OS.Version.Major, ua.OS.Version.Minor),
		Browser: fmt.Sprintf("%s %d.%d", ua.Browser.Name.String(), ua.Browser.Version.Major, ua.Browser.Version.Minor),
		Locale:  strings.TrimSpace(locale),
	}
}

// Metadata flattens the info into session metadata keys.
func (u *UserAgentInfo) Metadata() map[string]interface{} {
	if u == nil {
		return nil
	}
	md := map[string]interface{}{
		"ua_device":  u.Device,
		"ua_os":      u.OS,
		"ua_browser": u.Browser,
	}
	if u.Locale != "" {
		md["ua_locale"] = u.Locale
	}
	return md
}
