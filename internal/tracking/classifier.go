package tracking

import "strings"

// deviceRule pairs a predicate with the label it produces. Rules are
// evaluated in order, first match wins, so tool agents are checked before
// browsers and browsers before bare OS matches.
type deviceRule struct {
	when  func(ua string) bool
	label func(ua string) string
}

var osNames = []struct {
	substrings []string
	name       string
}{
	{[]string{"Android"}, "Android"},
	{[]string{"iPhone", "iPad"}, "iOS"},
	{[]string{"Mac OS X", "Macintosh"}, "Mac"},
	{[]string{"Windows NT"}, "Windows"},
	{[]string{"Linux"}, "Linux"},
}

var deviceRules = []deviceRule{
	{containsAny("PostmanRuntime"), fixedLabel("Postman")},
	{containsAny("curl"), fixedLabel("cURL")},
	{containsAny("Mozilla", "Chrome", "Safari", "Firefox", "Edge"), osLabel("Browser")},
	{hasKnownOS, osLabel("App")},
}

const maxRawDeviceLabel = 50

// ClassifyDevice derives a coarse device label from a user-agent string.
// Agents that match no rule fall back to the truncated raw string.
func ClassifyDevice(userAgent string) string {
	for _, rule := range deviceRules {
		if rule.when(userAgent) {
			return rule.label(userAgent)
		}
	}
	if len(userAgent) > maxRawDeviceLabel {
		return userAgent[:maxRawDeviceLabel]
	}
	return userAgent
}

func containsAny(needles ...string) func(string) bool {
	return func(ua string) bool {
		for _, needle := range needles {
			if strings.Contains(ua, needle) {
				return true
			}
		}
		return false
	}
}

func fixedLabel(label string) func(string) string {
	return func(string) string { return label }
}

// osLabel yields "{OS} {kind}" when an OS substring is present, else the bare
// kind ("Browser" for agents that reveal no OS).
func osLabel(kind string) func(string) string {
	return func(ua string) string {
		if name, ok := osName(ua); ok {
			return name + " " + kind
		}
		return kind
	}
}

func hasKnownOS(ua string) bool {
	_, ok := osName(ua)
	return ok
}

func osName(ua string) (string, bool) {
	for _, os := range osNames {
		for _, substr := range os.substrings {
			if strings.Contains(ua, substr) {
				return os.name, true
			}
		}
	}
	return "", false
}
