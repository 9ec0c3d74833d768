package detector

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/tidwall/gjson"
	"github.com/use-agent/themescout/models"
	"golang.org/x/net/html"
)

// Marker identifies the script block that carries theme metadata.
const Marker = "Shopify.theme"

var (
	scriptSelector = cascadia.MustCompile("script")

	// payloadRe captures the object literal assigned to Shopify.theme, up to
	// the first "};". Nested objects that contain "};" are truncated and then
	// fail to decode.
	payloadRe = regexp.MustCompile(`Shopify\.theme = (\{.*?\});`)
)

// findMarkerScript returns the text of the first <script> element whose
// inline text contains Marker.
func findMarkerScript(body string) (string, bool) {
	root, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return "", false
	}

	var script string
	var ok bool
	goquery.NewDocumentFromNode(root).FindMatcher(scriptSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if strings.Contains(text, Marker) {
			script, ok = text, true
			return false
		}
		return true
	})
	return script, ok
}

// extractPayload pulls the raw object literal out of a marker script.
func extractPayload(script string) (string, bool) {
	m := payloadRe.FindStringSubmatch(script)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// decodeThemeName validates payload as JSON and reads its "name" field.
// A missing name yields MissingName; non-string values, null included, are
// returned in their JSON text form. When the key repeats, the last one wins.
func decodeThemeName(payload string) (string, error) {
	if !gjson.Valid(payload) {
		return "", models.NewDetectError(models.ErrCodePayloadDecode, "theme payload is not valid JSON", nil)
	}

	var name gjson.Result
	found := false
	gjson.Parse(payload).ForEach(func(key, value gjson.Result) bool {
		if key.Str == "name" {
			name, found = value, true
		}
		return true
	})
	if !found {
		return MissingName, nil
	}
	if name.Type == gjson.String {
		return name.Str, nil
	}
	return name.Raw, nil
}
