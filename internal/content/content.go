// Package content extracts the structured, accessibility-relevant view of a
// rendered page that deep page analysis works from: visible text, form
// controls and how they are labelled, interactive element text, error and live
// regions, and sensory-dependent wording.
package content

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Limits applied to extracted lists so prompts stay bounded.
const (
	TextSampleLimit     = 3000
	maxFormControls     = 50
	maxInteractive      = 100
	maxLiveRegions      = 30
	maxSensoryMatches   = 20
	maxElementTextChars = 80
)

// Content is the structured snapshot of one rendered page.
type Content struct {
	TextSample     string               `json:"text_sample"`
	FormControls   []FormControl        `json:"form_controls"`
	Interactive    []InteractiveElement `json:"interactive_elements"`
	LiveRegions    []LiveRegion         `json:"error_elements"`
	SensoryMatches []string             `json:"sensory_language"`
	Stats          Stats                `json:"stats"`
}

// FormControl describes an input, select or textarea and its label sources.
type FormControl struct {
	Selector             string `json:"selector"`
	Tag                  string `json:"tag"`
	Type                 string `json:"type,omitempty"`
	Name                 string `json:"name,omitempty"`
	Placeholder          string `json:"placeholder,omitempty"`
	Label                string `json:"label,omitempty"`
	Required             bool   `json:"required,omitempty"`
	PlaceholderOnlyLabel bool   `json:"placeholder_only_label"`
}

// InteractiveElement is a link or button with the text a user would hear.
type InteractiveElement struct {
	Selector    string `json:"selector"`
	Kind        string `json:"kind"` // link or button
	Text        string `json:"text"`
	Href        string `json:"href,omitempty"`
	GenericText bool   `json:"generic_text"`
}

// LiveRegion is an error message container or ARIA live region.
type LiveRegion struct {
	Selector string `json:"selector"`
	Role     string `json:"role,omitempty"`
	AriaLive string `json:"aria_live,omitempty"`
	Text     string `json:"text,omitempty"`
}

// Stats aggregates counts over the whole page.
type Stats struct {
	WordCount             int     `json:"word_count"`
	AvgWordsPerSentence   float64 `json:"avg_words_per_sentence"`
	FormControlCount      int     `json:"form_control_count"`
	PlaceholderOnlyCount  int     `json:"placeholder_only_count"`
	InteractiveCount      int     `json:"interactive_count"`
	GenericTextCount      int     `json:"generic_text_count"`
	LiveRegionCount       int     `json:"live_region_count"`
	ImageCount            int     `json:"image_count"`
	ImagesMissingAltCount int     `json:"images_missing_alt_count"`
}

// genericPhrases are link or button texts that say nothing out of context.
var genericPhrases = map[string]struct{}{
	"click here": {}, "click": {}, "here": {}, "read more": {}, "learn more": {},
	"more": {}, "more info": {}, "info": {}, "link": {}, "details": {},
	"continue": {}, "go": {}, "submit": {}, "this page": {}, "this link": {},
}

// sensoryPattern matches a color or position word followed, within two words,
// by a UI noun ("click the green button", "the menu on the left panel").
var sensoryPattern = regexp.MustCompile(
	`(?i)\b(red|green|blue|yellow|orange|left|right|above|below|top|bottom|round|square|circle)\s+(?:\w+\s+){0,2}?` +
		`(buttons?|links?|icons?|box(?:es)?|fields?|menus?|sections?|panels?|arrows?|tabs?|bars?|images?)\b`)

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// nonVisibleSelectors are stripped before reading visible text.
const nonVisibleSelectors = `script, style, noscript, template, [hidden], [aria-hidden="true"]`

const formControlSelector = `input:not([type="hidden"]):not([type="submit"]):not([type="button"])` +
	`:not([type="image"]):not([type="reset"]), select, textarea`

const interactiveSelector = `a[href], button, [role="button"], input[type="submit"], input[type="button"]`

const liveRegionSelector = `[role="alert"], [role="status"], [aria-live], [aria-invalid="true"], [class*="error"], [id*="error"]`

// Extract parses rendered HTML and builds the page's structured content.
func Extract(html string) (*Content, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	c := &Content{}
	fullText := visibleText(doc)
	c.TextSample = truncate(fullText, TextSampleLimit)
	c.FormControls = extractFormControls(doc)
	c.Interactive = extractInteractive(doc)
	c.LiveRegions = extractLiveRegions(doc)
	c.SensoryMatches = sensoryMatches(fullText)
	c.Stats = buildStats(doc, fullText, c)

	return c, nil
}

// FormControlCount reports how many form controls the page has.
func (c *Content) FormControlCount() int {
	if c == nil {
		return 0
	}
	return c.Stats.FormControlCount
}

func visibleText(doc *goquery.Document) string {
	body := doc.Find("body").First().Clone()
	body.Find(nonVisibleSelectors).Remove()
	return collapse(body.Text())
}

func extractFormControls(doc *goquery.Document) []FormControl {
	labelsFor := make(map[string]string)
	doc.Find("label[for]").Each(func(_ int, s *goquery.Selection) {
		if id, _ := s.Attr("for"); id != "" {
			labelsFor[id] = collapse(s.Text())
		}
	})

	controls := make([]FormControl, 0)
	doc.Find(formControlSelector).Each(func(_ int, s *goquery.Selection) {
		if len(controls) >= maxFormControls {
			return
		}
		tag := goquery.NodeName(s)
		fc := FormControl{
			Selector:    selectorFor(s),
			Tag:         tag,
			Name:        attr(s, "name"),
			Placeholder: attr(s, "placeholder"),
			Label:       labelFor(doc, s, labelsFor),
		}
		if tag == "input" {
			fc.Type = attr(s, "type")
			if fc.Type == "" {
				fc.Type = "text"
			}
		}
		_, fc.Required = s.Attr("required")
		fc.PlaceholderOnlyLabel = fc.Placeholder != "" && fc.Label == ""
		controls = append(controls, fc)
	})

	return controls
}

// labelFor resolves the accessible label of a form control from aria-label,
// aria-labelledby, label[for], a wrapping label, or title.
func labelFor(doc *goquery.Document, s *goquery.Selection, labelsFor map[string]string) string {
	if v := attr(s, "aria-label"); v != "" {
		return v
	}
	if ids := attr(s, "aria-labelledby"); ids != "" {
		var parts []string
		for _, id := range strings.Fields(ids) {
			if text := textByID(doc, id); text != "" {
				parts = append(parts, text)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
	}
	if id := attr(s, "id"); id != "" {
		if text := labelsFor[id]; text != "" {
			return text
		}
	}
	if wrapper := s.Closest("label"); wrapper.Length() > 0 {
		if text := collapse(wrapper.Text()); text != "" {
			return text
		}
	}
	return attr(s, "title")
}

func textByID(doc *goquery.Document, id string) string {
	match := doc.Find("[id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr("id")
		return v == id
	})
	return collapse(match.First().Text())
}

func extractInteractive(doc *goquery.Document) []InteractiveElement {
	elements := make([]InteractiveElement, 0)
	doc.Find(interactiveSelector).Each(func(_ int, s *goquery.Selection) {
		if len(elements) >= maxInteractive {
			return
		}
		kind := "button"
		if goquery.NodeName(s) == "a" {
			kind = "link"
		}
		text := accessibleText(s)
		elements = append(elements, InteractiveElement{
			Selector:    selectorFor(s),
			Kind:        kind,
			Text:        truncate(text, maxElementTextChars),
			Href:        attr(s, "href"),
			GenericText: IsGenericText(text),
		})
	})
	return elements
}

func accessibleText(s *goquery.Selection) string {
	if v := attr(s, "aria-label"); v != "" {
		return v
	}
	if text := collapse(s.Text()); text != "" {
		return text
	}
	if v := attr(s, "value"); v != "" {
		return v
	}
	if alt, ok := s.Find("img[alt]").First().Attr("alt"); ok {
		return strings.TrimSpace(alt)
	}
	return attr(s, "title")
}

// IsGenericText reports whether a link or button text is one of the fixed
// phrases that carry no meaning out of context.
func IsGenericText(text string) bool {
	normalized := strings.ToLower(strings.Trim(collapse(text), " .!?:…»›>→"))
	_, ok := genericPhrases[normalized]
	return ok
}

func extractLiveRegions(doc *goquery.Document) []LiveRegion {
	regions := make([]LiveRegion, 0)
	doc.Find(liveRegionSelector).Each(func(_ int, s *goquery.Selection) {
		if len(regions) >= maxLiveRegions {
			return
		}
		switch goquery.NodeName(s) {
		case "html", "body", "script", "style":
			return
		}
		regions = append(regions, LiveRegion{
			Selector: selectorFor(s),
			Role:     attr(s, "role"),
			AriaLive: attr(s, "aria-live"),
			Text:     truncate(collapse(s.Text()), maxElementTextChars),
		})
	})
	return regions
}

func sensoryMatches(text string) []string {
	matches := sensoryPattern.FindAllString(text, maxSensoryMatches)
	if matches == nil {
		return []string{}
	}
	return matches
}

func buildStats(doc *goquery.Document, text string, c *Content) Stats {
	st := Stats{
		WordCount:        len(strings.Fields(text)),
		FormControlCount: len(c.FormControls),
		InteractiveCount: len(c.Interactive),
		LiveRegionCount:  len(c.LiveRegions),
	}
	for _, fc := range c.FormControls {
		if fc.PlaceholderOnlyLabel {
			st.PlaceholderOnlyCount++
		}
	}
	for _, el := range c.Interactive {
		if el.GenericText {
			st.GenericTextCount++
		}
	}

	sentences := 0
	for _, part := range sentenceSplit.Split(text, -1) {
		if strings.TrimSpace(part) != "" {
			sentences++
		}
	}
	if sentences > 0 {
		st.AvgWordsPerSentence = math.Round(float64(st.WordCount)/float64(sentences)*10) / 10
	}

	images := doc.Find("img")
	st.ImageCount = images.Length()
	images.Each(func(_ int, s *goquery.Selection) {
		if _, ok := s.Attr("alt"); !ok {
			st.ImagesMissingAltCount++
		}
	})

	return st
}

// selectorFor builds a short CSS selector for an element, preferring id, then
// name, then the first class.
func selectorFor(s *goquery.Selection) string {
	tag := goquery.NodeName(s)
	if id := attr(s, "id"); id != "" && !strings.ContainsAny(id, " .:#[]()") {
		return "#" + id
	}
	if name := attr(s, "name"); name != "" {
		return fmt.Sprintf(`%s[name=%q]`, tag, name)
	}
	if class := strings.Fields(attr(s, "class")); len(class) > 0 {
		return tag + "." + class[0]
	}
	return tag
}

func attr(s *goquery.Selection, name string) string {
	v, _ := s.Attr(name)
	return strings.TrimSpace(v)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
