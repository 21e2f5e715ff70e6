package document

import (
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// inlineStyle is an ordered view of a style attribute.
type inlineStyle struct {
	props []string
	vals  map[string]string
}

func parseStyle(attr string) *inlineStyle {
	s := &inlineStyle{vals: make(map[string]string)}
	for _, decl := range strings.Split(attr, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		s.set(strings.TrimSpace(prop), strings.TrimSpace(val))
	}
	return s
}

// set assigns prop. An empty value removes it.
func (s *inlineStyle) set(prop, val string) {
	prop = strings.ToLower(prop)
	if prop == "" {
		return
	}
	if val == "" {
		if _, ok := s.vals[prop]; ok {
			delete(s.vals, prop)
			for i, p := range s.props {
				if p == prop {
					s.props = append(s.props[:i], s.props[i+1:]...)
					break
				}
			}
		}
		return
	}
	if _, ok := s.vals[prop]; !ok {
		s.props = append(s.props, prop)
	}
	s.vals[prop] = val
}

func (s *inlineStyle) get(prop string) string {
	return s.vals[strings.ToLower(prop)]
}

func (s *inlineStyle) String() string {
	parts := make([]string, 0, len(s.props))
	for _, p := range s.props {
		parts = append(parts, p+": "+s.vals[p])
	}
	return strings.Join(parts, "; ")
}

// SetStyle updates one inline style property of every element in sel. An
// empty value removes the property.
func SetStyle(sel *goquery.Selection, prop, val string) {
	sel.Each(func(_ int, el *goquery.Selection) {
		st := parseStyle(el.AttrOr("style", ""))
		st.set(prop, val)
		if out := st.String(); out != "" {
			el.SetAttr("style", out)
		} else {
			el.RemoveAttr("style")
		}
	})
}

// StyleOf returns one inline style property of the first element in sel.
func StyleOf(sel *goquery.Selection, prop string) string {
	return parseStyle(sel.AttrOr("style", "")).get(prop)
}

// Num formats a CSS number with at most three decimals.
func Num(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}

// Px formats a CSS pixel length.
func Px(v float64) string {
	return Num(v) + "px"
}
