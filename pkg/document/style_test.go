package document

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestInlineStyle(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		prop  string
		value string
		want  string
	}{
		{"add", "", "width", "10px", "width: 10px"},
		{"replace keeps order", "width: 1px; height: 2px", "width", "3px", "width: 3px; height: 2px"},
		{"remove", "width: 1px; height: 2px", "width", "", "height: 2px"},
		{"tolerates junk", "width:1px;;bogus;", "height", "2px", "width: 1px; height: 2px"},
		{"case-insensitive", "Width: 1px", "width", "2px", "width: 2px"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := parseStyle(tt.in)
			st.set(tt.prop, tt.value)
			if got := st.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSetStyle(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div id="a" style="color: red"></div>`))
	if err != nil {
		t.Fatal(err)
	}
	a := doc.Find("#a")
	SetStyle(a, "width", Px(12.3456))
	if got := StyleOf(a, "width"); got != "12.346px" {
		t.Errorf("width = %q, want 12.346px", got)
	}
	SetStyle(a, "color", "")
	SetStyle(a, "width", "")
	if _, ok := a.Attr("style"); ok {
		t.Error("style attribute should be removed once empty")
	}
}
