package view

import (
	"html/template"
	"net/url"
	"strings"
	"time"

	"dahabiya-site/internal/i18n"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func funcMap(catalog *i18n.Catalog) template.FuncMap {
	rich := bluemonday.UGCPolicy()
	return template.FuncMap{
		"t": func(lang, key string) string {
			if catalog == nil {
				return key
			}
			return catalog.T(lang, key)
		},
		"richText": func(s string) template.HTML {
			return template.HTML(rich.Sanitize(s))
		},
		"fill":  fill,
		"price": price,
		"date": func(lang string, t *time.Time) string {
			if t == nil || t.IsZero() {
				return ""
			}
			return t.Format("2 Jan 2006")
		},
		"year":      func() int { return time.Now().Year() },
		"add":       func(a, b int) int { return a + b },
		"dict":      dict,
		"withQuery": withQuery,
		"join":      strings.Join,
		"pageRange": func(pages int) []int {
			out := make([]int, pages)
			for i := range out {
				out[i] = i + 1
			}
			return out
		},
	}
}

// fill replaces {name} placeholders in s with the value following name in pairs.
func fill(s string, pairs ...interface{}) string {
	for i := 0; i+1 < len(pairs); i += 2 {
		name, _ := pairs[i].(string)
		s = strings.ReplaceAll(s, "{"+name+"}", toString(pairs[i+1]))
	}
	return s
}

// price formats an amount with the grouping of lang, without decimals.
func price(lang string, v float64) string {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag).Sprintf("$%.0f", v)
}

// withQuery returns path with query, where each key/value pair in pairs is
// set, or removed when the value is empty. Other parameters are kept.
func withQuery(path string, query url.Values, pairs ...string) string {
	q := make(url.Values, len(query)+len(pairs)/2)
	for k, v := range query {
		q[k] = append([]string(nil), v...)
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			q.Del(pairs[i])
		} else {
			q.Set(pairs[i], pairs[i+1])
		}
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func dict(values ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(values)/2)
	for i := 0; i+1 < len(values); i += 2 {
		if k, ok := values[i].(string); ok {
			m[k] = values[i+1]
		}
	}
	return m
}

func toString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return message.NewPrinter(language.English).Sprintf("%d", x)
	default:
		return message.NewPrinter(language.English).Sprint(x)
	}
}
