package rss

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// htmlToText убирает теги и схлопывает пробелы.
// Если фрагмент не разбирается как HTML, возвращается как есть (без краевых пробелов).
func htmlToText(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return ""
	}
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	doc.Find("script, style").Remove()

	return strings.Join(strings.Fields(doc.Text()), " ")
}

// canonicalLink нормализует ссылку: убирает фрагмент и трекинг.
// Пустой link заменяется guid, если тот выглядит как http(s)-URL.
func canonicalLink(raw, guid string) string {
	str := strings.TrimSpace(raw)

	if str == "" {
		if g := strings.TrimSpace(guid); strings.HasPrefix(g, "http://") || strings.HasPrefix(g, "https://") {
			str = g
		}
	}

	u, err := url.Parse(str)
	if err != nil {
		return str
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return str
	}

	u.Fragment = ""
	if u.RawQuery != "" {
		q := u.Query()
		for k := range q {
			lk := strings.ToLower(k)
			if strings.HasPrefix(lk, "utm_") || strings.HasSuffix(lk, "clid") || strings.HasPrefix(lk, "mc_") || lk == "igshid" {
				q.Del(k)
			}
		}
		u.RawQuery = q.Encode()
	}

	return u.String()
}

// parsePubDate пробует набор популярных форматов и возвращает UTC-время.
func parsePubDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty date")
	}

	layouts := []string{
		time.RFC1123Z,
		time.RFC1123,
		"Mon, 02 Jan 06 15:04:05 -0700",
		"Mon, 02 Jan 06 15:04:05 MST",
		"Mon, 2 Jan 2006 15:04:05 -0700",
		time.RFC822Z,
		time.RFC822,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
	}

	var lastErr error
	for _, l := range layouts {
		t, err := time.Parse(l, value)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}

	return time.Time{}, lastErr
}
