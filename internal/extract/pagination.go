package extract

import (
	"regexp"
	"strconv"

	"github.com/PuerkitoBio/goquery"
)

var pageParamPattern = regexp.MustCompile(`(?:^|[?&])page=(\d+)`)

// LastPage returns the highest page number linked from the pagination
// controls, or 1 when there are none
func LastPage(doc *goquery.Document) int {
	last := 1
	doc.Find("ul.pagination a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		m := pageParamPattern.FindStringSubmatch(href)
		if m == nil {
			return
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return
		}
		if n > last {
			last = n
		}
	})
	return last
}
